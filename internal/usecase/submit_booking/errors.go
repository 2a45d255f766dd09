package submit_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных.
	// Проверяется до любого обращения к хранилищу или бэкенду
	ErrInvalidInput = errors.New("submit_booking: invalid input data")

	// ErrSlotUnavailable возвращается, когда слот уже нельзя забронировать:
	// время начала наступило или мест не осталось на момент проверки
	ErrSlotUnavailable = errors.New("submit_booking: slot is not available")

	// ErrSlotFull возвращается при проигрыше гонки за последнее место
	ErrSlotFull = errors.New("submit_booking: slot is full")

	// ErrBackendUnavailable возвращается при недоступности хранилища или
	// удаленного бэкенда. Подтверждение в этом случае не синтезируется
	ErrBackendUnavailable = errors.New("submit_booking: backend unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("submit_booking: internal error")
)
