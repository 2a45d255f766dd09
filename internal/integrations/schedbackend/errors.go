package schedbackend

import "errors"

var (
	// ErrBackendUnavailable возвращается при таймауте, транспортной ошибке
	// или некорректном ответе бэкенда. Политика единая fail-closed:
	// чтение никогда не деградирует в "пустой календарь"
	ErrBackendUnavailable = errors.New("schedbackend client: backend unavailable")

	// ErrSlotUnavailable возвращается, когда бэкенд отклонил бронирование
	// по недоступности слота (время прошло или мест нет)
	ErrSlotUnavailable = errors.New("schedbackend client: slot not available")

	// ErrSlotFull возвращается при проигрыше гонки за последнее место
	ErrSlotFull = errors.New("schedbackend client: slot is full")

	// ErrInvalidInput возвращается, когда бэкенд отклонил запрос как некорректный
	ErrInvalidInput = errors.New("schedbackend client: invalid input")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("schedbackend client: internal error")
)
