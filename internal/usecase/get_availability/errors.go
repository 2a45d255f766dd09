package get_availability

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_availability: invalid input data")

	// ErrBackendUnavailable возвращается, когда источник занятости или
	// вместимости недоступен. Политика fail-closed: недоступность никогда
	// не превращается в пустой или полностью свободный календарь
	ErrBackendUnavailable = errors.New("get_availability: backend unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_availability: internal error")
)
