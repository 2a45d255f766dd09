package reservation

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservation.repository: reservation not found")

	// ErrCapacityExceeded возвращается, когда на (услуга, слот, дата)
	// уже занято capacity мест и условная вставка отклонена
	ErrCapacityExceeded = errors.New("reservation.repository: capacity exceeded")

	// ErrDuplicateKey возвращается при конфликте по ключу идемпотентности
	// (requester_token, service, slot, date)
	ErrDuplicateKey = errors.New("reservation.repository: duplicate idempotency key")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")
)
