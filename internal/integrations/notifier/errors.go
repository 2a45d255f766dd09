package notifier

import "errors"

var (
	// ErrNotifyFailed возвращается при любой ошибке отправки уведомления
	// Вызывающий логирует и продолжает: отказ уведомления не отменяет
	// состоявшееся бронирование
	ErrNotifyFailed = errors.New("notifier client: failed to send notification")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("notifier client: internal error")
)
