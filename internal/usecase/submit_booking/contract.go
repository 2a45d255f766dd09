package submit_booking

import (
	"context"
	"time"

	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
	"github.com/NiloFidel/Reservas-BookingService/internal/integrations/notifier"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	// CountForDate возвращает число бронирований (услуга, слот) на дату
	CountForDate(ctx context.Context, service string, slot domain.SlotWindow, date domain.CalendarDate) (int, error)
	// FindByKey ищет бронирование по идемпотентному ключу
	FindByKey(ctx context.Context, token, service string, slot domain.SlotWindow, date domain.CalendarDate) (*domain.Reservation, error)
	// InsertIfCapacity вставляет бронирование, только если лимит мест не исчерпан
	InsertIfCapacity(ctx context.Context, res *domain.Reservation, capacity int) (*domain.Reservation, error)
}

// CapacityProvider интерфейс источника вместимости слота
type CapacityProvider interface {
	GetCapacityWithHierarchy(ctx context.Context, service string, slot domain.SlotWindow) (int, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// NotifierClient интерфейс клиента отправки подтверждений
type NotifierClient interface {
	Notify(ctx context.Context, n *notifier.Notification) error
}

// CacheInvalidator опциональная инвалидация кэша занятости
type CacheInvalidator interface {
	Invalidate(ctx context.Context, service string, slot domain.SlotWindow, date domain.CalendarDate) error
}

// Clock интерфейс для получения текущего времени (для тестирования)
type Clock interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
