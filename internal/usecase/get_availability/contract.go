package get_availability

import (
	"context"
	"time"

	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
)

// DayCountSource источник занятости по дням для пары (услуга, слот)
//
// Реализации: локальный репозиторий бронирований и клиент удаленного
// calendar-backend в прокси-режиме
type DayCountSource interface {
	// CountByDay возвращает число бронирований по каждому дню диапазона [start, end]
	CountByDay(ctx context.Context, service string, slot domain.SlotWindow, start, end domain.CalendarDate) (map[domain.CalendarDate]int, error)
}

// CapacityProvider интерфейс источника вместимости слота
type CapacityProvider interface {
	// GetCapacityWithHierarchy получает вместимость с учетом иерархии приоритетов
	GetCapacityWithHierarchy(ctx context.Context, service string, slot domain.SlotWindow) (int, error)
}

// CountsCache опциональный кэш занятости по дням
type CountsCache interface {
	GetCounts(ctx context.Context, service string, slot domain.SlotWindow, dates []domain.CalendarDate) (map[domain.CalendarDate]int, []domain.CalendarDate, error)
	SetCounts(ctx context.Context, service string, slot domain.SlotWindow, dates []domain.CalendarDate, counts map[domain.CalendarDate]int) error
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

// FixedCapacity провайдер вместимости без хранилища правил
//
// Используется в прокси-режиме, где таблицы capacity_rules нет
type FixedCapacity int

// GetCapacityWithHierarchy возвращает фиксированную вместимость
func (c FixedCapacity) GetCapacityWithHierarchy(_ context.Context, _ string, _ domain.SlotWindow) (int, error) {
	return int(c), nil
}
