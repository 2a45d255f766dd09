package domain

import (
	"fmt"
	"time"

	"github.com/NiloFidel/Reservas-BookingService/pkg/types"
)

// Clock источник текущего времени (для тестирования)
type Clock interface {
	Now() time.Time
}

// FixedOffsetClock часы, проецирующие текущий момент в фиксированный
// UTC-offset независимо от таймзоны хоста
type FixedOffsetClock struct {
	loc *time.Location
}

// NewFixedOffsetClock создает часы для смещения offsetHours относительно UTC
func NewFixedOffsetClock(offsetHours int) *FixedOffsetClock {
	return &FixedOffsetClock{loc: time.FixedZone(offsetName(offsetHours), offsetHours*3600)}
}

// Now возвращает текущий момент в фиксированной зоне
func (c *FixedOffsetClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Location возвращает фиксированную зону часов
func (c *FixedOffsetClock) Location() *time.Location {
	return c.loc
}

// HasElapsed проверяет, что начало слота уже прошло относительно ref
// Граница закрытая: момент ровно в минуту старта считается прошедшим
// (слот нельзя забронировать в его собственное время начала)
func HasElapsed(slotStart types.TimeString, ref time.Time) bool {
	return ref.Hour() > slotStart.Hour() ||
		(ref.Hour() == slotStart.Hour() && ref.Minute() >= slotStart.Minute())
}

// Today возвращает сегодняшнюю дату по часам clock
func Today(clock Clock) CalendarDate {
	return DateOf(clock.Now())
}

func offsetName(offsetHours int) string {
	if offsetHours == 0 {
		return "UTC"
	}
	return fmt.Sprintf("UTC%+d", offsetHours)
}
