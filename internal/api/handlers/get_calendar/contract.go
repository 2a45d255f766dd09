package get_calendar

import (
	"context"

	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
	"github.com/NiloFidel/Reservas-BookingService/internal/service/calendar/models"
)

// CalendarService интерфейс реконсилятора календаря
type CalendarService interface {
	SetTarget(service string, slot domain.SlotWindow)
	Refresh(ctx context.Context) error
	Snapshot() models.Snapshot
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
