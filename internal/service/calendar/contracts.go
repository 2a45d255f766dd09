package calendar

import (
	"context"

	"github.com/NiloFidel/Reservas-BookingService/internal/usecase/get_availability"
)

// AvailabilityFetcher интерфейс источника календаря занятости
type AvailabilityFetcher interface {
	Execute(ctx context.Context, req *get_availability.Request) (*get_availability.Response, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
