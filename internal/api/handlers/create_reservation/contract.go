package create_reservation

import (
	"context"

	submitBooking "github.com/NiloFidel/Reservas-BookingService/internal/usecase/submit_booking"
)

type SubmitBookingUseCase interface {
	Execute(ctx context.Context, req *submitBooking.Request) (*submitBooking.Response, error)
}

// CalendarRefresher опциональное обновление календаря после бронирования
type CalendarRefresher interface {
	Refresh(ctx context.Context) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
