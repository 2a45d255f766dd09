package create_reservation

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/NiloFidel/Reservas-BookingService/internal/api/handlers"
	submitBooking "github.com/NiloFidel/Reservas-BookingService/internal/usecase/submit_booking"
)

const (
	msgInvalidRequestBody = "cuerpo de la solicitud inválido"
	msgInvalidFields      = "datos de la reserva inválidos"
	msgSlotUnavailable    = "el horario seleccionado ya no está disponible"
	msgSlotFull           = "no quedan cupos para este horario"
	msgBackendUnavailable = "no se pudo registrar la reserva, inténtalo de nuevo"

	reasonInvalidInput    = "InvalidInput"
	reasonSlotUnavailable = "SlotUnavailable"
	reasonFull            = "Full"
)

// refreshTimeout таймаут фонового обновления календаря после бронирования
const refreshTimeout = 10 * time.Second

type Handler struct {
	useCase  SubmitBookingUseCase
	calendar CalendarRefresher // может быть nil
	logger   Logger
}

func NewHandler(useCase SubmitBookingUseCase, calendar CalendarRefresher, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		calendar: calendar,
		logger:   logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgInvalidRequestBody, reasonInvalidInput)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /reservations - Failed to parse request: %v", err)
		handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgInvalidFields, reasonInvalidInput)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, submitBooking.ErrInvalidInput):
			h.logger.Warn("POST /reservations - Invalid input: token=%s: %v", req.ClientToken, err)
			handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgInvalidFields, reasonInvalidInput)

		case errors.Is(err, submitBooking.ErrSlotFull):
			h.logger.Warn("POST /reservations - Slot full: service=%s, slot=%s, date=%s",
				req.Service, req.Slot, req.Date)
			handlers.RespondErrorWithReason(w, http.StatusConflict, msgSlotFull, reasonFull)

		case errors.Is(err, submitBooking.ErrSlotUnavailable):
			h.logger.Warn("POST /reservations - Slot unavailable: service=%s, slot=%s, date=%s",
				req.Service, req.Slot, req.Date)
			handlers.RespondErrorWithReason(w, http.StatusConflict, msgSlotUnavailable, reasonSlotUnavailable)

		case errors.Is(err, submitBooking.ErrBackendUnavailable):
			h.logger.Error("POST /reservations - Backend unavailable: token=%s: %v", req.ClientToken, err)
			handlers.RespondServiceUnavailable(w, msgBackendUnavailable)

		default:
			h.logger.Error("POST /reservations - Failed: token=%s: %v", req.ClientToken, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// Повтор идемпотентного ключа отвечает 200, новое бронирование 201
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	} else if h.calendar != nil {
		// Календарь обновляется в фоне: ответ клиенту не ждет
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()
			if err := h.calendar.Refresh(ctx); err != nil {
				h.logger.Warn("POST /reservations - Calendar refresh failed: %v", err)
			}
		}()
	}

	h.logger.Info("POST /reservations - Reservation confirmed: meeting=%s, replayed=%t",
		result.MeetingReference, result.Replayed)
	handlers.RespondJSON(w, status, FromUseCaseResponse(result))
}
