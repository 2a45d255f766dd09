package get_calendar_range

import (
	"errors"
	"net/http"

	"github.com/NiloFidel/Reservas-BookingService/internal/api/handlers"
	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
	getAvailability "github.com/NiloFidel/Reservas-BookingService/internal/usecase/get_availability"
)

const (
	msgMissingParams      = "los parámetros servicio y horario son obligatorios"
	msgInvalidSlot        = "horario inválido, se espera HH:MM - HH:MM"
	msgInvalidDate        = "fecha inválida, se espera YYYY-MM-DD"
	msgInvalidParams      = "parámetros de consulta inválidos"
	msgBackendUnavailable = "el calendario no está disponible, inténtalo de nuevo"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/calendar-range?servicio=&horario=&start=&end=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	service := query.Get("servicio")
	rawSlot := query.Get("horario")
	if service == "" || rawSlot == "" {
		h.logger.Warn("GET /calendar-range - Missing servicio or horario")
		handlers.RespondBadRequest(w, msgMissingParams)
		return
	}

	slot, err := domain.ParseSlotWindow(rawSlot)
	if err != nil {
		h.logger.Warn("GET /calendar-range - Invalid horario %q: %v", rawSlot, err)
		handlers.RespondBadRequest(w, msgInvalidSlot)
		return
	}

	// Границы опциональны: без них usecase строит скользящее окно
	var start, end domain.CalendarDate
	if rawStart := query.Get("start"); rawStart != "" {
		if start, err = domain.ParseCalendarDate(rawStart); err != nil {
			h.logger.Warn("GET /calendar-range - Invalid start %q: %v", rawStart, err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
	}
	if rawEnd := query.Get("end"); rawEnd != "" {
		if end, err = domain.ParseCalendarDate(rawEnd); err != nil {
			h.logger.Warn("GET /calendar-range - Invalid end %q: %v", rawEnd, err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailability.Request{
		Service:   service,
		Slot:      slot,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /calendar-range - Invalid params: service=%s, slot=%s: %v", service, slot, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, getAvailability.ErrBackendUnavailable):
			h.logger.Error("GET /calendar-range - Backend unavailable: service=%s, slot=%s: %v", service, slot, err)
			handlers.RespondServiceUnavailable(w, msgBackendUnavailable)

		default:
			h.logger.Error("GET /calendar-range - Failed: service=%s, slot=%s: %v", service, slot, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /calendar-range - %d days for service=%s, slot=%s", len(result.Days), service, slot)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
