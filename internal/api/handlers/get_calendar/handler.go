package get_calendar

import (
	"net/http"

	"github.com/NiloFidel/Reservas-BookingService/internal/api/handlers"
	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
)

const (
	msgMissingParams      = "los parámetros servicio y horario son obligatorios"
	msgInvalidSlot        = "horario inválido, se espera HH:MM - HH:MM"
	msgUnknownService     = "servicio desconocido"
	msgBackendUnavailable = "el calendario no está disponible, inténtalo de nuevo"
	msgCalendarBusy       = "el calendario está ocupado, inténtalo de nuevo"
)

type Handler struct {
	calendar CalendarService
	logger   Logger
}

func NewHandler(calendar CalendarService, logger Logger) *Handler {
	return &Handler{
		calendar: calendar,
		logger:   logger,
	}
}

// Handle GET /api/v1/calendar?servicio=&horario=
//
// Возвращает текущее состояние календаря с выбранным днем. При провале
// обновления прежнее состояние отдается с пометкой stale, пустое
// состояние без данных - это 503
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	service := query.Get("servicio")
	rawSlot := query.Get("horario")
	if service == "" || rawSlot == "" {
		h.logger.Warn("GET /calendar - Missing servicio or horario")
		handlers.RespondBadRequest(w, msgMissingParams)
		return
	}

	if !domain.IsKnownService(service) {
		h.logger.Warn("GET /calendar - Unknown service %q", service)
		handlers.RespondBadRequest(w, msgUnknownService)
		return
	}

	slot, err := domain.ParseSlotWindow(rawSlot)
	if err != nil {
		h.logger.Warn("GET /calendar - Invalid horario %q: %v", rawSlot, err)
		handlers.RespondBadRequest(w, msgInvalidSlot)
		return
	}

	h.calendar.SetTarget(service, slot)

	if err := h.calendar.Refresh(r.Context()); err != nil {
		h.logger.Error("GET /calendar - Refresh failed: service=%s, slot=%s: %v", service, slot, err)
	}

	snap := h.calendar.Snapshot()

	// Конкурентный запрос мог перенацелить общий реконсилятор на другую
	// пару - чужой срез не отдаем
	if snap.Service != service || snap.Slot != slot.String() {
		h.logger.Warn("GET /calendar - Snapshot superseded: requested %s/%s, got %s/%s",
			service, slot, snap.Service, snap.Slot)
		handlers.RespondServiceUnavailable(w, msgCalendarBusy)
		return
	}

	if len(snap.Days) == 0 && snap.LastError != "" {
		handlers.RespondServiceUnavailable(w, msgBackendUnavailable)
		return
	}

	h.logger.Info("GET /calendar - %d days, selected=%s, stale=%t",
		len(snap.Days), snap.SelectedDate, snap.LastError != "")
	handlers.RespondJSON(w, http.StatusOK, FromSnapshot(snap))
}
