package get_calendar

import (
	"github.com/NiloFidel/Reservas-BookingService/internal/service/calendar/models"
)

// DayResponse день календаря в HTTP ответе
type DayResponse struct {
	Date      string `json:"date"`
	Used      int    `json:"used"`
	Free      int    `json:"free"`
	Available bool   `json:"available"`
}

// CalendarResponse HTTP response model: текущее состояние календаря
type CalendarResponse struct {
	Service      string        `json:"servicio"`
	Slot         string        `json:"horario"`
	Days         []DayResponse `json:"days"`
	SelectedDate string        `json:"selectedDate,omitempty"`
	Stale        bool          `json:"stale,omitempty"` // true, если последнее обновление провалилось
}

// FromSnapshot конвертирует срез состояния в HTTP response
func FromSnapshot(snap models.Snapshot) *CalendarResponse {
	days := make([]DayResponse, 0, len(snap.Days))
	for _, d := range snap.Days {
		days = append(days, DayResponse{
			Date:      d.Date.String(),
			Used:      d.Used,
			Free:      d.Free,
			Available: d.Available,
		})
	}

	resp := &CalendarResponse{
		Service: snap.Service,
		Slot:    snap.Slot,
		Days:    days,
		Stale:   snap.LastError != "",
	}
	if !snap.SelectedDate.IsZero() {
		resp.SelectedDate = snap.SelectedDate.String()
	}
	return resp
}
