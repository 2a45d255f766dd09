package get_calendar_range

import (
	getAvailability "github.com/NiloFidel/Reservas-BookingService/internal/usecase/get_availability"
)

// DayResponse занятость одного дня в HTTP ответе
type DayResponse struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Used      int    `json:"used"`
	Free      int    `json:"free"`
	Available bool   `json:"available"`
}

// CalendarRangeResponse HTTP response model
type CalendarRangeResponse struct {
	Days []DayResponse `json:"days"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *CalendarRangeResponse {
	days := make([]DayResponse, 0, len(resp.Days))
	for _, d := range resp.Days {
		days = append(days, DayResponse{
			Date:      d.Date.String(),
			Used:      d.Used,
			Free:      d.Free,
			Available: d.Available,
		})
	}
	return &CalendarRangeResponse{Days: days}
}
