package get_availability

import (
	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
)

// Request параметры запроса календаря занятости
//
// StartDate и EndDate либо заданы обе, либо обе нулевые - во втором
// случае используется скользящее окно [сегодня, сегодня+lookahead-1]
type Request struct {
	Service   string
	Slot      domain.SlotWindow
	StartDate domain.CalendarDate
	EndDate   domain.CalendarDate
}

// Day занятость одного дня календаря
type Day struct {
	Date      domain.CalendarDate
	Used      int
	Capacity  int
	Free      int
	Available bool
}

// Response календарь занятости по дням в возрастающем порядке дат
type Response struct {
	Service string
	Slot    domain.SlotWindow
	Days    []Day
}
