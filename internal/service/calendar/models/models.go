package models

import (
	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
	"github.com/NiloFidel/Reservas-BookingService/internal/usecase/get_availability"
)

// Day день календаря в состоянии реконсилятора
type Day struct {
	Date      domain.CalendarDate `json:"date"`
	Used      int                 `json:"used"`
	Capacity  int                 `json:"capacity"`
	Free      int                 `json:"free"`
	Available bool                `json:"available"`
}

// Snapshot согласованный срез состояния реконсилятора
//
// SelectedDate нулевой, когда доступных дней нет. LastError не пустой,
// когда последнее обновление провалилось - Days при этом хранят
// последнее успешное состояние
type Snapshot struct {
	Service      string              `json:"service"`
	Slot         string              `json:"slot"`
	Days         []Day               `json:"days"`
	SelectedDate domain.CalendarDate `json:"selectedDate,omitempty"`
	RefreshToken uint64              `json:"refreshToken"`
	LastError    string              `json:"lastError,omitempty"`
}

// FromUsecaseDays конвертирует дни usecase в модель реконсилятора
func FromUsecaseDays(days []get_availability.Day) []Day {
	out := make([]Day, 0, len(days))
	for _, d := range days {
		out = append(out, Day{
			Date:      d.Date,
			Used:      d.Used,
			Capacity:  d.Capacity,
			Free:      d.Free,
			Available: d.Available,
		})
	}
	return out
}
