package domain

import (
	"fmt"
	"strings"

	"github.com/NiloFidel/Reservas-BookingService/pkg/types"
)

// SlotWindow полуинтервал времени дня [Start, End)
// Идентичность слота - буквальная пара начало-конец
type SlotWindow struct {
	Start types.TimeString
	End   types.TimeString
}

// SlotCatalog фиксированный каталог непересекающихся окон бронирования
// Окна покрывают рабочий день подряд, без зазоров
var SlotCatalog = []SlotWindow{
	{Start: "14:00", End: "15:00"},
	{Start: "15:00", End: "16:00"},
	{Start: "16:00", End: "17:00"},
	{Start: "17:00", End: "18:00"},
	{Start: "18:00", End: "19:00"},
	{Start: "19:00", End: "20:00"},
	{Start: "20:00", End: "21:00"},
	{Start: "21:00", End: "22:00"},
}

// ParseSlotWindow парсит окно из строки вида "14:00 - 15:00"
func ParseSlotWindow(s string) (SlotWindow, error) {
	parts := strings.Split(s, " - ")
	if len(parts) != 2 {
		return SlotWindow{}, fmt.Errorf("invalid slot window %q, expected \"HH:MM - HH:MM\"", s)
	}

	start, err := types.NewTimeStringFromString(strings.TrimSpace(parts[0]))
	if err != nil {
		return SlotWindow{}, fmt.Errorf("invalid slot window %q: %w", s, err)
	}

	end, err := types.NewTimeStringFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return SlotWindow{}, fmt.Errorf("invalid slot window %q: %w", s, err)
	}

	if !start.IsBefore(end) {
		return SlotWindow{}, fmt.Errorf("invalid slot window %q: start must be before end", s)
	}

	return SlotWindow{Start: start, End: end}, nil
}

// String возвращает каноническое представление "HH:MM - HH:MM"
func (w SlotWindow) String() string {
	return w.Start.String() + " - " + w.End.String()
}

// IsZero проверяет, что окно не задано
func (w SlotWindow) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Equal проверяет идентичность окон (по буквальной паре)
func (w SlotWindow) Equal(other SlotWindow) bool {
	return w.Start == other.Start && w.End == other.End
}

// InCatalog проверяет, что окно есть в каталоге
func (w SlotWindow) InCatalog() bool {
	for _, c := range SlotCatalog {
		if w.Equal(c) {
			return true
		}
	}
	return false
}
