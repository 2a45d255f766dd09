package domain

// DayAvailability represents derived availability of one calendar day
// for a (service, slot) pair. Never persisted, recomputed on every query.
type DayAvailability struct {
	Date      CalendarDate
	Used      int
	Capacity  int
	Free      int
	Available bool
}

// NewDayAvailability вычисляет доступность дня
// slotElapsed учитывается только для сегодняшней даты: прошедшее время
// начала слота делает день недоступным независимо от свободных мест
func NewDayAvailability(date CalendarDate, used, capacity int, isToday, slotElapsed bool) DayAvailability {
	if used < 0 {
		used = 0
	}

	free := capacity - used
	if free < 0 {
		free = 0
	}

	available := free > 0
	if isToday && slotElapsed {
		available = false
	}

	return DayAvailability{
		Date:      date,
		Used:      used,
		Capacity:  capacity,
		Free:      free,
		Available: available,
	}
}

// IsFull returns true if the day has no free spots
func (d *DayAvailability) IsFull() bool {
	return d.Free <= 0
}

// IsPartiallyBooked returns true if the day has some but not all spots taken
func (d *DayAvailability) IsPartiallyBooked() bool {
	return d.Used > 0 && d.Free > 0
}

// OccupancyRate returns the occupancy rate as a percentage (0-100)
func (d *DayAvailability) OccupancyRate() float64 {
	if d.Capacity == 0 {
		return 0
	}
	return float64(d.Used) / float64(d.Capacity) * 100
}
