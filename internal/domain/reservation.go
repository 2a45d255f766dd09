package domain

import "time"

// Requester данные заявителя, присланные формой бронирования
type Requester struct {
	FullName string
	Age      int
	Email    string
	City     string
}

// Reservation represents a confirmed booking of one slot on one date.
// Uniqueness invariant: at most one row per
// (requester_token, service, slot, date) - the idempotency key.
// Capacity invariant: rows per (service, slot, date) never exceed the
// configured capacity; enforced by the store's conditional insert.
type Reservation struct {
	ID               int64
	Service          string
	Slot             SlotWindow
	Date             CalendarDate
	RequesterToken   string
	FullName         string
	Age              int
	Email            string
	City             string
	MeetingReference string
	CreatedAt        time.Time
}

// CapacityRule правило вместимости: override per (услуга, слот)
// NULL в Service/SlotStart означает "для всех"
type CapacityRule struct {
	ID        int64
	Service   *string
	SlotStart *string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
