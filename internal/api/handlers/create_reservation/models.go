package create_reservation

import (
	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
	submitBooking "github.com/NiloFidel/Reservas-BookingService/internal/usecase/submit_booking"
)

// RequesterPayload данные записывающегося в HTTP запросе
type RequesterPayload struct {
	FullName string `json:"fullName"`
	Age      int    `json:"age"`
	Email    string `json:"email"`
	City     string `json:"city"`
}

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	ClientToken string           `json:"clientToken"`
	Service     string           `json:"servicio"`
	Slot        string           `json:"horario"` // "HH:MM - HH:MM"
	Date        string           `json:"date"`    // YYYY-MM-DD
	Requester   RequesterPayload `json:"usuario"`
}

// ReservationResponse HTTP response model
type ReservationResponse struct {
	MeetingReference string `json:"meetingReference"`
	Date             string `json:"date"`
	Slot             string `json:"horario"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest() (*submitBooking.Request, error) {
	slot, err := domain.ParseSlotWindow(r.Slot)
	if err != nil {
		return nil, err
	}

	date, err := domain.ParseCalendarDate(r.Date)
	if err != nil {
		return nil, err
	}

	return &submitBooking.Request{
		RequesterToken: r.ClientToken,
		Service:        r.Service,
		Slot:           slot,
		Date:           date,
		Requester: domain.Requester{
			FullName: r.Requester.FullName,
			Age:      r.Requester.Age,
			Email:    r.Requester.Email,
			City:     r.Requester.City,
		},
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *submitBooking.Response) *ReservationResponse {
	return &ReservationResponse{
		MeetingReference: resp.MeetingReference,
		Date:             resp.Date.String(),
		Slot:             resp.Slot.String(),
	}
}
