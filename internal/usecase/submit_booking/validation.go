package submit_booking

import (
	"fmt"
	"strings"

	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.RequesterToken == "" {
		return fmt.Errorf("%w: requester token is required", ErrInvalidInput)
	}
	if len(req.RequesterToken) > domain.MaxTokenLength {
		return fmt.Errorf("%w: requester token is too long", ErrInvalidInput)
	}

	if !domain.IsKnownService(req.Service) {
		return fmt.Errorf("%w: unknown service %q", ErrInvalidInput, req.Service)
	}

	if req.Slot.IsZero() {
		return fmt.Errorf("%w: slot is required", ErrInvalidInput)
	}
	if !req.Slot.InCatalog() {
		return fmt.Errorf("%w: slot %q is not in catalog", ErrInvalidInput, req.Slot)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	return validateRequester(&req.Requester)
}

// validateRequester валидирует данные записывающегося
func validateRequester(r *domain.Requester) error {
	if strings.TrimSpace(r.FullName) == "" {
		return fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	if len(r.FullName) > domain.MaxFullNameLength {
		return fmt.Errorf("%w: full name is too long", ErrInvalidInput)
	}

	if r.Age < domain.MinRequesterAge || r.Age > domain.MaxRequesterAge {
		return fmt.Errorf("%w: age must be between %d and %d",
			ErrInvalidInput, domain.MinRequesterAge, domain.MaxRequesterAge)
	}

	if !isValidEmail(r.Email) {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}

	if strings.TrimSpace(r.City) == "" {
		return fmt.Errorf("%w: city is required", ErrInvalidInput)
	}
	if len(r.City) > domain.MaxCityLength {
		return fmt.Errorf("%w: city is too long", ErrInvalidInput)
	}

	return nil
}

// validateDate проверяет дату относительно сегодня и горизонта бронирования
func validateDate(date, today domain.CalendarDate, lookaheadDays int) error {
	if date.Before(today) {
		return fmt.Errorf("%w: date is in the past", ErrInvalidInput)
	}

	// lookaheadDays = 0 снимает ограничение горизонта
	if lookaheadDays > 0 && date.After(today.AddDays(lookaheadDays-1)) {
		return fmt.Errorf("%w: can only book %d days ahead", ErrInvalidInput, lookaheadDays)
	}

	return nil
}

// isValidEmail минимальная структурная проверка адреса почты
func isValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domainPart := email[at+1:]
	if !strings.Contains(domainPart, ".") {
		return false
	}
	return !strings.ContainsAny(email, " \t\n")
}
