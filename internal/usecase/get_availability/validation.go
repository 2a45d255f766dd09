package get_availability

import (
	"fmt"

	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
)

// maxRangeDays верхняя граница длины запрашиваемого диапазона
const maxRangeDays = 92

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if !domain.IsKnownService(req.Service) {
		return fmt.Errorf("%w: unknown service %q", ErrInvalidInput, req.Service)
	}

	if req.Slot.IsZero() {
		return fmt.Errorf("%w: slot is required", ErrInvalidInput)
	}

	if !req.Slot.InCatalog() {
		return fmt.Errorf("%w: slot %q is not in catalog", ErrInvalidInput, req.Slot)
	}

	// Границы либо обе заданы, либо обе опущены
	if req.StartDate.IsZero() != req.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end must be provided together", ErrInvalidInput)
	}

	if !req.StartDate.IsZero() {
		if req.EndDate.Before(req.StartDate) {
			return fmt.Errorf("%w: end date before start date", ErrInvalidInput)
		}
		if len(domain.DatesBetween(req.StartDate, req.EndDate)) > maxRangeDays {
			return fmt.Errorf("%w: range longer than %d days", ErrInvalidInput, maxRangeDays)
		}
	}

	return nil
}
