package schedbackend

import (
	"context"

	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
)

// CountByDay адаптирует CalendarRange под источник занятости по дням
//
// Дни, которые бэкенд не вернул, трактуются как нулевая занятость:
// сам ответ при этом уже прошел проверку на наличие поля days
func (c *Client) CountByDay(
	ctx context.Context,
	service string,
	slot domain.SlotWindow,
	start, end domain.CalendarDate,
) (map[domain.CalendarDate]int, error) {
	days, err := c.CalendarRange(ctx, service, slot, start, end)
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.CalendarDate]int, len(days))
	for _, day := range days {
		date, err := domain.ParseCalendarDate(day.Date)
		if err != nil {
			c.log.Warn("CountByDay: skipping malformed date %q: %v", day.Date, err)
			continue
		}
		counts[date] = day.Used
	}
	return counts, nil
}
