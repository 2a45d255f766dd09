package get_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
	capacityRepo "github.com/NiloFidel/Reservas-BookingService/internal/infra/storage/capacity"
)

// UseCase use case получения календаря занятости по дням
type UseCase struct {
	countSource      DayCountSource
	capacityProvider CapacityProvider
	cache            CountsCache // может быть nil
	clock            Clock
	lookaheadDays    int
	defaultCapacity  int
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	countSource DayCountSource,
	capacityProvider CapacityProvider,
	cache CountsCache,
	clock Clock,
	lookaheadDays int,
	defaultCapacity int,
	logger Logger,
) *UseCase {
	return &UseCase{
		countSource:      countSource,
		capacityProvider: capacityProvider,
		cache:            cache,
		clock:            clock,
		lookaheadDays:    lookaheadDays,
		defaultCapacity:  defaultCapacity,
		logger:           logger,
	}
}

// Execute выполняет use case получения календаря занятости
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: service=%s, slot=%s, start=%s, end=%s",
		req.Service, req.Slot, req.StartDate, req.EndDate)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Текущее время сервиса (фиксированный оффсет, без DST)
	now := uc.clock.Now()
	today := domain.DateOf(now)

	// 3. Границы диапазона: явные или скользящее окно от сегодня
	start, end := req.StartDate, req.EndDate
	if start.IsZero() {
		start = today
		end = today.AddDays(uc.lookaheadDays - 1)
	}

	// Прошедшие дни не показываем и не считаем
	if start.Before(today) {
		start = today
	}
	if end.Before(start) {
		return &Response{Service: req.Service, Slot: req.Slot, Days: []Day{}}, nil
	}

	// 4. Вместимость слота с учетом иерархии правил
	capacity, err := uc.capacityProvider.GetCapacityWithHierarchy(ctx, req.Service, req.Slot)
	if err != nil {
		if errors.Is(err, capacityRepo.ErrRuleNotFound) {
			capacity = uc.defaultCapacity
		} else {
			uc.logger.Error("GetAvailability: failed to get capacity: %v", err)
			return nil, fmt.Errorf("%w: failed to get capacity: %v", ErrBackendUnavailable, err)
		}
	}

	// 5. Занятость по дням: сначала кэш, промахи добираем из источника
	dates := domain.DatesBetween(start, end)
	counts, err := uc.loadCounts(ctx, req.Service, req.Slot, start, end, dates)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to load day counts: %v", err)
		return nil, fmt.Errorf("%w: failed to load day counts: %v", ErrBackendUnavailable, err)
	}

	// 6. Сборка ответа: слот сегодняшнего дня гаснет после наступления его начала
	slotElapsed := domain.HasElapsed(req.Slot.Start, now)
	days := make([]Day, 0, len(dates))
	for _, date := range dates {
		avail := domain.NewDayAvailability(date, counts[date], capacity, date.Equal(today), slotElapsed)
		days = append(days, Day{
			Date:      avail.Date,
			Used:      avail.Used,
			Capacity:  avail.Capacity,
			Free:      avail.Free,
			Available: avail.Available,
		})
	}

	uc.logger.Info("GetAvailability: built %d days for service=%s, slot=%s",
		len(days), req.Service, req.Slot)

	return &Response{
		Service: req.Service,
		Slot:    req.Slot,
		Days:    days,
	}, nil
}

// loadCounts получает занятость по дням, при наличии кэша - через него
//
// Ошибки кэша не фатальны: логируются, данные добираются из источника.
// Ошибка самого источника - фатальна (fail-closed)
func (uc *UseCase) loadCounts(
	ctx context.Context,
	service string,
	slot domain.SlotWindow,
	start, end domain.CalendarDate,
	dates []domain.CalendarDate,
) (map[domain.CalendarDate]int, error) {
	if uc.cache == nil {
		return uc.countSource.CountByDay(ctx, service, slot, start, end)
	}

	cached, missing, err := uc.cache.GetCounts(ctx, service, slot, dates)
	if err != nil {
		uc.logger.Warn("GetAvailability: cache read failed, falling back to source: %v", err)
		return uc.countSource.CountByDay(ctx, service, slot, start, end)
	}

	if len(missing) == 0 {
		return cached, nil
	}

	// Добираем только промахи одним запросом по охватывающему поддиапазону
	missStart, missEnd := missing[0], missing[0]
	for _, d := range missing[1:] {
		if d.Before(missStart) {
			missStart = d
		}
		if d.After(missEnd) {
			missEnd = d
		}
	}

	fetched, err := uc.countSource.CountByDay(ctx, service, slot, missStart, missEnd)
	if err != nil {
		return nil, err
	}

	if err := uc.cache.SetCounts(ctx, service, slot, missing, fetched); err != nil {
		uc.logger.Warn("GetAvailability: cache write failed: %v", err)
	}

	for _, d := range missing {
		cached[d] = fetched[d]
	}
	return cached, nil
}
