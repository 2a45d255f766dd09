package calendar

import (
	"context"
	"fmt"
	"sync"

	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
	"github.com/NiloFidel/Reservas-BookingService/internal/service/calendar/models"
	"github.com/NiloFidel/Reservas-BookingService/internal/usecase/get_availability"
)

// Service реконсилятор состояния календаря для пары (услуга, слот)
//
// Держит последнее успешное состояние дней и выбранный день. Обновления
// нумеруются монотонным токеном: применяется только результат последнего
// запущенного обновления, опоздавшие ответы отбрасываются. Провал
// обновления фиксируется в состоянии ошибки, не трогая прежние дни
// и выбор
type Service struct {
	fetcher AvailabilityFetcher
	logger  Logger

	mu           sync.Mutex
	service      string
	slot         domain.SlotWindow
	days         []models.Day
	selectedDate domain.CalendarDate
	lastErr      error
	token        uint64
}

// NewService создает новый реконсилятор календаря
func NewService(fetcher AvailabilityFetcher, service string, slot domain.SlotWindow, logger Logger) *Service {
	return &Service{
		fetcher: fetcher,
		service: service,
		slot:    slot,
		logger:  logger,
	}
}

// SetTarget переключает календарь на другую пару (услуга, слот)
//
// Прежние дни остаются видимыми до завершения следующего обновления.
// Уже запущенные обновления по старой паре вытесняются
func (s *Service) SetTarget(service string, slot domain.SlotWindow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.service == service && s.slot.Equal(slot) {
		return
	}

	s.service = service
	s.slot = slot
	s.token++
	s.logger.Info("Calendar: target switched to service=%s, slot=%s (token=%d)", service, slot, s.token)
}

// Refresh обновляет календарь скользящим окном от сегодня
func (s *Service) Refresh(ctx context.Context) error {
	return s.refresh(ctx, domain.CalendarDate{}, domain.CalendarDate{})
}

// RefreshRange обновляет календарь явным диапазоном [start, end]
func (s *Service) RefreshRange(ctx context.Context, start, end domain.CalendarDate) error {
	return s.refresh(ctx, start, end)
}

func (s *Service) refresh(ctx context.Context, start, end domain.CalendarDate) error {
	// Фиксируем номер обновления и параметры под блокировкой,
	// сам запрос выполняем без нее
	s.mu.Lock()
	s.token++
	myToken := s.token
	service := s.service
	slot := s.slot
	s.mu.Unlock()

	resp, err := s.fetcher.Execute(ctx, &get_availability.Request{
		Service:   service,
		Slot:      slot,
		StartDate: start,
		EndDate:   end,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	// Опоздавший ответ: состояние уже принадлежит более позднему обновлению
	if myToken != s.token {
		s.logger.Warn("Calendar: discarding stale refresh token=%d (current=%d)", myToken, s.token)
		return ErrRefreshSuperseded
	}

	if err != nil {
		s.lastErr = err
		s.logger.Error("Calendar: refresh failed for service=%s, slot=%s: %v", service, slot, err)
		return fmt.Errorf("%w: refresh failed: %v", ErrInternal, err)
	}

	s.days = models.FromUsecaseDays(resp.Days)
	s.lastErr = nil
	s.reconcileSelection()

	s.logger.Info("Calendar: refreshed %d days for service=%s, slot=%s, selected=%s",
		len(s.days), service, slot, s.selectedDate)
	return nil
}

// Select выбирает день календаря
// Выбрать можно только день, доступный в текущем состоянии
func (s *Service) Select(date domain.CalendarDate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.days {
		if d.Date.Equal(date) && d.Available {
			s.selectedDate = date
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrDateNotSelectable, date)
}

// Snapshot возвращает согласованный срез текущего состояния
func (s *Service) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	days := make([]models.Day, len(s.days))
	copy(days, s.days)

	snap := models.Snapshot{
		Service:      s.service,
		Slot:         s.slot.String(),
		Days:         days,
		SelectedDate: s.selectedDate,
		RefreshToken: s.token,
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}

// reconcileSelection восстанавливает инвариант выбора после обновления:
// прежний выбор сохраняется, пока день доступен, иначе выбирается
// самый ранний доступный день; без доступных дней выбор пуст
// Вызывается под блокировкой
func (s *Service) reconcileSelection() {
	if !s.selectedDate.IsZero() {
		for _, d := range s.days {
			if d.Date.Equal(s.selectedDate) && d.Available {
				return
			}
		}
	}

	for _, d := range s.days {
		if d.Available {
			s.selectedDate = d.Date
			return
		}
	}
	s.selectedDate = domain.CalendarDate{}
}
