package submit_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
	capacityRepo "github.com/NiloFidel/Reservas-BookingService/internal/infra/storage/capacity"
	reservationRepo "github.com/NiloFidel/Reservas-BookingService/internal/infra/storage/reservation"
	"github.com/NiloFidel/Reservas-BookingService/internal/integrations/notifier"
)

// notifyTimeout таймаут отправки подтверждения после коммита
const notifyTimeout = 10 * time.Second

// UseCase use case создания бронирования с идемпотентным повтором
type UseCase struct {
	reservationRepo  ReservationRepository
	capacityProvider CapacityProvider
	txManager        TransactionManager
	notifierClient   NotifierClient   // может быть nil
	cache            CacheInvalidator // может быть nil
	clock            Clock
	lookaheadDays    int
	defaultCapacity  int
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	capacityProvider CapacityProvider,
	txManager TransactionManager,
	notifierClient NotifierClient,
	cache CacheInvalidator,
	clock Clock,
	lookaheadDays int,
	defaultCapacity int,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo:  reservationRepo,
		capacityProvider: capacityProvider,
		txManager:        txManager,
		notifierClient:   notifierClient,
		cache:            cache,
		clock:            clock,
		lookaheadDays:    lookaheadDays,
		defaultCapacity:  defaultCapacity,
		logger:           logger,
	}
}

// Execute выполняет use case создания бронирования
// Использует сериализуемую транзакцию для предотвращения гонки данных
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("SubmitBooking: token=%s, service=%s, slot=%s, date=%s",
		req.RequesterToken, req.Service, req.Slot, req.Date)

	// 1. Валидация входных данных - до любого обращения к хранилищу
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("SubmitBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Текущее время сервиса
	now := uc.clock.Now()
	today := domain.DateOf(now)

	// 3. Валидация даты относительно сегодня и горизонта бронирования
	if err := validateDate(req.Date, today, uc.lookaheadDays); err != nil {
		uc.logger.Warn("SubmitBooking: date validation failed: %v", err)
		return nil, err
	}

	// 4. Слот сегодняшнего дня гаснет с наступлением его начала
	if req.Date.Equal(today) && domain.HasElapsed(req.Slot.Start, now) {
		uc.logger.Warn("SubmitBooking: slot %s already started at %s",
			req.Slot, now.Format(domain.TimeFormat))
		return nil, ErrSlotUnavailable
	}

	var result *domain.Reservation
	var replayed bool

	// 5. Проверка мест и вставка в одной сериализуемой транзакции.
	// Ошибки хранилища оборачиваются через %w: serialization_failure
	// должен остаться различимым для повторов менеджера транзакций
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Идемпотентный повтор: та же четверка ключа возвращает
		// уже созданное бронирование без изменения счетчиков
		existing, err := uc.reservationRepo.FindByKey(txCtx, req.RequesterToken, req.Service, req.Slot, req.Date)
		if err != nil && !errors.Is(err, reservationRepo.ErrReservationNotFound) {
			uc.logger.Error("SubmitBooking: failed to check idempotency key: %v", err)
			return fmt.Errorf("%w: failed to check idempotency key: %w", ErrBackendUnavailable, err)
		}
		if existing != nil {
			result = existing
			replayed = true
			return nil
		}

		// 5.2. Вместимость слота с учетом иерархии правил
		capacity, err := uc.capacityProvider.GetCapacityWithHierarchy(txCtx, req.Service, req.Slot)
		if err != nil {
			if errors.Is(err, capacityRepo.ErrRuleNotFound) {
				capacity = uc.defaultCapacity
			} else {
				uc.logger.Error("SubmitBooking: failed to get capacity: %v", err)
				return fmt.Errorf("%w: failed to get capacity: %w", ErrBackendUnavailable, err)
			}
		}

		// 5.3. Свежая занятость на дату
		used, err := uc.reservationRepo.CountForDate(txCtx, req.Service, req.Slot, req.Date)
		if err != nil {
			uc.logger.Error("SubmitBooking: failed to count reservations: %v", err)
			return fmt.Errorf("%w: failed to count reservations: %w", ErrBackendUnavailable, err)
		}
		if used >= capacity {
			uc.logger.Warn("SubmitBooking: slot not available, %d/%d spots taken", used, capacity)
			return ErrSlotUnavailable
		}

		// 5.4. Условная вставка: сам INSERT еще раз проверяет лимит,
		// проигрыш гонки за последнее место отличим от недоступности
		reservation := &domain.Reservation{
			Service:          req.Service,
			Slot:             req.Slot,
			Date:             req.Date,
			RequesterToken:   req.RequesterToken,
			FullName:         req.Requester.FullName,
			Age:              req.Requester.Age,
			Email:            req.Requester.Email,
			City:             req.Requester.City,
			MeetingReference: uuid.NewString(),
		}

		created, err := uc.reservationRepo.InsertIfCapacity(txCtx, reservation, capacity)
		if err != nil {
			switch {
			case errors.Is(err, reservationRepo.ErrCapacityExceeded):
				uc.logger.Warn("SubmitBooking: lost the race for the last spot, %d/%d", used, capacity)
				return ErrSlotFull
			case errors.Is(err, reservationRepo.ErrDuplicateKey):
				// Конкурентный повтор того же ключа: читаем созданную запись
				existing, ferr := uc.reservationRepo.FindByKey(txCtx, req.RequesterToken, req.Service, req.Slot, req.Date)
				if ferr != nil {
					uc.logger.Error("SubmitBooking: failed to read replayed reservation: %v", ferr)
					return fmt.Errorf("%w: failed to read replayed reservation: %w", ErrBackendUnavailable, ferr)
				}
				result = existing
				replayed = true
				return nil
			default:
				uc.logger.Error("SubmitBooking: failed to insert reservation: %v", err)
				return fmt.Errorf("%w: failed to insert reservation: %w", ErrBackendUnavailable, err)
			}
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	if replayed {
		uc.logger.Info("SubmitBooking: replayed reservation id=%d, meeting=%s",
			result.ID, result.MeetingReference)
	} else {
		uc.logger.Info("SubmitBooking: created reservation id=%d, meeting=%s",
			result.ID, result.MeetingReference)
		uc.afterCommit(result)
	}

	return &Response{
		MeetingReference: result.MeetingReference,
		Service:          result.Service,
		Slot:             result.Slot,
		Date:             result.Date,
		FullName:         result.FullName,
		Email:            result.Email,
		Replayed:         replayed,
		CreatedAt:        result.CreatedAt,
	}, nil
}

// afterCommit выполняет побочные действия после успешного коммита:
// инвалидация кэша занятости и отправка письма-подтверждения.
// Оба не влияют на результат - бронирование уже состоялось
func (uc *UseCase) afterCommit(res *domain.Reservation) {
	if uc.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := uc.cache.Invalidate(ctx, res.Service, res.Slot, res.Date); err != nil {
			uc.logger.Warn("SubmitBooking: cache invalidation failed: %v", err)
		}
	}

	if uc.notifierClient == nil {
		return
	}

	notification := &notifier.Notification{
		Email:            res.Email,
		FullName:         res.FullName,
		Service:          res.Service,
		Slot:             res.Slot.String(),
		Date:             res.Date.String(),
		MeetingReference: res.MeetingReference,
	}

	// Отправляем в фоне с собственным таймаутом: контекст запроса
	// может завершиться раньше доставки письма
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := uc.notifierClient.Notify(ctx, notification); err != nil {
			uc.logger.Warn("SubmitBooking: confirmation delivery failed for meeting=%s: %v",
				res.MeetingReference, err)
		}
	}()
}
