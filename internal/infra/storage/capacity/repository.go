package capacity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
	"github.com/NiloFidel/Reservas-BookingService/pkg/dbmetrics"
	"github.com/NiloFidel/Reservas-BookingService/pkg/psqlbuilder"
	"github.com/NiloFidel/Reservas-BookingService/pkg/ptr"
)

// Код ошибки PostgreSQL serialization_failure
const pqSerializationFailure = "40001"

// wrapQueryErr оборачивает ошибку выполнения запроса сентинелом sentinel.
// Serialization_failure (40001) сохраняется в цепочке через %w - менеджер
// транзакций различает его и повторяет сериализуемую транзакцию
func wrapQueryErr(sentinel error, opCtx string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqSerializationFailure {
		return fmt.Errorf("%w: %s: %w", sentinel, opCtx, err)
	}
	return fmt.Errorf("%w: %s: %v", sentinel, opCtx, err)
}

// Repository репозиторий правил вместимости
//
// Таблица capacity_rules: id, service, slot_start, capacity,
// created_at, updated_at. NULL в service/slot_start означает "для всех"
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория правил вместимости
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByServiceAndSlot получает правило для точной пары (service, slot_start)
// nil в любом из аргументов означает поиск правила с NULL в этой колонке
func (r *Repository) GetByServiceAndSlot(ctx context.Context, service *string, slotStart *string) (*domain.CapacityRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"service",
		"slot_start",
		"capacity",
		"created_at",
		"updated_at",
	).
		From("capacity_rules")

	// Фильтрация по service (NULL или конкретное значение)
	if service == nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"service": nil})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"service": *service})
	}

	// Фильтрация по slot_start (NULL или конкретное значение)
	if slotStart == nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"slot_start": nil})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"slot_start": *slotStart})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByServiceAndSlot - build select query: %v", ErrBuildQuery, err)
	}

	var rule domain.CapacityRule
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&rule.ID,
		&rule.Service,
		&rule.SlotStart,
		&rule.Capacity,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, wrapQueryErr(ErrScanRow, "GetByServiceAndSlot - scan rule", err)
	}

	rule.CreatedAt = createdAt.Time
	rule.UpdatedAt = updatedAt.Time

	return &rule, nil
}

// GetCapacityWithHierarchy получает вместимость с учетом иерархии приоритетов:
// 1. Правило для конкретной услуги в конкретном слоте (service, slot_start)
// 2. Правило для услуги во всех слотах (service, NULL)
// 3. Правило для слота во всех услугах (NULL, slot_start)
//
// Если правило не найдено ни на одном уровне, возвращает ErrRuleNotFound -
// вызывающий подставляет default_capacity из конфигурации
func (r *Repository) GetCapacityWithHierarchy(ctx context.Context, service string, slot domain.SlotWindow) (int, error) {
	slotStart := slot.Start.String()

	// 1. Точная пара услуга+слот
	rule, err := r.GetByServiceAndSlot(ctx, ptr.Ptr(service), ptr.Ptr(slotStart))
	if err == nil {
		return rule.Capacity, nil
	}
	if err != ErrRuleNotFound {
		return 0, wrapQueryErr(ErrExecQuery, "GetCapacityWithHierarchy - level 1 (service+slot)", err)
	}

	// 2. Услуга для всех слотов
	rule, err = r.GetByServiceAndSlot(ctx, ptr.Ptr(service), nil)
	if err == nil {
		return rule.Capacity, nil
	}
	if err != ErrRuleNotFound {
		return 0, wrapQueryErr(ErrExecQuery, "GetCapacityWithHierarchy - level 2 (service only)", err)
	}

	// 3. Слот для всех услуг
	rule, err = r.GetByServiceAndSlot(ctx, nil, ptr.Ptr(slotStart))
	if err == nil {
		return rule.Capacity, nil
	}
	if err != ErrRuleNotFound {
		return 0, wrapQueryErr(ErrExecQuery, "GetCapacityWithHierarchy - level 3 (slot only)", err)
	}

	return 0, ErrRuleNotFound
}
