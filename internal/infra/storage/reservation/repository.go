package reservation

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

// Repository репозиторий для работы с бронированиями
//
// Таблица reservations:
//
//	id, service, slot_start, slot_end, booking_date, requester_token,
//	full_name, age, email, city, meeting_reference, created_at
//
// UNIQUE (requester_token, service, slot_start, booking_date) - ключ
// идемпотентности, авторитетная защита от дублей на стороне БД
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CountByDay возвращает количество бронирований по дням для (услуга, слот)
// в диапазоне [start, end] включительно. Дни без бронирований отсутствуют
// в результате - вызывающий трактует их как ноль
func (r *Repository) CountByDay(
	ctx context.Context,
	service string,
	slot domain.SlotWindow,
	start, end domain.CalendarDate,
) (map[domain.CalendarDate]int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("booking_date", "COUNT(*)").
		From("reservations").
		Where(squirrel.Eq{"service": service}).
		Where(squirrel.Eq{"slot_start": slot.Start.String()}).
		Where(squirrel.GtOrEq{"booking_date": start}).
		Where(squirrel.LtOrEq{"booking_date": end}).
		GroupBy("booking_date").
		OrderBy("booking_date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CountByDay - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapQueryErr(ErrExecQuery, "CountByDay - execute query", err)
	}
	defer rows.Close()

	counts := make(map[domain.CalendarDate]int)
	for rows.Next() {
		var date domain.CalendarDate
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return nil, fmt.Errorf("%w: CountByDay - scan row: %v", ErrScanRow, err)
		}
		counts[date] = count
	}

	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr(ErrScanRow, "CountByDay - rows error", err)
	}

	return counts, nil
}

// CountForDate возвращает количество бронирований на конкретную дату
func (r *Repository) CountForDate(
	ctx context.Context,
	service string,
	slot domain.SlotWindow,
	date domain.CalendarDate,
) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("reservations").
		Where(squirrel.Eq{"service": service}).
		Where(squirrel.Eq{"slot_start": slot.Start.String()}).
		Where(squirrel.Eq{"booking_date": date}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountForDate - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, wrapQueryErr(ErrScanRow, "CountForDate - scan count", err)
	}

	return count, nil
}

// FindByKey ищет бронирование по ключу идемпотентности
// Используется для прозрачного replay повторных запросов
func (r *Repository) FindByKey(
	ctx context.Context,
	token, service string,
	slot domain.SlotWindow,
	date domain.CalendarDate,
) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"service",
		"slot_start",
		"slot_end",
		"booking_date",
		"requester_token",
		"full_name",
		"age",
		"email",
		"city",
		"meeting_reference",
		"created_at",
	).
		From("reservations").
		Where(squirrel.Eq{"requester_token": token}).
		Where(squirrel.Eq{"service": service}).
		Where(squirrel.Eq{"slot_start": slot.Start.String()}).
		Where(squirrel.Eq{"booking_date": date}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindByKey - build select query: %v", ErrBuildQuery, err)
	}

	res, err := r.scanReservation(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, wrapQueryErr(ErrScanRow, "FindByKey - scan reservation", err)
	}

	return res, nil
}

// InsertIfCapacity выполняет условную вставку: строка создается только если
// текущее количество бронирований на (услуга, слот, дата) меньше capacity.
// Проверка и вставка атомарны (один INSERT ... SELECT ... WHERE),
// конфликт по ключу идемпотентности гасится ON CONFLICT DO NOTHING.
//
// Возвращает ErrCapacityExceeded, когда вставка отклонена по вместимости,
// и ErrDuplicateKey, когда строка с таким ключом уже существует.
// Вызывается внутри сериализуемой транзакции (см. usecase submit_booking)
func (r *Repository) InsertIfCapacity(
	ctx context.Context,
	res *domain.Reservation,
	capacity int,
) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectValues := psqlbuilder.Select().
		Column(squirrel.Expr("?", res.Service)).
		Column(squirrel.Expr("?", res.Slot.Start.String())).
		Column(squirrel.Expr("?", res.Slot.End.String())).
		Column(squirrel.Expr("?::date", res.Date)).
		Column(squirrel.Expr("?", res.RequesterToken)).
		Column(squirrel.Expr("?", res.FullName)).
		Column(squirrel.Expr("?", res.Age)).
		Column(squirrel.Expr("?", res.Email)).
		Column(squirrel.Expr("?", res.City)).
		Column(squirrel.Expr("?", res.MeetingReference)).
		Where(squirrel.Expr(
			"(SELECT COUNT(*) FROM reservations WHERE service = ? AND slot_start = ? AND booking_date = ?) < ?",
			res.Service, res.Slot.Start.String(), res.Date, capacity,
		))

	query, args, err := psqlbuilder.Insert("reservations").
		Columns(
			"service",
			"slot_start",
			"slot_end",
			"booking_date",
			"requester_token",
			"full_name",
			"age",
			"email",
			"city",
			"meeting_reference",
		).
		Select(selectValues).
		Suffix("ON CONFLICT (requester_token, service, slot_start, booking_date) DO NOTHING RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: InsertIfCapacity - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&res.ID, &createdAt)

	if err == sql.ErrNoRows {
		// Вставка не произошла: либо конфликт по ключу, либо нет мест
		// Различаем по наличию строки с таким ключом
		_, findErr := r.FindByKey(ctx, res.RequesterToken, res.Service, res.Slot, res.Date)
		switch {
		case findErr == nil:
			return nil, ErrDuplicateKey
		case errors.Is(findErr, ErrReservationNotFound):
			return nil, ErrCapacityExceeded
		default:
			return nil, findErr
		}
	}
	if err != nil {
		return nil, wrapQueryErr(ErrExecQuery, "InsertIfCapacity - execute insert", err)
	}

	res.CreatedAt = createdAt.Time
	return res, nil
}

// scanner единый интерфейс для *sql.Row и *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanReservation(row scanner) (*domain.Reservation, error) {
	var res domain.Reservation
	var createdAt sql.NullTime

	err := row.Scan(
		&res.ID,
		&res.Service,
		&res.Slot.Start,
		&res.Slot.End,
		&res.Date,
		&res.RequesterToken,
		&res.FullName,
		&res.Age,
		&res.Email,
		&res.City,
		&res.MeetingReference,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	res.CreatedAt = createdAt.Time
	return &res, nil
}
