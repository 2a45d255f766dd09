package submit_booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
	reservationRepo "github.com/NiloFidel/Reservas-BookingService/internal/infra/storage/reservation"
	"github.com/NiloFidel/Reservas-BookingService/internal/integrations/notifier"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

// fakeRepo результаты FindByKey выдаются по очереди из findQueue,
// nil означает ErrReservationNotFound
type fakeRepo struct {
	findQueue []*domain.Reservation
	findCalls int

	count    int
	countErr error

	inserted *domain.Reservation
	// очередная ошибка вставки снимается с головы insertErrQueue,
	// nil в очереди означает успешную вставку
	insertErrQueue []error
	insertErr      error
	insertN        int
}

func (f *fakeRepo) CountForDate(context.Context, string, domain.SlotWindow, domain.CalendarDate) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.count, nil
}

func (f *fakeRepo) FindByKey(context.Context, string, string, domain.SlotWindow, domain.CalendarDate) (*domain.Reservation, error) {
	f.findCalls++
	if len(f.findQueue) == 0 {
		return nil, reservationRepo.ErrReservationNotFound
	}
	next := f.findQueue[0]
	f.findQueue = f.findQueue[1:]
	if next == nil {
		return nil, reservationRepo.ErrReservationNotFound
	}
	return next, nil
}

func (f *fakeRepo) InsertIfCapacity(_ context.Context, res *domain.Reservation, _ int) (*domain.Reservation, error) {
	f.insertN++
	if len(f.insertErrQueue) > 0 {
		next := f.insertErrQueue[0]
		f.insertErrQueue = f.insertErrQueue[1:]
		if next != nil {
			return nil, next
		}
	} else if f.insertErr != nil {
		return nil, f.insertErr
	}
	created := *res
	created.ID = 1
	created.CreatedAt = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	f.inserted = &created
	return &created, nil
}

type fakeCapacity struct {
	capacity int
	err      error
}

func (f fakeCapacity) GetCapacityWithHierarchy(context.Context, string, domain.SlotWindow) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.capacity, nil
}

type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// nopTxManager потокобезопасный вариант без счетчика для конкурентных тестов
type nopTxManager struct{}

func (nopTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// retryingTxManager повторяет fn при serialization_failure (40001) в цепочке
// ошибок - так же, как боевой менеджер транзакций
type retryingTxManager struct {
	attempts int
}

func (f *retryingTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for i := 0; i < 3; i++ {
		f.attempts++
		lastErr = fn(ctx)
		var pqErr *pq.Error
		if lastErr == nil || !errors.As(lastErr, &pqErr) || string(pqErr.Code) != "40001" {
			return lastErr
		}
	}
	return lastErr
}

// raceRepo потокобезопасное хранилище для конкурентных сценариев:
// CountForDate нарочно отдает устаревший ноль, победителя за последнее
// место определяет атомарная условная вставка
type raceRepo struct {
	mu   sync.Mutex
	rows []*domain.Reservation
}

func (r *raceRepo) CountForDate(context.Context, string, domain.SlotWindow, domain.CalendarDate) (int, error) {
	return 0, nil
}

func (r *raceRepo) FindByKey(context.Context, string, string, domain.SlotWindow, domain.CalendarDate) (*domain.Reservation, error) {
	return nil, reservationRepo.ErrReservationNotFound
}

func (r *raceRepo) InsertIfCapacity(_ context.Context, res *domain.Reservation, capacity int) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.rows) >= capacity {
		return nil, reservationRepo.ErrCapacityExceeded
	}
	created := *res
	created.ID = int64(len(r.rows) + 1)
	r.rows = append(r.rows, &created)
	return &created, nil
}

type fakeNotifier struct {
	sent chan *notifier.Notification
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, n *notifier.Notification) error {
	f.sent <- n
	return f.err
}

type fakeInvalidator struct {
	calls int
	err   error
}

func (f *fakeInvalidator) Invalidate(context.Context, string, domain.SlotWindow, domain.CalendarDate) error {
	f.calls++
	return f.err
}

func mustSlot(t *testing.T, raw string) domain.SlotWindow {
	t.Helper()
	slot, err := domain.ParseSlotWindow(raw)
	require.NoError(t, err)
	return slot
}

func validRequest(t *testing.T, date domain.CalendarDate) *Request {
	t.Helper()
	return &Request{
		RequesterToken: "ana@example.com",
		Service:        "1",
		Slot:           mustSlot(t, "16:00 - 17:00"),
		Date:           date,
		Requester: domain.Requester{
			FullName: "Ana Torres",
			Age:      24,
			Email:    "ana@example.com",
			City:     "Lima",
		},
	}
}

func newTestUseCase(repo *fakeRepo, cap CapacityProvider, n NotifierClient, inv CacheInvalidator, now time.Time) (*UseCase, *fakeTxManager) {
	tx := &fakeTxManager{}
	uc := NewUseCase(repo, cap, tx, n, inv, fixedClock{now: now}, 14, domain.DefaultCapacity, nopLogger{})
	return uc, tx
}

func TestExecute_CreatesReservation(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	repo := &fakeRepo{count: 1}
	sent := &fakeNotifier{sent: make(chan *notifier.Notification, 1)}
	inv := &fakeInvalidator{}
	uc, tx := newTestUseCase(repo, fakeCapacity{capacity: 3}, sent, inv, now)

	resp, err := uc.Execute(context.Background(), validRequest(t, domain.DateOf(now).AddDays(1)))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.MeetingReference)
	assert.False(t, resp.Replayed)
	assert.Equal(t, 1, tx.calls)
	assert.Equal(t, 1, repo.insertN)
	assert.Equal(t, 1, inv.calls)

	select {
	case n := <-sent.sent:
		assert.Equal(t, "ana@example.com", n.Email)
		assert.Equal(t, resp.MeetingReference, n.MeetingReference)
	case <-time.After(time.Second):
		t.Fatal("notification was not sent")
	}
}

func TestExecute_IdempotentReplay(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	date := domain.DateOf(now).AddDays(1)

	existing := &domain.Reservation{
		ID:               7,
		Service:          "1",
		Slot:             mustSlot(t, "16:00 - 17:00"),
		Date:             date,
		RequesterToken:   "ana@example.com",
		FullName:         "Ana Torres",
		Email:            "ana@example.com",
		MeetingReference: "meet-original",
	}
	repo := &fakeRepo{findQueue: []*domain.Reservation{existing}}
	sent := &fakeNotifier{sent: make(chan *notifier.Notification, 1)}
	uc, _ := newTestUseCase(repo, fakeCapacity{capacity: 3}, sent, nil, now)

	resp, err := uc.Execute(context.Background(), validRequest(t, date))
	require.NoError(t, err)

	assert.True(t, resp.Replayed)
	assert.Equal(t, "meet-original", resp.MeetingReference)
	assert.Zero(t, repo.insertN, "replay must not insert")

	select {
	case <-sent.sent:
		t.Fatal("replay must not re-send the confirmation")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestExecute_PastDateRejectedBeforeStorage(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	repo := &fakeRepo{}
	uc, tx := newTestUseCase(repo, fakeCapacity{capacity: 3}, nil, nil, now)

	_, err := uc.Execute(context.Background(), validRequest(t, domain.DateOf(now).AddDays(-1)))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, tx.calls, "past date must be rejected before any storage call")
	assert.Zero(t, repo.findCalls)
}

func TestExecute_BeyondHorizonRejected(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	repo := &fakeRepo{}
	uc, tx := newTestUseCase(repo, fakeCapacity{capacity: 3}, nil, nil, now)

	_, err := uc.Execute(context.Background(), validRequest(t, domain.DateOf(now).AddDays(14)))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, tx.calls)
}

func TestExecute_ElapsedSlotToday(t *testing.T) {
	// 16:00 ровно - слот 16:00 уже считается начавшимся
	now := time.Date(2026, 8, 28, 16, 0, 0, 0, time.UTC)
	repo := &fakeRepo{}
	uc, tx := newTestUseCase(repo, fakeCapacity{capacity: 3}, nil, nil, now)

	_, err := uc.Execute(context.Background(), validRequest(t, domain.DateOf(now)))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Zero(t, tx.calls)
}

func TestExecute_FullAtRecheck(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	repo := &fakeRepo{count: 3}
	uc, _ := newTestUseCase(repo, fakeCapacity{capacity: 3}, nil, nil, now)

	_, err := uc.Execute(context.Background(), validRequest(t, domain.DateOf(now).AddDays(1)))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Zero(t, repo.insertN)
}

func TestExecute_LostInsertRace(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	repo := &fakeRepo{count: 2, insertErr: reservationRepo.ErrCapacityExceeded}
	uc, _ := newTestUseCase(repo, fakeCapacity{capacity: 3}, nil, nil, now)

	_, err := uc.Execute(context.Background(), validRequest(t, domain.DateOf(now).AddDays(1)))
	assert.ErrorIs(t, err, ErrSlotFull)
}

func TestExecute_SerializationFailureKeptInChain(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	serErr := fmt.Errorf("%w: InsertIfCapacity - execute insert: %w",
		reservationRepo.ErrExecQuery, &pq.Error{Code: "40001"})
	repo := &fakeRepo{insertErr: serErr}
	uc, _ := newTestUseCase(repo, fakeCapacity{capacity: 3}, nil, nil, now)

	_, err := uc.Execute(context.Background(), validRequest(t, domain.DateOf(now).AddDays(1)))
	assert.ErrorIs(t, err, ErrBackendUnavailable)

	// Код 40001 должен остаться различимым сквозь обертки usecase:
	// иначе менеджер транзакций не повторит сериализуемую транзакцию
	var pqErr *pq.Error
	require.True(t, errors.As(err, &pqErr))
	assert.Equal(t, "40001", string(pqErr.Code))
}

func TestExecute_StatementSerializationFailureRetried(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	serErr := fmt.Errorf("%w: InsertIfCapacity - execute insert: %w",
		reservationRepo.ErrExecQuery, &pq.Error{Code: "40001"})
	repo := &fakeRepo{insertErrQueue: []error{serErr, nil}}
	tx := &retryingTxManager{}
	uc := NewUseCase(repo, fakeCapacity{capacity: 3}, tx, nil, nil,
		fixedClock{now: now}, 14, domain.DefaultCapacity, nopLogger{})

	resp, err := uc.Execute(context.Background(), validRequest(t, domain.DateOf(now).AddDays(1)))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.MeetingReference)
	assert.Equal(t, 2, tx.attempts, "aborted statement must re-enter the retry loop")
	assert.Equal(t, 2, repo.insertN)
}

func TestExecute_ConcurrentSubmitsOneWinner(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	date := domain.DateOf(now).AddDays(1)

	repo := &raceRepo{}
	uc := NewUseCase(repo, fakeCapacity{capacity: 1}, nopTxManager{}, nil, nil,
		fixedClock{now: now}, 14, domain.DefaultCapacity, nopLogger{})

	const writers = 8
	reqs := make([]*Request, writers)
	for i := range reqs {
		req := validRequest(t, date)
		req.RequesterToken = fmt.Sprintf("user%d@example.com", i)
		req.Requester.Email = req.RequesterToken
		reqs[i] = req
	}

	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), reqs[i])
		}(i)
	}
	wg.Wait()

	var confirmed, full int
	for _, err := range errs {
		switch {
		case err == nil:
			confirmed++
		case errors.Is(err, ErrSlotFull):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, confirmed, "exactly one writer gets the last spot")
	assert.Equal(t, writers-1, full)
	assert.Len(t, repo.rows, 1, "capacity must never be exceeded")
}

func TestExecute_ConcurrentDuplicateReplayed(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	date := domain.DateOf(now).AddDays(1)

	existing := &domain.Reservation{
		ID:               9,
		MeetingReference: "meet-concurrent",
		Service:          "1",
		Slot:             mustSlot(t, "16:00 - 17:00"),
		Date:             date,
	}
	// Первый FindByKey пуст, вставка натыкается на дубликат,
	// повторный FindByKey возвращает созданную конкурентом запись
	repo := &fakeRepo{
		findQueue: []*domain.Reservation{nil, existing},
		insertErr: reservationRepo.ErrDuplicateKey,
	}
	uc, _ := newTestUseCase(repo, fakeCapacity{capacity: 3}, nil, nil, now)

	resp, err := uc.Execute(context.Background(), validRequest(t, date))
	require.NoError(t, err)
	assert.True(t, resp.Replayed)
	assert.Equal(t, "meet-concurrent", resp.MeetingReference)
	assert.Equal(t, 2, repo.findCalls)
}

func TestExecute_StoreFailure(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	repo := &fakeRepo{countErr: errors.New("connection refused")}
	uc, _ := newTestUseCase(repo, fakeCapacity{capacity: 3}, nil, nil, now)

	_, err := uc.Execute(context.Background(), validRequest(t, domain.DateOf(now).AddDays(1)))
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestExecute_NotifierFailureDoesNotFailBooking(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	repo := &fakeRepo{}
	sent := &fakeNotifier{sent: make(chan *notifier.Notification, 1), err: errors.New("smtp down")}
	uc, _ := newTestUseCase(repo, fakeCapacity{capacity: 3}, sent, nil, now)

	resp, err := uc.Execute(context.Background(), validRequest(t, domain.DateOf(now).AddDays(1)))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.MeetingReference)
}

func TestExecute_ValidationRejects(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	date := domain.DateOf(now).AddDays(1)
	repo := &fakeRepo{}
	uc, tx := newTestUseCase(repo, fakeCapacity{capacity: 3}, nil, nil, now)

	mutate := []struct {
		name string
		fn   func(r *Request)
	}{
		{"empty token", func(r *Request) { r.RequesterToken = "" }},
		{"unknown service", func(r *Request) { r.Service = "42" }},
		{"slot not in catalog", func(r *Request) { r.Slot = domain.SlotWindow{Start: "08:00", End: "09:00"} }},
		{"zero date", func(r *Request) { r.Date = domain.CalendarDate{} }},
		{"empty name", func(r *Request) { r.Requester.FullName = "   " }},
		{"zero age", func(r *Request) { r.Requester.Age = 0 }},
		{"absurd age", func(r *Request) { r.Requester.Age = 150 }},
		{"bad email", func(r *Request) { r.Requester.Email = "not-an-email" }},
		{"empty city", func(r *Request) { r.Requester.City = "" }},
	}
	for _, tc := range mutate {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest(t, date)
			tc.fn(req)
			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Zero(t, tx.calls)
}
