package get_availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
	capacityRepo "github.com/NiloFidel/Reservas-BookingService/internal/infra/storage/capacity"
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

type fakeCountSource struct {
	counts map[domain.CalendarDate]int
	err    error
	calls  int
}

func (f *fakeCountSource) CountByDay(_ context.Context, _ string, _ domain.SlotWindow, start, end domain.CalendarDate) (map[domain.CalendarDate]int, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := map[domain.CalendarDate]int{}
	for _, d := range domain.DatesBetween(start, end) {
		if used, ok := f.counts[d]; ok {
			out[d] = used
		}
	}
	return out, nil
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

type fakeCache struct {
	counts   map[domain.CalendarDate]int
	getErr   error
	setErr   error
	setCalls int
}

func (f *fakeCache) GetCounts(_ context.Context, _ string, _ domain.SlotWindow, dates []domain.CalendarDate) (map[domain.CalendarDate]int, []domain.CalendarDate, error) {
	if f.getErr != nil {
		return nil, nil, f.getErr
	}
	hits := map[domain.CalendarDate]int{}
	var missing []domain.CalendarDate
	for _, d := range dates {
		if used, ok := f.counts[d]; ok {
			hits[d] = used
		} else {
			missing = append(missing, d)
		}
	}
	return hits, missing, nil
}

func (f *fakeCache) SetCounts(_ context.Context, _ string, _ domain.SlotWindow, dates []domain.CalendarDate, counts map[domain.CalendarDate]int) error {
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	for _, d := range dates {
		f.counts[d] = counts[d]
	}
	return nil
}

func mustSlot(t *testing.T, raw string) domain.SlotWindow {
	t.Helper()
	slot, err := domain.ParseSlotWindow(raw)
	require.NoError(t, err)
	return slot
}

func newTestUseCase(source DayCountSource, cap CapacityProvider, cache CountsCache, now time.Time) *UseCase {
	return NewUseCase(source, cap, cache, fixedClock{now: now}, 14, domain.DefaultCapacity, nopLogger{})
}

func TestExecute_RollingWindow(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	source := &fakeCountSource{counts: map[domain.CalendarDate]int{}}
	uc := newTestUseCase(source, fakeCapacity{capacity: 3}, nil, now)

	resp, err := uc.Execute(context.Background(), &Request{
		Service: "1",
		Slot:    mustSlot(t, "14:00 - 15:00"),
	})
	require.NoError(t, err)

	require.Len(t, resp.Days, 14)
	assert.Equal(t, "2026-08-28", resp.Days[0].Date.String())
	assert.Equal(t, "2026-09-10", resp.Days[13].Date.String())
	for i := 1; i < len(resp.Days); i++ {
		assert.True(t, resp.Days[i-1].Date.Before(resp.Days[i].Date))
	}
}

func TestExecute_AvailabilityArithmetic(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	today := domain.DateOf(now)
	source := &fakeCountSource{counts: map[domain.CalendarDate]int{
		today.AddDays(1): 1,
		today.AddDays(2): 3,
	}}
	uc := newTestUseCase(source, fakeCapacity{capacity: 3}, nil, now)

	resp, err := uc.Execute(context.Background(), &Request{
		Service: "2",
		Slot:    mustSlot(t, "16:00 - 17:00"),
	})
	require.NoError(t, err)

	partial := resp.Days[1]
	assert.Equal(t, 1, partial.Used)
	assert.Equal(t, 2, partial.Free)
	assert.True(t, partial.Available)

	full := resp.Days[2]
	assert.Equal(t, 3, full.Used)
	assert.Equal(t, 0, full.Free)
	assert.False(t, full.Available)

	untouched := resp.Days[3]
	assert.Equal(t, 0, untouched.Used)
	assert.Equal(t, 3, untouched.Free)
	assert.True(t, untouched.Available)
}

func TestExecute_TodayElapsedSlot(t *testing.T) {
	// 15:00 - слот 14:00 уже начался
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	source := &fakeCountSource{counts: map[domain.CalendarDate]int{}}
	uc := newTestUseCase(source, fakeCapacity{capacity: 3}, nil, now)

	resp, err := uc.Execute(context.Background(), &Request{
		Service: "1",
		Slot:    mustSlot(t, "14:00 - 15:00"),
	})
	require.NoError(t, err)

	assert.False(t, resp.Days[0].Available, "today must be unavailable once the slot started")
	assert.Equal(t, 3, resp.Days[0].Free, "free spots are reported even for an elapsed slot")
	assert.True(t, resp.Days[1].Available, "tomorrow is not affected")
}

func TestExecute_TodayBeforeSlotStart(t *testing.T) {
	now := time.Date(2026, 8, 28, 13, 59, 0, 0, time.UTC)
	source := &fakeCountSource{counts: map[domain.CalendarDate]int{}}
	uc := newTestUseCase(source, fakeCapacity{capacity: 3}, nil, now)

	resp, err := uc.Execute(context.Background(), &Request{
		Service: "1",
		Slot:    mustSlot(t, "14:00 - 15:00"),
	})
	require.NoError(t, err)
	assert.True(t, resp.Days[0].Available)
}

func TestExecute_ExplicitRange(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	today := domain.DateOf(now)
	source := &fakeCountSource{counts: map[domain.CalendarDate]int{}}
	uc := newTestUseCase(source, fakeCapacity{capacity: 3}, nil, now)

	resp, err := uc.Execute(context.Background(), &Request{
		Service:   "1",
		Slot:      mustSlot(t, "14:00 - 15:00"),
		StartDate: today.AddDays(2),
		EndDate:   today.AddDays(4),
	})
	require.NoError(t, err)
	require.Len(t, resp.Days, 3)
	assert.Equal(t, today.AddDays(2), resp.Days[0].Date)
}

func TestExecute_PastDatesClamped(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	today := domain.DateOf(now)
	source := &fakeCountSource{counts: map[domain.CalendarDate]int{}}
	uc := newTestUseCase(source, fakeCapacity{capacity: 3}, nil, now)

	// Диапазон начинается в прошлом - прошедшие дни отбрасываются
	resp, err := uc.Execute(context.Background(), &Request{
		Service:   "1",
		Slot:      mustSlot(t, "14:00 - 15:00"),
		StartDate: today.AddDays(-3),
		EndDate:   today.AddDays(1),
	})
	require.NoError(t, err)
	require.Len(t, resp.Days, 2)
	assert.Equal(t, today, resp.Days[0].Date)
}

func TestExecute_RangeFullyInPast(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	today := domain.DateOf(now)
	source := &fakeCountSource{counts: map[domain.CalendarDate]int{}}
	uc := newTestUseCase(source, fakeCapacity{capacity: 3}, nil, now)

	resp, err := uc.Execute(context.Background(), &Request{
		Service:   "1",
		Slot:      mustSlot(t, "14:00 - 15:00"),
		StartDate: today.AddDays(-5),
		EndDate:   today.AddDays(-2),
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Days)
	assert.Zero(t, source.calls)
}

func TestExecute_InvalidInput(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	today := domain.DateOf(now)
	source := &fakeCountSource{counts: map[domain.CalendarDate]int{}}
	uc := newTestUseCase(source, fakeCapacity{capacity: 3}, nil, now)
	slot := mustSlot(t, "14:00 - 15:00")

	cases := []struct {
		name string
		req  *Request
	}{
		{"unknown service", &Request{Service: "99", Slot: slot}},
		{"missing slot", &Request{Service: "1"}},
		{"slot not in catalog", &Request{Service: "1", Slot: domain.SlotWindow{Start: "09:00", End: "10:00"}}},
		{"only start bound", &Request{Service: "1", Slot: slot, StartDate: today}},
		{"end before start", &Request{Service: "1", Slot: slot, StartDate: today.AddDays(2), EndDate: today}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tc.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Zero(t, source.calls, "validation failures must not reach the source")
}

func TestExecute_SourceFailureFailsClosed(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	source := &fakeCountSource{err: errors.New("connection refused")}
	uc := newTestUseCase(source, fakeCapacity{capacity: 3}, nil, now)

	_, err := uc.Execute(context.Background(), &Request{
		Service: "1",
		Slot:    mustSlot(t, "14:00 - 15:00"),
	})
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestExecute_CapacityRuleNotFoundFallsBack(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	source := &fakeCountSource{counts: map[domain.CalendarDate]int{}}
	uc := newTestUseCase(source, fakeCapacity{err: capacityRepo.ErrRuleNotFound}, nil, now)

	resp, err := uc.Execute(context.Background(), &Request{
		Service: "1",
		Slot:    mustSlot(t, "14:00 - 15:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCapacity, resp.Days[0].Capacity)
}

func TestExecute_CapacityFailureFailsClosed(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	source := &fakeCountSource{counts: map[domain.CalendarDate]int{}}
	uc := newTestUseCase(source, fakeCapacity{err: errors.New("db down")}, nil, now)

	_, err := uc.Execute(context.Background(), &Request{
		Service: "1",
		Slot:    mustSlot(t, "14:00 - 15:00"),
	})
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestExecute_CacheHitSkipsSource(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	today := domain.DateOf(now)

	cached := map[domain.CalendarDate]int{}
	for _, d := range domain.DatesBetween(today, today.AddDays(13)) {
		cached[d] = 1
	}

	source := &fakeCountSource{counts: map[domain.CalendarDate]int{}}
	cache := &fakeCache{counts: cached}
	uc := newTestUseCase(source, fakeCapacity{capacity: 3}, cache, now)

	resp, err := uc.Execute(context.Background(), &Request{
		Service: "1",
		Slot:    mustSlot(t, "14:00 - 15:00"),
	})
	require.NoError(t, err)
	assert.Zero(t, source.calls)
	assert.Equal(t, 1, resp.Days[0].Used)
}

func TestExecute_CacheMissFetchesAndBackfills(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	today := domain.DateOf(now)

	source := &fakeCountSource{counts: map[domain.CalendarDate]int{today.AddDays(1): 2}}
	cache := &fakeCache{counts: map[domain.CalendarDate]int{}}
	uc := newTestUseCase(source, fakeCapacity{capacity: 3}, cache, now)

	resp, err := uc.Execute(context.Background(), &Request{
		Service: "1",
		Slot:    mustSlot(t, "14:00 - 15:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, 1, cache.setCalls)
	assert.Equal(t, 2, resp.Days[1].Used)
}

func TestExecute_CacheFailureFallsBackToSource(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	source := &fakeCountSource{counts: map[domain.CalendarDate]int{}}
	cache := &fakeCache{getErr: errors.New("redis down")}
	uc := newTestUseCase(source, fakeCapacity{capacity: 3}, cache, now)

	_, err := uc.Execute(context.Background(), &Request{
		Service: "1",
		Slot:    mustSlot(t, "14:00 - 15:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
}
