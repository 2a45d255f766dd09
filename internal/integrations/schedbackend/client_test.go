package schedbackend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func mustSlot(t *testing.T) domain.SlotWindow {
	t.Helper()
	slot, err := domain.ParseSlotWindow("14:00 - 15:00")
	require.NoError(t, err)
	return slot
}

func mustDate(t *testing.T, raw string) domain.CalendarDate {
	t.Helper()
	date, err := domain.ParseCalendarDate(raw)
	require.NoError(t, err)
	return date
}

func TestCalendarRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendar-range", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("servicio"))
		assert.Equal(t, "14:00 - 15:00", r.URL.Query().Get("horario"))
		assert.Equal(t, "2026-08-28", r.URL.Query().Get("start"))
		assert.Equal(t, "2026-08-29", r.URL.Query().Get("end"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"days":[
			{"date":"2026-08-28","used":2,"free":1,"available":true},
			{"date":"2026-08-29","used":3,"free":0,"available":false}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nopLogger{})
	days, err := client.CalendarRange(context.Background(), "1", mustSlot(t),
		mustDate(t, "2026-08-28"), mustDate(t, "2026-08-29"))
	require.NoError(t, err)

	require.Len(t, days, 2)
	assert.Equal(t, 2, days[0].Used)
	assert.False(t, days[1].Available)
}

func TestCalendarRange_MissingDaysFailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nopLogger{})
	_, err := client.CalendarRange(context.Background(), "1", mustSlot(t),
		mustDate(t, "2026-08-28"), mustDate(t, "2026-08-29"))
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestCalendarRange_MalformedBodyFailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"days": "mañana"`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nopLogger{})
	_, err := client.CalendarRange(context.Background(), "1", mustSlot(t),
		mustDate(t, "2026-08-28"), mustDate(t, "2026-08-29"))
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestCalendarRange_Non200FailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nopLogger{})
	_, err := client.CalendarRange(context.Background(), "1", mustSlot(t),
		mustDate(t, "2026-08-28"), mustDate(t, "2026-08-29"))
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestCalendarRange_TimeoutFailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"days":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 50*time.Millisecond, nopLogger{})
	_, err := client.CalendarRange(context.Background(), "1", mustSlot(t),
		mustDate(t, "2026-08-28"), mustDate(t, "2026-08-29"))
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestCountByDay_ConvertsUsage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"days":[
			{"date":"2026-08-28","used":2,"free":1,"available":true},
			{"date":"not-a-date","used":9,"free":0,"available":false}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nopLogger{})
	counts, err := client.CountByDay(context.Background(), "1", mustSlot(t),
		mustDate(t, "2026-08-28"), mustDate(t, "2026-08-29"))
	require.NoError(t, err)

	assert.Equal(t, map[domain.CalendarDate]int{mustDate(t, "2026-08-28"): 2}, counts)
}

func reserveRequest() *ReserveRequest {
	return &ReserveRequest{
		RequesterToken: "ana@example.com",
		Service:        "1",
		Slot:           "14:00 - 15:00",
		Date:           "2026-08-28",
		RequesterDetails: RequesterDetails{
			FullName: "Ana Torres",
			Age:      24,
			Email:    "ana@example.com",
			City:     "Lima",
		},
	}
}

func TestReserve_Confirmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reserve", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"meetingReference":"meet-123"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nopLogger{})
	resp, err := client.Reserve(context.Background(), reserveRequest())
	require.NoError(t, err)
	assert.Equal(t, "meet-123", resp.MeetingReference)
}

func TestReserve_EmptyReferenceFailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nopLogger{})
	_, err := client.Reserve(context.Background(), reserveRequest())
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestReserve_ConflictMapping(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"full", `{"reason":"Full"}`, ErrSlotFull},
		{"unavailable", `{"reason":"SlotUnavailable"}`, ErrSlotUnavailable},
		{"no body", ``, ErrSlotUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, 5*time.Second, nopLogger{})
			_, err := client.Reserve(context.Background(), reserveRequest())
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestReserve_BadRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nopLogger{})
	_, err := client.Reserve(context.Background(), reserveRequest())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReserve_TransportErrorNeverConfirms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"meetingReference":"meet-late"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 50*time.Millisecond, nopLogger{})
	resp, err := client.Reserve(context.Background(), reserveRequest())
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Nil(t, resp)
}
