package admin

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TejjP/zyero-lead-accelerator/internal/store"
	"github.com/TejjP/zyero-lead-accelerator/internal/timeslot"
)

type stubStore struct {
	mu        sync.Mutex
	bookings  []store.BookingRecord
	listErr   error
	mutateErr error

	lastAction string
	lastFields map[string]string
	listCalls  int
}

func (s *stubStore) ListBookings(context.Context) ([]store.BookingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.bookings, nil
}

func (s *stubStore) Mutate(_ context.Context, action string, fields map[string]string) (*store.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mutateErr != nil {
		return nil, s.mutateErr
	}
	s.lastAction = action
	s.lastFields = fields
	return &store.MutationResult{Message: "ok"}, nil
}

func (s *stubStore) BusyTimes(context.Context, timeslot.DateKey) ([]string, error) {
	return []string{"10:00 AM"}, nil
}

func newTestConsole(t *testing.T, st *stubStore) *Console {
	t.Helper()
	logger := zerolog.Nop()
	c := NewConsole(st, nil, "letmein", &logger)
	c.settle = 0
	t.Cleanup(c.Wait)
	return c
}

func TestAuthenticate(t *testing.T) {
	c := newTestConsole(t, &stubStore{})

	assert.NoError(t, c.Authenticate("letmein"))
	assert.ErrorIs(t, c.Authenticate("wrong"), ErrAccessDenied)
	assert.ErrorIs(t, c.Authenticate(""), ErrAccessDenied)
}

func TestActionID(t *testing.T) {
	id := ActionID(store.ActionCancel, timeslot.DateKey("2026-06-10"), "10:00 AM")
	assert.Equal(t, "cancel-2026-06-10-10:00 AM", id)
}

func TestCancelRequiresConfirm(t *testing.T) {
	st := &stubStore{}
	c := newTestConsole(t, st)

	rec := store.BookingRecord{Date: "2026-06-10", Time: "10:00 AM", Name: "Ada Lovelace", Email: "ada@example.com"}
	_, err := c.Cancel(context.Background(), rec, false)
	assert.ErrorIs(t, err, ErrConfirmRequired)
	assert.Empty(t, st.lastAction, "unconfirmed cancel must not reach the store")

	result, err := c.Cancel(context.Background(), rec, true)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Message)
	assert.Equal(t, store.ActionCancel, st.lastAction)
	assert.Equal(t, map[string]string{
		"date":  "2026-06-10",
		"time":  "10:00 AM",
		"name":  "Ada Lovelace",
		"email": "ada@example.com",
	}, st.lastFields)
}

func TestReschedule(t *testing.T) {
	st := &stubStore{}
	c := newTestConsole(t, st)

	rec := store.BookingRecord{Date: "2026-06-10", Time: "10:00 AM", Name: "Ada Lovelace", Email: "ada@example.com"}

	_, err := c.Reschedule(context.Background(), rec, "", "11:00 AM")
	assert.ErrorIs(t, err, ErrIncompleteReschedule)
	_, err = c.Reschedule(context.Background(), rec, timeslot.DateKey("2026-06-12"), "")
	assert.ErrorIs(t, err, ErrIncompleteReschedule)

	_, err = c.Reschedule(context.Background(), rec, timeslot.DateKey("2026-06-12"), "11:00 AM")
	require.NoError(t, err)
	assert.Equal(t, store.ActionReschedule, st.lastAction)
	assert.Equal(t, map[string]string{
		"oldDate": "2026-06-10",
		"oldTime": "10:00 AM",
		"newDate": "2026-06-12",
		"newTime": "11:00 AM",
		"name":    "Ada Lovelace",
		"email":   "ada@example.com",
	}, st.lastFields)
}

func TestBlockToggle(t *testing.T) {
	st := &stubStore{}
	c := newTestConsole(t, st)
	date := timeslot.DateKey("2026-06-10")

	_, err := c.BlockToggle(context.Background(), date, "10:00 AM", false)
	require.NoError(t, err)
	assert.Equal(t, store.ActionBlock, st.lastAction, "free slot should be blocked")

	_, err = c.BlockToggle(context.Background(), date, "10:00 AM", true)
	require.NoError(t, err)
	assert.Equal(t, store.ActionUnblock, st.lastAction, "busy slot should be unblocked")
	assert.Equal(t, map[string]string{"date": "2026-06-10", "time": "10:00 AM"}, st.lastFields)
}

func TestMutationFailure(t *testing.T) {
	st := &stubStore{mutateErr: errors.New("store down")}
	c := newTestConsole(t, st)

	_, err := c.BlockToggle(context.Background(), timeslot.DateKey("2026-06-10"), "10:00 AM", false)
	assert.Error(t, err)
	c.Wait()
	assert.Zero(t, st.listCalls, "failed mutation must not schedule a refresh")
}

func TestMutationSchedulesRefresh(t *testing.T) {
	st := &stubStore{bookings: []store.BookingRecord{{Date: "2026-06-10", Time: "10:00 AM", Status: store.StatusConfirmed}}}
	c := newTestConsole(t, st)

	_, err := c.BlockToggle(context.Background(), timeslot.DateKey("2026-06-10"), "11:00 AM", false)
	require.NoError(t, err)
	c.Wait()

	st.mu.Lock()
	calls := st.listCalls
	st.mu.Unlock()
	assert.Equal(t, 1, calls, "mutation should re-read the listing after settling")
	assert.Len(t, c.Bookings(), 1)
}

func TestRefreshBookings(t *testing.T) {
	st := &stubStore{bookings: []store.BookingRecord{
		{Date: "2026-06-10", Time: "10:00 AM", Status: store.StatusConfirmed},
		{Date: "2026-06-10", Time: "11:00 AM", Status: store.StatusBlocked},
	}}
	c := newTestConsole(t, st)

	records, err := c.RefreshBookings(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Len(t, c.Bookings(), 2)

	st.mu.Lock()
	st.listErr = errors.New("store down")
	st.mu.Unlock()
	_, err = c.RefreshBookings(context.Background())
	assert.Error(t, err)
	assert.Len(t, c.Bookings(), 2, "failed refresh must keep the previous listing")
}
