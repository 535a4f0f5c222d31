// Package admin implements the operator console: listing bookings and
// cancelling, rescheduling or blocking slots against the booking store.
package admin

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/TejjP/zyero-lead-accelerator/internal/availability"
	"github.com/TejjP/zyero-lead-accelerator/internal/metrics"
	"github.com/TejjP/zyero-lead-accelerator/internal/store"
	"github.com/TejjP/zyero-lead-accelerator/internal/timeslot"
)

// SettleDelay is how long to wait after a mutation before re-reading,
// giving the store's internal processing time to finish.
const SettleDelay = 2 * time.Second

var (
	// ErrConfirmRequired is returned when a cancel is attempted without
	// operator confirmation.
	ErrConfirmRequired = errors.New("cancellation requires confirmation")
	// ErrIncompleteReschedule is returned when a reschedule is missing the
	// new date or time.
	ErrIncompleteReschedule = errors.New("reschedule requires a new date and time")
	// ErrAccessDenied is returned for a bad console password.
	ErrAccessDenied = errors.New("access denied")
)

// StoreAPI is the slice of the store client the console needs.
type StoreAPI interface {
	ListBookings(ctx context.Context) ([]store.BookingRecord, error)
	Mutate(ctx context.Context, action string, fields map[string]string) (*store.MutationResult, error)
	BusyTimes(ctx context.Context, date timeslot.DateKey) ([]string, error)
}

// Console is the operator-facing booking management service. The
// password check is a UI gate only; real access control has to live
// server-side in the store.
type Console struct {
	store    StoreAPI
	avail    *availability.Service
	password string
	settle   time.Duration
	logger   *zerolog.Logger

	mu       sync.RWMutex
	inflight map[string]bool
	bookings []store.BookingRecord

	wg sync.WaitGroup
}

// NewConsole creates the console. avail may be nil when no shared cache
// should be refreshed after mutations.
func NewConsole(storeAPI StoreAPI, avail *availability.Service, password string, logger *zerolog.Logger) *Console {
	return &Console{
		store:    storeAPI,
		avail:    avail,
		password: password,
		settle:   SettleDelay,
		logger:   logger,
		inflight: make(map[string]bool),
	}
}

// SetSettleDelay overrides the post-mutation settle delay.
func (c *Console) SetSettleDelay(d time.Duration) {
	c.settle = d
}

// Authenticate checks the operator password.
func (c *Console) Authenticate(password string) error {
	if subtle.ConstantTimeCompare([]byte(password), []byte(c.password)) != 1 {
		return ErrAccessDenied
	}
	return nil
}

// ActionID composes the in-flight identifier for a mutation, so the UI
// can disable just the control being acted on.
func ActionID(action string, date timeslot.DateKey, slot string) string {
	return fmt.Sprintf("%s-%s-%s", action, date, slot)
}

// InFlight reports whether the identified action is currently running.
func (c *Console) InFlight(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inflight[id]
}

// Bookings returns the last fetched listing.
func (c *Console) Bookings() []store.BookingRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]store.BookingRecord(nil), c.bookings...)
}

// RefreshBookings re-reads the full listing from the store.
func (c *Console) RefreshBookings(ctx context.Context) ([]store.BookingRecord, error) {
	records, err := c.store.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.bookings = records
	c.mu.Unlock()
	return records, nil
}

// BusySlots reads the store's busy list for a date, bypassing the
// public cache so the console always sees fresh state.
func (c *Console) BusySlots(ctx context.Context, date timeslot.DateKey) ([]string, error) {
	return c.store.BusyTimes(ctx, date)
}

// Cancel removes a booking. For BLOCKED placeholders this just removes
// the block. The confirm flag stands in for the operator confirmation
// dialog.
func (c *Console) Cancel(ctx context.Context, rec store.BookingRecord, confirm bool) (*store.MutationResult, error) {
	if !confirm {
		return nil, ErrConfirmRequired
	}
	date := timeslot.DateKey(rec.Date)
	return c.perform(ctx, store.ActionCancel, date, rec.Time, map[string]string{
		"date":  rec.Date,
		"time":  rec.Time,
		"name":  rec.Name,
		"email": rec.Email,
	}, date)
}

// Reschedule moves a booking to a new date and time. Both must be
// chosen; the write carries old and new coordinates plus identity.
func (c *Console) Reschedule(ctx context.Context, rec store.BookingRecord, newDate timeslot.DateKey, newSlot string) (*store.MutationResult, error) {
	if newDate == "" || newSlot == "" {
		return nil, ErrIncompleteReschedule
	}
	oldDate := timeslot.DateKey(rec.Date)
	return c.perform(ctx, store.ActionReschedule, newDate, newSlot, map[string]string{
		"oldDate": rec.Date,
		"oldTime": rec.Time,
		"newDate": newDate.String(),
		"newTime": newSlot,
		"name":    rec.Name,
		"email":   rec.Email,
	}, oldDate, newDate)
}

// BlockToggle blocks a free slot or unblocks a busy one. Blocking
// creates a BLOCKED placeholder record with no client identity.
func (c *Console) BlockToggle(ctx context.Context, date timeslot.DateKey, slot string, currentlyBusy bool) (*store.MutationResult, error) {
	action := store.ActionBlock
	if currentlyBusy {
		action = store.ActionUnblock
	}
	return c.perform(ctx, action, date, slot, map[string]string{
		"date": date.String(),
		"time": slot,
	}, date)
}

// perform runs one mutation with in-flight tracking, then schedules the
// settle-delayed refresh of the listing and affected dates.
func (c *Console) perform(ctx context.Context, action string, date timeslot.DateKey, slot string, fields map[string]string, affected ...timeslot.DateKey) (*store.MutationResult, error) {
	id := ActionID(action, date, slot)

	c.mu.Lock()
	if c.inflight[id] {
		c.mu.Unlock()
		return nil, fmt.Errorf("action %s already in progress", id)
	}
	c.inflight[id] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, id)
		c.mu.Unlock()
	}()

	result, err := c.store.Mutate(ctx, action, fields)
	if err != nil {
		metrics.IncAdminAction(action, "error")
		c.logger.Error().Err(err).Str("action", id).Msg("admin action failed")
		return nil, err
	}

	metrics.IncAdminAction(action, "ok")
	c.logger.Info().Str("action", id).Str("message", result.Message).Msg("admin action applied")
	c.scheduleRefresh(affected)
	return result, nil
}

// scheduleRefresh re-reads bookings and availability after the settle
// delay. Runs detached so the mutation response isn't held up.
func (c *Console) scheduleRefresh(dates []timeslot.DateKey) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.settle+30*time.Second)
		defer cancel()

		select {
		case <-time.After(c.settle):
		case <-ctx.Done():
			return
		}

		if _, err := c.RefreshBookings(ctx); err != nil {
			c.logger.Warn().Err(err).Msg("post-mutation booking refresh failed")
		}
		if c.avail != nil {
			for _, d := range dates {
				if err := c.avail.Refresh(ctx, d); err != nil {
					c.logger.Warn().Err(err).Str("date", d.String()).Msg("post-mutation availability refresh failed")
				}
			}
		}
	}()
}

// Wait blocks until pending post-mutation refreshes settle.
func (c *Console) Wait() {
	c.wg.Wait()
}
