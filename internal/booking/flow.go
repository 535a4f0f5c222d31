package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/TejjP/zyero-lead-accelerator/internal/availability"
	"github.com/TejjP/zyero-lead-accelerator/internal/metrics"
	"github.com/TejjP/zyero-lead-accelerator/internal/store"
	"github.com/TejjP/zyero-lead-accelerator/internal/timeslot"
)

var (
	// ErrMissingContact is returned when step-1 required fields are empty.
	ErrMissingContact = errors.New("name, phone and email are required")
	// ErrNoSlotSelected is returned when submission is attempted without a
	// chosen date and time.
	ErrNoSlotSelected = errors.New("select a date and time first")
	// ErrSlotTaken is returned when the chosen slot is busy in the current
	// merged view.
	ErrSlotTaken = errors.New("that time slot is no longer available")
	// ErrBadState is returned for operations invalid in the current state.
	ErrBadState = errors.New("invalid flow state for this operation")
	// ErrUnknownSlot is returned for a slot outside the daily grid.
	ErrUnknownSlot = errors.New("unknown time slot")
)

// ExtraField is one qualification question a flow variant asks in step 2.
type ExtraField struct {
	Key   string
	Label string
}

// Options parameterizes a flow variant. The three public booking pages
// share everything but the redirect target and the qualification set.
type Options struct {
	Name            string
	SuccessRedirect string
	ExtraFields     []ExtraField
}

// Submitter writes a booking to the remote store.
type Submitter interface {
	CreateBooking(ctx context.Context, p store.BookingPayload) error
}

// Notifier is told about confirmed bookings. Implementations must not
// block the flow; failures are the notifier's problem.
type Notifier interface {
	BookingConfirmed(ctx context.Context, p store.BookingPayload)
}

// Confirmation carries the data the confirmation view displays.
type Confirmation struct {
	Date     timeslot.DateKey `json:"date"`
	Slot     string           `json:"time"`
	Display  string           `json:"display"`
	Redirect string           `json:"redirect"`
}

// Flow drives one booking page variant through the two-step submission.
type Flow struct {
	opts     Options
	store    Submitter
	avail    *availability.Service
	notifier Notifier
	fsm      *FSM
	logger   *zerolog.Logger
	now      func() time.Time
}

// NewFlow creates a flow variant. notifier may be nil.
func NewFlow(opts Options, submitter Submitter, avail *availability.Service, notifier Notifier, logger *zerolog.Logger) *Flow {
	return &Flow{
		opts:     opts,
		store:    submitter,
		avail:    avail,
		notifier: notifier,
		fsm:      NewFSM(),
		logger:   logger,
		now:      time.Now,
	}
}

// Options returns the variant configuration.
func (f *Flow) Options() Options { return f.opts }

// SelectSlot records the chosen date and time on the draft. The slot
// must be on the daily grid, the date bookable, and the slot free in the
// merged availability view. Selection also warms the cache for the
// following dates.
func (f *Flow) SelectSlot(ctx context.Context, sess *Session, date timeslot.DateKey, slot string) error {
	if !timeslot.IsKnown(slot) {
		return ErrUnknownSlot
	}
	today := timeslot.NewDateKey(f.now())
	if date.Before(today) {
		return fmt.Errorf("date %s is in the past", date)
	}
	if date.Weekday() == timeslot.ClosedWeekday {
		return fmt.Errorf("no availability on %s", date.Weekday())
	}

	busy, err := f.avail.Busy(ctx, date)
	if err != nil {
		return fmt.Errorf("check availability: %w", err)
	}
	if timeslot.Contains(busy, slot) {
		return ErrSlotTaken
	}

	sess.mu.Lock()
	sess.Draft.Date = date
	sess.Draft.Slot = slot
	sess.UpdatedAt = f.now()
	sess.mu.Unlock()

	f.avail.Prefetch(date)
	return nil
}

// SetContact fills the step-1 fields.
func (f *Flow) SetContact(sess *Session, name, email, phone, company string) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.Draft.Name = strings.TrimSpace(name)
	sess.Draft.Email = strings.TrimSpace(email)
	sess.Draft.Phone = strings.TrimSpace(phone)
	sess.Draft.Company = strings.TrimSpace(company)
	sess.UpdatedAt = f.now()
}

// SetAnswer records one qualification answer.
func (f *Flow) SetAnswer(sess *Session, key, value string) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.Draft.Answers[key] = value
	sess.UpdatedAt = f.now()
}

// Next advances Step1 to Step2, guarded by the required contact fields.
func (f *Flow) Next(sess *Session) error {
	if sess.GetState() != StateStep1 {
		return ErrBadState
	}
	sess.mu.Lock()
	missing := sess.Draft.Name == "" || sess.Draft.Phone == "" || sess.Draft.Email == ""
	sess.mu.Unlock()
	if missing {
		return ErrMissingContact
	}
	f.fsm.Transition(sess, StateStep2)
	return nil
}

// Back returns from Step2 to Step1 without losing any fields.
func (f *Flow) Back(sess *Session) error {
	if !f.fsm.Transition(sess, StateStep1) {
		return ErrBadState
	}
	return nil
}

// Submit issues the booking write. On success the slot is recorded in
// the session overlay and merged into the cache, and the session lands
// on the confirmation state. On failure the session returns to Step2
// with all fields intact so the visitor can retry.
func (f *Flow) Submit(ctx context.Context, sess *Session) (*Confirmation, error) {
	if sess.GetState() != StateStep2 {
		return nil, ErrBadState
	}

	sess.mu.Lock()
	draft := sess.Draft
	sess.mu.Unlock()

	if draft.Date == "" || draft.Slot == "" {
		return nil, ErrNoSlotSelected
	}

	f.fsm.Transition(sess, StateSubmitting)

	payload := f.buildPayload(draft)
	if err := f.store.CreateBooking(ctx, payload); err != nil {
		metrics.IncBookingSubmitted("error")
		f.fsm.Transition(sess, StateStep2)
		f.logger.Error().Err(err).Str("flow", f.opts.Name).Str("date", draft.Date.String()).Msg("booking submission failed")
		return nil, fmt.Errorf("submit booking: %w", err)
	}

	metrics.IncBookingSubmitted("ok")
	f.avail.Overlay().RecordLocalBooking(draft.Date, draft.Slot)
	f.avail.Cache().Append(draft.Date, draft.Slot)

	if f.notifier != nil {
		f.notifier.BookingConfirmed(ctx, payload)
	}

	f.fsm.Transition(sess, StateSuccess)
	f.logger.Info().Str("flow", f.opts.Name).Str("date", draft.Date.String()).Str("time", draft.Slot).Msg("booking confirmed")

	return &Confirmation{
		Date:     draft.Date,
		Slot:     draft.Slot,
		Display:  timeslot.FormatHuman(draft.Date, draft.Slot),
		Redirect: f.opts.SuccessRedirect,
	}, nil
}

// buildPayload packs the qualification answers into the company and
// description fields so they show up on the operators' calendar.
func (f *Flow) buildPayload(draft Draft) store.BookingPayload {
	parts := make([]string, 0, len(f.opts.ExtraFields))
	for _, field := range f.opts.ExtraFields {
		parts = append(parts, fmt.Sprintf("%s: %s", field.Label, draft.Answers[field.Key]))
	}
	details := strings.Join(parts, " | ")

	company := details
	if draft.Company != "" {
		company = draft.Company + " | " + details
	}

	return store.BookingPayload{
		Name:        draft.Name,
		Email:       draft.Email,
		Phone:       draft.Phone,
		Company:     company,
		Description: details,
		Date:        draft.Date.String(),
		Time:        draft.Slot,
		CreatedAt:   f.now().UTC().Format(time.RFC3339),
	}
}
