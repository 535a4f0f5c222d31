package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/TejjP/zyero-lead-accelerator/internal/admin"
	"github.com/TejjP/zyero-lead-accelerator/internal/availability"
	"github.com/TejjP/zyero-lead-accelerator/internal/booking"
	"github.com/TejjP/zyero-lead-accelerator/internal/store"
	"github.com/TejjP/zyero-lead-accelerator/internal/timeslot"
)

type handlers struct {
	avail    *availability.Service
	flows    map[string]*booking.Flow
	sessions *booking.SessionStore
	console  *admin.Console
	logger   *zerolog.Logger
}

// getAvailability returns the merged busy list for a date. Selecting a
// date is also the prefetch trigger for the following days.
func (h *handlers) getAvailability(w http.ResponseWriter, r *http.Request) {
	date, err := timeslot.ParseDateKey(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}

	busy, err := h.avail.Busy(r.Context(), date)
	if err != nil {
		// No prior entry and the first fetch failed; the client may retry.
		writeError(w, http.StatusBadGateway, "availability_unavailable", "could not fetch current availability")
		return
	}
	h.avail.Prefetch(date)

	writeJSON(w, http.StatusOK, availability.Snapshot{DateKey: date, BusySlots: busy})
}

func (h *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	if _, ok := h.flows[req.Flow]; !ok {
		writeError(w, http.StatusNotFound, "unknown_flow", fmt.Sprintf("unknown flow %q", req.Flow))
		return
	}
	sess := h.sessions.Create()
	h.sessions.Bind(sess.ID, req.Flow)
	writeJSON(w, http.StatusCreated, SessionResponse{SessionID: sess.ID, Flow: req.Flow, State: string(sess.GetState())})
}

func (h *handlers) selectSlot(w http.ResponseWriter, r *http.Request) {
	flow, sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SelectSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	date, err := timeslot.ParseDateKey(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}
	if err := flow.SelectSlot(r.Context(), sess, date, req.Time); err != nil {
		handleFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{SessionID: sess.ID, State: string(sess.GetState())})
}

func (h *handlers) submitContact(w http.ResponseWriter, r *http.Request) {
	flow, sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	flow.SetContact(sess, req.Name, req.Email, req.Phone, req.Company)
	if err := flow.Next(sess); err != nil {
		handleFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{SessionID: sess.ID, State: string(sess.GetState())})
}

func (h *handlers) backToContact(w http.ResponseWriter, r *http.Request) {
	flow, sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := flow.Back(sess); err != nil {
		handleFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{SessionID: sess.ID, State: string(sess.GetState())})
}

func (h *handlers) submitBooking(w http.ResponseWriter, r *http.Request) {
	flow, sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	for k, v := range req.Answers {
		flow.SetAnswer(sess, k, v)
	}
	conf, err := flow.Submit(r.Context(), sess)
	if err != nil {
		handleFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

// createBooking drives the whole flow in one request, for clients that
// collect everything before submitting. The same guards apply.
func (h *handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	flow, ok := h.flows[req.Flow]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_flow", fmt.Sprintf("unknown flow %q", req.Flow))
		return
	}
	date, err := timeslot.ParseDateKey(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}

	sess := h.sessions.Create()
	defer h.sessions.Delete(sess.ID)

	if err := flow.SelectSlot(r.Context(), sess, date, req.Time); err != nil {
		handleFlowError(w, err)
		return
	}
	flow.SetContact(sess, req.Name, req.Email, req.Phone, req.Company)
	if err := flow.Next(sess); err != nil {
		handleFlowError(w, err)
		return
	}
	for k, v := range req.Answers {
		flow.SetAnswer(sess, k, v)
	}
	conf, err := flow.Submit(r.Context(), sess)
	if err != nil {
		handleFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, conf)
}

func (h *handlers) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	if err := h.console.Authenticate(req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "access_denied", "access denied")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) adminBookings(w http.ResponseWriter, r *http.Request) {
	records, err := h.console.RefreshBookings(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "fetch_failed", "could not fetch bookings")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]store.BookingRecord{"bookings": records})
}

func (h *handlers) adminAvailability(w http.ResponseWriter, r *http.Request) {
	date, err := timeslot.ParseDateKey(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}
	busy, err := h.console.BusySlots(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusBadGateway, "fetch_failed", "could not fetch busy slots")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "bookedTimes": busy})
}

func (h *handlers) adminAction(w http.ResponseWriter, r *http.Request) {
	var req AdminActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	var (
		result *store.MutationResult
		err    error
	)
	switch req.Action {
	case store.ActionCancel:
		rec := store.BookingRecord{Date: req.Date, Time: req.Time, Name: req.Name, Email: req.Email}
		result, err = h.console.Cancel(r.Context(), rec, req.Confirm)
	case store.ActionReschedule:
		rec := store.BookingRecord{Date: req.Date, Time: req.Time, Name: req.Name, Email: req.Email}
		var newDate timeslot.DateKey
		newDate, err = timeslot.ParseDateKey(req.NewDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
			return
		}
		result, err = h.console.Reschedule(r.Context(), rec, newDate, req.NewTime)
	case store.ActionBlock, store.ActionUnblock:
		var date timeslot.DateKey
		date, err = timeslot.ParseDateKey(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
			return
		}
		result, err = h.console.BlockToggle(r.Context(), date, req.Time, req.Action == store.ActionUnblock)
	default:
		writeError(w, http.StatusBadRequest, "unknown_action", fmt.Sprintf("unknown action %q", req.Action))
		return
	}

	if err != nil {
		handleAdminError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": result.Message, "details": result.Details})
}

func (h *handlers) adminExport(w http.ResponseWriter, r *http.Request) {
	records, err := h.console.RefreshBookings(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "fetch_failed", "could not fetch bookings")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bookings-%s.xlsx", time.Now().Format("2006-01-02")))
	if err := admin.WriteBookingsXLSX(w, records); err != nil {
		h.logger.Error().Err(err).Msg("bookings export failed")
	}
}

func (h *handlers) session(w http.ResponseWriter, r *http.Request) (*booking.Flow, *booking.Session, bool) {
	id := chi.URLParam(r, "id")
	sess := h.sessions.Get(id)
	if sess == nil {
		writeError(w, http.StatusNotFound, "unknown_session", "session not found or expired")
		return nil, nil, false
	}
	flow, ok := h.flows[h.sessions.FlowName(id)]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_flow", "session has no flow bound")
		return nil, nil, false
	}
	return flow, sess, true
}

func handleFlowError(w http.ResponseWriter, err error) {
	var remoteErr *store.RemoteError
	switch {
	case errors.Is(err, booking.ErrMissingContact):
		writeError(w, http.StatusBadRequest, "missing_fields", err.Error())
	case errors.Is(err, booking.ErrNoSlotSelected):
		writeError(w, http.StatusBadRequest, "no_slot_selected", err.Error())
	case errors.Is(err, booking.ErrUnknownSlot):
		writeError(w, http.StatusBadRequest, "unknown_slot", err.Error())
	case errors.Is(err, booking.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_taken", err.Error())
	case errors.Is(err, booking.ErrBadState):
		writeError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.As(err, &remoteErr):
		writeError(w, http.StatusBadGateway, "store_rejected", remoteErr.Message)
	default:
		writeError(w, http.StatusBadGateway, "submission_failed", "please try again or contact us directly")
	}
}

func handleAdminError(w http.ResponseWriter, err error) {
	var remoteErr *store.RemoteError
	switch {
	case errors.Is(err, admin.ErrConfirmRequired):
		writeError(w, http.StatusBadRequest, "confirm_required", err.Error())
	case errors.Is(err, admin.ErrIncompleteReschedule):
		writeError(w, http.StatusBadRequest, "incomplete_reschedule", err.Error())
	case errors.As(err, &remoteErr):
		writeError(w, http.StatusBadGateway, "store_rejected", remoteErr.Message)
	default:
		writeError(w, http.StatusBadGateway, "action_failed", err.Error())
	}
}
