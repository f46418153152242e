package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bookora/bookora/libs/httpx"
	"github.com/bookora/bookora/services/booking-service/internal/directory"
	"github.com/bookora/bookora/services/booking-service/internal/model"
	"github.com/bookora/bookora/services/booking-service/internal/outbox"
	"github.com/bookora/bookora/services/booking-service/internal/slots"
	"github.com/bookora/bookora/services/booking-service/internal/storage"
)

type BookingHandler struct {
	repo       *storage.BookingRepository
	outboxRepo *outbox.Repository
	directory  directory.Provider
	logger     *slog.Logger
	now        func() time.Time
}

func NewBookingHandler(repo *storage.BookingRepository, outboxRepo *outbox.Repository, dir directory.Provider, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		directory:  dir,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type createBookingRequest struct {
	BusinessID    string `json:"business_id"`
	ServiceID     string `json:"service_id"`
	StaffID       string `json:"staff_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
}

type createBookingResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	DepositCents  int    `json:"deposit_cents,omitempty"`
}

type cancelBookingRequest struct {
	BusinessID    string `json:"business_id"`
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
}

type cancelBookingResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at"`
}

type listAppointmentItem struct {
	AppointmentID string `json:"appointment_id"`
	StaffID       string `json:"staff_id"`
	ServiceID     string `json:"service_id"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// Slots lists the open "HH:MM" start times (business-local) for one service,
// date and staff member. staff_id "any" unions every active staff member's
// availability.
func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	businessID := strings.TrimSpace(q.Get("business_id"))
	serviceID := strings.TrimSpace(q.Get("service_id"))
	staffID := strings.TrimSpace(q.Get("staff_id"))
	dateStr := strings.TrimSpace(q.Get("date"))
	if businessID == "" || serviceID == "" || dateStr == "" {
		httpx.WriteError(w, http.StatusBadRequest, "business_id, service_id and date are required")
		return
	}
	if staffID == "" {
		staffID = slots.AnyStaff
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	snap, err := h.directory.AvailabilitySnapshot(ctx, businessID, serviceID, staffID, dateStr)
	if err != nil {
		h.logger.Warn("availability snapshot fetch failed", "err", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "availability unavailable")
		return
	}

	req, windows, blackouts, err := slotInputs(snap, staffID, dateStr)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	queryStaff := staffID
	if queryStaff == slots.AnyStaff {
		queryStaff = ""
	}
	appts, err := h.repo.ListBlockingIntervals(r.Context(), businessID, queryStaff, snap.DayStart, snap.DayEnd)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load booked slots")
		return
	}
	bookings := make([]slots.Booking, 0, len(appts))
	for _, a := range appts {
		bookings = append(bookings, slots.Booking{
			StaffID: a.StaffID,
			Start:   a.StartTime,
			End:     a.EndTime,
			Status:  a.Status,
		})
	}

	starts, err := slots.Generate(req, windows, bookings, blackouts, h.now())
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid service duration")
		return
	}
	if starts == nil {
		starts = []string{}
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"business_id":      businessID,
		"service_id":       serviceID,
		"staff_id":         staffID,
		"date":             dateStr,
		"timezone":         snap.Timezone,
		"duration_minutes": snap.DurationMinutes,
		"slots":            starts,
	})
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	req.BusinessID = strings.TrimSpace(req.BusinessID)
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.StaffID = strings.TrimSpace(req.StaffID)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.Date = strings.TrimSpace(req.Date)
	req.StartTime = strings.TrimSpace(req.StartTime)

	if req.BusinessID == "" || req.ServiceID == "" || req.StaffID == "" || req.CustomerName == "" || req.Date == "" || req.StartTime == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	if req.StaffID == slots.AnyStaff {
		httpx.WriteError(w, http.StatusBadRequest, "staff_id must name a staff member")
		return
	}
	startMinute, err := parseClock(req.StartTime)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid start_time, want HH:MM")
		return
	}

	ctx := r.Context()
	snapCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	snap, err := h.directory.AvailabilitySnapshot(snapCtx, req.BusinessID, req.ServiceID, req.StaffID, req.Date)
	if err != nil {
		// Dependency failure: do not consume the idempotency key; the client
		// retries with the same key once the directory is back.
		h.logger.Warn("availability snapshot fetch failed", "err", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "availability unavailable")
		return
	}

	slotReq, windows, blackouts, err := slotInputs(snap, req.StaffID, req.Date)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	startTime := slotReq.Date.Add(time.Duration(startMinute) * time.Minute)
	endTime := startTime.Add(time.Duration(snap.DurationMinutes) * time.Minute)
	if !startTime.After(h.now()) {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "start_time must be in the future")
		return
	}

	appt := &model.Appointment{
		BusinessID:    req.BusinessID,
		ServiceID:     req.ServiceID,
		StaffID:       req.StaffID,
		CustomerName:  req.CustomerName,
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		StartTime:     startTime.UTC(),
		EndTime:       endTime.UTC(),
		Status:        model.StatusBooked,
	}
	if snap.DepositCents > 0 {
		appt.Status = model.StatusPendingPayment
	}

	tx, err := h.repo.Begin(ctx)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey != "" {
		rec, exists, err := h.repo.LockIdempotencyKey(ctx, tx, appt.BusinessID, idempotencyKey)
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, "failed to lock idempotency key")
			return
		}
		if exists && rec.StatusCode > 0 && len(rec.ResponsePayload) > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.ResponsePayload)
			return
		}
	}

	// The requested start must be one of the currently offered slots: inside a
	// window for this staff member, on the grid and clear of blackouts.
	// Existing appointments are checked separately below.
	if !h.startWithinOffer(slotReq, windows, blackouts, appt.StaffID, startMinute) {
		if idempotencyKey != "" {
			if h.finalizeIdempotencyError(ctx, tx, appt.BusinessID, idempotencyKey, http.StatusUnprocessableEntity, "requested time is not available") {
				_ = tx.Commit(ctx)
				return
			}
		}
		httpx.WriteError(w, http.StatusUnprocessableEntity, "requested time is not available")
		return
	}

	// Conflict recheck inside the transaction; the appointments exclusion
	// constraint is the final arbiter under concurrency.
	held, err := h.repo.ListBlockingIntervals(ctx, appt.BusinessID, appt.StaffID, snap.DayStart, snap.DayEnd)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to check conflicts")
		return
	}
	for _, other := range held {
		if slots.Overlaps(appt.StartTime, appt.EndTime, other.StartTime, other.EndTime) {
			httpx.WriteError(w, http.StatusConflict, "time slot already booked")
			return
		}
	}

	id, err := h.repo.Create(ctx, tx, appt)
	if err != nil {
		if storage.IsConflict(err) {
			httpx.WriteError(w, http.StatusConflict, "time slot already booked")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "failed to create appointment")
		return
	}
	appt.ID = id

	if snap.DepositCents > 0 {
		if err := h.emitDepositRequested(ctx, tx, appt, snap); err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, "failed to write outbox event")
			return
		}
	} else {
		if err := h.emitConfirmed(ctx, tx, appt); err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, "failed to write outbox event")
			return
		}
	}

	resp := createBookingResponse{
		AppointmentID: id,
		Status:        appt.Status,
		StartTime:     appt.StartTime.Format(time.RFC3339),
		EndTime:       appt.EndTime.Format(time.RFC3339),
	}
	if snap.DepositCents > 0 {
		resp.DepositCents = snap.DepositCents
	}
	respBody, err := json.Marshal(resp)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to build response")
		return
	}
	if idempotencyKey != "" {
		if err := h.repo.FinalizeIdempotency(ctx, tx, appt.BusinessID, idempotencyKey, id, http.StatusCreated, respBody); err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, "failed to finalize idempotency key")
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to commit")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(respBody)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.BusinessID == "" || req.AppointmentID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "business_id and appointment_id required")
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetAppointmentForUpdate(ctx, tx, req.BusinessID, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			httpx.WriteError(w, http.StatusNotFound, "appointment not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load appointment")
		return
	}

	if appt.Status == model.StatusCancelled && appt.CancelledAt != nil {
		// Cancelling twice is a no-op.
		h.writeCancelResponse(w, appt.ID, appt.CancelledAt.UTC())
		return
	}
	if appt.Status != model.StatusBooked && appt.Status != model.StatusPendingPayment {
		httpx.WriteError(w, http.StatusConflict, "appointment cannot be cancelled")
		return
	}

	cancelledAt, err := h.repo.CancelAppointment(ctx, tx, req.BusinessID, appt.ID, req.Reason)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to cancel appointment")
		return
	}

	cancelPayload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"business_id":    appt.BusinessID,
		"staff_id":       appt.StaffID,
		"service_id":     appt.ServiceID,
		"customer_email": appt.CustomerEmail,
		"customer_phone": appt.CustomerPhone,
		"start_time":     appt.StartTime.UTC().Format(time.RFC3339),
		"end_time":       appt.EndTime.UTC().Format(time.RFC3339),
		"cancelled_at":   cancelledAt.UTC().Format(time.RFC3339),
		"reason":         req.Reason,
	})
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to build cancellation event")
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     "booking.cancelled.v1",
		Payload:       cancelPayload,
	}); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to write outbox event")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to commit")
		return
	}
	h.writeCancelResponse(w, appt.ID, cancelledAt.UTC())
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	businessID := strings.TrimSpace(r.Header.Get("X-Business-Id"))
	if businessID == "" {
		businessID = strings.TrimSpace(r.URL.Query().Get("business_id"))
	}
	if businessID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "business_id required")
		return
	}

	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	appts, err := h.repo.ListByBusiness(r.Context(), businessID, limit)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}

	items := make([]listAppointmentItem, 0, len(appts))
	for _, appt := range appts {
		item := listAppointmentItem{
			AppointmentID: appt.ID,
			StaffID:       appt.StaffID,
			ServiceID:     appt.ServiceID,
			StartTime:     appt.StartTime.UTC().Format(time.RFC3339),
			EndTime:       appt.EndTime.UTC().Format(time.RFC3339),
			Status:        appt.Status,
			CreatedAt:     appt.CreatedAt.UTC().Format(time.RFC3339),
		}
		if appt.CancelledAt != nil {
			item.CancelledAt = appt.CancelledAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

// slotInputs converts a directory snapshot into generator inputs anchored at
// business-local midnight of the requested date.
func slotInputs(snap directory.Snapshot, staffID, dateStr string) (slots.Request, []slots.Window, []slots.Blackout, error) {
	loc, err := time.LoadLocation(snap.Timezone)
	if err != nil {
		loc = time.UTC
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		return slots.Request{}, nil, nil, errInvalidDate
	}

	var windows []slots.Window
	for _, w := range snap.Windows {
		win, err := slots.NewWindow(w.StaffID, time.Weekday(w.Weekday), w.StartMinute, w.EndMinute)
		if err != nil {
			continue
		}
		windows = append(windows, win)
	}
	var blackouts []slots.Blackout
	for _, b := range snap.Blackouts {
		blackouts = append(blackouts, slots.Blackout{StaffID: b.StaffID, Start: b.Start, End: b.End})
	}

	req := slots.Request{
		Date:            date,
		StaffID:         staffID,
		DurationMinutes: snap.DurationMinutes,
	}
	return req, windows, blackouts, nil
}

var errInvalidDate = &badRequestError{"invalid date, want YYYY-MM-DD"}

type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

// startWithinOffer re-runs the generator for the specific staff member and
// checks the requested start minute is among the offered slots. Existing
// appointments are checked separately under the transaction.
func (h *BookingHandler) startWithinOffer(req slots.Request, windows []slots.Window, blackouts []slots.Blackout, staffID string, startMinute int) bool {
	req.StaffID = staffID
	starts, err := slots.Generate(req, windows, nil, blackouts, h.now())
	if err != nil {
		return false
	}
	want := clockLabel(startMinute)
	for _, s := range starts {
		if s == want {
			return true
		}
	}
	return false
}

func (h *BookingHandler) emitConfirmed(ctx context.Context, tx pgx.Tx, appt *model.Appointment) error {
	payload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"business_id":    appt.BusinessID,
		"staff_id":       appt.StaffID,
		"service_id":     appt.ServiceID,
		"customer_name":  appt.CustomerName,
		"customer_email": appt.CustomerEmail,
		"customer_phone": appt.CustomerPhone,
		"start_time":     appt.StartTime.UTC().Format(time.RFC3339),
		"end_time":       appt.EndTime.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     "booking.confirmed.v1",
		Payload:       payload,
	})
}

func (h *BookingHandler) emitDepositRequested(ctx context.Context, tx pgx.Tx, appt *model.Appointment, snap directory.Snapshot) error {
	payload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"business_id":    appt.BusinessID,
		"service_id":     appt.ServiceID,
		"customer_name":  appt.CustomerName,
		"customer_email": appt.CustomerEmail,
		"amount_cents":   snap.DepositCents,
		"currency":       snap.Currency,
		"start_time":     appt.StartTime.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     "payments.deposit.requested.v1",
		Payload:       payload,
	})
}

func (h *BookingHandler) writeCancelResponse(w http.ResponseWriter, appointmentID string, cancelledAt time.Time) {
	httpx.WriteJSON(w, http.StatusOK, cancelBookingResponse{
		AppointmentID: appointmentID,
		Status:        model.StatusCancelled,
		CancelledAt:   cancelledAt.Format(time.RFC3339),
	})
}

func (h *BookingHandler) finalizeIdempotencyError(ctx context.Context, tx pgx.Tx, businessID, key string, statusCode int, msg string) bool {
	body, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return false
	}
	if err := h.repo.FinalizeIdempotency(ctx, tx, businessID, key, "", statusCode, body); err != nil {
		h.logger.Error("failed to finalize idempotency (error)", "err", err)
		return false
	}
	return true
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func clockLabel(minute int) string {
	return time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(minute) * time.Minute).Format("15:04")
}
