package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bookora/bookora/libs/httpx"
)

// AvailabilitySnapshot serves the internal snapshot the booking service uses
// to compute slots: the business profile, the service duration, every
// recurring window matching the requested local weekday, and the blackouts
// overlapping the local day. Appointments are not included; the booking
// service owns those.
func (h *Handler) AvailabilitySnapshot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	businessID := strings.TrimSpace(q.Get("business_id"))
	serviceID := strings.TrimSpace(q.Get("service_id"))
	staffID := strings.TrimSpace(q.Get("staff_id"))
	dateStr := strings.TrimSpace(q.Get("date"))
	if businessID == "" || serviceID == "" || dateStr == "" {
		httpx.WriteError(w, http.StatusBadRequest, "business_id, service_id and date are required")
		return
	}
	if staffID == "any" {
		staffID = ""
	}

	biz, err := h.repo.GetOrCreateBusiness(r.Context(), businessID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load business")
		return
	}
	loc, err := time.LoadLocation(biz.Timezone)
	if err != nil {
		loc = time.UTC
	}

	date, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}
	dayStart := date
	dayEnd := date.AddDate(0, 0, 1)
	weekday := int(date.Weekday())

	svc, err := h.repo.GetService(r.Context(), businessID, serviceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			httpx.WriteError(w, http.StatusNotFound, "service not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load service")
		return
	}

	windows, err := h.repo.ListWindowsForWeekday(r.Context(), businessID, staffID, weekday)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load windows")
		return
	}
	blackouts, err := h.repo.ListBlackouts(r.Context(), businessID, staffID, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load blackouts")
		return
	}

	winOut := make([]map[string]any, 0, len(windows))
	for _, win := range windows {
		winOut = append(winOut, map[string]any{
			"staff_id":     win.StaffID,
			"weekday":      win.Weekday,
			"start_minute": win.StartMinute,
			"end_minute":   win.EndMinute,
		})
	}
	boOut := make([]map[string]any, 0, len(blackouts))
	for _, b := range blackouts {
		boOut = append(boOut, map[string]any{
			"staff_id":   b.StaffID,
			"start_time": b.StartTime.UTC().Format(time.RFC3339),
			"end_time":   b.EndTime.UTC().Format(time.RFC3339),
		})
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"business_id":      biz.ID,
		"timezone":         loc.String(),
		"date":             dateStr,
		"duration_minutes": svc.DurationMins,
		"deposit_cents":    biz.DepositCents,
		"currency":         biz.Currency,
		"day_start":        dayStart.UTC().Format(time.RFC3339),
		"day_end":          dayEnd.UTC().Format(time.RFC3339),
		"windows":          winOut,
		"blackouts":        boOut,
	})
}
