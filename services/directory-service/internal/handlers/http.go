package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bookora/bookora/libs/httpx"
	"github.com/bookora/bookora/services/directory-service/internal/storage"
)

type Handler struct {
	repo *storage.Repository
}

func New(repo *storage.Repository) *Handler {
	return &Handler{repo: repo}
}

func businessIDFromHeader(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Business-Id"))
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFromHeader(r)
	if businessID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing X-Business-Id")
		return
	}

	b, err := h.repo.GetOrCreateBusiness(r.Context(), businessID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"business_id":   b.ID,
		"name":          b.Name,
		"timezone":      b.Timezone,
		"deposit_cents": b.DepositCents,
		"currency":      b.Currency,
	})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFromHeader(r)
	if businessID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing X-Business-Id")
		return
	}

	var req struct {
		Name         string `json:"name"`
		Timezone     string `json:"timezone"`
		DepositCents int    `json:"deposit_cents"`
		Currency     string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Timezone = strings.TrimSpace(req.Timezone)
	req.Currency = strings.ToLower(strings.TrimSpace(req.Currency))
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid timezone")
		return
	}
	if req.DepositCents < 0 {
		httpx.WriteError(w, http.StatusBadRequest, "deposit_cents must be >= 0")
		return
	}
	if req.Currency == "" {
		req.Currency = "usd"
	}

	err := h.repo.UpdateBusiness(r.Context(), storage.Business{
		ID:           businessID,
		Name:         req.Name,
		Timezone:     req.Timezone,
		DepositCents: req.DepositCents,
		Currency:     req.Currency,
	})
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFromHeader(r)
	if businessID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing X-Business-Id")
		return
	}

	var req struct {
		Name         string  `json:"name"`
		DurationMins int     `json:"duration_minutes"`
		Price        float64 `json:"price"`
		Description  string  `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" || req.DurationMins <= 0 || req.DurationMins > 24*60 {
		httpx.WriteError(w, http.StatusBadRequest, "name and duration_minutes required")
		return
	}

	id, err := h.repo.CreateService(r.Context(), storage.Service{
		BusinessID:   businessID,
		Name:         req.Name,
		DurationMins: req.DurationMins,
		Price:        strconv.FormatFloat(req.Price, 'f', 2, 64),
		Description:  req.Description,
	})
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to create service")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFromHeader(r)
	if businessID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing X-Business-Id")
		return
	}

	services, err := h.repo.ListServices(r.Context(), businessID, 100)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list services")
		return
	}
	out := make([]map[string]any, 0, len(services))
	for _, s := range services {
		out = append(out, map[string]any{
			"id":               s.ID,
			"name":             s.Name,
			"duration_minutes": s.DurationMins,
			"price":            s.Price,
			"description":      s.Description,
			"created_at":       s.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFromHeader(r)
	if businessID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing X-Business-Id")
		return
	}

	var req struct {
		Name     string `json:"name"`
		IsActive *bool  `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	id, err := h.repo.CreateStaff(r.Context(), businessID, req.Name, isActive)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to create staff")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFromHeader(r)
	if businessID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing X-Business-Id")
		return
	}

	staff, err := h.repo.ListStaff(r.Context(), businessID, false)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list staff")
		return
	}
	out := make([]map[string]any, 0, len(staff))
	for _, s := range staff {
		out = append(out, map[string]any{
			"id":        s.ID,
			"name":      s.Name,
			"is_active": s.IsActive,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) SetStaffActive(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFromHeader(r)
	if businessID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing X-Business-Id")
		return
	}
	staffID := strings.TrimSpace(r.URL.Query().Get("staff_id"))
	if staffID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "staff_id is required")
		return
	}

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if err := h.repo.SetStaffActive(r.Context(), businessID, staffID, req.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			httpx.WriteError(w, http.StatusNotFound, "staff not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "failed to update staff")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateWindow(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFromHeader(r)
	if businessID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing X-Business-Id")
		return
	}
	staffID := strings.TrimSpace(r.URL.Query().Get("staff_id"))
	if staffID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "staff_id is required")
		return
	}

	var req struct {
		Weekday     int `json:"weekday"`
		StartMinute int `json:"start_minute"`
		EndMinute   int `json:"end_minute"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Weekday < 0 || req.Weekday > 6 {
		httpx.WriteError(w, http.StatusBadRequest, "weekday must be between 0 and 6")
		return
	}
	if req.StartMinute < 0 || req.EndMinute > 1440 || req.StartMinute >= req.EndMinute {
		httpx.WriteError(w, http.StatusBadRequest, "invalid start_minute/end_minute")
		return
	}

	id, err := h.repo.CreateWindow(r.Context(), businessID, storage.AvailabilityWindow{
		StaffID:     staffID,
		Weekday:     req.Weekday,
		StartMinute: req.StartMinute,
		EndMinute:   req.EndMinute,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			httpx.WriteError(w, http.StatusNotFound, "staff not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "failed to create window")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) ListWindows(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFromHeader(r)
	if businessID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing X-Business-Id")
		return
	}
	staffID := strings.TrimSpace(r.URL.Query().Get("staff_id"))
	if staffID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "staff_id is required")
		return
	}

	windows, err := h.repo.ListWindows(r.Context(), businessID, staffID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list windows")
		return
	}
	out := make([]map[string]any, 0, len(windows))
	for _, win := range windows {
		out = append(out, map[string]any{
			"id":           win.ID,
			"staff_id":     win.StaffID,
			"weekday":      win.Weekday,
			"start_minute": win.StartMinute,
			"end_minute":   win.EndMinute,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) DeleteWindow(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFromHeader(r)
	if businessID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing X-Business-Id")
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		httpx.WriteError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.repo.DeleteWindow(r.Context(), businessID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			httpx.WriteError(w, http.StatusNotFound, "window not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "failed to delete window")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateBlackout(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFromHeader(r)
	if businessID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing X-Business-Id")
		return
	}
	staffID := strings.TrimSpace(r.URL.Query().Get("staff_id"))
	if staffID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "staff_id is required")
		return
	}

	var req struct {
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		Reason    string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartTime))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid start_time")
		return
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EndTime))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid end_time")
		return
	}
	if !end.After(start) {
		httpx.WriteError(w, http.StatusBadRequest, "end_time must be after start_time")
		return
	}

	id, err := h.repo.CreateBlackout(r.Context(), businessID, storage.Blackout{
		StaffID:   staffID,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		Reason:    strings.TrimSpace(req.Reason),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			httpx.WriteError(w, http.StatusNotFound, "staff not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "failed to create blackout")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) ListBlackouts(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFromHeader(r)
	if businessID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing X-Business-Id")
		return
	}
	staffID := strings.TrimSpace(r.URL.Query().Get("staff_id"))

	fromStr := strings.TrimSpace(r.URL.Query().Get("from"))
	toStr := strings.TrimSpace(r.URL.Query().Get("to"))
	if fromStr == "" || toStr == "" {
		httpx.WriteError(w, http.StatusBadRequest, "from and to are required (RFC3339)")
		return
	}
	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid from")
		return
	}
	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid to")
		return
	}
	if !to.After(from) {
		httpx.WriteError(w, http.StatusBadRequest, "to must be after from")
		return
	}

	items, err := h.repo.ListBlackouts(r.Context(), businessID, staffID, from.UTC(), to.UTC())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list blackouts")
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, b := range items {
		out = append(out, map[string]any{
			"id":         b.ID,
			"staff_id":   b.StaffID,
			"start_time": b.StartTime.UTC().Format(time.RFC3339),
			"end_time":   b.EndTime.UTC().Format(time.RFC3339),
			"reason":     b.Reason,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) DeleteBlackout(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFromHeader(r)
	if businessID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing X-Business-Id")
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		httpx.WriteError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.repo.DeleteBlackout(r.Context(), businessID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			httpx.WriteError(w, http.StatusNotFound, "blackout not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "failed to delete blackout")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	businessID := strings.TrimSpace(r.URL.Query().Get("business_id"))
	if businessID == "" {
		businessID = businessIDFromHeader(r)
	}
	if businessID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "business_id is required")
		return
	}

	var req struct {
		CustomerName string `json:"customer_name"`
		Rating       int    `json:"rating"`
		Comment      string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.Comment = strings.TrimSpace(req.Comment)
	if req.Rating < 1 || req.Rating > 5 {
		httpx.WriteError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	if req.CustomerName == "" {
		req.CustomerName = "anonymous"
	}

	id, err := h.repo.CreateReview(r.Context(), storage.Review{
		BusinessID:   businessID,
		CustomerName: req.CustomerName,
		Rating:       req.Rating,
		Comment:      req.Comment,
	})
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to create review")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	businessID := strings.TrimSpace(r.URL.Query().Get("business_id"))
	if businessID == "" {
		businessID = businessIDFromHeader(r)
	}
	if businessID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "business_id is required")
		return
	}

	reviews, err := h.repo.ListReviews(r.Context(), businessID, 50)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}
	out := make([]map[string]any, 0, len(reviews))
	for _, rev := range reviews {
		out = append(out, map[string]any{
			"id":            rev.ID,
			"customer_name": rev.CustomerName,
			"rating":        rev.Rating,
			"comment":       rev.Comment,
			"created_at":    rev.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFromHeader(r)
	if businessID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing X-Business-Id")
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		httpx.WriteError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.repo.DeleteReview(r.Context(), businessID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			httpx.WriteError(w, http.StatusNotFound, "review not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "failed to delete review")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
