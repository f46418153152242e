package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Snapshot is everything the slot generator needs for one business-local day:
// timezone, service duration, deposit policy, recurring windows for the day's
// weekday and the blackouts overlapping the day. Appointments are not part of
// the snapshot; the booking service reads those from its own tables.
type Snapshot struct {
	BusinessID      string
	Timezone        string
	DurationMinutes int
	DepositCents    int
	Currency        string
	DayStart        time.Time
	DayEnd          time.Time
	Windows         []SnapshotWindow
	Blackouts       []SnapshotBlackout
}

type SnapshotWindow struct {
	StaffID     string
	Weekday     int
	StartMinute int
	EndMinute   int
}

type SnapshotBlackout struct {
	StaffID string
	Start   time.Time
	End     time.Time
}

type Provider interface {
	AvailabilitySnapshot(ctx context.Context, businessID, serviceID, staffID, date string) (Snapshot, error)
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type wireSnapshot struct {
	BusinessID      string `json:"business_id"`
	Timezone        string `json:"timezone"`
	DurationMinutes int    `json:"duration_minutes"`
	DepositCents    int    `json:"deposit_cents"`
	Currency        string `json:"currency"`
	DayStart        string `json:"day_start"`
	DayEnd          string `json:"day_end"`
	Windows         []struct {
		StaffID     string `json:"staff_id"`
		Weekday     int    `json:"weekday"`
		StartMinute int    `json:"start_minute"`
		EndMinute   int    `json:"end_minute"`
	} `json:"windows"`
	Blackouts []struct {
		StaffID   string `json:"staff_id"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	} `json:"blackouts"`
}

func (c *HTTPClient) AvailabilitySnapshot(ctx context.Context, businessID, serviceID, staffID, date string) (Snapshot, error) {
	q := url.Values{}
	q.Set("business_id", businessID)
	q.Set("service_id", serviceID)
	q.Set("staff_id", staffID)
	q.Set("date", date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/internal/v1/availability?"+q.Encode(), nil)
	if err != nil {
		return Snapshot{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("directory: availability snapshot returned %d", resp.StatusCode)
	}

	var wire wireSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return Snapshot{}, fmt.Errorf("directory: decode snapshot: %w", err)
	}
	return fromWire(wire)
}

func fromWire(wire wireSnapshot) (Snapshot, error) {
	snap := Snapshot{
		BusinessID:      wire.BusinessID,
		Timezone:        wire.Timezone,
		DurationMinutes: wire.DurationMinutes,
		DepositCents:    wire.DepositCents,
		Currency:        wire.Currency,
	}
	var err error
	if snap.DayStart, err = time.Parse(time.RFC3339, wire.DayStart); err != nil {
		return Snapshot{}, fmt.Errorf("directory: invalid day_start: %w", err)
	}
	if snap.DayEnd, err = time.Parse(time.RFC3339, wire.DayEnd); err != nil {
		return Snapshot{}, fmt.Errorf("directory: invalid day_end: %w", err)
	}
	for _, w := range wire.Windows {
		snap.Windows = append(snap.Windows, SnapshotWindow{
			StaffID:     w.StaffID,
			Weekday:     w.Weekday,
			StartMinute: w.StartMinute,
			EndMinute:   w.EndMinute,
		})
	}
	for _, b := range wire.Blackouts {
		start, err := time.Parse(time.RFC3339, b.StartTime)
		if err != nil {
			return Snapshot{}, fmt.Errorf("directory: invalid blackout start_time: %w", err)
		}
		end, err := time.Parse(time.RFC3339, b.EndTime)
		if err != nil {
			return Snapshot{}, fmt.Errorf("directory: invalid blackout end_time: %w", err)
		}
		snap.Blackouts = append(snap.Blackouts, SnapshotBlackout{StaffID: b.StaffID, Start: start, End: end})
	}
	return snap, nil
}
