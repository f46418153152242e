package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClient_AvailabilitySnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/v1/availability" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("business_id") != "biz-1" || q.Get("service_id") != "svc-1" || q.Get("staff_id") != "any" || q.Get("date") != "2026-03-02" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"business_id": "biz-1",
			"timezone": "America/New_York",
			"date": "2026-03-02",
			"duration_minutes": 45,
			"deposit_cents": 1500,
			"currency": "usd",
			"day_start": "2026-03-02T05:00:00Z",
			"day_end": "2026-03-03T05:00:00Z",
			"windows": [
				{"staff_id": "staff-a", "weekday": 1, "start_minute": 540, "end_minute": 1020}
			],
			"blackouts": [
				{"staff_id": "staff-a", "start_time": "2026-03-02T17:00:00Z", "end_time": "2026-03-02T18:00:00Z"}
			]
		}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	snap, err := client.AvailabilitySnapshot(ctx, "biz-1", "svc-1", "any", "2026-03-02")
	if err != nil {
		t.Fatalf("availability snapshot: %v", err)
	}
	if snap.Timezone != "America/New_York" {
		t.Fatalf("unexpected timezone: %s", snap.Timezone)
	}
	if snap.DurationMinutes != 45 {
		t.Fatalf("unexpected duration: %d", snap.DurationMinutes)
	}
	if snap.DepositCents != 1500 {
		t.Fatalf("unexpected deposit: %d", snap.DepositCents)
	}
	if len(snap.Windows) != 1 || snap.Windows[0].StartMinute != 540 {
		t.Fatalf("unexpected windows: %+v", snap.Windows)
	}
	if len(snap.Blackouts) != 1 {
		t.Fatalf("unexpected blackouts: %+v", snap.Blackouts)
	}
	wantStart := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	if !snap.Blackouts[0].Start.Equal(wantStart) {
		t.Fatalf("unexpected blackout start: %v", snap.Blackouts[0].Start)
	}
	if !snap.DayEnd.After(snap.DayStart) {
		t.Fatalf("day_end must be after day_start")
	}
}

func TestHTTPClient_AvailabilitySnapshotServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	if _, err := client.AvailabilitySnapshot(context.Background(), "biz-1", "svc-1", "", "2026-03-02"); err == nil {
		t.Fatal("expected error on 500 response")
	}
}
