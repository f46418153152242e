package handlers

import (
	"testing"
	"time"

	"github.com/bookora/bookora/services/booking-service/internal/directory"
	"github.com/bookora/bookora/services/booking-service/internal/slots"
)

func testSnapshot() directory.Snapshot {
	return directory.Snapshot{
		BusinessID:      "biz-1",
		Timezone:        "UTC",
		DurationMinutes: 60,
		Windows: []directory.SnapshotWindow{
			{StaffID: "staff-a", Weekday: 1, StartMinute: 9 * 60, EndMinute: 17 * 60},
		},
		Blackouts: []directory.SnapshotBlackout{
			{
				StaffID: "staff-a",
				Start:   time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
				End:     time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC),
			},
		},
	}
}

func TestSlotInputs(t *testing.T) {
	req, windows, blackouts, err := slotInputs(testSnapshot(), slots.AnyStaff, "2026-03-02")
	if err != nil {
		t.Fatalf("slotInputs: %v", err)
	}
	if req.DurationMinutes != 60 {
		t.Fatalf("unexpected duration: %d", req.DurationMinutes)
	}
	wantDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if !req.Date.Equal(wantDate) {
		t.Fatalf("unexpected date anchor: %v", req.Date)
	}
	if len(windows) != 1 || windows[0].StaffID != "staff-a" {
		t.Fatalf("unexpected windows: %+v", windows)
	}
	if len(blackouts) != 1 {
		t.Fatalf("unexpected blackouts: %+v", blackouts)
	}
}

func TestSlotInputsInvalidDate(t *testing.T) {
	if _, _, _, err := slotInputs(testSnapshot(), "staff-a", "03/02/2026"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestSlotInputsSkipsMalformedWindows(t *testing.T) {
	snap := testSnapshot()
	snap.Windows = append(snap.Windows, directory.SnapshotWindow{
		StaffID: "staff-a", Weekday: 1, StartMinute: 600, EndMinute: 540,
	})
	_, windows, _, err := slotInputs(snap, "staff-a", "2026-03-02")
	if err != nil {
		t.Fatalf("slotInputs: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("malformed window was not skipped: %+v", windows)
	}
}

func TestStartWithinOffer(t *testing.T) {
	h := &BookingHandler{now: func() time.Time {
		return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	}}
	req, windows, blackouts, err := slotInputs(testSnapshot(), "staff-a", "2026-03-02")
	if err != nil {
		t.Fatalf("slotInputs: %v", err)
	}

	cases := []struct {
		clock string
		want  bool
	}{
		{"09:00", true},
		{"16:00", true},  // last start that fits before 17:00
		{"16:30", false}, // 60m service would run past the window
		{"11:30", false}, // overlaps the 12:00-13:00 blackout
		{"13:00", true},  // blackout end is exclusive
		{"09:15", false}, // off the 30-minute grid
		{"08:30", false}, // before the window opens
	}
	for _, tc := range cases {
		minute, err := parseClock(tc.clock)
		if err != nil {
			t.Fatalf("parseClock(%s): %v", tc.clock, err)
		}
		if got := h.startWithinOffer(req, windows, blackouts, "staff-a", minute); got != tc.want {
			t.Errorf("startWithinOffer(%s) = %v, want %v", tc.clock, got, tc.want)
		}
	}
}

func TestParseClock(t *testing.T) {
	if _, err := parseClock("25:00"); err == nil {
		t.Error("expected error for 25:00")
	}
	if _, err := parseClock("9am"); err == nil {
		t.Error("expected error for 9am")
	}
	m, err := parseClock("09:30")
	if err != nil {
		t.Fatalf("parseClock: %v", err)
	}
	if m != 570 {
		t.Fatalf("parseClock(09:30) = %d, want 570", m)
	}
	if got := clockLabel(570); got != "09:30" {
		t.Fatalf("clockLabel(570) = %s", got)
	}
}
