package slots

import (
	"errors"
	"reflect"
	"sort"
	"strconv"
	"testing"
	"time"
)

// monday is a known Monday used throughout: 2026-03-02.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func mondayAt(hour, min int) time.Time {
	return monday.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func mustWindow(t *testing.T, staffID string, startMin, endMin int) Window {
	t.Helper()
	w, err := NewWindow(staffID, time.Monday, startMin, endMin)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	return w
}

func TestGenerate_FullOpenDay(t *testing.T) {
	windows := []Window{mustWindow(t, "staff-a", 9*60, 17*60)}

	got, err := Generate(Request{Date: monday, StaffID: "staff-a", DurationMinutes: 30}, windows, nil, nil, mondayAt(8, 0))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	want := []string{
		"09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00", "12:30",
		"13:00", "13:30", "14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestGenerate_BookingBlocksOverlappingStarts(t *testing.T) {
	windows := []Window{mustWindow(t, "staff-a", 9*60, 17*60)}
	bookings := []Booking{
		{StaffID: "staff-a", Start: mondayAt(10, 0), End: mondayAt(11, 0), Status: "booked"},
	}

	got, err := Generate(Request{Date: monday, StaffID: "staff-a", DurationMinutes: 30}, windows, bookings, nil, mondayAt(8, 0))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	present := map[string]bool{}
	for _, s := range got {
		present[s] = true
	}
	for _, s := range []string{"09:00", "09:30", "11:00"} {
		if !present[s] {
			t.Errorf("expected slot %s to be offered", s)
		}
	}
	for _, s := range []string{"10:00", "10:30"} {
		if present[s] {
			t.Errorf("slot %s overlaps the booking and must not be offered", s)
		}
	}
}

func TestGenerate_BlackoutTouchingEndpointDoesNotBlock(t *testing.T) {
	windows := []Window{mustWindow(t, "staff-a", 9*60, 17*60)}
	blackouts := []Blackout{
		{StaffID: "staff-a", Start: mondayAt(12, 0), End: mondayAt(13, 0)},
	}

	got, err := Generate(Request{Date: monday, StaffID: "staff-a", DurationMinutes: 60}, windows, nil, blackouts, mondayAt(8, 0))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	present := map[string]bool{}
	for _, s := range got {
		present[s] = true
	}
	// 11:00-12:00 touches the blackout start: allowed. 11:30-12:30 overlaps.
	// 12:00 and 12:30 start inside it. 13:00-14:00 touches the blackout end: allowed.
	if !present["11:00"] {
		t.Error("11:00 ends exactly at blackout start and must be offered")
	}
	for _, s := range []string{"11:30", "12:00", "12:30"} {
		if present[s] {
			t.Errorf("slot %s overlaps the blackout and must not be offered", s)
		}
	}
	if !present["13:00"] {
		t.Error("13:00 starts exactly at blackout end and must be offered")
	}
}

func TestGenerate_ServiceLongerThanWindow(t *testing.T) {
	windows := []Window{mustWindow(t, "staff-a", 9*60, 10*60)}

	got, err := Generate(Request{Date: monday, StaffID: "staff-a", DurationMinutes: 90}, windows, nil, nil, mondayAt(8, 0))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no slots for a service longer than the window, got %v", got)
	}
}

func TestGenerate_PastStartsExcluded(t *testing.T) {
	windows := []Window{mustWindow(t, "staff-a", 9*60, 17*60)}

	got, err := Generate(Request{Date: monday, StaffID: "staff-a", DurationMinutes: 30}, windows, nil, nil, mondayAt(9, 15))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) == 0 || got[0] != "09:30" {
		t.Fatalf("expected first slot 09:30 with now=09:15, got %v", got)
	}

	// A slot starting exactly at now is not strictly future.
	got, err = Generate(Request{Date: monday, StaffID: "staff-a", DurationMinutes: 30}, windows, nil, nil, mondayAt(9, 30))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got[0] != "10:00" {
		t.Fatalf("slot starting at now must be excluded, got first %v", got[0])
	}
}

func TestGenerate_AnyStaffIsUnion(t *testing.T) {
	windows := []Window{
		mustWindow(t, "staff-a", 9*60, 9*60+30),
		mustWindow(t, "staff-b", 9*60, 10*60),
	}
	// staff-b is booked at 09:00 but free at 09:30; staff-a only offers 09:00.
	bookings := []Booking{
		{StaffID: "staff-b", Start: mondayAt(9, 0), End: mondayAt(9, 30), Status: "booked"},
	}

	got, err := Generate(Request{Date: monday, StaffID: AnyStaff, DurationMinutes: 30}, windows, bookings, nil, mondayAt(8, 0))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []string{"09:00", "09:30"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected union %v, got %v", want, got)
	}

	// The union must contain each individual staff member's result.
	for _, staffID := range []string{"staff-a", "staff-b"} {
		single, err := Generate(Request{Date: monday, StaffID: staffID, DurationMinutes: 30}, windows, bookings, nil, mondayAt(8, 0))
		if err != nil {
			t.Fatalf("Generate(%s): %v", staffID, err)
		}
		all := map[string]bool{}
		for _, s := range got {
			all[s] = true
		}
		for _, s := range single {
			if !all[s] {
				t.Errorf("any-staff result missing %s offered by %s", s, staffID)
			}
		}
	}
}

func TestGenerate_CancelledAndNoShowDoNotBlock(t *testing.T) {
	windows := []Window{mustWindow(t, "staff-a", 9*60, 10*60)}
	bookings := []Booking{
		{StaffID: "staff-a", Start: mondayAt(9, 0), End: mondayAt(9, 30), Status: "cancelled"},
		{StaffID: "staff-a", Start: mondayAt(9, 30), End: mondayAt(10, 0), Status: "no_show"},
	}

	got, err := Generate(Request{Date: monday, StaffID: "staff-a", DurationMinutes: 30}, windows, bookings, nil, mondayAt(8, 0))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []string{"09:00", "09:30"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("cancelled/no_show bookings must not block, got %v", got)
	}
}

func TestGenerate_OtherStaffBookingsIgnored(t *testing.T) {
	windows := []Window{mustWindow(t, "staff-a", 9*60, 10*60)}
	bookings := []Booking{
		{StaffID: "staff-b", Start: mondayAt(9, 0), End: mondayAt(10, 0), Status: "booked"},
	}

	got, err := Generate(Request{Date: monday, StaffID: "staff-a", DurationMinutes: 30}, windows, bookings, nil, mondayAt(8, 0))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("another staff member's booking must not block, got %v", got)
	}
}

func TestGenerate_OffGridWindowStartAlignsUp(t *testing.T) {
	// Window opens 09:10; with a 30-minute grid the first candidate is 09:30.
	windows := []Window{mustWindow(t, "staff-a", 9*60+10, 11*60)}

	got, err := Generate(Request{Date: monday, StaffID: "staff-a", DurationMinutes: 30}, windows, nil, nil, mondayAt(8, 0))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []string{"09:30", "10:00", "10:30"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestGenerate_OverlappingWindowsDeduplicate(t *testing.T) {
	windows := []Window{
		mustWindow(t, "staff-a", 9*60, 11*60),
		mustWindow(t, "staff-a", 10*60, 12*60),
	}

	got, err := Generate(Request{Date: monday, StaffID: "staff-a", DurationMinutes: 60}, windows, nil, nil, mondayAt(8, 0))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// Candidates step by the 30-minute grid, not by the duration: 09:30 ends
	// 10:30 inside the first window, 10:30 ends 11:30 inside the second.
	// 10:00 and 10:30 fit both windows and must appear exactly once.
	want := []string{"09:00", "09:30", "10:00", "10:30", "11:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestGenerate_WrongWeekdayContributesNothing(t *testing.T) {
	w, err := NewWindow("staff-a", time.Tuesday, 9*60, 17*60)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}

	got, err := Generate(Request{Date: monday, StaffID: "staff-a", DurationMinutes: 30}, []Window{w}, nil, nil, mondayAt(8, 0))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Tuesday window must not produce Monday slots, got %v", got)
	}
}

func TestGenerate_MalformedWindowSkipped(t *testing.T) {
	windows := []Window{
		{StaffID: "staff-a", Weekday: time.Monday, StartMinute: 600, EndMinute: 600},
		{StaffID: "staff-a", Weekday: time.Monday, StartMinute: 700, EndMinute: 500},
		mustWindow(t, "staff-a", 9*60, 10*60),
	}

	got, err := Generate(Request{Date: monday, StaffID: "staff-a", DurationMinutes: 30}, windows, nil, nil, mondayAt(8, 0))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []string{"09:00", "09:30"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("malformed windows must contribute nothing, got %v", got)
	}
}

func TestGenerate_InvalidDuration(t *testing.T) {
	for _, d := range []int{0, -15} {
		if _, err := Generate(Request{Date: monday, DurationMinutes: d}, nil, nil, nil, mondayAt(8, 0)); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("duration %d: expected ErrInvalidDuration, got %v", d, err)
		}
	}
}

func TestGenerate_CustomGrid(t *testing.T) {
	windows := []Window{mustWindow(t, "staff-a", 9*60, 10*60)}

	got, err := Generate(Request{Date: monday, StaffID: "staff-a", DurationMinutes: 15, GridMinutes: 15}, windows, nil, nil, mondayAt(8, 0))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []string{"09:00", "09:15", "09:30", "09:45"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNewWindow_Validation(t *testing.T) {
	cases := []struct {
		name       string
		start, end int
	}{
		{"empty span", 600, 600},
		{"inverted", 700, 500},
		{"negative start", -10, 60},
		{"end past midnight", 1400, 1500},
	}
	for _, tc := range cases {
		if _, err := NewWindow("staff-a", time.Monday, tc.start, tc.end); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
	if _, err := NewWindow("", time.Monday, 540, 1020); err == nil {
		t.Error("empty staff id: expected error")
	}
	if _, err := NewWindow("staff-a", time.Monday, 0, 1440); err != nil {
		t.Errorf("full-day window should be valid: %v", err)
	}
}

// TestGenerate_Properties exercises the output invariants on a dense scenario:
// grid alignment, strict ascending order, containment, future-only starts, and
// no overlap with blocking bookings or blackouts.
func TestGenerate_Properties(t *testing.T) {
	windows := []Window{
		mustWindow(t, "staff-a", 8*60, 12*60),
		mustWindow(t, "staff-a", 13*60, 18*60),
		mustWindow(t, "staff-b", 9*60+10, 16*60),
	}
	bookings := []Booking{
		{StaffID: "staff-a", Start: mondayAt(9, 0), End: mondayAt(10, 30), Status: "booked"},
		{StaffID: "staff-a", Start: mondayAt(14, 0), End: mondayAt(15, 0), Status: "pending_payment"},
		{StaffID: "staff-b", Start: mondayAt(11, 0), End: mondayAt(12, 0), Status: "booked"},
		{StaffID: "staff-b", Start: mondayAt(13, 0), End: mondayAt(14, 0), Status: "cancelled"},
	}
	blackouts := []Blackout{
		{StaffID: "staff-a", Start: mondayAt(16, 0), End: mondayAt(17, 0)},
		{StaffID: "staff-b", Start: mondayAt(9, 0), End: mondayAt(10, 0)},
	}
	now := mondayAt(10, 5)
	req := Request{Date: monday, StaffID: AnyStaff, DurationMinutes: 45}

	got, err := Generate(req, windows, bookings, blackouts, now)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected some availability")
	}

	if !sort.StringsAreSorted(got) {
		t.Errorf("output not sorted: %v", got)
	}
	seen := map[string]bool{}
	duration := time.Duration(req.DurationMinutes) * time.Minute

	for _, s := range got {
		if seen[s] {
			t.Errorf("duplicate slot %s", s)
		}
		seen[s] = true

		minute, err := parseHHMM(s)
		if err != nil {
			t.Fatalf("slot %q is not HH:MM: %v", s, err)
		}
		if minute%DefaultGridMinutes != 0 {
			t.Errorf("slot %s is off-grid", s)
		}

		start := monday.Add(time.Duration(minute) * time.Minute)
		end := start.Add(duration)
		if !start.After(now) {
			t.Errorf("slot %s does not start strictly after now", s)
		}

		// The slot must be valid for at least one staff member: contained in
		// one of their windows and clear of their bookings and blackouts.
		validForSomeone := false
		for _, staffID := range []string{"staff-a", "staff-b"} {
			if slotValidFor(staffID, minute, req.DurationMinutes, windows, bookings, blackouts, start, end) {
				validForSomeone = true
				break
			}
		}
		if !validForSomeone {
			t.Errorf("slot %s is not valid for any staff member", s)
		}
	}
}

func slotValidFor(staffID string, minute, durationMinutes int, windows []Window, bookings []Booking, blackouts []Blackout, start, end time.Time) bool {
	contained := false
	for _, w := range windows {
		if w.StaffID == staffID && minute >= w.StartMinute && minute+durationMinutes <= w.EndMinute {
			contained = true
			break
		}
	}
	if !contained {
		return false
	}
	for _, b := range bookings {
		if b.StaffID == staffID && b.Blocks() && Overlaps(start, end, b.Start, b.End) {
			return false
		}
	}
	for _, b := range blackouts {
		if b.StaffID == staffID && Overlaps(start, end, b.Start, b.End) {
			return false
		}
	}
	return true
}

func parseHHMM(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, errors.New("bad length or separator")
	}
	hh, err := strconv.Atoi(s[0:2])
	if err != nil {
		return 0, err
	}
	mm, err := strconv.Atoi(s[3:5])
	if err != nil {
		return 0, err
	}
	return hh*60 + mm, nil
}

func TestOverlaps(t *testing.T) {
	a, b := mondayAt(10, 0), mondayAt(11, 0)
	cases := []struct {
		name           string
		cStart, cEnd   time.Time
		expectOverlaps bool
	}{
		{"identical", a, b, true},
		{"contained", mondayAt(10, 15), mondayAt(10, 45), true},
		{"straddles start", mondayAt(9, 30), mondayAt(10, 30), true},
		{"straddles end", mondayAt(10, 30), mondayAt(11, 30), true},
		{"touches start", mondayAt(9, 0), mondayAt(10, 0), false},
		{"touches end", mondayAt(11, 0), mondayAt(12, 0), false},
		{"disjoint before", mondayAt(8, 0), mondayAt(9, 0), false},
		{"disjoint after", mondayAt(12, 0), mondayAt(13, 0), false},
	}
	for _, tc := range cases {
		if got := Overlaps(tc.cStart, tc.cEnd, a, b); got != tc.expectOverlaps {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, got, tc.expectOverlaps)
		}
	}
}
