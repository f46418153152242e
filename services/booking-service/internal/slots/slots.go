// Package slots computes bookable start times for a service on a given day.
//
// It is a pure function over a snapshot of availability data: recurring weekly
// windows, one-off blackouts, and already-committed bookings. All inputs are
// materialized by the caller; this package performs no I/O and holds no state,
// so concurrent calls never interact.
package slots

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// DefaultGridMinutes is the candidate-start quantization used when a request
// doesn't specify one. Candidates are aligned to multiples of the grid from
// midnight, never to arbitrary offsets.
const DefaultGridMinutes = 30

const minutesPerDay = 24 * 60

// AnyStaff requests the union of valid slots across every staff member present
// in the window snapshot: a slot is offered if any eligible staff member is
// free then.
const AnyStaff = "any"

var ErrInvalidDuration = errors.New("slots: service duration must be positive")

// Window is one staff member's recurring weekly working interval, expressed as
// minutes of the local day. Multiple windows per staff/weekday are allowed and
// are evaluated independently.
type Window struct {
	StaffID     string
	Weekday     time.Weekday
	StartMinute int
	EndMinute   int
}

// NewWindow validates invariants at the type boundary: minutes within the day
// and a non-empty span. Rows that bypass this constructor and violate the
// invariants are skipped during generation rather than raising.
func NewWindow(staffID string, weekday time.Weekday, startMinute, endMinute int) (Window, error) {
	w := Window{StaffID: staffID, Weekday: weekday, StartMinute: startMinute, EndMinute: endMinute}
	if !w.valid() {
		return Window{}, fmt.Errorf("slots: invalid window [%d,%d) for staff %s", startMinute, endMinute, staffID)
	}
	return w, nil
}

func (w Window) valid() bool {
	return w.StaffID != "" &&
		w.Weekday >= time.Sunday && w.Weekday <= time.Saturday &&
		w.StartMinute >= 0 && w.EndMinute <= minutesPerDay &&
		w.StartMinute < w.EndMinute
}

// Blackout is an explicit unavailable interval overriding normal availability,
// e.g. vacation. Instants are absolute.
type Blackout struct {
	StaffID string
	Start   time.Time
	End     time.Time
}

// Booking is an already-committed appointment occupying staff time. Bookings
// whose status is cancelled or no_show do not block availability.
type Booking struct {
	StaffID string
	Start   time.Time
	End     time.Time
	Status  string
}

// Blocks reports whether the booking occupies staff time.
func (b Booking) Blocks() bool {
	return b.Status != "cancelled" && b.Status != "no_show"
}

// Request describes one slot lookup. Date must be midnight of the requested
// calendar day in the business's time zone; all interval arithmetic stays in
// that location. StaffID may name one staff member, or be empty / AnyStaff for
// the union over all staff in the snapshot.
type Request struct {
	Date            time.Time
	StaffID         string
	DurationMinutes int
	GridMinutes     int
}

// Generate returns the sorted, deduplicated "HH:MM" start times at which a
// service of the requested duration can begin. An empty result means no
// availability; it is not an error.
//
// A candidate is accepted iff its half-open interval [start, start+duration)
// fits inside the window, starts strictly after now, and overlaps no blocking
// booking and no blackout of the same staff member. Touching endpoints do not
// count as overlap.
func Generate(req Request, windows []Window, bookings []Booking, blackouts []Blackout, now time.Time) ([]string, error) {
	if req.DurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	grid := req.GridMinutes
	if grid <= 0 {
		grid = DefaultGridMinutes
	}

	day := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, req.Date.Location())
	weekday := day.Weekday()
	duration := time.Duration(req.DurationMinutes) * time.Minute

	accepted := make(map[string]struct{})
	for _, w := range windows {
		if !w.valid() || w.Weekday != weekday {
			continue
		}
		if !staffEligible(req.StaffID, w.StaffID) {
			continue
		}
		for m := alignUp(w.StartMinute, grid); m+req.DurationMinutes <= w.EndMinute; m += grid {
			start := day.Add(time.Duration(m) * time.Minute)
			end := start.Add(duration)
			if !start.After(now) {
				continue
			}
			if overlapsBooking(w.StaffID, start, end, bookings) {
				continue
			}
			if overlapsBlackout(w.StaffID, start, end, blackouts) {
				continue
			}
			// Label from the minute offset, not the instant, so the string is
			// grid-aligned even across a DST transition.
			accepted[fmt.Sprintf("%02d:%02d", m/60, m%60)] = struct{}{}
		}
	}

	out := make([]string, 0, len(accepted))
	for s := range accepted {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

// Overlaps is the half-open interval intersection test shared by slot
// generation and the pre-insert conflict recheck:
// [aStart,aEnd) and [bStart,bEnd) overlap iff aStart < bEnd && bStart < aEnd.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

func staffEligible(requested, staffID string) bool {
	return requested == "" || requested == AnyStaff || requested == staffID
}

func overlapsBooking(staffID string, start, end time.Time, bookings []Booking) bool {
	for _, b := range bookings {
		if b.StaffID != staffID || !b.Blocks() {
			continue
		}
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

func overlapsBlackout(staffID string, start, end time.Time, blackouts []Blackout) bool {
	for _, b := range blackouts {
		if b.StaffID != staffID {
			continue
		}
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

func alignUp(minute, grid int) int {
	if minute%grid == 0 {
		return minute
	}
	return (minute/grid + 1) * grid
}
