package templates

import (
	"strings"
	"testing"
	"time"
)

func TestConfirmedEmail(t *testing.T) {
	msg, err := Confirmed(BookingData{
		CustomerName: "Alex",
		ServiceName:  "Haircut",
		StartTime:    time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Confirmed failed: %v", err)
	}
	if !strings.Contains(msg.Subject, "Mon, 02 Mar 2026 14:00 UTC") {
		t.Errorf("unexpected subject: %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "Hi Alex,") {
		t.Errorf("expected greeting with name, got: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "Service: Haircut") {
		t.Errorf("expected service line, got: %q", msg.Body)
	}
}

func TestConfirmedEmailWithoutOptionalFields(t *testing.T) {
	msg, err := Confirmed(BookingData{
		StartTime: time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Confirmed failed: %v", err)
	}
	if !strings.Contains(msg.Body, "Hi,") {
		t.Errorf("expected bare greeting, got: %q", msg.Body)
	}
	if strings.Contains(msg.Body, "Service:") {
		t.Errorf("service line should be omitted, got: %q", msg.Body)
	}
}

func TestCancelledEmailIncludesReason(t *testing.T) {
	msg, err := Cancelled(BookingData{
		CustomerName: "Alex",
		StartTime:    time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
		Reason:       "deposit payment failed",
	})
	if err != nil {
		t.Fatalf("Cancelled failed: %v", err)
	}
	if !strings.Contains(msg.Body, "Reason: deposit payment failed") {
		t.Errorf("expected reason line, got: %q", msg.Body)
	}
}

func TestSMSBodies(t *testing.T) {
	d := BookingData{
		StartTime: time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
		Reason:    "staff unavailable",
	}
	if got := ConfirmedSMS(d); got != "Booking confirmed for Mon, 02 Mar 2026 14:00 UTC." {
		t.Errorf("unexpected confirmed sms: %q", got)
	}
	if got := CancelledSMS(d); !strings.Contains(got, "Reason: staff unavailable") {
		t.Errorf("unexpected cancelled sms: %q", got)
	}
}
