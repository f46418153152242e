package model

import "time"

// Appointment statuses. pending_payment appointments hold the slot until the
// deposit settles or fails; cancelled and no_show never block new bookings.
const (
	StatusPendingPayment = "pending_payment"
	StatusBooked         = "booked"
	StatusCompleted      = "completed"
	StatusCancelled      = "cancelled"
	StatusNoShow         = "no_show"
)

type Appointment struct {
	ID            string
	BusinessID    string
	ServiceID     string
	StaffID       string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	StartTime     time.Time
	EndTime       time.Time
	Status        string
	CancelledAt   *time.Time
	CancelReason  string
	CreatedAt     time.Time
}
