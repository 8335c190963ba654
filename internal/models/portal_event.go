package models

import "time"

const (
	EventStallBooked       = "stall_booked"
	EventPaymentProcessed  = "payment_processed"
	EventVisitorRegistered = "visitor_registered"
)

// PortalEvent is the activity record published to Kafka.
type PortalEvent struct {
	Type        string    `json:"type"`
	SessionID   string    `json:"session_id,omitempty"`
	CompanyID   string    `json:"company_id,omitempty"`
	StallNumber string    `json:"stall_number,omitempty"`
	HallNumber  string    `json:"hall_number,omitempty"`
	VisitorID   string    `json:"visitor_id,omitempty"`
	Amount      float64   `json:"amount,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Key picks the partition key for the event.
func (e PortalEvent) Key() string {
	switch {
	case e.StallNumber != "":
		return e.StallNumber
	case e.VisitorID != "":
		return e.VisitorID
	default:
		return e.SessionID
	}
}
