package models

import "time"

type PaymentMethod string

const (
	PaymentOnline       PaymentMethod = "online"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCheque       PaymentMethod = "cheque"
	PaymentCard         PaymentMethod = "card"
)

// PaymentMethods is the list offered on the stall detail view, in display order.
var PaymentMethods = []struct {
	Value PaymentMethod
	Label string
}{
	{PaymentOnline, "Online Payment"},
	{PaymentBankTransfer, "Bank Transfer"},
	{PaymentCheque, "Cheque"},
	{PaymentCard, "Credit/Debit Card"},
}

func ParsePaymentMethod(v string) PaymentMethod {
	for _, m := range PaymentMethods {
		if string(m.Value) == v {
			return m.Value
		}
	}
	return PaymentOnline
}

type AllocateRequest struct {
	StallNumber   string        `json:"stall_number"`
	HallNumber    string        `json:"hall_number"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
}

type PaymentRequest struct {
	StallNumber string  `json:"stall_number"`
	Amount      float64 `json:"amount"`
}

// Booking is the local view of a completed allocate+pay sequence.
type Booking struct {
	StallNumber   string        `json:"stall_number"`
	HallNumber    string        `json:"hall_number"`
	CompanyID     string        `json:"company_id,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PaidAmount    float64       `json:"paid_amount"`
	PaymentStatus string        `json:"payment_status"`
	BookedAt      time.Time     `json:"booked_at"`
}

type PaymentInstalment struct {
	Label      string    `json:"label"`
	Percentage FlexFloat `json:"percentage"`
	Amount     FlexFloat `json:"amount"`
	DueDate    string    `json:"due_date"`
}

// PaymentSchedule is the data payload of GET /payments/schedule. The API
// sends either a bare list or an object with an instalments list.
type PaymentSchedule struct {
	Instalments []PaymentInstalment `json:"instalments"`
	Total       FlexFloat           `json:"total"`
	Currency    string              `json:"currency"`
}
