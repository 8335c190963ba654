package models

type StallStatus string

const (
	StallAvailable   StallStatus = "available"
	StallBooked      StallStatus = "booked"
	StallUnavailable StallStatus = "unavailable"
)

// Stall is a bookable unit as returned by /stalls/layout and /stalls/{number}.
// OpenSides is nil when the API did not send an explicit list; the legacy
// OpenSide* flags are the older encoding of the same information.
type Stall struct {
	ID             FlexString  `json:"id"`
	StallNumber    FlexString  `json:"stall_number"`
	HallNumber     FlexString  `json:"hall_number"`
	XPosition      *int        `json:"x_position,omitempty"`
	YPosition      *int        `json:"y_position,omitempty"`
	Area           FlexFloat   `json:"area"`
	Dimension      string      `json:"dimension"`
	Size           string      `json:"size"`
	Scheme         string      `json:"scheme"`
	Price          FlexFloat   `json:"price"`
	PremiumFloor   FlexBool    `json:"premium_floor"`
	Status         StallStatus `json:"status"`
	OpenSides      []string    `json:"open_sides,omitempty"`
	OpenSidesCount int         `json:"open_sides_count,omitempty"`
	OpenSideTop    FlexBool    `json:"open_side_top,omitempty"`
	OpenSideRight  FlexBool    `json:"open_side_right,omitempty"`
	OpenSideBottom FlexBool    `json:"open_side_bottom,omitempty"`
	OpenSideLeft   FlexBool    `json:"open_side_left,omitempty"`
}

// HallLayout is the data payload of GET /stalls/layout.
type HallLayout struct {
	Halls        map[string][]Stall `json:"halls"`
	BookedStalls []FlexString       `json:"booked_stalls"`
}

type UserBooking struct {
	PaidAmount FlexFloat `json:"paid_amount"`
	Status     string    `json:"status"`
}

type StallAdditionalInfo struct {
	RemainingAmount FlexFloat `json:"remaining_amount"`
}

// StallDetails is the data payload of GET /stalls/{number}.
type StallDetails struct {
	Stall          Stall                `json:"stall"`
	UserBooking    *UserBooking         `json:"user_booking"`
	AdditionalInfo *StallAdditionalInfo `json:"additional_info"`
}

// PaidAmount is zero when the caller has no booking on the stall.
func (d StallDetails) PaidAmount() float64 {
	if d.UserBooking == nil {
		return 0
	}
	return d.UserBooking.PaidAmount.Float()
}

// RemainingAmount falls back to the stall price when the API omits it.
func (d StallDetails) RemainingAmount() float64 {
	if d.AdditionalInfo != nil && d.AdditionalInfo.RemainingAmount != 0 {
		return d.AdditionalInfo.RemainingAmount.Float()
	}
	return d.Stall.Price.Float()
}

// SecurityDeposit is the 20% deposit required to confirm a booking.
func (d StallDetails) SecurityDeposit() float64 {
	return d.Stall.Price.Float() * 0.2
}
