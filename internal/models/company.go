package models

// Company is the exhibitor record kept in the session after login.
type Company struct {
	ID            FlexString `json:"id"`
	CompanyName   string     `json:"company_name,omitempty"`
	Name          string     `json:"name,omitempty"`
	Email         string     `json:"email,omitempty"`
	AmountPaid    FlexFloat  `json:"amount_paid,omitempty"`
	GSTIN         string     `json:"gstin,omitempty"`
	PAN           string     `json:"pan,omitempty"`
	OwnerName     string     `json:"owner_name,omitempty"`
	ContactPerson string     `json:"contact_person_name,omitempty"`
}

// DisplayName mirrors the dashboard fallback chain.
func (c Company) DisplayName() string {
	switch {
	case c.CompanyName != "":
		return c.CompanyName
	case c.Name != "":
		return c.Name
	default:
		return "Company Name"
	}
}

type Event struct {
	Name        string `json:"name"`
	Theme       string `json:"theme"`
	Description string `json:"description"`
}

// DashboardData is the data payload of GET /dashboard.
type DashboardData struct {
	Company      Company        `json:"company"`
	Event        Event          `json:"event"`
	BookingSteps map[string]any `json:"booking_steps"`
}

func (e Event) WithDefaults() Event {
	if e.Name == "" {
		e.Name = "ECAMEX26"
	}
	if e.Theme == "" {
		e.Theme = "ELECTRICAL SAFETY & RENEWABLE ENERGY"
	}
	if e.Description == "" {
		e.Description = "A Grand 3 Day Electrical Industry Exhibition"
	}
	return e
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult carries what the portal persists into the session.
type LoginResult struct {
	Token   string  `json:"token"`
	Company Company `json:"company"`
}
