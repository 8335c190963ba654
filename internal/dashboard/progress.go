// Package dashboard derives the exhibitor's booking progress.
package dashboard

import "expo-portal/internal/models"

type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepCurrent   StepStatus = "current"
	StepPending   StepStatus = "pending"
)

type Step struct {
	Key         string
	Label       string
	Icon        string
	Description string
	Number      int
	Status      StepStatus
	// ShowPaymentButton offers the demo payment on the payment step.
	ShowPaymentButton bool
}

func (s Step) Completed() bool { return s.Status == StepCompleted }
func (s Step) Current() bool { return s.Status == StepCurrent }
func (s Step) Pending() bool { return s.Status == StepPending }

type Progress struct {
	Steps         []Step
	Percentage    float64
	CurrentStep   *Step
	Upcoming      []Step
	HasStall      bool
	PaymentDone   bool
	CompanyStalls []models.Stall
}

// Compute builds the five-step progress from the company's stalls and the
// amount it has paid so far.
func Compute(companyStalls []models.Stall, company models.Company) Progress {
	hasStall := len(companyStalls) > 0
	paid := company.AmountPaid.Float() > 0
	paymentCurrent := hasStall && !paid
	paymentCompleted := hasStall && paid

	allotment := Step{Key: "stall_allotment", Label: "Stall Allotment", Icon: "🗺️", Number: 2, Status: StepCurrent, Description: "Select stall"}
	if hasStall {
		allotment.Status = StepCompleted
		allotment.Description = "Stall booked"
	}

	payment := Step{Key: "advance_payment", Label: "Payment", Icon: "💳", Number: 3, Status: StepPending, Description: "Complete payment"}
	switch {
	case paymentCompleted:
		payment.Status = StepCompleted
	case paymentCurrent:
		payment.Status = StepCurrent
		payment.ShowPaymentButton = true
	}

	approval := Step{Key: "payment_approval", Label: "Approval", Icon: "👨‍💼", Number: 4, Status: StepPending, Description: "Payment approval"}
	if paymentCompleted {
		approval.Status = StepCurrent
	}

	steps := []Step{
		{Key: "registration", Label: "Registration", Icon: "✅", Number: 1, Status: StepCompleted, Description: "Registration completed"},
		allotment,
		payment,
		approval,
		{Key: "book_services", Label: "Services", Icon: "🛠️", Number: 5, Status: StepPending, Description: "Book services"},
	}

	p := Progress{Steps: steps, HasStall: hasStall, PaymentDone: paymentCompleted, CompanyStalls: companyStalls}
	completed := 0
	for i := range p.Steps {
		switch p.Steps[i].Status {
		case StepCompleted:
			completed++
		case StepCurrent:
			if p.CurrentStep == nil {
				p.CurrentStep = &p.Steps[i]
			}
		case StepPending:
			if len(p.Upcoming) < 2 {
				p.Upcoming = append(p.Upcoming, p.Steps[i])
			}
		}
	}
	p.Percentage = float64(completed) / float64(len(p.Steps)) * 100
	return p
}
