// Package booking allocates stalls and records the demo payment against them.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expo-portal/internal/expoapi"
	"expo-portal/internal/kafka"
	"expo-portal/internal/logger"
	"expo-portal/internal/models"
)

var ErrNoStall = errors.New("company has no stall")

// Messages shown when the server gives none.
const (
	NoStallMessage       = "Please book a stall first!"
	BookingFailedMessage = "Failed to book stall. Please try again."
	PaymentFailedMessage = "Payment failed. Please try again."
)

// API is the part of the expo API client the booking flow uses.
type API interface {
	AllocateStall(ctx context.Context, token string, req models.AllocateRequest) error
	ProcessPayment(ctx context.Context, token string, req models.PaymentRequest) error
	CompanyStalls(ctx context.Context, token string) ([]models.Stall, error)
	StallLayout(ctx context.Context, token string) (*models.HallLayout, error)
}

// Request identifies the stall being booked and who is booking it.
type Request struct {
	SessionID   string
	CompanyID   string
	StallNumber string
	HallNumber  string
	Method      models.PaymentMethod
}

// Result carries the lists re-fetched after a successful booking. They are
// nil when the refresh itself failed.
type Result struct {
	Booking       models.Booking
	CompanyStalls []models.Stall
	Layout        *models.HallLayout
}

type Service struct {
	api         API
	guard       *Guard
	publisher   kafka.Publisher
	amount      float64
	defaultHall string
	logger      *logger.Logger
}

func NewService(api API, guard *Guard, publisher kafka.Publisher, amount float64, defaultHall string, log *logger.Logger) *Service {
	if publisher == nil {
		publisher = kafka.NoopPublisher{}
	}
	return &Service{
		api:         api,
		guard:       guard,
		publisher:   publisher,
		amount:      amount,
		defaultHall: defaultHall,
		logger:      log,
	}
}

func (s *Service) Amount() float64 { return s.amount }

// BookStall allocates the stall and, only once that succeeds, pays the demo
// amount for it. Either failure aborts with the server's error. On success
// the company stalls and hall layout are fetched again.
func (s *Service) BookStall(ctx context.Context, token string, req Request) (*Result, error) {
	if req.StallNumber == "" {
		return nil, ErrNoStall
	}
	if req.HallNumber == "" {
		req.HallNumber = s.defaultHall
	}
	if req.Method == "" {
		req.Method = models.PaymentOnline
	}

	release, err := s.acquire(ctx, req)
	if err != nil {
		return nil, err
	}
	defer release()

	s.logger.LogBooking("allocate", req.StallNumber, fmt.Sprintf("hall %s via %s", req.HallNumber, req.Method))
	err = s.api.AllocateStall(ctx, token, models.AllocateRequest{
		StallNumber:   req.StallNumber,
		HallNumber:    req.HallNumber,
		PaymentMethod: req.Method,
	})
	if err != nil {
		s.logger.LogBooking("allocate_failed", req.StallNumber, err.Error())
		return nil, err
	}

	if err := s.pay(ctx, token, req); err != nil {
		return nil, err
	}
	s.publish(ctx, models.PortalEvent{
		Type:        models.EventStallBooked,
		SessionID:   req.SessionID,
		CompanyID:   req.CompanyID,
		StallNumber: req.StallNumber,
		HallNumber:  req.HallNumber,
		Amount:      s.amount,
	})

	result := &Result{Booking: models.Booking{
		StallNumber:   req.StallNumber,
		HallNumber:    req.HallNumber,
		CompanyID:     req.CompanyID,
		PaymentMethod: req.Method,
		PaidAmount:    s.amount,
		PaymentStatus: "paid",
		BookedAt:      time.Now().UTC(),
	}}
	if err := s.refresh(ctx, token, result); err != nil {
		return result, err
	}
	return result, nil
}

// CompletePayment pays for a stall the company already holds.
func (s *Service) CompletePayment(ctx context.Context, token string, req Request) error {
	if req.StallNumber == "" {
		return ErrNoStall
	}
	release, err := s.acquire(ctx, req)
	if err != nil {
		return err
	}
	defer release()

	return s.pay(ctx, token, req)
}

// DemoPayment pays for the company's first stall and returns the company
// with amount_paid raised by the paid amount.
func (s *Service) DemoPayment(ctx context.Context, token string, req Request, company models.Company, companyStalls []models.Stall) (models.Company, error) {
	if len(companyStalls) == 0 {
		return company, ErrNoStall
	}
	req.StallNumber = companyStalls[0].StallNumber.String()
	req.HallNumber = companyStalls[0].HallNumber.String()

	if err := s.CompletePayment(ctx, token, req); err != nil {
		return company, err
	}
	company.AmountPaid = models.FlexFloat(company.AmountPaid.Float() + s.amount)
	return company, nil
}

func (s *Service) acquire(ctx context.Context, req Request) (func(), error) {
	if s.guard == nil {
		return func() {}, nil
	}
	release, err := s.guard.Acquire(ctx, req.SessionID, req.StallNumber)
	if err != nil {
		s.logger.LogBooking("duplicate", req.StallNumber, err.Error())
		return nil, err
	}
	return release, nil
}

func (s *Service) pay(ctx context.Context, token string, req Request) error {
	s.logger.LogBooking("pay", req.StallNumber, fmt.Sprintf("amount %.2f", s.amount))
	err := s.api.ProcessPayment(ctx, token, models.PaymentRequest{
		StallNumber: req.StallNumber,
		Amount:      s.amount,
	})
	if err != nil {
		s.logger.LogBooking("pay_failed", req.StallNumber, err.Error())
		return err
	}
	s.publish(ctx, models.PortalEvent{
		Type:        models.EventPaymentProcessed,
		SessionID:   req.SessionID,
		CompanyID:   req.CompanyID,
		StallNumber: req.StallNumber,
		HallNumber:  req.HallNumber,
		Amount:      s.amount,
	})
	return nil
}

// refresh reloads the lists shown after booking. Only a 401 is returned;
// other failures leave the lists nil for the page to fetch again.
func (s *Service) refresh(ctx context.Context, token string, result *Result) error {
	stalls, err := s.api.CompanyStalls(ctx, token)
	if err != nil {
		if expoapi.IsUnauthorized(err) {
			return err
		}
		s.logger.Warn("BOOKING", "refresh of company stalls failed: "+err.Error())
	} else {
		result.CompanyStalls = stalls
	}

	layout, err := s.api.StallLayout(ctx, token)
	if err != nil {
		if expoapi.IsUnauthorized(err) {
			return err
		}
		s.logger.Warn("BOOKING", "refresh of stall layout failed: "+err.Error())
	} else {
		result.Layout = layout
	}
	return nil
}

// publish never fails the booking; events are best effort.
func (s *Service) publish(ctx context.Context, event models.PortalEvent) {
	event.Timestamp = time.Now().UTC()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("KAFKA", fmt.Sprintf("failed to publish %s: %v", event.Type, err))
	}
}
