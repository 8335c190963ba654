package registration

import (
	"context"
	"errors"
	"fmt"

	"expo-portal/internal/logger"
)

// API is the slice of the expo API client the wizard submits to.
type API interface {
	RegisterStep1(ctx context.Context, payload any) (string, error)
	RegisterStep2(ctx context.Context, companyID string, payload any) error
	RegisterStep3(ctx context.Context, companyID string, payload any) error
}

var ErrNoCompany = errors.New("registration has no company id; restart from step 1")

type Service struct {
	api       API
	validator *Validator
	logger    *logger.Logger
}

func NewService(api API, log *logger.Logger) *Service {
	return &Service{api: api, validator: NewValidator(), logger: log}
}

func (s *Service) Validator() *Validator { return s.validator }

// Submit validates the step for the wizard's current state and posts it.
// The entered data is saved into the draft whatever the outcome; the wizard
// only advances when the server accepts the step.
func (s *Service) Submit(ctx context.Context, w *Wizard, step any) error {
	state := w.State()

	if a, ok := step.(AddressDetails); ok {
		a.MirrorBilling()
		step = a
	}
	if err := w.Save(step); err != nil {
		return err
	}
	if err := s.validator.Validate(step); err != nil {
		s.logger.LogWizard(string(state), "validation failed")
		return err
	}

	switch v := step.(type) {
	case LoginDetails:
		companyID, err := s.api.RegisterStep1(ctx, v)
		if err != nil {
			s.logger.LogWizard(string(state), fmt.Sprintf("step rejected: %v", err))
			return err
		}
		w.setCompanyID(companyID)
		// the password is not kept past a successful step
		v.Password, v.ConfirmPassword = "", ""
		step = v
	case AddressDetails:
		if err := s.requireCompany(w); err != nil {
			return err
		}
		if err := s.api.RegisterStep2(ctx, w.CompanyID(), v); err != nil {
			s.logger.LogWizard(string(state), fmt.Sprintf("step rejected: %v", err))
			return err
		}
	case ContactDetails:
		if err := s.requireCompany(w); err != nil {
			return err
		}
		if err := s.api.RegisterStep3(ctx, w.CompanyID(), v.Payload()); err != nil {
			s.logger.LogWizard(string(state), fmt.Sprintf("step rejected: %v", err))
			return err
		}
	}

	if err := w.Advance(step); err != nil {
		return err
	}
	s.logger.LogWizard(string(state), fmt.Sprintf("completed, company %s now at %s", w.CompanyID(), w.State()))
	return nil
}

func (s *Service) requireCompany(w *Wizard) error {
	if w.CompanyID() == "" {
		s.logger.LogWizard(string(w.State()), "missing company id")
		return ErrNoCompany
	}
	return nil
}
