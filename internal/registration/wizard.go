// Package registration drives the three-step exhibitor registration wizard.
package registration

import (
	"errors"
	"fmt"
)

type State string

const (
	StateLoginDetails State = "login_details"
	StateAddress      State = "address"
	StateContacts     State = "contacts"
	StateComplete     State = "complete"
)

var states = []State{StateLoginDetails, StateAddress, StateContacts, StateComplete}

var stateTitles = map[State]string{
	StateLoginDetails: "Login Details",
	StateAddress:      "Address",
	StateContacts:     "Contact Details & Profile",
	StateComplete:     "Complete",
}

var ErrWrongStep = errors.New("step data does not match wizard state")

// Number is the 1-based position shown in the progress bar.
func (s State) Number() int {
	for i, v := range states {
		if v == s {
			return i + 1
		}
	}
	return 0
}

func (s State) Title() string {
	return stateTitles[s]
}

func (s State) valid() bool {
	return s.Number() > 0
}

// Step is one entry of the progress bar.
type Step struct {
	Number int
	Title  string
	Done   bool
	Active bool
}

type Wizard struct {
	draft Draft
}

// NewWizard resumes a wizard from a stored draft. An empty or unknown
// state restarts at login details.
func NewWizard(d Draft) *Wizard {
	if !d.State.valid() {
		d.State = StateLoginDetails
	}
	return &Wizard{draft: d}
}

func (w *Wizard) State() State { return w.draft.State }

func (w *Wizard) Draft() Draft { return w.draft }

func (w *Wizard) CompanyID() string { return w.draft.CompanyID }

func (w *Wizard) setCompanyID(id string) { w.draft.CompanyID = id }

// Save stores step data into the section owned by the current state
// without moving.
func (w *Wizard) Save(step any) error {
	switch v := step.(type) {
	case LoginDetails:
		if w.draft.State != StateLoginDetails {
			return fmt.Errorf("%w: login details in %s", ErrWrongStep, w.draft.State)
		}
		w.draft.Login = v
	case AddressDetails:
		if w.draft.State != StateAddress {
			return fmt.Errorf("%w: address in %s", ErrWrongStep, w.draft.State)
		}
		w.draft.Address = v
	case ContactDetails:
		if w.draft.State != StateContacts {
			return fmt.Errorf("%w: contacts in %s", ErrWrongStep, w.draft.State)
		}
		w.draft.Contacts = v
	default:
		return fmt.Errorf("%w: %T", ErrWrongStep, step)
	}
	return nil
}

// Advance saves the step data and moves to the next state.
func (w *Wizard) Advance(step any) error {
	if err := w.Save(step); err != nil {
		return err
	}
	w.draft.State = states[w.draft.State.Number()]
	return nil
}

// Retreat moves back one state. It is a no-op on the first step and once
// the wizard is complete.
func (w *Wizard) Retreat() {
	n := w.draft.State.Number()
	if n <= 1 || w.draft.State == StateComplete {
		return
	}
	w.draft.State = states[n-2]
}

// Steps lists the three form steps for the progress bar.
func (w *Wizard) Steps() []Step {
	current := w.draft.State.Number()
	steps := make([]Step, 0, 3)
	for _, s := range states[:3] {
		steps = append(steps, Step{
			Number: s.Number(),
			Title:  s.Title(),
			Done:   s.Number() < current,
			Active: s.Number() == current,
		})
	}
	return steps
}
