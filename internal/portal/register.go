package portal

import (
	"errors"
	"net/http"
	"strings"

	"expo-portal/internal/expoapi"
	"expo-portal/internal/registration"
	"expo-portal/internal/session"
)

type registerPage struct {
	State      registration.State
	Steps      []registration.Step
	Draft      registration.Draft
	Errors     map[string]string
	Message    string
	States     []string
	Categories []string
}

// loadWizard resumes the visitor's wizard from the session, or starts a
// new one.
func (h *Handler) loadWizard(r *http.Request) *registration.Wizard {
	draft := registration.NewDraft()
	if s := session.FromContext(r.Context()); s != nil {
		ok, err := s.LoadDraft(r.Context(), &draft)
		if err != nil {
			h.Logger.Warn("WIZARD", "discarding unreadable draft: "+err.Error())
			draft = registration.NewDraft()
		} else if !ok {
			draft = registration.NewDraft()
		}
	}
	return registration.NewWizard(draft)
}

func (h *Handler) saveWizard(r *http.Request, w *registration.Wizard) {
	s := session.FromContext(r.Context())
	if s == nil {
		return
	}
	if err := s.SaveDraft(r.Context(), w.Draft()); err != nil {
		h.Logger.Error("WIZARD", "failed to save draft: "+err.Error())
	}
}

func (h *Handler) renderWizard(rw http.ResponseWriter, r *http.Request, status int, w *registration.Wizard, errs map[string]string, message string) {
	h.render(rw, r, status, "register", "Exhibitor Registration", registerPage{
		State:      w.State(),
		Steps:      w.Steps(),
		Draft:      w.Draft(),
		Errors:     errs,
		Message:    message,
		States:     registration.IndianStates,
		Categories: registration.ExhibitorCategories,
	})
}

func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("restart") != "" {
		if s := session.FromContext(r.Context()); s != nil {
			_ = s.ClearDraft(r.Context())
		}
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}
	wiz := h.loadWizard(r)
	if wiz.State() == registration.StateComplete {
		h.finishRegistration(w, r, wiz)
		return
	}
	h.renderWizard(w, r, http.StatusOK, wiz, nil, "")
}

// RegisterSubmit handles the wizard form. The action field selects between
// submitting the step, going back, and copying owner details
// (copy:<target>).
func (h *Handler) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form", "The form could not be read. Please try again.", "/register")
		return
	}
	wiz := h.loadWizard(r)

	action := r.PostForm.Get("action")
	switch {
	case action == "back":
		wiz.Retreat()
		h.saveWizard(r, wiz)
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	case strings.HasPrefix(action, "copy:"):
		if wiz.State() == registration.StateContacts {
			contacts := registration.ContactDetailsFromForm(r.PostForm)
			contacts.CopyOwnerTo(strings.TrimPrefix(action, "copy:"))
			_ = wiz.Save(contacts)
			h.saveWizard(r, wiz)
		}
		h.renderWizard(w, r, http.StatusOK, wiz, nil, "")
		return
	}

	var step any
	switch wiz.State() {
	case registration.StateLoginDetails:
		step = registration.LoginDetailsFromForm(r.PostForm)
	case registration.StateAddress:
		step = registration.AddressDetailsFromForm(r.PostForm)
	case registration.StateContacts:
		step = registration.ContactDetailsFromForm(r.PostForm)
	default:
		h.finishRegistration(w, r, wiz)
		return
	}

	err := h.Registration.Submit(r.Context(), wiz, step)
	h.saveWizard(r, wiz)
	if err != nil {
		h.wizardFailed(w, r, wiz, err)
		return
	}

	if wiz.State() == registration.StateComplete {
		h.finishRegistration(w, r, wiz)
		return
	}
	http.Redirect(w, r, "/register", http.StatusSeeOther)
}

func (h *Handler) wizardFailed(w http.ResponseWriter, r *http.Request, wiz *registration.Wizard, err error) {
	if h.handleUnauthorized(w, r, err) {
		return
	}
	var verrs registration.ValidationErrors
	var apiErr *expoapi.APIError
	switch {
	case errors.As(err, &verrs):
		h.renderWizard(w, r, http.StatusUnprocessableEntity, wiz, verrs, "Please correct the highlighted fields.")
	case errors.Is(err, registration.ErrNoCompany):
		h.renderWizard(w, r, http.StatusConflict, wiz, nil,
			"Your registration session was lost. Please start again from step 1.")
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = "Registration failed. Please try again."
		}
		h.renderWizard(w, r, http.StatusUnprocessableEntity, wiz, apiErr.FieldErrors(), msg)
	default:
		h.Logger.Error("WIZARD", "step failed: "+err.Error())
		h.renderWizard(w, r, http.StatusBadGateway, wiz, nil, "Registration failed. Please try again.")
	}
}

// finishRegistration drops the draft and sends the exhibitor to log in
// with their email prefilled.
func (h *Handler) finishRegistration(w http.ResponseWriter, r *http.Request, wiz *registration.Wizard) {
	if s := session.FromContext(r.Context()); s != nil {
		if err := s.ClearDraft(r.Context()); err != nil {
			h.Logger.Error("WIZARD", "failed to clear draft: "+err.Error())
		}
		_ = s.SetFlash(r.Context(), session.FlashMessage{
			Kind:    session.FlashSuccess,
			Message: "Registration completed successfully! Please login with your credentials.",
			Email:   wiz.Draft().LoginEmail(),
		})
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
