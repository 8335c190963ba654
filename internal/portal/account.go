package portal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"expo-portal/internal/auth"
	"expo-portal/internal/booking"
	"expo-portal/internal/dashboard"
	"expo-portal/internal/expoapi"
	"expo-portal/internal/models"
	"expo-portal/internal/session"
)

type loginPage struct {
	Email   string
	Errors  map[string]string
	Message string
}

// LoginForm prefills the email from the flash left by registration.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if s := session.FromContext(r.Context()); s != nil && s.Authenticated(r.Context()) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "login", "Exhibitor Login", loginPage{})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form", "The form could not be read. Please try again.", "/login")
		return
	}
	req := models.LoginRequest{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}

	errs := map[string]string{}
	if req.Email == "" {
		errs["email"] = "Email is required"
	}
	if req.Password == "" {
		errs["password"] = "Password is required"
	}
	if len(errs) > 0 {
		h.render(w, r, http.StatusUnprocessableEntity, "login", "Exhibitor Login",
			loginPage{Email: req.Email, Errors: errs})
		return
	}

	result, err := h.API.Login(r.Context(), req)
	if err != nil {
		msg := expoapi.UserMessage(err, "Login failed. Please try again.")
		if expoapi.IsUnauthorized(err) {
			msg = "Invalid email or password."
			if cerr := session.FromContext(r.Context()).Clear(r.Context()); cerr != nil {
				h.Logger.Error("SESSION", "failed to clear session: "+cerr.Error())
			}
		}
		h.Logger.LogSecurity("login_failed", req.Email)
		h.render(w, r, http.StatusUnauthorized, "login", "Exhibitor Login",
			loginPage{Email: req.Email, Message: msg})
		return
	}

	s := session.FromContext(r.Context())
	if err := s.SetAuth(r.Context(), result.Token, result.Company); err != nil {
		h.Logger.Error("SESSION", "failed to store login: "+err.Error())
		h.renderError(w, r, http.StatusInternalServerError, "Login failed",
			"We could not start your session. Please try again.", "/login")
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout tells the API to drop the token, then clears the session whatever
// the API answered.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if token, _ := s.Token(r.Context()); token != "" {
		if err := h.API.Logout(r.Context(), token); err != nil && !expoapi.IsUnauthorized(err) {
			h.Logger.Warn("AUTH", "logout call failed: "+err.Error())
		}
	}
	if err := s.Clear(r.Context()); err != nil {
		h.Logger.Error("SESSION", "failed to clear session: "+err.Error())
	}
	h.flash(r, session.FlashInfo, "You have been logged out.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

type dashboardPage struct {
	Company  models.Company
	Event    models.Event
	Progress dashboard.Progress
	Amount   float64
	Warning  string
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := auth.Token(ctx)
	company := *auth.Company(ctx)
	page := dashboardPage{Event: models.Event{}.WithDefaults(), Amount: h.Booking.Amount()}

	data, err := h.API.Dashboard(ctx, token)
	switch {
	case h.handleUnauthorized(w, r, err):
		return
	case err != nil:
		h.Logger.Warn("DASHBOARD", "dashboard fetch failed: "+err.Error())
		page.Warning = "Some dashboard details could not be loaded."
	default:
		page.Event = data.Event.WithDefaults()
		if data.Company.ID != "" {
			data.Company.AmountPaid = maxAmount(data.Company.AmountPaid, company.AmountPaid)
			company = data.Company
			if err := session.FromContext(ctx).SaveCompany(ctx, company); err != nil {
				h.Logger.Error("SESSION", "failed to refresh company: "+err.Error())
			}
		}
	}

	companyStalls, err := h.API.CompanyStalls(ctx, token)
	if h.handleUnauthorized(w, r, err) {
		return
	}
	if err != nil {
		h.Logger.Warn("DASHBOARD", "company stalls fetch failed: "+err.Error())
		page.Warning = "Some dashboard details could not be loaded."
	}

	page.Company = company
	page.Progress = dashboard.Compute(companyStalls, company)
	h.render(w, r, http.StatusOK, "dashboard", "Dashboard", page)
}

// maxAmount keeps a locally recorded demo payment when the API still reports
// less.
func maxAmount(a, b models.FlexFloat) models.FlexFloat {
	if b.Float() > a.Float() {
		return b
	}
	return a
}

// DemoPayment pays the demo amount for the company's first stall.
func (h *Handler) DemoPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := auth.Token(ctx)
	company := *auth.Company(ctx)
	s := session.FromContext(ctx)

	companyStalls, err := h.API.CompanyStalls(ctx, token)
	if h.handleUnauthorized(w, r, err) {
		return
	}
	if err != nil {
		h.flash(r, session.FlashError, expoapi.UserMessage(err, booking.PaymentFailedMessage))
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	req := booking.Request{SessionID: s.ID(), CompanyID: company.ID.String()}
	updated, err := h.Booking.DemoPayment(ctx, token, req, company, companyStalls)
	switch {
	case h.handleUnauthorized(w, r, err):
		return
	case errors.Is(err, booking.ErrNoStall):
		h.flash(r, session.FlashError, booking.NoStallMessage)
	case errors.Is(err, booking.ErrInProgress):
		h.flash(r, session.FlashInfo, "A payment for this stall is already in progress.")
	case err != nil:
		h.flash(r, session.FlashError, expoapi.UserMessage(err, booking.PaymentFailedMessage))
	default:
		if err := s.SaveCompany(ctx, updated); err != nil {
			h.Logger.Error("SESSION", "failed to save company after payment: "+err.Error())
		}
		h.flash(r, session.FlashSuccess, fmt.Sprintf("Payment of %s processed successfully!", formatMoney(h.Booking.Amount())))
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
