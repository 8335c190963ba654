package portal

import (
	"fmt"
	"net/http"

	"expo-portal/internal/auth"
	"expo-portal/internal/booking"
	"expo-portal/internal/expoapi"
	"expo-portal/internal/models"
	"expo-portal/internal/session"
	"expo-portal/internal/stalls"

	"github.com/go-chi/chi/v5"
)

type paymentPage struct {
	Details         models.StallDetails
	Sides           stalls.Sides
	Schedule        *models.PaymentSchedule
	ScheduleMissing bool
	Owned           bool
	Bookable        bool
	Amount          float64
	Methods         []struct {
		Value models.PaymentMethod
		Label string
	}
}

func (h *Handler) Payment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := auth.Token(ctx)
	number := chi.URLParam(r, "stallNumber")

	details, err := h.API.StallDetails(ctx, token, number)
	if h.handleUnauthorized(w, r, err) {
		return
	}
	if err != nil {
		h.renderError(w, r, http.StatusBadGateway, "Stall unavailable",
			expoapi.UserMessage(err, "Failed to load stall details."), "/hall-layout")
		return
	}

	page := paymentPage{
		Details: *details,
		Sides:   stalls.ResolveOpenSides(details.Stall),
		Amount:  h.Booking.Amount(),
		Methods: models.PaymentMethods,
	}

	schedule, err := h.API.PaymentSchedule(ctx, token)
	if h.handleUnauthorized(w, r, err) {
		return
	}
	if err != nil {
		h.Logger.Warn("PAYMENT", "payment schedule fetch failed: "+err.Error())
		page.ScheduleMissing = true
	} else {
		page.Schedule = schedule
	}

	companyStalls, err := h.API.CompanyStalls(ctx, token)
	if h.handleUnauthorized(w, r, err) {
		return
	}
	if err != nil {
		h.Logger.Warn("PAYMENT", "company stalls fetch failed: "+err.Error())
	}
	status := stalls.NewMembership(companyStalls, nil).SelectionStatus(details.Stall)
	page.Owned = status == stalls.StatusOwned
	page.Bookable = status == stalls.StatusAvailable

	h.render(w, r, http.StatusOK, "payment", "Payment Details", page)
}

// SubmitPayment books and pays for a new stall, or pays for one the
// company already holds when action=pay.
func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form", "The form could not be read. Please try again.", r.URL.Path)
		return
	}
	ctx := r.Context()
	token := auth.Token(ctx)
	number := chi.URLParam(r, "stallNumber")
	req := booking.Request{
		SessionID:   session.FromContext(ctx).ID(),
		CompanyID:   auth.Company(ctx).ID.String(),
		StallNumber: number,
		HallNumber:  r.PostForm.Get("hall_number"),
		Method:      models.ParsePaymentMethod(r.PostForm.Get("payment_method")),
	}

	var err error
	if r.PostForm.Get("action") == "pay" {
		err = h.Booking.CompletePayment(ctx, token, req)
	} else {
		_, err = h.Booking.BookStall(ctx, token, req)
	}
	if h.handleUnauthorized(w, r, err) {
		return
	}
	if err != nil {
		h.bookingFailed(r, err)
		http.Redirect(w, r, "/payment/"+number, http.StatusSeeOther)
		return
	}

	h.flash(r, session.FlashSuccess, fmt.Sprintf("Payment of %s for stall %s processed successfully!",
		formatMoney(h.Booking.Amount()), number))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
