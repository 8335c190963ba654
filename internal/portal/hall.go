package portal

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"expo-portal/internal/auth"
	"expo-portal/internal/booking"
	"expo-portal/internal/expoapi"
	"expo-portal/internal/models"
	"expo-portal/internal/session"
	"expo-portal/internal/stalls"
)

type hallPage struct {
	Halls    []string
	Hall     string
	Grid     stalls.Grid
	Counts   map[stalls.Status]int
	Statuses []stalls.Status

	Selected       *models.StallDetails
	SelectedSides  stalls.Sides
	SelectedStatus stalls.Status
	DetailError    string

	Methods []struct {
		Value models.PaymentMethod
		Label string
	}
	Amount float64
}

func (p hallPage) SelectedOwned() bool { return p.SelectedStatus == stalls.StatusOwned }

// SelectedBookable reports whether the detail panel offers the booking form.
func (p hallPage) SelectedBookable() bool { return p.SelectedStatus == stalls.StatusAvailable }

var legendOrder = []stalls.Status{stalls.StatusAvailable, stalls.StatusOwned, stalls.StatusBooked, stalls.StatusUnavailable}

func (h *Handler) HallLayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := auth.Token(ctx)

	layout, err := h.API.StallLayout(ctx, token)
	if h.handleUnauthorized(w, r, err) {
		return
	}
	if err != nil {
		h.Logger.Error("HALL", "stall layout fetch failed: "+err.Error())
		h.renderError(w, r, http.StatusBadGateway, "Hall layout unavailable",
			expoapi.UserMessage(err, "Failed to load stall layout. Please try again."), "/hall-layout")
		return
	}

	companyStalls, err := h.API.CompanyStalls(ctx, token)
	if h.handleUnauthorized(w, r, err) {
		return
	}
	if err != nil {
		h.Logger.Warn("HALL", "company stalls fetch failed: "+err.Error())
	}

	h.renderHall(w, r, layout, companyStalls, r.URL.Query().Get("hall"), r.URL.Query().Get("stall"))
}

// renderHall shows the chosen hall, plus the detail panel of selected when
// set. Stall details are fetched on every selection.
func (h *Handler) renderHall(w http.ResponseWriter, r *http.Request, layout *models.HallLayout, companyStalls []models.Stall, hall, selected string) {
	hall = stalls.SelectHall(layout, hall, h.DefaultHall)
	grid := stalls.BuildGrid(layout.Halls[hall], companyStalls, layout.BookedStalls)
	page := hallPage{
		Halls:    stalls.HallNames(layout),
		Hall:     hall,
		Grid:     grid,
		Counts:   grid.StatusCounts(),
		Statuses: legendOrder,
		Methods:  models.PaymentMethods,
		Amount:   h.Booking.Amount(),
	}

	if selected = strings.TrimSpace(selected); selected != "" {
		details, err := h.API.StallDetails(r.Context(), auth.Token(r.Context()), selected)
		if h.handleUnauthorized(w, r, err) {
			return
		}
		if err != nil {
			h.Logger.Warn("HALL", fmt.Sprintf("stall %s details failed: %v", selected, err))
			page.DetailError = expoapi.UserMessage(err, "Failed to load stall details.")
		} else {
			page.Selected = details
			page.SelectedSides = stalls.ResolveOpenSides(details.Stall)
			page.SelectedStatus = stalls.NewMembership(companyStalls, layout.BookedStalls).SelectionStatus(details.Stall)
		}
	}

	h.render(w, r, http.StatusOK, "hall_layout", "Hall Layout", page)
}

func hallURL(hall, stall string) string {
	q := url.Values{}
	if hall != "" {
		q.Set("hall", hall)
	}
	if stall != "" {
		q.Set("stall", stall)
	}
	if len(q) == 0 {
		return "/hall-layout"
	}
	return "/hall-layout?" + q.Encode()
}

// BookStall books and pays for the stall picked on the hall layout. On
// success the refreshed lists are rendered directly.
func (h *Handler) BookStall(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form", "The form could not be read. Please try again.", "/hall-layout")
		return
	}
	ctx := r.Context()
	s := session.FromContext(ctx)
	company := auth.Company(ctx)
	req := booking.Request{
		SessionID:   s.ID(),
		CompanyID:   company.ID.String(),
		StallNumber: strings.TrimSpace(r.PostForm.Get("stall_number")),
		HallNumber:  strings.TrimSpace(r.PostForm.Get("hall_number")),
		Method:      models.ParsePaymentMethod(r.PostForm.Get("payment_method")),
	}
	back := hallURL(req.HallNumber, req.StallNumber)

	result, err := h.Booking.BookStall(ctx, auth.Token(ctx), req)
	if h.handleUnauthorized(w, r, err) {
		return
	}
	if err != nil && result == nil {
		h.bookingFailed(r, err)
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	h.flash(r, session.FlashSuccess, fmt.Sprintf("Stall %s booked successfully! Payment of %s processed.",
		req.StallNumber, formatMoney(result.Booking.PaidAmount)))
	if result.Layout == nil || result.CompanyStalls == nil {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	h.renderHall(w, r, result.Layout, result.CompanyStalls, result.Booking.HallNumber, req.StallNumber)
}

func (h *Handler) bookingFailed(r *http.Request, err error) {
	switch {
	case errors.Is(err, booking.ErrNoStall):
		h.flash(r, session.FlashError, "Please select a stall first.")
	case errors.Is(err, booking.ErrInProgress):
		h.flash(r, session.FlashInfo, "A booking for this stall is already in progress.")
	default:
		h.flash(r, session.FlashError, expoapi.UserMessage(err, booking.BookingFailedMessage))
	}
}
