package portal

import (
	"errors"
	"net/http"

	"expo-portal/internal/expoapi"
	"expo-portal/internal/models"
	"expo-portal/internal/visitors"

	"github.com/go-chi/chi/v5"
)

type homePage struct {
	Event models.Event
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home", "Welcome", homePage{Event: models.Event{}.WithDefaults()})
}

type visitorFormPage struct {
	Form         models.VisitorForm
	Errors       visitors.FormErrors
	Message      string
	Registration *visitors.Registration
	// Warning is set when the visitor exists but the card mail failed.
	Warning string
}

func (h *Handler) VisitorForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "visitors", "Visitor Registration", visitorFormPage{})
}

func (h *Handler) RegisterVisitor(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form", "The form could not be read. Please try again.", "/visitors")
		return
	}
	form := visitors.FormFromValues(r.PostForm)

	reg, err := h.Visitors.Register(r.Context(), form)
	if err == nil {
		h.render(w, r, http.StatusOK, "visitors", "Registration Successful", visitorFormPage{Registration: reg})
		return
	}

	if h.handleUnauthorized(w, r, err) {
		return
	}

	var formErrs visitors.FormErrors
	switch {
	case errors.As(err, &formErrs):
		h.render(w, r, http.StatusUnprocessableEntity, "visitors", "Visitor Registration",
			visitorFormPage{Form: form, Errors: formErrs})
	case reg != nil:
		h.render(w, r, http.StatusOK, "visitors", "Registration Successful", visitorFormPage{
			Registration: reg,
			Warning:      "You are registered, but we could not email your visitor card. Save the QR code below.",
		})
	default:
		page := visitorFormPage{Form: form, Message: expoapi.UserMessage(err, "Registration failed. Please try again.")}
		var apiErr *expoapi.APIError
		if errors.As(err, &apiErr) {
			page.Errors = apiErr.FieldErrors()
		}
		h.render(w, r, http.StatusBadGateway, "visitors", "Visitor Registration", page)
	}
}

type visitorCardPage struct {
	ID     string
	Card   *visitors.Card
	Result visitors.LookupResult
}

func (h *Handler) VisitorCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result := h.Visitors.Lookup(r.Context(), id)
	if h.handleUnauthorized(w, r, result.AuthErr) {
		return
	}
	if !result.Found() {
		h.render(w, r, http.StatusNotFound, "visitor_card", "Visitor Not Found", visitorCardPage{ID: id, Result: result})
		return
	}

	card, err := h.Visitors.Card(*result.Visitor)
	if err != nil {
		h.Logger.Error("VISITOR", "failed to build card: "+err.Error())
		h.renderError(w, r, http.StatusInternalServerError, "Card unavailable",
			"The visitor card could not be generated. Please try again.", r.URL.Path)
		return
	}
	h.render(w, r, http.StatusOK, "visitor_card", "Visitor Card", visitorCardPage{ID: id, Card: &card, Result: result})
}

func (h *Handler) VisitorCardPDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result := h.Visitors.Lookup(r.Context(), id)
	if h.handleUnauthorized(w, r, result.AuthErr) {
		return
	}
	if !result.Found() {
		h.renderError(w, r, http.StatusNotFound, "Visitor not found",
			"We could not find this visitor. Check the visitor ID and try again.", "/visitor/"+id+"/card")
		return
	}

	pdf, err := h.Visitors.CardPDF(*result.Visitor)
	if err != nil {
		h.Logger.Error("VISITOR", "failed to render card PDF: "+err.Error())
		status := http.StatusInternalServerError
		if errors.Is(err, visitors.ErrNoFont) {
			status = http.StatusServiceUnavailable
		}
		h.renderError(w, r, status, "PDF unavailable",
			"The printable card is not available right now. You can print this page instead.", "/visitor/"+id+"/card")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="visitor-card-`+visitors.VisitorCode(result.Visitor.ID.String())+`.pdf"`)
	_, _ = w.Write(pdf)
}

// VisitorQR serves the QR of the card URL. It depends on the id only.
func (h *Handler) VisitorQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Visitors.QRPNG(chi.URLParam(r, "id"))
	if err != nil {
		h.Logger.Error("VISITOR", "failed to encode QR: "+err.Error())
		http.Error(w, "failed to generate QR code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(png)
}
