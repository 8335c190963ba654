// Package portal serves the exhibitor and visitor pages.
package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"expo-portal/internal/auth"
	"expo-portal/internal/booking"
	"expo-portal/internal/expoapi"
	"expo-portal/internal/logger"
	"expo-portal/internal/models"
	"expo-portal/internal/registration"
	"expo-portal/internal/session"
	"expo-portal/internal/visitors"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ExhibitorAPI is the part of the expo API client the pages read from
// directly. Writes go through the registration and booking services.
type ExhibitorAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error)
	Logout(ctx context.Context, token string) error
	Dashboard(ctx context.Context, token string) (*models.DashboardData, error)
	StallLayout(ctx context.Context, token string) (*models.HallLayout, error)
	CompanyStalls(ctx context.Context, token string) ([]models.Stall, error)
	StallDetails(ctx context.Context, token, stallNumber string) (*models.StallDetails, error)
	PaymentSchedule(ctx context.Context, token string) (*models.PaymentSchedule, error)
}

type Handler struct {
	API          ExhibitorAPI
	Registration *registration.Service
	Booking      *booking.Service
	Visitors     *visitors.Service
	Sessions     *session.Manager
	DefaultHall  string
	Logger       *logger.Logger
	pages        pages
}

func NewHandler(api ExhibitorAPI, reg *registration.Service, book *booking.Service, vis *visitors.Service,
	sessions *session.Manager, defaultHall string, log *logger.Logger) (*Handler, error) {
	p, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Handler{
		API:          api,
		Registration: reg,
		Booking:      book,
		Visitors:     vis,
		Sessions:     sessions,
		DefaultHall:  defaultHall,
		Logger:       log,
		pages:        p,
	}, nil
}

// Routes builds the router with the portal middleware stack.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(h.Sessions.Middleware)

	h.RegisterRoutes(r)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.renderError(w, r, http.StatusNotFound, "Page not found", "The page you are looking for does not exist.", "/")
	})
	return r
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Get("/", h.Home)

	r.Get("/visitors", h.VisitorForm)
	r.Post("/visitors", h.RegisterVisitor)
	r.Route("/visitor/{id}", func(r chi.Router) {
		r.Get("/card", h.VisitorCard)
		r.Get("/card.pdf", h.VisitorCardPDF)
		r.Get("/card/qr.png", h.VisitorQR)
	})

	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.RegisterSubmit)
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireLogin(h.Logger))
		r.Get("/dashboard", h.Dashboard)
		r.Post("/dashboard/payment", h.DemoPayment)
		r.Get("/hall-layout", h.HallLayout)
		r.Post("/hall-layout/book", h.BookStall)
		r.Get("/payment/{stallNumber}", h.Payment)
		r.Post("/payment/{stallNumber}", h.SubmitPayment)
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	sendJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.Logger.LogAPI(r.Method, r.URL.Path, fmt.Sprint(status), time.Since(start).String())
	})
}

func sendJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// handleUnauthorized ends the session and sends the browser to /login when
// err is a 401 from the expo API. It reports whether it did so.
func (h *Handler) handleUnauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	if !expoapi.IsUnauthorized(err) {
		return false
	}
	if s := session.FromContext(r.Context()); s != nil {
		if cerr := s.Clear(r.Context()); cerr != nil {
			h.Logger.Error("SESSION", "failed to clear session: "+cerr.Error())
		}
		h.flash(r, session.FlashInfo, "Your session has expired. Please login again.")
		h.Logger.LogSession("expired", s.ID(), "cleared after 401 on "+r.URL.Path)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}

func (h *Handler) flash(r *http.Request, kind, message string) {
	s := session.FromContext(r.Context())
	if s == nil {
		return
	}
	if err := s.SetFlash(r.Context(), session.FlashMessage{Kind: kind, Message: message}); err != nil {
		h.Logger.Error("SESSION", "failed to store flash: "+err.Error())
	}
}
