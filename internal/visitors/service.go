package visitors

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"expo-portal/internal/kafka"
	"expo-portal/internal/logger"
	"expo-portal/internal/models"
)

// API is the part of the expo API client used for visitors.
type API interface {
	Fetcher
	CreateVisitor(ctx context.Context, form models.VisitorForm) (*models.Visitor, error)
	UploadVisitorQRCode(ctx context.Context, req models.VisitorQRCodeRequest) (string, error)
}

// FormErrors maps visitor form fields to messages.
type FormErrors map[string]string

func (f FormErrors) Error() string {
	return fmt.Sprintf("visitor form has %d invalid fields", len(f))
}

var formMessages = map[string]string{
	"visitor_name": "Visitor name is required",
	"mobile":       "Mobile is required",
	"email":        "Email is required",
}

var formValidator = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	return v
}()

// ValidateForm checks the fields the registration needs.
func ValidateForm(form models.VisitorForm) error {
	err := formValidator.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := FormErrors{}
	for _, fe := range verrs {
		msg, ok := formMessages[fe.Field()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		errs[fe.Field()] = msg
	}
	return errs
}

func FormFromValues(values url.Values) models.VisitorForm {
	get := func(k string) string { return strings.TrimSpace(values.Get(k)) }
	return models.VisitorForm{
		VisitorName:  get("visitor_name"),
		BusinessName: get("bussiness_name"),
		Mobile:       get("mobile"),
		Phone:        get("phone"),
		WhatsappNo:   get("whatsapp_no"),
		Email:        get("email"),
		City:         get("city"),
		Town:         get("town"),
		Village:      get("village"),
		Remark:       get("remark"),
	}
}

// Registration is the outcome of a visitor sign-up.
type Registration struct {
	Visitor     models.Visitor
	CardURL     string
	QRDataURL   string
	EmailStatus string
}

type Service struct {
	api       API
	resolver  *Resolver
	qr        *QRGenerator
	pdf       *CardPDFGenerator
	origin    string
	publisher kafka.Publisher
	logger    *logger.Logger
	now       func() time.Time
}

func NewService(api API, origin string, lookupTimeout time.Duration, pdf *CardPDFGenerator, publisher kafka.Publisher, log *logger.Logger) *Service {
	if publisher == nil {
		publisher = kafka.NoopPublisher{}
	}
	return &Service{
		api:       api,
		resolver:  NewResolver(api, lookupTimeout, log),
		qr:        NewQRGenerator(),
		pdf:       pdf,
		origin:    origin,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

func (s *Service) Origin() string { return s.origin }

func (s *Service) Lookup(ctx context.Context, id string) LookupResult {
	return s.resolver.Lookup(ctx, id)
}

// Register creates the visitor, encodes its card URL as a QR and hands the
// QR to the API for mailing. When the upload fails the created visitor is
// still returned alongside the error.
func (s *Service) Register(ctx context.Context, form models.VisitorForm) (*Registration, error) {
	if err := ValidateForm(form); err != nil {
		return nil, err
	}

	visitor, err := s.api.CreateVisitor(ctx, form)
	if err != nil {
		s.logger.LogVisitor("create_failed", "-", err.Error())
		return nil, err
	}
	id := visitor.ID.String()
	reg := &Registration{Visitor: *visitor, CardURL: CardURL(s.origin, id)}
	s.logger.LogVisitor("created", id, visitor.VisitorName)

	b64, err := s.qr.Base64(reg.CardURL)
	if err != nil {
		return reg, fmt.Errorf("failed to generate QR code: %w", err)
	}
	reg.QRDataURL = pngDataPrefix + b64

	business := form.BusinessName
	if business == "" {
		business = "N/A"
	}
	status, err := s.api.UploadVisitorQRCode(ctx, models.VisitorQRCodeRequest{
		VisitorID:  id,
		QRCodeData: b64,
		Metadata: models.QRCodeMetadata{
			Name:              form.VisitorName,
			Email:             form.Email,
			Mobile:            form.Mobile,
			Business:          business,
			GeneratedAt:       s.now().UTC().Format(time.RFC3339),
			FrontendGenerated: true,
		},
	})
	if err != nil {
		s.logger.LogVisitor("qrcode_failed", id, err.Error())
		return reg, err
	}
	reg.EmailStatus = status

	if err := s.publisher.Publish(ctx, models.PortalEvent{
		Type:      models.EventVisitorRegistered,
		VisitorID: id,
		Timestamp: s.now().UTC(),
	}); err != nil {
		s.logger.Warn("KAFKA", fmt.Sprintf("failed to publish visitor %s: %v", id, err))
	}
	s.logger.LogVisitor("registered", id, "email "+status)
	return reg, nil
}

// Card builds the card view for a found visitor.
func (s *Service) Card(v models.Visitor) (Card, error) {
	var dataURL string
	if v.QRCodeURL == "" {
		var err error
		dataURL, err = s.qr.DataURL(CardURL(s.origin, v.ID.String()))
		if err != nil {
			return Card{}, err
		}
	}
	return NewCard(v, s.origin, dataURL), nil
}

// QRPNG encodes the card URL of visitor id.
func (s *Service) QRPNG(id string) ([]byte, error) {
	return s.qr.PNG(CardURL(s.origin, id))
}

// CardPDF renders the printable card for v.
func (s *Service) CardPDF(v models.Visitor) ([]byte, error) {
	if s.pdf == nil {
		return nil, ErrNoFont
	}
	card := NewCard(v, s.origin, "")
	png, err := s.QRPNG(v.ID.String())
	if err != nil {
		return nil, err
	}
	return s.pdf.Generate(card, png)
}
