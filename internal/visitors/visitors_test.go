package visitors

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/png"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"expo-portal/internal/expoapi"
	"expo-portal/internal/logger"
	"expo-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	bodies map[string]string
	errs   map[string]error
	calls  []string
}

func (f *fakeFetcher) GetRaw(ctx context.Context, path string) ([]byte, error) {
	f.calls = append(f.calls, path)
	if err, ok := f.errs[path]; ok {
		return nil, err
	}
	if body, ok := f.bodies[path]; ok {
		return []byte(body), nil
	}
	return nil, &expoapi.APIError{Status: 404, Message: "Not Found"}
}

type slowFetcher struct{}

func (slowFetcher) GetRaw(ctx context.Context, path string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) GetRaw(ctx context.Context, path string) ([]byte, error) {
	args := m.Called(ctx, path)
	raw, _ := args.Get(0).([]byte)
	return raw, args.Error(1)
}

func (m *MockAPI) CreateVisitor(ctx context.Context, form models.VisitorForm) (*models.Visitor, error) {
	args := m.Called(ctx, form)
	v, _ := args.Get(0).(*models.Visitor)
	return v, args.Error(1)
}

func (m *MockAPI) UploadVisitorQRCode(ctx context.Context, req models.VisitorQRCodeRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type capturePublisher struct {
	mu     sync.Mutex
	events []models.PortalEvent
}

func (c *capturePublisher) Publish(_ context.Context, e models.PortalEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

func TestLookup_FallsBackToSecondPath(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		"/visitors/15": `{"data":{"id":15,"visitor_name":"Asha Rao","email":"asha@example.com"}}`,
	}}
	r := NewResolver(f, time.Second, logger.Discard())

	result := r.Lookup(context.Background(), "15")

	require.True(t, result.Found())
	assert.NoError(t, result.Err())
	assert.Equal(t, "Asha Rao", result.Visitor.VisitorName)
	assert.Equal(t, "/visitors/15#data", result.Source)
	assert.Equal(t, []string{"/visitors/15/view", "/visitors/15"}, f.calls)
	require.Len(t, result.Attempts, 2)
	assert.NotEmpty(t, result.Attempts[0].Err)
	assert.Empty(t, result.Hints)
}

func TestLookup_FirstPathWins(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		"/visitors/15/view": `{"visitor":{"id":"15","visitor_name":"Asha Rao"}}`,
		"/visitors/15":      `{"data":{"id":15,"visitor_name":"Someone Else"}}`,
	}}
	r := NewResolver(f, time.Second, logger.Discard())

	result := r.Lookup(context.Background(), "15")

	require.True(t, result.Found())
	assert.Equal(t, "Asha Rao", result.Visitor.VisitorName)
	assert.Equal(t, "/visitors/15/view#visitor", result.Source)
	assert.Len(t, f.calls, 1)
}

func TestLookup_SuccessFalseIsAMiss(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		"/visitors/15/view": `{"success":false,"message":"Visitor not found","data":{"id":15}}`,
		"/visitors/15":      `{"id":15,"visitor_name":"Asha Rao"}`,
	}}
	r := NewResolver(f, time.Second, logger.Discard())

	result := r.Lookup(context.Background(), "15")

	require.True(t, result.Found())
	assert.Equal(t, "/visitors/15#raw", result.Source)
	assert.Equal(t, "Visitor not found", result.Attempts[0].Err)
}

func TestLookup_NotFound(t *testing.T) {
	f := &fakeFetcher{
		bodies: map[string]string{"/visitors/99": `{"success":true,"data":[]}`},
		errs:   map[string]error{"/visitors/99/view": errors.New("connection refused")},
	}
	r := NewResolver(f, time.Second, logger.Discard())

	result := r.Lookup(context.Background(), "99")

	assert.False(t, result.Found())
	assert.Equal(t, NotFound, result.Outcome)
	assert.ErrorIs(t, result.Err(), ErrNotFound)
	assert.Nil(t, result.Visitor)
	assert.Len(t, result.Attempts, 2)
	assert.Equal(t, notFoundHints, result.Hints)
}

func TestLookup_UnauthorizedStops(t *testing.T) {
	f := &fakeFetcher{
		bodies: map[string]string{"/visitors/15": `{"data":{"id":15}}`},
		errs:   map[string]error{"/visitors/15/view": expoapi.ErrUnauthorized},
	}
	r := NewResolver(f, time.Second, logger.Discard())

	result := r.Lookup(context.Background(), "15")

	assert.False(t, result.Found())
	assert.True(t, expoapi.IsUnauthorized(result.AuthErr))
	assert.Equal(t, []string{"/visitors/15/view"}, f.calls)
}

func TestLookup_EmptyID(t *testing.T) {
	f := &fakeFetcher{}
	r := NewResolver(f, time.Second, logger.Discard())

	result := r.Lookup(context.Background(), "  ")

	assert.False(t, result.Found())
	assert.Empty(t, f.calls)
}

func TestLookup_EachAttemptTimesOut(t *testing.T) {
	r := NewResolver(slowFetcher{}, 20*time.Millisecond, logger.Discard())

	start := time.Now()
	result := r.Lookup(context.Background(), "15")

	assert.False(t, result.Found())
	require.Len(t, result.Attempts, 2)
	assert.Contains(t, result.Attempts[1].Err, "deadline")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCandidatePaths_EscapesID(t *testing.T) {
	assert.Equal(t, []string{"/visitors/a%2Fb/view", "/visitors/a%2Fb"}, CandidatePaths("a/b"))
}

func TestDecodeVisitor(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		shape   string
		wantErr bool
	}{
		{"data envelope", `{"success":true,"data":{"id":3}}`, ShapeData, false},
		{"visitor object", `{"visitor":{"id":3}}`, ShapeVisitor, false},
		{"bare record", `{"id":3,"visitor_name":"A"}`, ShapeRaw, false},
		{"data without id falls through", `{"data":{"name":"x"},"visitor":{"id":3}}`, ShapeVisitor, false},
		{"array", `[{"id":3}]`, "", true},
		{"no id anywhere", `{"data":{"visitor_name":"A"}}`, "", true},
		{"explicit failure", `{"success":false,"id":3}`, "", true},
		{"empty", ``, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, shape, err := DecodeVisitor([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, v)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.shape, shape)
			assert.Equal(t, "3", v.ID.String())
		})
	}
}

func TestCardHelpers(t *testing.T) {
	assert.Equal(t, "https://expo.example.com/visitor/15/card", CardURL("https://expo.example.com/", "15"))
	assert.Equal(t, "JR", Initials("john ronald tolkien"))
	assert.Equal(t, "A", Initials("asha"))
	assert.Equal(t, "", Initials(""))
	assert.Equal(t, "VIS-000015", VisitorCode("15"))
	assert.Equal(t, "VIS-1234567", VisitorCode("1234567"))
	assert.Equal(t, "0000000015", CardID("15"))
}

func TestNewCard(t *testing.T) {
	v := models.Visitor{
		ID:          "15",
		VisitorName: "Asha Rao",
		CreatedAt:   models.FlexTime{Time: time.Date(2025, 1, 5, 14, 30, 0, 0, time.UTC)},
	}

	card := NewCard(v, "https://expo.example.com", "data:image/png;base64,AAAA")

	assert.Equal(t, "AR", card.Initials)
	assert.Equal(t, "VIS-000015", card.Code)
	assert.Equal(t, "January 5, 2025 at 02:30 PM", card.Registered)
	assert.Equal(t, "data:image/png;base64,AAAA", card.QRImage)
	assert.Equal(t, "/visitor/15/card/qr.png", card.QRPath)
	assert.Equal(t, "/visitor/15/card.pdf", card.PDFPath)

	v.QRCodeURL = "https://cdn.example.com/qr/15.png"
	v.CreatedAt = models.FlexTime{}
	card = NewCard(v, "https://expo.example.com", "data:image/png;base64,AAAA")
	assert.Equal(t, "https://cdn.example.com/qr/15.png", card.QRImage)
	assert.Empty(t, card.Registered)
}

func TestQRGenerator(t *testing.T) {
	q := NewQRGenerator()

	raw, err := q.PNG("https://expo.example.com/visitor/15/card")
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, DefaultQRSize, img.Bounds().Dx())

	dataURL, err := q.DataURL("https://expo.example.com/visitor/15/card")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func validForm() models.VisitorForm {
	return models.VisitorForm{
		VisitorName: "Asha Rao",
		Mobile:      "9876543210",
		Email:       "asha@example.com",
		City:        "Pune",
	}
}

func newTestService(api *MockAPI, pub *capturePublisher) *Service {
	s := NewService(api, "https://expo.example.com", time.Second, nil, pub, logger.Discard())
	s.now = func() time.Time { return time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestRegister_Success(t *testing.T) {
	api := new(MockAPI)
	pub := &capturePublisher{}
	s := newTestService(api, pub)
	form := validForm()

	api.On("CreateVisitor", mock.Anything, form).
		Return(&models.Visitor{ID: "15", VisitorName: "Asha Rao", Email: "asha@example.com"}, nil)
	api.On("UploadVisitorQRCode", mock.Anything, mock.MatchedBy(func(req models.VisitorQRCodeRequest) bool {
		raw, err := base64.StdEncoding.DecodeString(req.QRCodeData)
		if err != nil {
			return false
		}
		_, err = png.Decode(bytes.NewReader(raw))
		return err == nil &&
			req.VisitorID == "15" &&
			req.Metadata.Business == "N/A" &&
			req.Metadata.FrontendGenerated &&
			req.Metadata.GeneratedAt == "2025-01-05T09:00:00Z"
	})).Return("queued", nil)

	reg, err := s.Register(context.Background(), form)

	require.NoError(t, err)
	assert.Equal(t, "https://expo.example.com/visitor/15/card", reg.CardURL)
	assert.Equal(t, "queued", reg.EmailStatus)
	assert.True(t, strings.HasPrefix(reg.QRDataURL, "data:image/png;base64,"))
	require.Len(t, pub.events, 1)
	assert.Equal(t, models.EventVisitorRegistered, pub.events[0].Type)
	assert.Equal(t, "15", pub.events[0].VisitorID)
	api.AssertExpectations(t)
}

func TestRegister_ValidationFailure(t *testing.T) {
	api := new(MockAPI)
	s := newTestService(api, &capturePublisher{})

	_, err := s.Register(context.Background(), models.VisitorForm{City: "Pune"})

	var formErrs FormErrors
	require.ErrorAs(t, err, &formErrs)
	assert.Equal(t, "Visitor name is required", formErrs["visitor_name"])
	assert.Equal(t, "Mobile is required", formErrs["mobile"])
	assert.Equal(t, "Email is required", formErrs["email"])
	api.AssertNotCalled(t, "CreateVisitor", mock.Anything, mock.Anything)
}

func TestRegister_CreateFails(t *testing.T) {
	api := new(MockAPI)
	pub := &capturePublisher{}
	s := newTestService(api, pub)

	api.On("CreateVisitor", mock.Anything, mock.Anything).
		Return(nil, &expoapi.APIError{Status: 422, Message: "The email has already been taken."})

	reg, err := s.Register(context.Background(), validForm())

	assert.Nil(t, reg)
	assert.Equal(t, "The email has already been taken.", expoapi.UserMessage(err, "Registration failed"))
	assert.Empty(t, pub.events)
}

func TestRegister_QRUploadFailureKeepsVisitor(t *testing.T) {
	api := new(MockAPI)
	pub := &capturePublisher{}
	s := newTestService(api, pub)

	api.On("CreateVisitor", mock.Anything, mock.Anything).
		Return(&models.Visitor{ID: "15", VisitorName: "Asha Rao"}, nil)
	api.On("UploadVisitorQRCode", mock.Anything, mock.Anything).
		Return("", errors.New("upstream down"))

	reg, err := s.Register(context.Background(), validForm())

	require.Error(t, err)
	require.NotNil(t, reg)
	assert.Equal(t, "15", reg.Visitor.ID.String())
	assert.NotEmpty(t, reg.QRDataURL)
	assert.Empty(t, reg.EmailStatus)
	assert.Empty(t, pub.events)
}

func TestFormFromValues(t *testing.T) {
	values := url.Values{
		"visitor_name":   {" Asha Rao "},
		"bussiness_name": {"Rao Traders"},
		"mobile":         {"9876543210"},
		"email":          {"asha@example.com"},
	}

	form := FormFromValues(values)

	assert.Equal(t, "Asha Rao", form.VisitorName)
	assert.Equal(t, "Rao Traders", form.BusinessName)
	assert.NoError(t, ValidateForm(form))
}

func TestServiceCard_GeneratesQRWhenMissing(t *testing.T) {
	s := newTestService(new(MockAPI), &capturePublisher{})

	card, err := s.Card(models.Visitor{ID: "15", VisitorName: "Asha Rao"})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(card.QRImage, "data:image/png;base64,"))
}

func TestCardPDF_NoFont(t *testing.T) {
	s := newTestService(new(MockAPI), &capturePublisher{})
	_, err := s.CardPDF(models.Visitor{ID: "15"})
	assert.ErrorIs(t, err, ErrNoFont)

	_, err = NewCardPDFGenerator("", "EXPO").Generate(Card{}, nil)
	assert.ErrorIs(t, err, ErrNoFont)
}

func TestCardPDF_WithFont(t *testing.T) {
	font := os.Getenv("EXPO_CARD_FONT")
	if font == "" {
		font = "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"
	}
	if _, err := os.Stat(font); err != nil {
		t.Skip("no TTF font available")
	}

	s := NewService(new(MockAPI), "https://expo.example.com", time.Second,
		NewCardPDFGenerator(font, "EXPO"), nil, logger.Discard())

	out, err := s.CardPDF(models.Visitor{ID: "15", VisitorName: "Asha Rao", Email: "asha@example.com"})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
