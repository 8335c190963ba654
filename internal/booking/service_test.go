package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"expo-portal/internal/expoapi"
	"expo-portal/internal/models"
	"expo-portal/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) AllocateStall(ctx context.Context, token string, req models.AllocateRequest) error {
	args := m.Called(ctx, token, req)
	return args.Error(0)
}

func (m *MockAPI) ProcessPayment(ctx context.Context, token string, req models.PaymentRequest) error {
	args := m.Called(ctx, token, req)
	return args.Error(0)
}

func (m *MockAPI) CompanyStalls(ctx context.Context, token string) ([]models.Stall, error) {
	args := m.Called(ctx, token)
	stalls, _ := args.Get(0).([]models.Stall)
	return stalls, args.Error(1)
}

func (m *MockAPI) StallLayout(ctx context.Context, token string) (*models.HallLayout, error) {
	args := m.Called(ctx, token)
	layout, _ := args.Get(0).(*models.HallLayout)
	return layout, args.Error(1)
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

func (c *capturePublisher) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, e := range c.events {
		out = append(out, e.Type)
	}
	return out
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, models.PortalEvent) error {
	return errors.New("broker down")
}

func (failingPublisher) Close() error { return nil }

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	if err := client.Ping(context.Background()).Err(); err != nil {
		mr.Close()
		t.Fatalf("Failed to connect to miniredis: %v", err)
	}
	return client, mr
}

func cleanupTestRedis(client *redis.Client, mr *miniredis.Miniredis) {
	if client != nil {
		client.Close()
	}
	if mr != nil {
		mr.Close()
	}
}

func newService(api API, pub *capturePublisher) *Service {
	guard := NewGuard(session.NewMemoryStore(), time.Minute)
	return NewService(api, guard, pub, 29500, "Hall 2", nil)
}

func TestBookStall_AllocatesThenPaysThenRefreshes(t *testing.T) {
	api := new(MockAPI)
	pub := &capturePublisher{}
	svc := newService(api, pub)
	ctx := context.Background()

	api.On("AllocateStall", ctx, "tok", models.AllocateRequest{
		StallNumber:   "A1",
		HallNumber:    "Hall 2",
		PaymentMethod: models.PaymentOnline,
	}).Return(nil).Once()
	api.On("ProcessPayment", ctx, "tok", models.PaymentRequest{StallNumber: "A1", Amount: 29500}).Return(nil).Once()
	api.On("CompanyStalls", ctx, "tok").Return([]models.Stall{{StallNumber: "A1"}}, nil)
	api.On("StallLayout", ctx, "tok").Return(&models.HallLayout{BookedStalls: []models.FlexString{"A1"}}, nil)

	result, err := svc.BookStall(ctx, "tok", Request{SessionID: "sid", CompanyID: "7", StallNumber: "A1"})
	require.NoError(t, err)

	assert.Equal(t, 29500.0, result.Booking.PaidAmount)
	assert.Equal(t, "7", result.Booking.CompanyID)
	require.Len(t, result.CompanyStalls, 1)
	require.NotNil(t, result.Layout)
	assert.Equal(t, []string{models.EventPaymentProcessed, models.EventStallBooked}, pub.types())
	api.AssertExpectations(t)
}

func TestBookStall_AllocationFailureSkipsPayment(t *testing.T) {
	api := new(MockAPI)
	pub := &capturePublisher{}
	svc := newService(api, pub)
	rejection := &expoapi.APIError{Status: 409, Message: "Stall already booked"}

	api.On("AllocateStall", mock.Anything, "tok", mock.Anything).Return(rejection)

	result, err := svc.BookStall(context.Background(), "tok", Request{SessionID: "sid", StallNumber: "A1"})
	assert.Nil(t, result)
	assert.Equal(t, "Stall already booked", expoapi.UserMessage(err, BookingFailedMessage))
	api.AssertNotCalled(t, "ProcessPayment", mock.Anything, mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "CompanyStalls", mock.Anything, mock.Anything)
	assert.Empty(t, pub.types())
}

func TestBookStall_PaymentFailureAborts(t *testing.T) {
	api := new(MockAPI)
	svc := newService(api, &capturePublisher{})

	api.On("AllocateStall", mock.Anything, "tok", mock.Anything).Return(nil)
	api.On("ProcessPayment", mock.Anything, "tok", mock.Anything).Return(errors.New("gateway timeout"))

	_, err := svc.BookStall(context.Background(), "tok", Request{SessionID: "sid", StallNumber: "A1", Method: models.PaymentCheque})
	require.Error(t, err)
	assert.Equal(t, PaymentFailedMessage, expoapi.UserMessage(err, PaymentFailedMessage))
	api.AssertNotCalled(t, "StallLayout", mock.Anything, mock.Anything)
}

func TestBookStall_RefreshUnauthorizedPropagates(t *testing.T) {
	api := new(MockAPI)
	svc := newService(api, &capturePublisher{})

	api.On("AllocateStall", mock.Anything, "tok", mock.Anything).Return(nil)
	api.On("ProcessPayment", mock.Anything, "tok", mock.Anything).Return(nil)
	api.On("CompanyStalls", mock.Anything, "tok").Return(nil, expoapi.ErrUnauthorized)

	result, err := svc.BookStall(context.Background(), "tok", Request{SessionID: "sid", StallNumber: "A1"})
	assert.True(t, expoapi.IsUnauthorized(err))
	require.NotNil(t, result, "the booking itself went through")
}

func TestBookStall_RefreshFailureIsTolerated(t *testing.T) {
	api := new(MockAPI)
	svc := newService(api, &capturePublisher{})

	api.On("AllocateStall", mock.Anything, "tok", mock.Anything).Return(nil)
	api.On("ProcessPayment", mock.Anything, "tok", mock.Anything).Return(nil)
	api.On("CompanyStalls", mock.Anything, "tok").Return(nil, expoapi.ErrTransport)
	api.On("StallLayout", mock.Anything, "tok").Return(&models.HallLayout{}, nil)

	result, err := svc.BookStall(context.Background(), "tok", Request{SessionID: "sid", StallNumber: "A1"})
	require.NoError(t, err)
	assert.Nil(t, result.CompanyStalls)
	assert.NotNil(t, result.Layout)
}

func TestBookStall_PublishFailureIsNotSurfaced(t *testing.T) {
	api := new(MockAPI)
	svc := NewService(api, nil, failingPublisher{}, 29500, "Hall 2", nil)

	api.On("AllocateStall", mock.Anything, "tok", mock.Anything).Return(nil)
	api.On("ProcessPayment", mock.Anything, "tok", mock.Anything).Return(nil)
	api.On("CompanyStalls", mock.Anything, "tok").Return([]models.Stall{}, nil)
	api.On("StallLayout", mock.Anything, "tok").Return(&models.HallLayout{}, nil)

	_, err := svc.BookStall(context.Background(), "tok", Request{StallNumber: "A1"})
	assert.NoError(t, err)
}

func TestBookStall_EmptyStallNumber(t *testing.T) {
	svc := newService(new(MockAPI), &capturePublisher{})
	_, err := svc.BookStall(context.Background(), "tok", Request{})
	assert.ErrorIs(t, err, ErrNoStall)
}

func TestDemoPayment(t *testing.T) {
	api := new(MockAPI)
	svc := newService(api, &capturePublisher{})
	company := models.Company{ID: "7", AmountPaid: 1000}

	_, err := svc.DemoPayment(context.Background(), "tok", Request{SessionID: "sid"}, company, nil)
	assert.ErrorIs(t, err, ErrNoStall)

	api.On("ProcessPayment", mock.Anything, "tok", models.PaymentRequest{StallNumber: "B4", Amount: 29500}).Return(nil).Once()
	updated, err := svc.DemoPayment(context.Background(), "tok", Request{SessionID: "sid"}, company,
		[]models.Stall{{StallNumber: "B4", HallNumber: "Hall 1"}, {StallNumber: "B5"}})
	require.NoError(t, err)
	assert.Equal(t, 30500.0, updated.AmountPaid.Float())
	assert.Equal(t, 1000.0, company.AmountPaid.Float())
	api.AssertExpectations(t)
}

func TestGuard_RejectsConcurrentDuplicate(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	guard := NewGuard(session.NewRedisStore(client), 30*time.Second)
	ctx := context.Background()

	release, err := guard.Acquire(ctx, "sid", "A1")
	require.NoError(t, err)

	_, err = guard.Acquire(ctx, "sid", "A1")
	assert.ErrorIs(t, err, ErrInProgress)

	otherStall, err := guard.Acquire(ctx, "sid", "A2")
	require.NoError(t, err, "different stall is independent")
	otherStall()

	release()
	again, err := guard.Acquire(ctx, "sid", "A1")
	require.NoError(t, err)
	again()
}

func TestGuard_LeaseExpires(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	guard := NewGuard(session.NewRedisStore(client), 30*time.Second)
	_, err := guard.Acquire(context.Background(), "sid", "A1")
	require.NoError(t, err)

	mr.FastForward(31 * time.Second)
	release, err := guard.Acquire(context.Background(), "sid", "A1")
	require.NoError(t, err)
	release()
}

func TestBookStall_ConcurrentSubmissionsAllocateOnce(t *testing.T) {
	api := new(MockAPI)
	svc := newService(api, &capturePublisher{})

	started := make(chan struct{})
	proceed := make(chan struct{})
	api.On("AllocateStall", mock.Anything, "tok", mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-proceed
	}).Return(nil).Once()
	api.On("ProcessPayment", mock.Anything, "tok", mock.Anything).Return(nil).Once()
	api.On("CompanyStalls", mock.Anything, "tok").Return([]models.Stall{}, nil)
	api.On("StallLayout", mock.Anything, "tok").Return(&models.HallLayout{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.BookStall(context.Background(), "tok", Request{SessionID: "sid", StallNumber: "A1"})
		done <- err
	}()

	<-started
	_, err := svc.BookStall(context.Background(), "tok", Request{SessionID: "sid", StallNumber: "A1"})
	assert.ErrorIs(t, err, ErrInProgress)

	close(proceed)
	require.NoError(t, <-done)
	api.AssertExpectations(t)
}
