package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"expo-portal/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

type fakeReader struct {
	messages []kafka.Message
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.messages) == 0 {
		return kafka.Message{}, context.Canceled
	}
	m := f.messages[0]
	f.messages = f.messages[1:]
	return m, nil
}

func (f *fakeReader) Close() error { return nil }

func TestTopic(t *testing.T) {
	assert.Equal(t, "expo.stall.booked", Topic("expo", models.EventStallBooked))
	assert.Equal(t, "expo.payment.processed", Topic("expo", models.EventPaymentProcessed))
	assert.Equal(t, "expo.visitor.registered", Topic("expo", models.EventVisitorRegistered))
	assert.Len(t, Topics("expo"), 3)
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{Writer: w, prefix: "expo"}

	err := p.Publish(context.Background(), models.PortalEvent{
		Type:        models.EventStallBooked,
		StallNumber: "A1",
		HallNumber:  "Hall 2",
	})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "expo.stall.booked", msg.Topic)
	assert.Equal(t, "A1", string(msg.Key))

	var decoded models.PortalEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "Hall 2", decoded.HallNumber)
	assert.False(t, decoded.Timestamp.IsZero())
}

func TestProducer_PublishError(t *testing.T) {
	p := &Producer{Writer: &fakeWriter{err: errors.New("broker down")}, prefix: "expo"}
	assert.Error(t, p.Publish(context.Background(), models.PortalEvent{Type: models.EventPaymentProcessed}))
}

func TestConsumer_SkipsBadMessages(t *testing.T) {
	good, _ := json.Marshal(models.PortalEvent{Type: models.EventVisitorRegistered, VisitorID: "15"})
	c := &Consumer{reader: &fakeReader{messages: []kafka.Message{
		{Topic: "expo.visitor.registered", Value: []byte("not json")},
		{Topic: "expo.visitor.registered", Value: good},
	}}}

	var got []models.PortalEvent
	err := c.Start(context.Background(), func(e models.PortalEvent) { got = append(got, e) })
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "15", got[0].VisitorID)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), models.PortalEvent{}))
	assert.NoError(t, p.Close())
}
