package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedPublish struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu    sync.Mutex
	sent  []recordedPublish
	fails error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails != nil {
		return f.fails
	}
	f.sent = append(f.sent, recordedPublish{exchange: exchange, key: key, msg: msg})
	return nil
}

func TestAMQPNotifierPublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	n := NewAMQPNotifier(ch, "bookings", zap.NewNop())

	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	err := n.Publish(context.Background(), BookingEvent{
		Type:             EventBookingCreated,
		BookingID:        9,
		BookingReference: "BK-20260501-ABCDEF",
		Seats:            []string{"A1", "A2"},
		OccurredAt:       at,
	})
	require.NoError(t, err)
	require.Len(t, ch.sent, 1)

	sent := ch.sent[0]
	assert.Equal(t, "bookings", sent.exchange)
	assert.Equal(t, EventBookingCreated, sent.key)
	assert.Equal(t, amqp.Persistent, sent.msg.DeliveryMode)
	assert.Equal(t, "application/json", sent.msg.ContentType)

	var decoded BookingEvent
	require.NoError(t, json.Unmarshal(sent.msg.Body, &decoded))
	assert.Equal(t, int64(9), decoded.BookingID)
	assert.Equal(t, []string{"A1", "A2"}, decoded.Seats)
}

func TestAMQPNotifierConcurrentPublish(t *testing.T) {
	ch := &fakeChannel{}
	n := NewAMQPNotifier(ch, "bookings", zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_ = n.Publish(context.Background(), BookingEvent{Type: EventBookingPaid, BookingID: id})
		}(int64(i))
	}
	wg.Wait()
	assert.Len(t, ch.sent, 20)
}

func TestAMQPNotifierPublishError(t *testing.T) {
	boom := errors.New("channel closed")
	n := NewAMQPNotifier(&fakeChannel{fails: boom}, "bookings", zap.NewNop())

	err := n.Publish(context.Background(), BookingEvent{Type: EventBookingReleased})
	assert.ErrorIs(t, err, boom)
}

func TestQRCoderTicketURL(t *testing.T) {
	q := NewQRCoder("")

	raw, err := q.TicketURL("TKT-0123456789ABCDE", "BK-20260501-ABCDEF", 3)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "api.qrserver.com", u.Host)
	assert.Equal(t, "200x200", u.Query().Get("size"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(u.Query().Get("data")), &payload))
	assert.Equal(t, "TKT-0123456789ABCDE", payload["ticketId"])
	assert.Equal(t, float64(3), payload["eventId"])

	_, err = q.TicketURL("", "BK", 1)
	assert.Error(t, err)
}
