package messaging

import (
	"sync"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAcknowledger struct {
	acked, nacked, requeued bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error { f.acked = true; return nil }
func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked, f.requeued = true, requeue
	return nil
}
func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error { f.nacked = true; return nil }

type recordingHandler struct {
	mu       sync.Mutex
	payloads []ConfigUpdatePayload
}

func (h *recordingHandler) HandleConfigUpdate(p ConfigUpdatePayload) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.payloads = append(h.payloads, p)
}

func newTestConsumer(h ConfigUpdateHandler) *ConfigUpdateConsumer {
	return &ConfigUpdateConsumer{handler: h, logger: zap.NewNop()}
}

func TestHandleDeliveryForwardsAndAcks(t *testing.T) {
	h := &recordingHandler{}
	ack := &fakeAcknowledger{}
	c := newTestConsumer(h)

	c.handleDelivery(amqp091.Delivery{
		Acknowledger: ack,
		DeliveryTag:  1,
		Body:         []byte(`{"name":"x","value":"b","updatedAt":"2024-05-01T12:00:00Z"}`),
	})

	require.Len(t, h.payloads, 1)
	assert.Equal(t, "x", h.payloads[0].Name)
	assert.Equal(t, "b", h.payloads[0].Value)
	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
}

func TestHandleDeliveryRejectsMalformedBody(t *testing.T) {
	h := &recordingHandler{}
	ack := &fakeAcknowledger{}
	c := newTestConsumer(h)

	c.handleDelivery(amqp091.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte("{")})

	assert.Empty(t, h.payloads)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)
	assert.False(t, ack.acked)
}

func TestNewConfigUpdateConsumerValidates(t *testing.T) {
	_, err := NewConfigUpdateConsumer(nil, &recordingHandler{}, zap.NewNop())
	assert.Error(t, err)
}

func TestStopWithoutStart(t *testing.T) {
	c := newTestConsumer(&recordingHandler{})
	assert.Error(t, c.Stop())
}
