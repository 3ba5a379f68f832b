package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t fakeToken) Error() error { return t.err }

type fakeMessage struct{ payload []byte }

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return "sms/report" }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type fakeClient struct {
	mu         sync.Mutex
	published  [][]byte
	publishErr error
	failUntil  int // publish attempts that fail before succeeding
	onPublish  func(payload []byte)
}

func (c *fakeClient) IsConnected() bool        { return true }
func (c *fakeClient) Connect() paho.Token      { return fakeToken{} }
func (c *fakeClient) Disconnect(quiesce uint)  {}
func (c *fakeClient) Subscribe(topic string, qos byte, cb paho.MessageHandler) paho.Token {
	return fakeToken{}
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	c.published = append(c.published, payload.([]byte))
	attempt := len(c.published)
	onPublish := c.onPublish
	c.mu.Unlock()
	if c.publishErr != nil && attempt <= c.failUntil {
		return fakeToken{err: c.publishErr}
	}
	if onPublish != nil {
		go onPublish(payload.([]byte))
	}
	return fakeToken{}
}

func newFakeGateway(t *testing.T, cli *fakeClient, cfg Config) *GatewayTransport {
	t.Helper()
	orig := newMQTTClient
	newMQTTClient = func(_ *paho.ClientOptions) pahoClient { return cli }
	t.Cleanup(func() { newMQTTClient = orig })

	gw, err := NewGatewayTransport(cfg)
	require.NoError(t, err)
	return gw
}

func TestGatewaySendWaitsForDeliveryReport(t *testing.T) {
	cli := &fakeClient{}
	var gw *GatewayTransport
	cli.onPublish = func(payload []byte) {
		var m struct {
			MessageID string `json:"message_id"`
			Phone     string `json:"phone"`
			Message   string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(payload, &m))
		assert.Equal(t, "p1", m.Phone)
		assert.Equal(t, "come donate", m.Message)
		report, _ := json.Marshal(map[string]string{"message_id": m.MessageID})
		gw.onReport(nil, fakeMessage{payload: report})
	}
	gw = newFakeGateway(t, cli, Config{Broker: "tcp://localhost:1883", ClientID: "test"})
	defer gw.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, gw.Send(ctx, "p1", "come donate"))
	assert.Len(t, cli.published, 1)
}

func TestGatewaySendTimesOutWithoutReport(t *testing.T) {
	cli := &fakeClient{}
	gw := newFakeGateway(t, cli, Config{Broker: "tcp://localhost:1883", ClientID: "test"})
	defer gw.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := gw.Send(ctx, "p1", "come donate")
	assert.ErrorIs(t, err, ErrDeliveryTimeout)
}

func TestGatewaySendRetriesPublish(t *testing.T) {
	cli := &fakeClient{publishErr: fmt.Errorf("broker unavailable"), failUntil: 2}
	var gw *GatewayTransport
	cli.onPublish = func(payload []byte) {
		var m struct {
			MessageID string `json:"message_id"`
		}
		require.NoError(t, json.Unmarshal(payload, &m))
		report, _ := json.Marshal(map[string]string{"message_id": m.MessageID})
		gw.onReport(nil, fakeMessage{payload: report})
	}
	gw = newFakeGateway(t, cli, Config{Broker: "tcp://localhost:1883", ClientID: "test", BackoffMS: 1})
	defer gw.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, gw.Send(ctx, "p1", "come donate"))
	assert.Len(t, cli.published, 3, "two failed attempts then a successful one")
}

func TestGatewaySendExhaustsRetries(t *testing.T) {
	cli := &fakeClient{publishErr: fmt.Errorf("broker unavailable"), failUntil: 100}
	gw := newFakeGateway(t, cli, Config{Broker: "tcp://localhost:1883", ClientID: "test", MaxRetries: 1, BackoffMS: 1})
	defer gw.Close()

	err := gw.Send(context.Background(), "p1", "come donate")
	assert.ErrorContains(t, err, "broker unavailable")
}

func TestGatewayIgnoresUnknownReport(t *testing.T) {
	cli := &fakeClient{}
	gw := newFakeGateway(t, cli, Config{Broker: "tcp://localhost:1883", ClientID: "test"})
	defer gw.Close()

	gw.onReport(nil, fakeMessage{payload: []byte(`{"message_id":"unknown"}`)})
	gw.onReport(nil, fakeMessage{payload: []byte(`not json`)})
}

func TestConfigSetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	assert.Equal(t, "sms/outbound", cfg.SendTopic)
	assert.Equal(t, "sms/report", cfg.ReportTopic)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 100, cfg.BackoffMS)
}

func TestLoadTLSConfigRequiresMaterial(t *testing.T) {
	_, err := Config{UseTLS: true}.loadTLSConfig()
	assert.Error(t, err)
}
