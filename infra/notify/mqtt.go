package notify

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"raktsetu/infra/logger"
)

// ErrDeliveryTimeout is returned when the gateway does not report delivery
// within the send deadline.
var ErrDeliveryTimeout = fmt.Errorf("delivery report timeout")

// Config defines the connection parameters for the MQTT SMS gateway.
type Config struct {
	Broker      string      `json:"broker"`
	ClientID    string      `json:"client_id"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	SendTopic   string      `json:"send_topic"`
	ReportTopic string      `json:"report_topic"`
	UseTLS      bool        `json:"use_tls"`
	ClientCert  string      `json:"client_cert"`
	ClientKey   string      `json:"client_key"`
	CABundle    string      `json:"ca_bundle"`
	QoS         byte        `json:"qos"`
	MaxRetries  int         `json:"max_retries"`
	BackoffMS   int         `json:"backoff_ms"`
	TLSConfig   *tls.Config `json:"-"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.SendTopic == "" {
		c.SendTopic = "sms/outbound"
	}
	if c.ReportTopic == "" {
		c.ReportTopic = "sms/report"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// GatewayTransport sends SMS payloads to an external gateway over MQTT and
// treats a delivery report on the report topic as send success.
type GatewayTransport struct {
	cli        pahoClient
	cfg        Config
	log        logger.Logger
	mu         sync.Mutex
	reports    map[string]chan struct{}
	maxRetries int
	backoff    time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewGatewayTransport connects to the broker and subscribes to the delivery
// report topic.
func NewGatewayTransport(cfg Config) (*GatewayTransport, error) {
	cfg.SetDefaults()
	opts, err := newClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("sms-gateway")
	t := &GatewayTransport{
		cfg:        cfg,
		log:        log,
		reports:    make(map[string]chan struct{}),
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(cfg.ReportTopic, cfg.QoS, t.onReport); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	t.cli = c
	return t, nil
}

func newClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.loadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

func (c Config) loadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func (t *GatewayTransport) onReport(_ paho.Client, msg paho.Message) {
	var m struct {
		MessageID string `json:"message_id"`
	}
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		t.log.Errorf("failed to decode delivery report: %v", err)
		return
	}
	t.mu.Lock()
	ch, ok := t.reports[m.MessageID]
	if ok {
		select {
		case ch <- struct{}{}:
		default:
		}
		t.log.Infof("delivery report %s", m.MessageID)
	}
	t.mu.Unlock()
}

// Send publishes the SMS payload and waits for the gateway's delivery
// report until the context deadline.
func (t *GatewayTransport) Send(ctx context.Context, phone, message string) error {
	msgID := uuid.NewString()
	payload, err := json.Marshal(struct {
		MessageID string `json:"message_id"`
		Phone     string `json:"phone"`
		Message   string `json:"message"`
		Timestamp int64  `json:"timestamp"`
	}{
		MessageID: msgID,
		Phone:     phone,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	t.mu.Lock()
	ch := make(chan struct{}, 1)
	t.reports[msgID] = ch
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		delete(t.reports, msgID)
		t.mu.Unlock()
	}()

	var publishErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		token := t.cli.Publish(t.cfg.SendTopic, t.cfg.QoS, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			break
		}
		t.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		time.Sleep(t.backoff * time.Duration(1<<attempt))
	}
	if publishErr != nil {
		return publishErr
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrDeliveryTimeout, ctx.Err())
	}
}

// Close disconnects from the broker.
func (t *GatewayTransport) Close() {
	if t.cli != nil && t.cli.IsConnected() {
		t.cli.Disconnect(250)
	}
}
