package mqtt

import (
	"context"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/svckit/core/adapter"
	coremon "github.com/kilianp07/svckit/core/monitoring"
	"github.com/kilianp07/svckit/infra/logger"
)

// ErrConnectTimeout is returned when the broker does not answer in time.
var ErrConnectTimeout = errors.New("mqtt: connect timeout")

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Client is a connected MQTT client with publish retries.
type Client struct {
	cli        pahoClient
	clientID   string
	logger     logger.Logger
	monitor    coremon.Monitor
	maxRetries int
	backoff    time.Duration
}

// Option configures a Client.
type Option func(*Client)

func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMonitor reports publish failures that exhausted their retries.
func WithMonitor(m coremon.Monitor) Option {
	return func(c *Client) { c.monitor = m }
}

// NewClientOptions builds mqtt client options from Params.
func NewClientOptions(p Params) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(p.Broker).SetClientID(p.ClientID)
	opts.AutoReconnect = true
	if p.AuthMethod == "username_password" || p.AuthMethod == "both" || p.AuthMethod == "" {
		if p.Username != "" {
			opts.SetUsername(p.Username)
		}
		if p.Password != "" {
			opts.SetPassword(p.Password)
		}
	}
	if p.UseTLS {
		tlsCfg, err := p.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if p.LWTTopic != "" {
		opts.SetWill(p.LWTTopic, p.LWTPayload, p.LWTQoS, p.LWTRetain)
	}
	if p.ConnectTimeoutMS > 0 {
		opts.SetConnectTimeout(p.connectTimeout())
	}
	return opts, nil
}

// Build connects to the broker described by sec. Connection failures are
// returned as a ConstructionError.
func Build(ctx context.Context, sec adapter.Section, opts ...Option) (*Client, error) {
	p, err := DecodeParams(sec)
	if err != nil {
		return nil, adapter.Constructing("mqtt", err)
	}
	c := &Client{
		clientID:   p.ClientID,
		logger:     logger.New("mqtt_client"),
		monitor:    coremon.NopMonitor{},
		maxRetries: p.MaxRetries,
		backoff:    time.Duration(p.BackoffMS) * time.Millisecond,
	}
	for _, o := range opts {
		o(c)
	}
	copts, err := NewClientOptions(p)
	if err != nil {
		return nil, adapter.Constructing("mqtt", err)
	}
	copts.OnConnect = func(paho.Client) {
		c.logger.Infof("MQTT connected to %s as %s", p.Broker, p.ClientID)
	}
	copts.OnConnectionLost = func(_ paho.Client, err error) {
		c.logger.Errorf("connection lost: %v", err)
	}
	copts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		c.logger.Warnf("reconnecting to MQTT broker")
	}

	cli := newMQTTClient(copts)
	if err := wait(ctx, cli.Connect(), p.connectTimeout()); err != nil {
		return nil, adapter.Constructing("mqtt", fmt.Errorf("connect %s: %w", p.Broker, err))
	}
	c.cli = cli
	return c, nil
}

// New builds a client from overrides merged onto the defaults and the
// environment.
func New(ctx context.Context, overrides adapter.Section, opts ...Option) (*Client, error) {
	return Build(ctx, Section(overrides, nil), opts...)
}

func wait(ctx context.Context, tok paho.Token, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = time.Minute
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-tok.Done():
		return tok.Error()
	case <-timer.C:
		return ErrConnectTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClientID returns the MQTT client identifier.
func (c *Client) ClientID() string { return c.clientID }

// Publish sends payload to topic, retrying with exponential backoff.
func (c *Client) Publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error {
	retries := c.maxRetries
	if retries < 0 {
		retries = 0
	}
	backoff := c.backoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	var publishErr error
retry:
	for attempt := 0; attempt <= retries; attempt++ {
		token := c.cli.Publish(topic, qos, retained, payload)
		token.Wait()
		if publishErr = token.Error(); publishErr == nil {
			c.logger.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		c.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt == retries {
			break
		}
		select {
		case <-time.After(backoff * time.Duration(1<<attempt)):
		case <-ctx.Done():
			publishErr = ctx.Err()
			break retry
		}
	}
	c.monitor.CaptureException(publishErr, map[string]string{"module": "mqtt", "topic": topic})
	return publishErr
}

// Subscribe registers handler for topic.
func (c *Client) Subscribe(topic string, qos byte, handler paho.MessageHandler) error {
	token := c.cli.Subscribe(topic, qos, handler)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker.
func (c *Client) Close() error {
	if c.cli != nil && c.cli.IsConnected() {
		c.cli.Disconnect(250)
	}
	return nil
}
