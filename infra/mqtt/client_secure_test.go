package mqtt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/svckit/core/adapter"
	"github.com/kilianp07/svckit/infra/logger"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0644); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if err := os.WriteFile(caFile, certPEM, 0644); err != nil {
		t.Fatalf("write ca: %v", err)
	}
	return
}

func withMock(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) } })
}

func build(t *testing.T, sec adapter.Section, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLogger(logger.NopLogger{})}, opts...)
	cli, err := Build(context.Background(), sec, opts...)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return cli
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	p := Params{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := p.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("no certs loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("no root CAs")
	}
	if _, err := (Params{UseTLS: true}).LoadTLSConfig(); err == nil {
		t.Fatalf("expected error without cert paths")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Params{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
	opts, err = NewClientOptions(Params{Broker: "tcp://localhost:1883", Username: "u", AuthMethod: "certificate"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "" {
		t.Fatalf("username set for certificate auth")
	}
}

func TestDecodeParamsDefaults(t *testing.T) {
	p, err := DecodeParams(adapter.Section{"max_retries": "5"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Broker != "tcp://localhost:1883" || p.MaxRetries != 5 || p.ConnectTimeoutMS != 5000 {
		t.Fatalf("unexpected params %+v", p)
	}
	if !strings.HasPrefix(p.ClientID, "svckit-") {
		t.Fatalf("client id not generated: %q", p.ClientID)
	}
	q, _ := DecodeParams(nil)
	if q.ClientID == p.ClientID {
		t.Fatalf("client ids must be unique")
	}
}

func TestSectionBrokerFromEnvironment(t *testing.T) {
	env := func(k string) (string, bool) {
		if k == EnvBroker {
			return "ssl://broker.internal:8883", true
		}
		return "", false
	}
	if got := Section(nil, env)["broker"]; got != "ssl://broker.internal:8883" {
		t.Fatalf("broker = %v", got)
	}
	if got := Section(adapter.Section{"broker": "tcp://explicit:1883"}, env)["broker"]; got != "tcp://explicit:1883" {
		t.Fatalf("explicit broker lost: %v", got)
	}
}

func TestLWTConfigured(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	cli := build(t, adapter.Section{"client_id": "id", "lwt_topic": "lwt", "lwt_payload": "bye", "lwt_qos": 1})
	if !mc.opts.WillEnabled {
		t.Fatalf("will not enabled")
	}
	if mc.opts.WillTopic != "lwt" || string(mc.opts.WillPayload) != "bye" {
		t.Fatalf("will options incorrect")
	}
	if cli.ClientID() != "id" {
		t.Fatalf("client id = %s", cli.ClientID())
	}
	if err := cli.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(mc.published) != 0 {
		t.Fatalf("unexpected publish on disconnect")
	}
	if !mc.disconnected {
		t.Fatalf("not disconnected")
	}
}

func TestConnectFailureIsConstructionError(t *testing.T) {
	mc := &mockClient{connectErr: errors.New("connection refused")}
	withMock(t, mc)
	_, err := Build(context.Background(), adapter.Section{}, WithLogger(logger.NopLogger{}))
	var ce *adapter.ConstructionError
	if !errors.As(err, &ce) || ce.Service != "mqtt" {
		t.Fatalf("expected construction error, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("library error lost: %v", err)
	}
}

func TestConnectTimeout(t *testing.T) {
	mc := &mockClient{pending: true}
	withMock(t, mc)
	_, err := Build(context.Background(), adapter.Section{"connect_timeout_ms": 10}, WithLogger(logger.NopLogger{}))
	if !errors.Is(err, ErrConnectTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestPublishQoSAndSubscribe(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	cli := build(t, adapter.Section{})
	if err := cli.Publish(context.Background(), "svc/events", 2, false, []byte("{}")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.published) != 1 || mc.published[0].qos != 2 || mc.published[0].topic != "svc/events" {
		t.Fatalf("publish qos not applied")
	}
	if err := cli.Subscribe("svc/acks", 1, func(paho.Client, paho.Message) {}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if len(mc.subscribed) != 1 || mc.subscribed[0].qos != 1 {
		t.Fatalf("subscribe qos not applied")
	}
}

func TestRetryLogic(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	withMock(t, mc)
	cli := build(t, adapter.Section{"max_retries": 1, "backoff_ms": 1})
	if err := cli.Publish(context.Background(), "t", 0, false, nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(mc.published) != 2 {
		t.Fatalf("expected retries")
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), fmt.Errorf("net fail")}}
	withMock(t, mc)
	cli := build(t, adapter.Section{"max_retries": 5, "backoff_ms": 1000})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := cli.Publish(ctx, "t", 0, false, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancel, got %v", err)
	}
	if len(mc.published) != 1 {
		t.Fatalf("published %d times", len(mc.published))
	}
}

// mockClient implements pahoClient for tests
type mockClient struct {
	opts       *paho.ClientOptions
	subscribed []struct {
		topic string
		qos   byte
	}
	published []struct {
		topic string
		qos   byte
	}
	publishErrs  []error
	connectErr   error
	pending      bool
	disconnected bool
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.pending {
		return &pendingToken{}
	}
	if m.connectErr != nil {
		return &dummyToken{err: m.connectErr}
	}
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(nil)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) { m.disconnected = true }
func (m *mockClient) Publish(topic string, qos byte, _ bool, _ interface{}) paho.Token {
	m.published = append(m.published, struct {
		topic string
		qos   byte
	}{topic, qos})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}
func (m *mockClient) Subscribe(topic string, qos byte, _ paho.MessageHandler) paho.Token {
	m.subscribed = append(m.subscribed, struct {
		topic string
		qos   byte
	}{topic, qos})
	return &dummyToken{}
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

// pendingToken never completes.
type pendingToken struct{}

func (pendingToken) Wait() bool                     { select {} }
func (pendingToken) WaitTimeout(time.Duration) bool { return false }
func (pendingToken) Done() <-chan struct{}          { return make(chan struct{}) }
func (pendingToken) Error() error                   { return nil }
