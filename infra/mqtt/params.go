package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/google/uuid"

	"github.com/kilianp07/svckit/core/adapter"
	"github.com/kilianp07/svckit/core/factory"
)

// EnvBroker overrides the broker key when set.
const EnvBroker = "MQTT_BROKER"

// Params defines the connection parameters for the Paho MQTT client.
// A zero max_retries or backoff_ms falls back to the default.
type Params struct {
	Broker     string `json:"broker"`
	ClientID   string `json:"client_id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	AuthMethod string `json:"auth_method"`
	UseTLS     bool   `json:"use_tls"`
	ClientCert string `json:"client_cert"`
	ClientKey  string `json:"client_key"`
	CABundle   string `json:"ca_bundle"`
	LWTTopic   string `json:"lwt_topic"`
	LWTPayload string `json:"lwt_payload"`
	LWTQoS     byte   `json:"lwt_qos"`
	LWTRetain  bool   `json:"lwt_retain"`
	// ConnectTimeoutMS bounds the initial connection.
	ConnectTimeoutMS int         `json:"connect_timeout_ms"`
	MaxRetries       int         `json:"max_retries"`
	BackoffMS        int         `json:"backoff_ms"`
	TLSConfig        *tls.Config `json:"-"`
}

// DefaultParams returns the documented defaults. ClientID is left empty;
// DecodeParams generates one per client.
func DefaultParams() Params {
	return Params{
		Broker:           "tcp://localhost:1883",
		ConnectTimeoutMS: 5000,
		MaxRetries:       3,
		BackoffMS:        100,
	}
}

// Defaults is the static default section of the adapter.
func Defaults() adapter.Section {
	p := DefaultParams()
	return adapter.Section{
		"broker":             p.Broker,
		"connect_timeout_ms": p.ConnectTimeoutMS,
		"max_retries":        p.MaxRetries,
		"backoff_ms":         p.BackoffMS,
	}
}

// brokerOverride sets broker from EnvBroker.
func brokerOverride(sec adapter.Section, lookup adapter.EnvLookup) {
	if v, ok := lookup(EnvBroker); ok && v != "" {
		sec["broker"] = v
	}
}

// Section computes the effective configuration for the given overrides.
func Section(overrides adapter.Section, lookup adapter.EnvLookup) adapter.Section {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return adapter.Resolve(Defaults(), overrides, lookup, brokerOverride)
}

// DecodeParams extracts the parameters from sec, filling absent values with
// DefaultParams and generating a client id when none is configured.
func DecodeParams(sec adapter.Section) (Params, error) {
	var p Params
	if err := factory.Decode(sec, &p); err != nil {
		return Params{}, err
	}
	if err := mergo.Merge(&p, DefaultParams()); err != nil {
		return Params{}, err
	}
	if p.ClientID == "" {
		p.ClientID = "svckit-" + uuid.NewString()
	}
	return p, nil
}

func (p Params) connectTimeout() time.Duration {
	return time.Duration(p.ConnectTimeoutMS) * time.Millisecond
}

// LoadTLSConfig loads the TLS configuration from the file paths in the params.
func (p Params) LoadTLSConfig() (*tls.Config, error) {
	if p.TLSConfig != nil {
		return p.TLSConfig, nil
	}
	if p.ClientCert == "" || p.ClientKey == "" || p.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(p.ClientCert, p.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(p.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}
