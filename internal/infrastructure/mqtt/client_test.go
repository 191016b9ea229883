package mqtt

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/edoardob90/runits/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration. Tests in this file never
// reach a broker; see broker_test.go for those.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "runits-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"SystemStatus", topics.SystemStatus(), "runits/system/status"},
		{"ConvertRequest", topics.ConvertRequest("req-42"), "runits/request/convert/req-42"},
		{"ConvertResponse", topics.ConvertResponse("req-42"), "runits/response/convert/req-42"},
		{"RegistryEvent", topics.RegistryEvent(), "runits/event/registry"},
		{"AllConvertRequests", topics.AllConvertRequests(), "runits/request/convert/+"},
		{"AllTopics", topics.AllTopics(), "runits/#"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		topic  string
		want   string
		wantOK bool
	}{
		{"runits/request/convert/req-42", "req-42", true},
		{"runits/request/convert/", "", false},
		{"noslash", "", false},
	}
	for _, tt := range tests {
		got, ok := Topics{}.RequestID(tt.topic)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("RequestID(%q) = (%q, %v), want (%q, %v)", tt.topic, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.MQTTAuthConfig{Username: "user", Password: "pass"}

	opts := buildClientOptions(cfg)
	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v", opts.Servers)
	}
	if opts.ClientID != "runits-test" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "user" || opts.Password != "pass" {
		t.Errorf("credentials = %q/%q", opts.Username, opts.Password)
	}
	if !opts.AutoReconnect || !opts.CleanSession {
		t.Error("AutoReconnect and CleanSession should be enabled")
	}
	if opts.TLSConfig != nil && opts.TLSConfig.MinVersion != 0 {
		t.Error("TLS configured without cfg.Broker.TLS")
	}

	cfg.Broker.TLS = true
	opts = buildClientOptions(cfg)
	if opts.Servers[0].Scheme != "ssl" {
		t.Errorf("scheme = %q, want ssl", opts.Servers[0].Scheme)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLS config missing minimum version")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := pahomqtt.NewClientOptions()
	configureLWT(opts, "runits-test")

	if !opts.WillEnabled || opts.WillTopic != "runits/system/status" {
		t.Fatalf("will = %v on %q", opts.WillEnabled, opts.WillTopic)
	}
	if !opts.WillRetained || opts.WillQos != 1 {
		t.Errorf("will retained=%v qos=%d", opts.WillRetained, opts.WillQos)
	}
	if !strings.Contains(string(opts.WillPayload), `"reason":"unexpected_disconnect"`) {
		t.Errorf("will payload = %s", string(opts.WillPayload))
	}
}

func TestStatusPayloads(t *testing.T) {
	if p := buildOnlinePayload("c1"); !strings.Contains(p, `"status":"online"`) || !strings.Contains(p, `"client_id":"c1"`) {
		t.Errorf("online payload = %s", p)
	}
	if p := buildOfflinePayload("c1"); !strings.Contains(p, `"reason":"graceful_shutdown"`) {
		t.Errorf("offline payload = %s", p)
	}
}

func TestDisconnectedClient(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}
	handler := func(string, []byte) error { return nil }

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"publish empty topic", func() error { return client.Publish("", nil, 1, false) }, ErrInvalidTopic},
		{"publish bad qos", func() error { return client.Publish("runits/x", nil, 3, false) }, ErrInvalidQoS},
		{"publish oversize", func() error { return client.Publish("runits/x", make([]byte, maxPayloadSize+1), 1, false) }, ErrPayloadTooLarge},
		{"publish disconnected", func() error { return client.Publish("runits/x", []byte("v"), 1, false) }, ErrNotConnected},
		{"subscribe empty topic", func() error { return client.Subscribe("", 1, handler) }, ErrInvalidTopic},
		{"subscribe bad qos", func() error { return client.Subscribe("runits/x", 5, handler) }, ErrInvalidQoS},
		{"subscribe nil handler", func() error { return client.Subscribe("runits/x", 1, nil) }, ErrSubscribeFailed},
		{"subscribe disconnected", func() error { return client.Subscribe("runits/x", 1, handler) }, ErrNotConnected},
		{"unsubscribe empty topic", func() error { return client.Unsubscribe("") }, ErrInvalidTopic},
		{"unsubscribe disconnected", func() error { return client.Unsubscribe("runits/x") }, ErrNotConnected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if client.IsConnected() {
		t.Error("IsConnected() = true for unconnected client")
	}
	if client.SubscriptionCount() != 0 || client.HasSubscription("runits/x") {
		t.Error("failed subscribe should not be tracked")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on unconnected client error = %v", err)
	}
}

type fakeMessage struct {
	pahomqtt.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

type mockLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
}

func (l *mockLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *mockLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func TestWrapHandler(t *testing.T) {
	client := &Client{}
	logger := &mockLogger{}
	client.SetLogger(logger)

	var gotTopic string
	var gotPayload []byte
	ok := client.wrapHandler(func(topic string, payload []byte) error {
		gotTopic, gotPayload = topic, payload
		return nil
	})
	ok(nil, fakeMessage{topic: "runits/request/convert/1", payload: []byte("{}")})
	if gotTopic != "runits/request/convert/1" || string(gotPayload) != "{}" {
		t.Errorf("handler saw (%q, %q)", gotTopic, gotPayload)
	}

	failing := client.wrapHandler(func(string, []byte) error { return errors.New("boom") })
	failing(nil, fakeMessage{topic: "t"})

	panicking := client.wrapHandler(func(string, []byte) error { panic("bad handler") })
	panicking(nil, fakeMessage{topic: "t"})

	if len(logger.warns) != 1 || len(logger.errors) != 1 {
		t.Errorf("logged warns=%v errors=%v, want one of each", logger.warns, logger.errors)
	}
}

func TestCallbacks(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	var lost error
	client.SetOnDisconnect(func(err error) { lost = err })
	client.handleDisconnect(errors.New("network down"))
	if lost == nil || lost.Error() != "network down" {
		t.Errorf("disconnect callback got %v", lost)
	}
	if client.IsConnected() {
		t.Error("IsConnected() after disconnect")
	}
}

// fakeToken is a completed paho token carrying err.
type fakeToken struct{ err error }

func (fakeToken) Wait() bool                     { return true }
func (fakeToken) WaitTimeout(time.Duration) bool { return true }
func (fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t fakeToken) Error() error { return t.err }

// fakePaho records subscriptions and publishes; unimplemented methods panic
// through the embedded nil interface.
type fakePaho struct {
	pahomqtt.Client
	mu         sync.Mutex
	failTopic  string
	subscribed []string
	published  []string
}

func (f *fakePaho) Subscribe(topic string, _ byte, _ pahomqtt.MessageHandler) pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = append(f.subscribed, topic)
	if topic == f.failTopic {
		return fakeToken{err: errors.New("not authorised")}
	}
	return fakeToken{}
}

func (f *fakePaho) Publish(topic string, _ byte, _ bool, _ interface{}) pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, topic)
	return fakeToken{}
}

func TestReconnectRestoresSubscriptions(t *testing.T) {
	paho := &fakePaho{failTopic: "runits/denied"}
	logger := &mockLogger{}
	client := &Client{client: paho, cfg: testConfig(), subscriptions: make(map[string]subscription)}
	client.SetLogger(logger)
	handler := func(string, []byte) error { return nil }
	client.subscriptions[Topics{}.AllConvertRequests()] = subscription{topic: Topics{}.AllConvertRequests(), qos: 1, handler: handler}
	client.subscriptions["runits/denied"] = subscription{topic: "runits/denied", qos: 1, handler: handler}

	connected := false
	client.SetOnConnect(func() { connected = true })
	client.handleConnect()

	if len(paho.subscribed) != 2 {
		t.Errorf("resubscribed %v, want both topics", paho.subscribed)
	}
	if len(logger.warns) != 1 || logger.warns[0] != "restoring MQTT subscription failed" {
		t.Errorf("warns = %v", logger.warns)
	}
	if !client.HasSubscription("runits/denied") {
		t.Error("failed restore dropped the subscription")
	}
	if len(paho.published) != 1 || paho.published[0] != (Topics{}).SystemStatus() {
		t.Errorf("published %v, want the online status", paho.published)
	}
	if !connected || !client.connected.Load() {
		t.Error("connect callback or state not updated")
	}
}

func TestConnectCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 1

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Connect(ctx, cfg)
	if !errors.Is(err, ErrConnectionFailed) || !errors.Is(err, context.Canceled) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed wrapping context.Canceled", err)
	}
}
