package responder

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/edoardob90/runits/internal/conversion"
	"github.com/edoardob90/runits/internal/infrastructure/mqtt"
	"github.com/edoardob90/runits/internal/system"
	"github.com/edoardob90/runits/internal/units"
)

// Error codes for failures that happen before the engine is reached.
// Conversion failures carry system.Code values.
const (
	CodeBadRequest = "bad_request"
	CodeNonFinite  = "non_finite_result"
)

// Transport is the subset of the MQTT client the responder needs.
// *mqtt.Client implements it.
type Transport interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Unsubscribe(topic string) error
}

// Logger is the logging interface used by the responder.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Request is the payload of a conversion request. Target and System are
// mutually exclusive; with neither the active system is used.
type Request struct {
	Quantity string `json:"quantity"`
	Target   string `json:"target,omitempty"`
	System   string `json:"system,omitempty"`
}

// Response is published on the reply topic for every request.
type Response struct {
	RequestID string   `json:"request_id"`
	Value     *float64 `json:"value,omitempty"`
	Unit      string   `json:"unit,omitempty"`
	Dimension string   `json:"dimension,omitempty"`
	ErrorCode string   `json:"error_code,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// RegistryEvent is the retained message announcing the published registry.
type RegistryEvent struct {
	Event     string    `json:"event"`
	Units     int       `json:"units"`
	Timestamp time.Time `json:"timestamp"`
}

// Responder answers conversion requests received over MQTT.
type Responder struct {
	transport Transport
	parser    conversion.Parser
	engine    *conversion.Engine
	qos       byte
	topics    mqtt.Topics
	logger    Logger
}

// New creates a responder. Call Start to subscribe.
func New(t Transport, p conversion.Parser, e *conversion.Engine, qos byte) *Responder {
	return &Responder{
		transport: t,
		parser:    p,
		engine:    e,
		qos:       qos,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the responder.
func (r *Responder) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	r.logger = logger
}

// Start subscribes to every conversion request topic.
func (r *Responder) Start() error {
	topic := r.topics.AllConvertRequests()
	if err := r.transport.Subscribe(topic, r.qos, r.handle); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	r.logger.Info("conversion responder subscribed", "topic", topic)
	return nil
}

// Stop unsubscribes from conversion requests. Requests already delivered may
// still be answered.
func (r *Responder) Stop() error {
	topic := r.topics.AllConvertRequests()
	if err := r.transport.Unsubscribe(topic); err != nil {
		return fmt.Errorf("unsubscribing from %s: %w", topic, err)
	}
	r.logger.Info("conversion responder stopped", "topic", topic)
	return nil
}

// AnnounceRegistry publishes a retained registry event so late subscribers
// see the current unit count.
func (r *Responder) AnnounceRegistry(count int) error {
	payload, err := json.Marshal(RegistryEvent{
		Event:     "published",
		Units:     count,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding registry event: %w", err)
	}
	return r.transport.Publish(r.topics.RegistryEvent(), payload, r.qos, true)
}

func (r *Responder) handle(topic string, payload []byte) error {
	id, ok := r.topics.RequestID(topic)
	if !ok {
		return fmt.Errorf("no request id in topic %q", topic)
	}

	resp := r.Respond(id, payload)
	if resp.ErrorCode != "" {
		r.logger.Debug("conversion request failed",
			"request_id", id,
			"code", resp.ErrorCode,
			"error", resp.Error,
		)
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	return r.transport.Publish(r.topics.ConvertResponse(id), out, r.qos, false)
}

// Respond computes the reply to one request payload.
func (r *Responder) Respond(requestID string, payload []byte) Response {
	resp := Response{RequestID: requestID}

	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return fail(resp, CodeBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Quantity) == "" {
		return fail(resp, CodeBadRequest, "quantity is required")
	}
	if req.Target != "" && req.System != "" {
		return fail(resp, CodeBadRequest, "target and system are mutually exclusive")
	}

	q, err := r.parser.Parse(req.Quantity)
	if err != nil {
		return fail(resp, system.Code(err), err.Error())
	}

	var result units.Quantity
	switch {
	case req.Target != "":
		result, err = r.engine.ConvertText(q, req.Target)
	case req.System != "":
		result, err = r.engine.ToSystem(q, req.System)
	default:
		result, err = r.engine.ToActiveSystem(q)
	}
	if err != nil {
		return fail(resp, system.Code(err), err.Error())
	}
	if math.IsInf(result.Value, 0) || math.IsNaN(result.Value) {
		return fail(resp, CodeNonFinite, "conversion result is not a finite number")
	}

	v := result.Value
	resp.Value = &v
	resp.Unit = result.Unit.Name()
	resp.Dimension = result.Unit.Dims().String()
	return resp
}

func fail(resp Response, code, message string) Response {
	resp.ErrorCode = code
	resp.Error = message
	return resp
}
