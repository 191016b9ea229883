package conversion

import (
	"fmt"
	"time"

	"github.com/edoardob90/runits/internal/system"
	"github.com/edoardob90/runits/internal/units"
)

// Parser turns text into quantities and units. *parser.Parser implements it.
type Parser interface {
	Parse(text string) (units.Quantity, error)
	ParseUnit(text string) (units.Unit, error)
}

// Logger is the logging interface used by the engine.
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

// Status values recorded for successful conversions. Failures record the
// error code from system.Code.
const StatusOK = "ok"

// Event describes one conversion attempt.
type Event struct {
	From      string
	To        string
	Dimension string
	Status    string
	Value     float64
	Result    float64
	Duration  time.Duration
}

// Recorder receives an Event for every conversion the engine performs.
type Recorder interface {
	RecordConversion(e Event)
}

type noopRecorder struct{}

func (noopRecorder) RecordConversion(Event) {}

// Recorders fans an Event out to several recorders in order.
type Recorders []Recorder

// RecordConversion implements Recorder.
func (rs Recorders) RecordConversion(e Event) {
	for _, r := range rs {
		r.RecordConversion(e)
	}
}

// Engine performs dimension-checked conversions.
//
// The engine holds no registry of its own: units come from the Parser,
// systems from the Manager. Both may be nil when the corresponding
// operations are not used.
type Engine struct {
	parser   Parser
	systems  *system.Manager
	logger   Logger
	recorder Recorder
}

// New creates an engine.
func New(p Parser, systems *system.Manager) *Engine {
	return &Engine{
		parser:   p,
		systems:  systems,
		logger:   noopLogger{},
		recorder: noopRecorder{},
	}
}

// SetLogger sets the logger for the engine.
func (e *Engine) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	e.logger = logger
}

// SetRecorder sets where conversion events go.
func (e *Engine) SetRecorder(r Recorder) {
	if r == nil {
		r = noopRecorder{}
	}
	e.recorder = r
}

// Convert converts q into target.
func (e *Engine) Convert(q units.Quantity, target units.Unit) (units.Quantity, error) {
	start := time.Now()
	result, err := q.ConvertTo(target)
	e.record(q, target, result, err, time.Since(start))
	return result, err
}

// ConvertText converts q into the unit expression targetText.
func (e *Engine) ConvertText(q units.Quantity, targetText string) (units.Quantity, error) {
	target, err := e.parser.ParseUnit(targetText)
	if err != nil {
		return units.Quantity{}, err
	}
	return e.Convert(q, target)
}

// ConvertExpression parses quantityText ("100 km/h") and converts it into
// targetText ("m/s").
func (e *Engine) ConvertExpression(quantityText, targetText string) (units.Quantity, error) {
	q, err := e.parser.Parse(quantityText)
	if err != nil {
		return units.Quantity{}, err
	}
	return e.ConvertText(q, targetText)
}

// ConvertBetweenSystems re-expresses q in the base units of s.
func (e *Engine) ConvertBetweenSystems(q units.Quantity, s system.UnitSystem) (units.Quantity, error) {
	target, err := s.UnitFor(q.Unit.Dims())
	if err != nil {
		e.record(q, units.Unit{}, units.Quantity{}, err, 0)
		return units.Quantity{}, err
	}
	return e.Convert(q, target)
}

// ToSystem converts q into the named system.
func (e *Engine) ToSystem(q units.Quantity, name string) (units.Quantity, error) {
	if e.systems == nil {
		return units.Quantity{}, &units.SystemNotFoundError{Name: name}
	}
	s, err := e.systems.Get(name)
	if err != nil {
		return units.Quantity{}, err
	}
	return e.ConvertBetweenSystems(q, s)
}

// ToActiveSystem converts q into the manager's active system.
func (e *Engine) ToActiveSystem(q units.Quantity) (units.Quantity, error) {
	if e.systems == nil {
		return units.Quantity{}, fmt.Errorf("%w: no active system", units.ErrSystemNotFound)
	}
	s, ok := e.systems.Active()
	if !ok {
		return units.Quantity{}, fmt.Errorf("%w: no active system", units.ErrSystemNotFound)
	}
	return e.ConvertBetweenSystems(q, s)
}

func (e *Engine) record(q units.Quantity, target units.Unit, result units.Quantity, err error, d time.Duration) {
	ev := Event{
		From:      q.Unit.Name(),
		To:        target.Name(),
		Dimension: q.Unit.Dims().String(),
		Status:    StatusOK,
		Value:     q.Value,
		Result:    result.Value,
		Duration:  d,
	}
	if err != nil {
		ev.Status = system.Code(err)
		e.logger.Debug("conversion failed",
			"from", ev.From,
			"to", ev.To,
			"code", ev.Status,
			"error", err,
		)
	}
	e.recorder.RecordConversion(ev)
}
