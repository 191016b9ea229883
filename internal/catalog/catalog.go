package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/edoardob90/runits/internal/audit"
	"github.com/edoardob90/runits/internal/customunit"
	"github.com/edoardob90/runits/internal/definitions"
	"github.com/edoardob90/runits/internal/parser"
	"github.com/edoardob90/runits/internal/registry"
	"github.com/edoardob90/runits/internal/system"
	"github.com/edoardob90/runits/internal/units"
)

// ErrNoRepository is returned by Define and Remove when the service was
// created without custom unit storage.
var ErrNoRepository = errors.New("catalog: no custom unit repository")

// ErrInUse is returned by Remove when other units are defined in terms of
// the unit being removed.
var ErrInUse = errors.New("catalog: custom unit in use")

// Logger is the logging interface used by the catalog.
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

// Options configures a Service.
type Options struct {
	// Files are definition files layered over the builtin database, in order.
	Files []string

	// Policy decides what happens when a name is registered twice.
	Policy registry.Policy

	// Repository holds user-defined custom units. Optional.
	Repository customunit.Repository

	// Audit receives an entry for every change. Optional.
	Audit audit.Repository
}

// Service owns the registry lifecycle: it assembles the builtin database,
// definition files and stored custom units into a registry and publishes it.
type Service struct {
	store   *registry.Store
	systems *system.Manager
	opts    Options
	logger  Logger

	// mu serialises rebuilds; readers go through the store and never block.
	mu sync.Mutex
}

// New creates a service publishing into store and registering systems into
// systems. Nothing is built until Reload is called.
func New(store *registry.Store, systems *system.Manager, opts Options) *Service {
	return &Service{
		store:   store,
		systems: systems,
		opts:    opts,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the service and the registries it builds.
func (s *Service) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	s.logger = logger
}

// Store returns the store the service publishes into.
func (s *Service) Store() *registry.Store { return s.store }

// Systems returns the system manager.
func (s *Service) Systems() *system.Manager { return s.systems }

// Audit returns the audit trail, or nil when none is configured.
func (s *Service) Audit() audit.Repository { return s.opts.Audit }

// Parser returns a parser resolving through the currently published
// registry.
func (s *Service) Parser() *parser.Parser { return parser.New(s.store) }

// sources is everything a registry is built from.
type sources struct {
	records []registry.Record
	systems []system.Definition
	custom  int
}

func (s *Service) gather(ctx context.Context, skip string) (sources, error) {
	src := sources{records: registry.DefaultRecords()}

	fileRecords, fileSystems, err := definitions.LoadAll(s.opts.Files)
	if err != nil {
		return sources{}, err
	}
	src.records = append(src.records, fileRecords...)
	src.systems = fileSystems

	if s.opts.Repository != nil {
		stored, err := s.opts.Repository.List(ctx)
		if err != nil {
			return sources{}, fmt.Errorf("listing custom units: %w", err)
		}
		for i := range stored {
			if stored[i].Name == skip {
				continue
			}
			src.records = append(src.records, stored[i].Record())
			src.custom++
		}
	}
	return src, nil
}

func (s *Service) build(records []registry.Record) (*registry.Registry, error) {
	b := registry.NewBuilder(s.opts.Policy)
	b.SetLogger(s.logger)
	b.Add(records...)
	return b.Build()
}

// Reload rebuilds the registry from all sources and publishes it. On any
// error the previously published registry stays active. Every reload after
// the first is recorded in the audit trail.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	initial := s.store.Load() == nil
	if err := s.reload(ctx); err != nil {
		return err
	}
	// Only republishing is a change worth auditing.
	if !initial {
		s.record(ctx, audit.ActionReload, "", map[string]any{"units": s.store.Load().Len()})
	}
	return nil
}

// record appends to the audit trail. The change has already happened, so a
// failure is logged rather than returned.
func (s *Service) record(ctx context.Context, action, unit string, details map[string]any) {
	if s.opts.Audit == nil {
		return
	}
	e := &audit.Entry{
		Action:  action,
		Unit:    unit,
		Source:  audit.SourceFrom(ctx),
		Details: details,
	}
	if err := s.opts.Audit.Create(ctx, e); err != nil {
		s.logger.Warn("recording audit entry failed", "action", action, "unit", unit, "error", err)
	}
}

func (s *Service) reload(ctx context.Context) error {
	src, err := s.gather(ctx, "")
	if err != nil {
		return err
	}
	r, err := s.build(src.records)
	if err != nil {
		return fmt.Errorf("building registry: %w", err)
	}
	if err := r.Validate(); err != nil {
		s.logger.Warn("some custom units do not resolve", "error", err)
	}

	p := parser.New(r)
	systems, err := system.Builtin(p)
	if err != nil {
		return fmt.Errorf("building builtin systems: %w", err)
	}
	for _, def := range src.systems {
		us, err := def.Build(p)
		if err != nil {
			return fmt.Errorf("building system: %w", err)
		}
		systems = append(systems, us)
	}

	previous, hadActive := s.systems.Active()
	s.store.Publish(r)
	kept, err := s.systems.Replace(systems)
	if err != nil {
		return err
	}
	if hadActive && !kept {
		s.logger.Warn("active unit system no longer defined", "system", previous.Name)
	}

	s.logger.Info("registry published",
		"units", r.Len(),
		"custom_units", src.custom,
		"files", len(s.opts.Files),
		"systems", len(systems),
		"policy", r.Policy().String(),
	)
	return nil
}

// Define stores a custom unit and republishes the registry. The unit must
// resolve in a trial registry built from the current sources plus the new
// definition, so unknown bases and cycles are rejected before anything is
// stored. An existing stored unit of the same name is replaced.
func (s *Service) Define(ctx context.Context, u *customunit.CustomUnit) error {
	if s.opts.Repository == nil {
		return ErrNoRepository
	}
	if err := customunit.Validate(u); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.gather(ctx, u.Name)
	if err != nil {
		return err
	}
	trial, err := s.build(append(src.records, u.Record()))
	if err != nil {
		return fmt.Errorf("%w: %w", customunit.ErrInvalid, err)
	}
	if _, err := trial.Resolve(u.Name); err != nil {
		return err
	}

	repo := s.opts.Repository
	action := audit.ActionDefine
	existing, err := repo.GetByName(ctx, u.Name)
	switch {
	case err == nil:
		u.ID = existing.ID
		u.CreatedAt = existing.CreatedAt
		if err := repo.Update(ctx, u); err != nil {
			return err
		}
		action = audit.ActionRedefine
		s.logger.Info("custom unit redefined", "name", u.Name, "kind", string(u.Kind))
	case errors.Is(err, customunit.ErrNotFound):
		if err := repo.Create(ctx, u); err != nil {
			return err
		}
		s.logger.Info("custom unit defined", "name", u.Name, "kind", string(u.Kind))
	default:
		return err
	}
	if err := s.reload(ctx); err != nil {
		return err
	}
	s.record(ctx, action, u.Name, map[string]any{
		"kind":  string(u.Kind),
		"scale": u.Scale,
		"base":  u.Base,
	})
	return nil
}

// Remove deletes a stored custom unit and republishes the registry. The
// removal is rejected with ErrInUse when a unit that resolves today would
// stop resolving without it.
func (s *Service) Remove(ctx context.Context, name string) error {
	if s.opts.Repository == nil {
		return ErrNoRepository
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.gather(ctx, name)
	if err != nil {
		return err
	}
	trial, err := s.build(src.records)
	switch {
	case errors.Is(err, units.ErrUnknownUnit):
		return fmt.Errorf("%w: %s: %w", ErrInUse, name, err)
	case err != nil:
		return fmt.Errorf("building registry: %w", err)
	}
	if dependents := s.dependents(trial); len(dependents) > 0 {
		return fmt.Errorf("%w: %s is the base of %s", ErrInUse, name, strings.Join(dependents, ", "))
	}

	if err := s.opts.Repository.Delete(ctx, name); err != nil {
		return err
	}
	s.logger.Info("custom unit removed", "name", name)
	if err := s.reload(ctx); err != nil {
		return err
	}
	s.record(ctx, audit.ActionRemove, name, nil)
	return nil
}

// dependents lists the custom units of trial that fail to resolve although
// they resolve in the published registry.
func (s *Service) dependents(trial *registry.Registry) []string {
	current := s.store.Load()
	var out []string
	for _, def := range trial.ListCustom() {
		if _, err := trial.Resolve(def.Name); err == nil {
			continue
		}
		if current != nil {
			if _, err := current.Resolve(def.Name); err != nil {
				continue
			}
		}
		out = append(out, def.Name)
	}
	return out
}

// CustomUnits lists the stored custom units.
func (s *Service) CustomUnits(ctx context.Context) ([]customunit.CustomUnit, error) {
	if s.opts.Repository == nil {
		return nil, nil
	}
	return s.opts.Repository.List(ctx)
}
