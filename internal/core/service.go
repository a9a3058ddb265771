package core

import (
	"amity/internal/infra/persistence/memory"
	"context"
	"math/rand/v2"
	"time"
)

// Logger is the structured logging contract used by the service. Arguments
// after the message are alternating keys and values.
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

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function into a Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// MetricsRecorder observes the outcome of service operations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// Chooser picks an index in [0, n). *rand.Rand satisfies it.
type Chooser interface {
	IntN(n int) int
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source used for records and operation timings.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder MetricsRecorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithChooser sets the source of randomness for room selection.
func WithChooser(chooser Chooser) Option {
	return func(s *Service) {
		if chooser != nil {
			s.chooser = chooser
		}
	}
}

// WithSeed seeds the default room chooser for reproducible allocation.
func WithSeed(seed uint64) Option {
	return func(s *Service) {
		s.chooser = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithCapacities overrides the organisation-wide room capacities.
func WithCapacities(capacities Capacities) Option {
	return func(s *Service) {
		if capacities.Office > 0 && capacities.LivingSpace > 0 {
			s.capacities = capacities
		}
	}
}

// Service is the allocation engine. It owns the room and person registries
// through its store and mutates them only inside store transactions.
type Service struct {
	store      *memory.Store
	logger     Logger
	clock      Clock
	metrics    MetricsRecorder
	chooser    Chooser
	capacities Capacities
}

// NewService constructs a service backed by the supplied store.
func NewService(store *memory.Store, opts ...Option) *Service {
	if store == nil {
		store = memory.NewStore(NewDefaultRulesEngine())
	}
	now := time.Now().UnixNano()
	s := &Service{
		store:      store,
		logger:     noopLogger{},
		clock:      ClockFunc(func() time.Time { return time.Now().UTC() }),
		metrics:    noopMetrics{},
		chooser:    rand.New(rand.NewPCG(uint64(now), uint64(now>>1))),
		capacities: DefaultCapacities(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store.SetNowFunc(func() time.Time { return s.clock.Now().UTC() })
	rules := s.store.RulesEngine().Rules()
	names := make([]string, 0, len(rules))
	for _, rule := range rules {
		names = append(names, rule.Name())
	}
	s.logger.Debug("service ready", "rules", names, "office_capacity", s.capacities.Office, "living_space_capacity", s.capacities.LivingSpace)
	return s
}

// NewInMemoryService creates a service and in-memory store with the given rules engine.
// A nil engine selects the default invariant rules.
func NewInMemoryService(engine *RulesEngine, opts ...Option) *Service {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying registry store.
func (s *Service) Store() *memory.Store {
	return s.store
}

// Capacities returns the capacity policy applied to new rooms.
func (s *Service) Capacities() Capacities {
	return s.capacities
}

// run executes fn in a store transaction and records timing, outcome and rule warnings.
func (s *Service) run(ctx context.Context, operation string, fn func(tx Transaction) error) (Result, error) {
	start := s.clock.Now()
	res, err := s.store.RunInTransaction(ctx, fn)
	s.metrics.Observe(ctx, operation, err == nil, s.clock.Now().Sub(start))
	for _, v := range res.Violations {
		if v.Severity == SeverityBlock {
			continue
		}
		s.logger.Warn("rule violation", "operation", operation, "rule", v.Rule, "message", v.Message)
	}
	if err != nil {
		s.logger.Debug("operation failed", "operation", operation, "error", err)
		return res, err
	}
	s.logger.Debug("operation committed", "operation", operation)
	return res, nil
}

// view executes fn against a read-only snapshot and records timing.
func (s *Service) view(ctx context.Context, operation string, fn func(TransactionView) error) error {
	start := s.clock.Now()
	err := s.store.View(ctx, fn)
	s.metrics.Observe(ctx, operation, err == nil, s.clock.Now().Sub(start))
	return err
}
