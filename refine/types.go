package refine

import (
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// ErrNoBorderingCommunity indicates the worst community has no neighbor to
// exchange with. The pass stops; its Result is still returned.
var ErrNoBorderingCommunity = errors.New("refine: no bordering community")

// Reason tells why a pass stopped.
type Reason int

const (
	// Converged: the worst community is within the threshold.
	Converged Reason = iota
	// NoChange: the previous iteration moved no precinct.
	NoChange
	// IterationCap: Options.MaxIterations reached.
	IterationCap
	// NoBordering: see ErrNoBorderingCommunity.
	NoBordering
	// Canceled: the context ended the pass.
	Canceled
)

// String implements fmt.Stringer.
func (r Reason) String() string {
	switch r {
	case Converged:
		return "converged"
	case NoChange:
		return "no_change"
	case IterationCap:
		return "iteration_cap"
	case NoBordering:
		return "no_bordering_community"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// MarshalText lets reasons appear by name in JSON snapshots.
func (r Reason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Reason) UnmarshalText(b []byte) error {
	for k := Converged; k <= Canceled; k++ {
		if k.String() == string(b) {
			*r = k
			return nil
		}
	}

	return fmt.Errorf("refine: unknown reason %q", b)
}

// Exchange is one applied move.
type Exchange struct {
	Iteration int     `json:"iteration"`
	Precinct  string  `json:"precinct"`
	From      int     `json:"from"`
	To        int     `json:"to"`
	Before    float64 `json:"before"`
	After     float64 `json:"after"`
}

// Iteration records one outer iteration.
type Iteration struct {
	Index int `json:"index"`

	// Worst is the community refined in this iteration and WorstValue its
	// deviation at the start.
	Worst      int     `json:"worst"`
	WorstValue float64 `json:"worst_value"`

	Changed   int     `json:"changed"`
	Aggregate float64 `json:"aggregate"`
}

// Result describes a finished pass.
type Result struct {
	Metric     string      `json:"metric"`
	Reason     Reason      `json:"reason"`
	Iterations []Iteration `json:"iterations"`
	Exchanges  []Exchange  `json:"exchanges"`

	// Best is the index of the iteration that left the lowest aggregate,
	// -1 for the starting partition.
	Best          int     `json:"best"`
	BestAggregate float64 `json:"best_aggregate"`

	// Worst is the deviation of the worst community when the pass stopped.
	Worst float64 `json:"worst"`

	// Restored reports that the best assignment replaced the final one.
	Restored bool `json:"restored"`
}

// Changed returns the total number of precincts moved.
func (r *Result) Changed() int { return len(r.Exchanges) }

// Options configures an Engine.
type Options struct {
	// Threshold is the deviation at or below which a community is fine.
	Threshold float64

	// MaxIterations caps the outer loop.
	MaxIterations int

	// Workers bounds candidate scoring.
	Workers int

	// RestoreBest puts back the lowest-aggregate assignment when the pass
	// did not converge.
	RestoreBest bool

	Logger *zap.Logger

	OnExchange  func(metric string, e Exchange)
	OnIteration func(metric string, it Iteration)
}

// Option mutates Options.
type Option func(*Options)

const (
	defaultThreshold     = 1.0
	defaultMaxIterations = 100
)

// DefaultOptions returns a 1.0 threshold, 100 iterations and one worker per
// CPU.
func DefaultOptions() Options {
	return Options{
		Threshold:     defaultThreshold,
		MaxIterations: defaultMaxIterations,
		Workers:       runtime.GOMAXPROCS(0),
		Logger:        zap.NewNop(),
		OnExchange:    func(string, Exchange) {},
		OnIteration:   func(string, Iteration) {},
	}
}

// WithThreshold sets the acceptable deviation. Negative values are ignored.
func WithThreshold(t float64) Option {
	return func(o *Options) {
		if t >= 0 {
			o.Threshold = t
		}
	}
}

// WithMaxIterations sets the iteration cap. Values below 1 are ignored.
func WithMaxIterations(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxIterations = n
		}
	}
}

// WithWorkers bounds candidate scoring. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Workers = n
		}
	}
}

// WithRestoreBest enables restoring the best assignment.
func WithRestoreBest() Option {
	return func(o *Options) { o.RestoreBest = true }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithOnExchange registers a hook called after every applied exchange.
func WithOnExchange(fn func(metric string, e Exchange)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnExchange = fn
		}
	}
}

// WithOnIteration registers a hook called after every iteration.
func WithOnIteration(fn func(metric string, it Iteration)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnIteration = fn
		}
	}
}
