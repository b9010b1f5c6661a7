package filler

import (
	"math/rand"
	"runtime"

	"go.uber.org/zap"
)

const (
	defaultRestarts = 3
	defaultSeed     = 1
)

// Picker chooses an index in [0, n). *rand.Rand satisfies it.
type Picker interface {
	Intn(n int) int
}

// Options configures Fill.
type Options struct {
	// Workers bounds the goroutines of a bordering scan.
	Workers int

	// Restarts is how many times one fill may start over before
	// ErrFillExhausted is returned.
	Restarts int

	Picker Picker
	Logger *zap.Logger

	// OnReject is called for every pick undone because it split the pool
	// or detached the community.
	OnReject func(community int, precinct string)

	// OnRestart is called before a fill starts over.
	OnRestart func(community int)
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions uses one worker per CPU, three restarts and a picker
// seeded with 1.
func DefaultOptions() Options {
	return Options{
		Workers:   runtime.GOMAXPROCS(0),
		Restarts:  defaultRestarts,
		Picker:    rand.New(rand.NewSource(defaultSeed)),
		Logger:    zap.NewNop(),
		OnReject:  func(int, string) {},
		OnRestart: func(int) {},
	}
}

// WithWorkers bounds the bordering scan. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Workers = n
		}
	}
}

// WithRestarts sets the restart budget. Negative values are ignored.
func WithRestarts(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.Restarts = n
		}
	}
}

// WithPicker replaces the random picker.
func WithPicker(p Picker) Option {
	return func(o *Options) {
		if p != nil {
			o.Picker = p
		}
	}
}

// WithSeed uses a math/rand picker seeded with seed.
func WithSeed(seed int64) Option {
	return WithPicker(rand.New(rand.NewSource(seed)))
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithOnReject registers a rejection hook.
func WithOnReject(fn func(community int, precinct string)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnReject = fn
		}
	}
}

// WithOnRestart registers a restart hook.
func WithOnRestart(fn func(community int)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnRestart = fn
		}
	}
}
