package pipeline

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/katalvlaran/communities/config"
	"github.com/katalvlaran/communities/geometry"
	"github.com/katalvlaran/communities/metrics"
	"github.com/katalvlaran/communities/snapshot"
)

// Pass configures one refinement pass.
type Pass struct {
	Enabled       bool
	Threshold     float64
	MaxIterations int
}

// Options configures Run.
type Options struct {
	Communities int
	Seed        int64
	Workers     int

	// Restarts is the per-fill restart budget.
	Restarts int

	Population   Pass
	Partisanship Pass

	// Overshoot is the population guard in percent; 0 disables it.
	Overshoot   float64
	RestoreBest bool

	Oracle   geometry.Oracle
	Sink     snapshot.Sink
	Logger   *zap.Logger
	Recorder *metrics.Recorder
}

// DefaultOptions mirrors config.Default without a sink or recorder.
func DefaultOptions() Options {
	return FromConfig(config.Default())
}

// FromConfig maps a loaded configuration onto Options. Sink, Logger and
// Recorder are left at their defaults; the caller builds them.
func FromConfig(cfg *config.Config) Options {
	return Options{
		Communities: cfg.Communities,
		Seed:        cfg.Seed,
		Workers:     cfg.Workers,
		Restarts:    cfg.Fill.Restarts,
		Population: Pass{
			Enabled:       cfg.Refine.Population.Enabled,
			Threshold:     cfg.Refine.Population.Threshold,
			MaxIterations: cfg.Refine.Population.MaxIterations,
		},
		Partisanship: Pass{
			Enabled:       cfg.Refine.Partisanship.Enabled,
			Threshold:     cfg.Refine.Partisanship.Threshold,
			MaxIterations: cfg.Refine.Partisanship.MaxIterations,
		},
		Overshoot:   cfg.Refine.Overshoot,
		RestoreBest: cfg.Refine.RestoreBest,
	}
}

func (o *Options) fill() {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Oracle == nil {
		o.Oracle = geometry.Planar{}
	}
	if o.Sink == nil {
		o.Sink = snapshot.Nop{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Recorder == nil {
		o.Recorder = metrics.NewRecorder("")
	}
}
