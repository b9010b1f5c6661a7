// Command communities partitions a state's precincts into contiguous,
// population-balanced communities and refines them for partisanship.
//
//	communities -config run.yaml -in state.geojson -out communities.geojson \
//	    [-communities N] [-corridors corridors.json] [-boundary state.geojson] \
//	    [-metrics-file run.prom] [-env .env]
//
// With -synth RxC a synthetic grid state replaces -in.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/katalvlaran/communities/config"
	"github.com/katalvlaran/communities/dataset"
	"github.com/katalvlaran/communities/logging"
	"github.com/katalvlaran/communities/metrics"
	"github.com/katalvlaran/communities/pipeline"
	"github.com/katalvlaran/communities/snapshot"
	"github.com/katalvlaran/communities/synth"
)

type flags struct {
	config      string
	env         string
	in          string
	out         string
	communities int
	corridors   string
	boundary    string
	metricsFile string
	synth       string
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("communities", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", "", "YAML configuration file")
	fs.StringVar(&f.env, "env", ".env", "dotenv file loaded before the environment")
	fs.StringVar(&f.in, "in", "", "input GeoJSON precincts")
	fs.StringVar(&f.out, "out", "communities.geojson", "output GeoJSON communities")
	fs.IntVar(&f.communities, "communities", 0, "number of communities (overrides config)")
	fs.StringVar(&f.corridors, "corridors", "", "JSON file of [idA, idB] corridor pairs")
	fs.StringVar(&f.boundary, "boundary", "", "GeoJSON state outline used to sanity-check precincts")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	fs.StringVar(&f.synth, "synth", "", "generate a ROWSxCOLS synthetic grid instead of reading -in")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if f.in == "" && f.synth == "" {
		return f, errors.New("one of -in or -synth is required")
	}

	return f, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "communities:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(f.config, f.env)
	if err != nil {
		return err
	}
	if f.communities > 0 {
		cfg.Communities = f.communities
	}
	if f.corridors != "" {
		cfg.Input.Corridors = f.corridors
	}
	if f.metricsFile != "" {
		cfg.Metrics.Textfile = f.metricsFile
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	in, err := input(f, cfg)
	if err != nil {
		return err
	}

	rec := metrics.NewRecorder(cfg.Metrics.Namespace)
	opts := pipeline.FromConfig(cfg)
	opts.Logger = log
	opts.Recorder = rec
	opts.Sink = sink(cfg)

	out, runErr := pipeline.Run(ctx, in, opts)
	if cfg.Metrics.Textfile != "" {
		if err = rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Error("metrics not written", zap.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	if err = dataset.WriteFile(f.out, out.Views); err != nil {
		return err
	}
	log.Info("communities written",
		zap.String("run", out.RunID),
		zap.String("path", f.out),
		zap.Int("communities", len(out.Views)))

	return nil
}

func input(f flags, cfg *config.Config) (pipeline.Input, error) {
	var (
		in  pipeline.Input
		err error
	)
	if f.synth != "" {
		var rows, cols int
		if _, err = fmt.Sscanf(f.synth, "%dx%d", &rows, &cols); err != nil {
			return in, fmt.Errorf("-synth %q: want ROWSxCOLS: %w", f.synth, err)
		}
		in.Precincts, err = synth.Grid(rows, cols,
			synth.WithSeed(cfg.Seed),
			synth.WithPopulationFn(synth.RandomPopulation(500, 1500)),
			synth.WithVotesFn(synth.RandomVotes(400)))
		if err != nil {
			return in, err
		}
	} else {
		r := dataset.Reader{Keys: keys(cfg.Input), Snap: cfg.Input.SnapTolerance}
		if in.Precincts, err = r.ReadFile(f.in); err != nil {
			return in, err
		}
	}
	if cfg.Input.Corridors != "" {
		if in.Corridors, err = dataset.ReadCorridorsFile(cfg.Input.Corridors); err != nil {
			return in, err
		}
	}
	if f.boundary != "" {
		if in.Boundary, err = dataset.ReadBoundaryFile(f.boundary); err != nil {
			return in, err
		}
	}

	return in, nil
}

func keys(in config.Input) dataset.Keys {
	return dataset.Keys{
		ID:           in.ID,
		Population:   in.Population,
		Democratic:   in.Democratic,
		Republican:   in.Republican,
		Green:        in.Green,
		Libertarian:  in.Libertarian,
		Reform:       in.Reform,
		Independent:  in.Independent,
		Constitution: in.Constitution,
	}
}

func sink(cfg *config.Config) snapshot.Sink {
	switch cfg.Snapshot.Kind {
	case config.SinkFile:
		return snapshot.FileSink{Dir: cfg.Snapshot.Dir}
	case config.SinkRedis:
		r := cfg.Snapshot.Redis
		return snapshot.NewRedisSink(r.Addr, r.Password, r.DB, r.Prefix, r.TTL)
	default:
		return snapshot.Nop{}
	}
}
