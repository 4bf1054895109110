package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/tpe-golden/internal/fixture"
	"github.com/GoSim-25-26J-441/tpe-golden/internal/harness"
	"github.com/GoSim-25-26J-441/tpe-golden/internal/journal"
	"github.com/GoSim-25-26J-441/tpe-golden/internal/metrics"
	"github.com/GoSim-25-26J-441/tpe-golden/internal/sampler"
	"github.com/GoSim-25-26J-441/tpe-golden/internal/sampler/tpe"
	"github.com/GoSim-25-26J-441/tpe-golden/internal/scenario"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/config"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/logger"
)

type options struct {
	configPath string
	out        string
	logLevel   string
	scenarios  string
	parallel   int
	journal    string
	metricsOut string
	verify     string
	list       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("tpe-golden", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "config file (.yaml, .yml or .toml); defaults reproduce the reference fixture")
	fs.StringVar(&opts.out, "out", "", "fixture output path (overrides config)")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&opts.scenarios, "scenario", "", "comma-separated scenario names to run (default all)")
	fs.IntVar(&opts.parallel, "parallel", 0, "maximum concurrent scenario runs (overrides config)")
	fs.StringVar(&opts.journal, "journal", "", "SQLite protocol journal path (overrides config)")
	fs.StringVar(&opts.metricsOut, "metrics-out", "", "Prometheus text exposition output path (overrides config)")
	fs.StringVar(&opts.verify, "verify", "", "regenerate an existing fixture and compare instead of writing")
	fs.BoolVar(&opts.list, "list", false, "print the scenario catalogue and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, err
		}
		return opts, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return opts, errUsage
	}
	return opts, nil
}

func loadConfig(opts options) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if opts.out != "" {
		cfg.Output = opts.out
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.scenarios != "" {
		cfg.Scenarios = nil
		for _, name := range strings.Split(opts.scenarios, ",") {
			cfg.Scenarios = append(cfg.Scenarios, strings.TrimSpace(name))
		}
	}
	if opts.parallel != 0 {
		cfg.Parallelism = opts.parallel
	}
	if opts.journal != "" {
		cfg.Journal = opts.journal
	}
	if opts.metricsOut != "" {
		cfg.MetricsOutput = opts.metricsOut
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	defs, err := scenario.Select(cfg)
	if err != nil {
		return err
	}
	if opts.list {
		return printCatalogue(stdout, defs, cfg.Trials)
	}

	generationID := uuid.NewString()
	log := logger.NewText(cfg.LogLevel, stderr).With("generation_id", generationID)
	lib := tpe.Library()

	var observers []harness.Observer
	var collector *metrics.Collector
	if cfg.MetricsOutput != "" {
		collector = metrics.NewCollector()
		observers = append(observers, collector.Observer())
	}
	var recorder *journal.Recorder
	if cfg.Journal != "" {
		store, err := journal.Open(cfg.Journal)
		if err != nil {
			return fmt.Errorf("open journal %s: %w", cfg.Journal, err)
		}
		defer store.Close()
		if err := store.BeginGeneration(generationID, lib.Name, lib.Version); err != nil {
			return err
		}
		recorder = store.Observer(generationID)
		observers = append(observers, recorder)
	}

	runner := scenario.NewRunner(lib, harness.NewDriver(log, observers...), cfg.Parallelism, log)
	started := time.Now()
	if opts.verify != "" {
		err = verify(ctx, opts.verify, cfg, lib, runner, stdout, stderr)
	} else {
		err = generate(ctx, cfg, defs, lib, runner, stdout)
	}
	if err != nil {
		return err
	}

	if recorder != nil {
		if err := recorder.Err(); err != nil {
			return fmt.Errorf("journal %s: %w", cfg.Journal, err)
		}
	}
	if collector != nil {
		if err := collector.WriteFile(cfg.MetricsOutput); err != nil {
			return err
		}
		totals, err := collector.Totals()
		if err != nil {
			return err
		}
		log.Info("protocol totals", "runs", totals.Runs, "asks", totals.Asks, "tells", totals.Tells, "reports", totals.Reports)
	}
	log.Info("done", "elapsed", time.Since(started).Round(time.Millisecond))
	return nil
}

func generate(ctx context.Context, cfg *config.Config, defs []scenario.Definition, lib sampler.Library, runner *scenario.Runner, stdout io.Writer) error {
	scenarios, err := runner.Generate(ctx, defs, cfg.Seeds, cfg.Trials)
	if err != nil {
		return err
	}
	f := fixture.Build(fixture.NewMeta(lib.Name, lib.Version, time.Now()), scenarios)
	if err := fixture.CheckInvariants(f); err != nil {
		return err
	}
	data, err := fixture.Marshal(f)
	if err != nil {
		return err
	}
	if err := fixture.ValidateSchema(data); err != nil {
		return err
	}
	if err := fixture.WriteData(cfg.Output, data); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote golden fixture to %s\n", cfg.Output)
	return nil
}

// MismatchError reports a fixture that regenerates differently
type MismatchError struct {
	Path       string
	Mismatches []fixture.Mismatch
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("fixture %s differs in %d place(s)", e.Path, len(e.Mismatches))
}

func verify(ctx context.Context, path string, cfg *config.Config, lib sampler.Library, runner *scenario.Runner, stdout, stderr io.Writer) error {
	expected, err := fixture.Load(path)
	if err != nil {
		return err
	}
	if err := fixture.CheckVersion(expected.Meta, lib.Name, lib.Version); err != nil {
		return err
	}
	if err := fixture.CheckInvariants(expected); err != nil {
		return err
	}

	kept := expected.Scenarios[:0:0]
	for _, sc := range expected.Scenarios {
		if cfg.Wants(sc.Name) {
			kept = append(kept, sc)
		}
	}
	expected.Scenarios = kept

	jobs, err := scenario.Replay(expected)
	if err != nil {
		return err
	}
	runs, err := runner.Run(ctx, jobs)
	if err != nil {
		return err
	}
	actual := fixture.Build(expected.Meta, scenario.Group(jobs, runs))

	if mismatches := fixture.Compare(expected, actual); len(mismatches) > 0 {
		for _, m := range mismatches {
			fmt.Fprintln(stderr, m.String())
		}
		return &MismatchError{Path: path, Mismatches: mismatches}
	}
	fmt.Fprintf(stdout, "Fixture %s matches (%d scenarios)\n", path, len(expected.Scenarios))
	return nil
}

func printCatalogue(w io.Writer, defs []scenario.Definition, budgets config.Trials) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTELL LAG\tDIRECTIONS\tTRIALS")
	for _, d := range defs {
		dirs := make([]string, len(d.Directions))
		for i, dir := range d.Directions {
			dirs[i] = string(dir)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\n", d.Name, d.TellLag, strings.Join(dirs, ","), d.TrialBudget(budgets))
	}
	return tw.Flush()
}
