// Command ggcapture runs a scripted trace against the counter application,
// writes the captured frames as PNG and optionally checks them against
// golden images and records the run in a SQLite ledger.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggtest"
	"github.com/gogpu/ggtest/compositor"
	"github.com/gogpu/ggtest/internal/config"
	"github.com/gogpu/ggtest/internal/counter"
	"github.com/gogpu/ggtest/internal/ledger"
	"github.com/gogpu/ggtest/screenshot"
)

type trace = ggtest.Trace[*counter.App, counter.Message]

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (default: built-in demo trace)")
		outDir     = flag.String("out", "", "output directory for captures (overrides config)")
		goldenDir  = flag.String("golden", "", "golden image directory; enables golden checks")
		ledgerPath = flag.String("ledger", "", "SQLite ledger file (overrides config)")
		backend    = flag.String("backend", "", "compositor backend (overrides config)")
		list       = flag.Bool("list", false, "print ledger history and exit")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	ggtest.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *goldenDir != "" {
		cfg.Output.GoldenDir = *goldenDir
	}
	if *ledgerPath != "" {
		cfg.Output.Ledger = *ledgerPath
	}
	if *backend != "" {
		cfg.Render.Backend = *backend
	}

	if *list {
		if cfg.Output.Ledger == "" {
			log.Fatal("-list needs a ledger (-ledger or output.ledger)")
		}
		if err := printHistory(cfg.Output.Ledger); err != nil {
			log.Fatalf("Failed to list ledger: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Printf("Trace failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil { //nolint:gosec // output is meant to be shared
		return err
	}

	events, err := buildTrace(cfg)
	if err != nil {
		return err
	}

	opts := []ggtest.Option{
		ggtest.WithSize(ggtest.Size{Width: cfg.Render.Width, Height: cfg.Render.Height}),
		ggtest.WithCompositorOptions(compositorOptions(cfg)...),
		ggtest.WithReporter(progress{}),
	}
	if cfg.Output.Ledger != "" {
		l, err := ledger.Open(cfg.Output.Ledger)
		if err != nil {
			return err
		}
		defer l.Close()
		// Compare digests before the ledger records this run.
		opts = append(opts, ggtest.WithReporter(digestReporter{l}), ggtest.WithReporter(l))
	}

	app, err := ggtest.Run(ctx, counter.New, counter.Flags{Start: cfg.Start}, events, opts...)
	if err != nil {
		return err
	}
	log.Printf("Trace passed: %d steps, final value %d", len(events), app.Value())
	return nil
}

func compositorOptions(cfg *config.Config) []compositor.Option {
	power := gputypes.PowerPreferenceLowPower
	if cfg.Render.Power == config.PowerHigh {
		power = gputypes.PowerPreferenceHighPerformance
	}
	opts := []compositor.Option{
		compositor.WithPowerPreference(power),
		compositor.WithAntialiasing(cfg.Render.Antialiasing),
		compositor.WithLabel("ggcapture"),
	}
	if cfg.Render.Backend != "" {
		opts = append(opts, compositor.WithBackendName(cfg.Render.Backend))
	}
	return opts
}

func buildTrace(cfg *config.Config) (trace, error) {
	var t trace
	for i, s := range cfg.Steps {
		switch {
		case s.Send != "":
			msg, ok := counter.ParseMessage(s.Send)
			if !ok {
				return nil, fmt.Errorf("step %d: unknown message %q", i, s.Send)
			}
			t = t.Send(msg)
		case s.Wait > 0:
			t = t.Wait(s.Wait)
		case s.Expect != nil:
			want := *s.Expect
			t = t.Assert("value == "+strconv.Itoa(want), func(a *counter.App) bool { return a.Value() == want })
		case s.Set != nil:
			v := *s.Set
			t = t.Mutate(func(a *counter.App) { a.SetValue(v) })
		case s.Capture != "":
			t = t.Save(filepath.Join(cfg.Output.Dir, s.Capture+".png"))
			if cfg.Output.GoldenDir != "" {
				t = t.Check(s.Capture, goldenCheck(ggtest.GoldenPath(cfg.Output.GoldenDir, s.Capture)))
			}
		}
	}
	return t, nil
}

// goldenCheck compares a frame with the golden image at path, writing it
// instead when GGTEST_UPDATE is set.
func goldenCheck(path string) func(*screenshot.Screenshot) bool {
	return func(s *screenshot.Screenshot) bool {
		if ggtest.UpdateRequested() {
			if err := ggtest.UpdateGolden(path, s); err != nil {
				log.Printf("Failed to update golden %s: %v", path, err)
				return false
			}
			log.Printf("Updated golden %s", path)
			return true
		}
		if err := ggtest.CheckGolden(path, s); err != nil {
			log.Printf("Golden check: %v", err)
			return false
		}
		return true
	}
}

func printHistory(path string) error {
	l, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer l.Close()

	runs, err := l.List(context.Background(), 20)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tRESULT\tEVENTS\tCAPTURES\tDURATION")
	for _, r := range runs {
		result := "pass"
		if !r.Passed {
			result = "FAIL"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d/%d\t%d\t%s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), result,
			r.Applied, r.Events, len(r.Captures), r.Duration.Round(time.Microsecond))
		for _, c := range r.Captures {
			fmt.Fprintf(w, "\t\t%s\t%s\t%.12s\t\n", c.Kind, c.Name, c.Digest)
		}
	}
	return w.Flush()
}

// progress prints one line per applied event.
type progress struct{}

func (progress) EventStarted(int, string) {}

func (progress) EventFinished(index int, kind string, err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "FAIL"
	}
	fmt.Printf("%3d  %-16s %-4s %s\n", index, kind, status, elapsed.Round(time.Microsecond))
}

func (progress) RunFinished(ggtest.RunResult) {}

// digestChange is a capture whose digest differs from the last recorded
// one. Previous is empty for a capture the ledger has never seen.
type digestChange struct {
	Name     string
	Previous string
	Current  string
}

func changedDigests(ctx context.Context, l *ledger.Ledger, captures []ggtest.CaptureRecord) ([]digestChange, error) {
	var out []digestChange
	for _, c := range captures {
		prev, ok, err := l.LastDigest(ctx, c.Name)
		if err != nil {
			return nil, err
		}
		if ok && prev == c.Digest {
			continue
		}
		out = append(out, digestChange{Name: c.Name, Previous: prev, Current: c.Digest})
	}
	return out, nil
}

// digestReporter prints captures that changed since the last recorded run.
type digestReporter struct {
	ledger *ledger.Ledger
}

func (digestReporter) EventStarted(int, string) {}

func (digestReporter) EventFinished(int, string, error, time.Duration) {}

func (d digestReporter) RunFinished(r ggtest.RunResult) {
	changes, err := changedDigests(context.Background(), d.ledger, r.Captures)
	if err != nil {
		log.Printf("Failed to compare digests: %v", err)
		return
	}
	for _, c := range changes {
		if c.Previous == "" {
			fmt.Printf("new      %s %.12s\n", c.Name, c.Current)
			continue
		}
		fmt.Printf("changed  %s %.12s -> %.12s\n", c.Name, c.Previous, c.Current)
	}
}
