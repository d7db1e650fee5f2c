// Command cdcreco runs the segment to track combination over events read
// from a JSON or YAML file, then optionally stores the results in a
// SQLite database, writes them back out and draws event displays.
//
// Usage:
//
//	cdcreco [flags] events.yaml
//	cdcreco migrate <up|down|status|force N> [-db path]
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/banshee-data/cdc.tracking/internal/combiner"
	"github.com/banshee-data/cdc.tracking/internal/combiner/debug"
	"github.com/banshee-data/cdc.tracking/internal/config"
	"github.com/banshee-data/cdc.tracking/internal/db"
	"github.com/banshee-data/cdc.tracking/internal/display"
	"github.com/banshee-data/cdc.tracking/internal/eventio"
	"github.com/banshee-data/cdc.tracking/internal/fsutil"
	"github.com/banshee-data/cdc.tracking/internal/version"
)

var errUsage = errors.New("usage")

// options are the parsed command line flags.
type options struct {
	configPath string
	dbPath     string
	outPath    string
	plotDir    string
	htmlPath   string
	debugPath  string
	verbose    bool
	trace      bool
	input      string
}

func main() {
	log.SetPrefix("[cdcreco] ")
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		log.Fatalf("%v", err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "migrate" {
		fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
		fs.SetOutput(stderr)
		dbPath := fs.String("db", "cdc_results.db", "Path to the result database")
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		return db.RunMigrateCommand(fs.Args(), *dbPath, stdout)
	}

	opts, err := parseFlags(args, stdout, stderr)
	if err != nil {
		return err
	}
	if opts == nil {
		return nil
	}
	return reconstruct(*opts, fsutil.OSFileSystem{}, stdout, stderr)
}

// parseFlags returns nil options when the invocation only printed
// something, such as the version.
func parseFlags(args []string, stdout, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("cdcreco", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.configPath, "config", "", "Tuning config JSON (default: compiled-in defaults)")
	fs.StringVar(&o.dbPath, "db", "", "Store results in this SQLite database")
	fs.StringVar(&o.outPath, "out", "", "Write result events to this .json or .yaml file")
	fs.StringVar(&o.plotDir, "plots", "", "Write one PNG event display per event into this directory")
	fs.StringVar(&o.htmlPath, "html", "", "Write an HTML event display page to this file")
	fs.StringVar(&o.debugPath, "debug-out", "", "Write per-event combiner decisions as JSON lines to this file")
	fs.BoolVar(&o.verbose, "v", false, "Log per-event summaries and fit diagnostics")
	fs.BoolVar(&o.trace, "trace", false, "Log every filter decision (very verbose)")
	showVersion := fs.Bool("version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	if *showVersion {
		fmt.Fprintf(stdout, "cdcreco %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return nil, nil
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: cdcreco [flags] <events.json|events.yaml>")
		fs.PrintDefaults()
		return nil, errUsage
	}
	o.input = fs.Arg(0)
	return &o, nil
}

func loadTuning(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.EmptyTuningConfig(), nil
	}
	return config.LoadTuningConfig(path)
}

// reconstruct runs the full pipeline described by o.
func reconstruct(o options, fsys fsutil.FileSystem, stdout, stderr io.Writer) error {
	tuning, err := loadTuning(o.configPath)
	if err != nil {
		return fmt.Errorf("failed to load tuning config: %w", err)
	}
	cfg := combiner.CombinerConfigFromTuning(tuning)

	logs := combiner.LogWriters{}
	if o.verbose {
		logs.Ops, logs.Diag = stderr, stderr
	}
	if o.trace {
		logs.Trace = stderr
	}
	combiner.SetLogWriters(logs)
	defer combiner.SetLogWriters(combiner.LogWriters{})

	events, err := eventio.LoadFS(fsys, o.input)
	if err != nil {
		return err
	}
	log.Printf("loaded %d events from %s", len(events), o.input)

	var store *db.DB
	var runID string
	if o.dbPath != "" {
		store, err = db.NewDB(o.dbPath)
		if err != nil {
			return fmt.Errorf("failed to open result database: %w", err)
		}
		defer store.Close()
		if runID, err = store.CreateRun(o.input, tuning); err != nil {
			return err
		}
		log.Printf("recording run %s into %s", runID, o.dbPath)
	}

	var debugOut *json.Encoder
	collector := debug.NewDebugCollector()
	if o.debugPath != "" {
		w, err := createFile(fsys, o.debugPath)
		if err != nil {
			return err
		}
		defer w.Close()
		debugOut = json.NewEncoder(w)
		collector.SetEnabled(true)
	}

	c := combiner.NewSegmentTrackCombiner(cfg)
	c.SetDebugCollector(collector)
	filters := combiner.DefaultFilters(cfg)

	var total combiner.Stats
	fmt.Fprintln(stdout, "event\ttracks\tnew\textended\tremoved\tunused_segments")
	for _, ev := range events {
		if err := c.Run(ev, filters); err != nil {
			return err
		}
		stats := c.Stats()
		addStats(&total, stats)
		fmt.Fprintf(stdout, "%d\t%d\t%d\t%d\t%d\t%d\n",
			ev.Number, len(ev.Tracks), stats.NewTracks, stats.ExtendedTracks, stats.RemovedTracks, len(ev.Segments))

		if debugOut != nil {
			if err := debugOut.Encode(collector.Emit()); err != nil {
				return fmt.Errorf("failed to write debug record: %w", err)
			}
		}
		if store != nil {
			if err := store.RecordEvent(runID, ev, stats); err != nil {
				return err
			}
		}
		if o.plotDir != "" {
			if _, err := display.SavePNG(fsys, o.plotDir, ev); err != nil {
				return err
			}
		}
	}

	if o.outPath != "" {
		if err := ensureDir(fsys, o.outPath); err != nil {
			return err
		}
		if err := eventio.SaveFS(fsys, o.outPath, events); err != nil {
			return err
		}
	}
	if o.htmlPath != "" {
		if _, err := display.SaveHTML(fsys, filepath.Dir(o.htmlPath), filepath.Base(o.htmlPath), events); err != nil {
			return err
		}
	}

	log.Printf("processed %d events: %d new tracks, %d extended, %d removed, %d segments merged",
		len(events), total.NewTracks, total.ExtendedTracks, total.RemovedTracks, total.MergedSegments)
	return nil
}

func addStats(total *combiner.Stats, s combiner.Stats) {
	total.Segments += s.Segments
	total.Tracks += s.Tracks
	total.MatchCandidates += s.MatchCandidates
	total.Background += s.Background
	total.NewSegmentCandidates += s.NewSegmentCandidates
	total.MergedSegments += s.MergedSegments
	total.Trains += s.Trains
	total.AcceptedTrains += s.AcceptedTrains
	total.ExtendedTracks += s.ExtendedTracks
	total.NewTracks += s.NewTracks
	total.RemovedTracks += s.RemovedTracks
	total.TakenSegments += s.TakenSegments
}

func ensureDir(fsys fsutil.FileSystem, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	return nil
}

func createFile(fsys fsutil.FileSystem, path string) (io.WriteCloser, error) {
	if err := ensureDir(fsys, path); err != nil {
		return nil, err
	}
	w, err := fsys.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return w, nil
}
