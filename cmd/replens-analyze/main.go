// Command replens-analyze analyzes capture files locally and prints a JSON
// report per file. With -parquet it also writes per-repetition metrics of
// every file to a Parquet file.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/claude/replens/internal/analysis"
	"github.com/claude/replens/internal/config"
	"github.com/claude/replens/internal/export"
	"github.com/claude/replens/internal/ingest/csvcapture"
	"github.com/claude/replens/internal/models"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type report struct {
	File     string                    `json:"file"`
	Analysis *analysis.WorkoutAnalysis `json:"analysis"`
}

func main() {
	configPath := flag.String("config", "", "optional server config; its analysis section sets the defaults")
	exercise := flag.String("exercise", "", "exercise for CSV captures")
	noResegment := flag.Bool("no-resegment", false, "disable boundary repair")
	maxReps := flag.Int("max-reps", 0, "cap on repetitions per repaired set (0 = no cap)")
	workers := flag.Int("workers", 4, "files analyzed in parallel")
	parquetPath := flag.String("parquet", "", "write per-repetition metrics to this Parquet file")
	verbose := flag.Bool("v", false, "debug logging")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("replens-analyze", Version)
		return
	}
	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Usage: replens-analyze [-exercise NAME] [-parquet out.parquet] <capture.json|capture.csv>...\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	files := flag.Args()
	workouts := make([]models.Workout, 0, len(files))
	for _, f := range files {
		w, err := load(f, *exercise)
		if err != nil {
			log.Error("failed to load capture", "file", f, "error", err)
			os.Exit(1)
		}
		workouts = append(workouts, w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := analysis.DefaultOptions()
	n := *workers
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		opts = cfg.Analysis.Options()
		n = cfg.Analysis.Workers
	}
	// Explicit flags win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "no-resegment":
			opts.Resegment = !*noResegment
		case "max-reps":
			opts.MaxRepsPerSet = *maxReps
		case "workers":
			n = *workers
		}
	})

	results, err := analysis.New(opts, log).AnalyzeBatch(ctx, workouts, n)
	if err != nil {
		log.Error("analysis failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	var rows []export.RepRow
	for i, res := range results {
		if err := enc.Encode(report{File: files[i], Analysis: res}); err != nil {
			log.Error("failed to write report", "error", err)
			os.Exit(1)
		}
		rows = append(rows, export.Rows(filepath.Base(files[i]), res)...)
	}

	if *parquetPath != "" {
		data, err := export.MarshalParquet(rows)
		if err != nil {
			log.Error("parquet export failed", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*parquetPath, data, 0o644); err != nil {
			log.Error("writing parquet file failed", "path", *parquetPath, "error", err)
			os.Exit(1)
		}
		log.Info("parquet written", "path", *parquetPath, "rows", len(rows))
	}
}

// load reads a JSON or CSV capture. The exercise flag overrides CSV
// metadata only.
func load(path, exercise string) (models.Workout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Workout{}, err
	}

	var payload models.CapturePayload
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		payload, err = csvcapture.Parse(bytes.NewReader(data))
		payload.Exercise = exercise
	} else {
		err = json.Unmarshal(data, &payload)
	}
	if err != nil {
		return models.Workout{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return models.NormalizeWorkout(payload)
}
