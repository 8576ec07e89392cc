package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/replens/internal/ingest"
	"github.com/claude/replens/internal/ingest/csvcapture"
	"github.com/claude/replens/internal/models"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	RepsSent        int
	SamplesSent     int
	SetsResegmented int
}

// Options configure an Uploader.
type Options struct {
	// Exercise and Equipment label CSV captures. When Exercise is empty the
	// name of the file's parent directory is used.
	Exercise  string
	Equipment string
	DryRun    bool
}

// Uploader walks a directory of .json and .csv captures and POSTs the ones
// not yet uploaded to the RepLens server.
type Uploader struct {
	client *Client
	state  *StateDB
	root   string
	opts   Options
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. client may be nil in dry-run mode.
func New(client *Client, state *StateDB, root string, opts Options, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		root:   root,
		opts:   opts,
		log:    log,
	}
}

// Run uploads every new capture under the root directory in path order.
// Per-file failures are logged and counted; only cancellation aborts the run.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := captureFiles(u.root)
	if err != nil {
		return &u.stats, fmt.Errorf("listing captures: %w", err)
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		u.stats.FilesTotal++
		if err := u.processFile(ctx, f); err != nil {
			if ctx.Err() != nil {
				return &u.stats, ctx.Err()
			}
			u.log.Warn("upload failed", "file", f, "error", err)
			u.stats.FilesErrored++
		}
	}
	return &u.stats, nil
}

func (u *Uploader) processFile(ctx context.Context, path string) error {
	relPath, _ := filepath.Rel(u.root, path)
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}

	uploaded, err := u.state.IsUploaded(relPath, info.Size(), hash)
	if err != nil {
		return err
	}
	if uploaded {
		u.stats.FilesSkipped++
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading: %w", err)
	}

	// Parse locally first so malformed files never reach the server.
	isCSV := strings.EqualFold(filepath.Ext(path), ".csv")
	var payload models.CapturePayload
	if isCSV {
		payload, err = csvcapture.Parse(bytes.NewReader(data))
	} else {
		err = json.Unmarshal(data, &payload)
	}
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}
	w, err := models.NormalizeWorkout(payload)
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}

	if u.opts.DryRun {
		u.log.Info("dry-run: would send", "file", relPath, "sets", len(w.Sets), "reps", w.RepCount())
		u.stats.RepsSent += w.RepCount()
		u.stats.SamplesSent += w.SampleCount()
		return nil
	}

	var result *ingest.Result
	if isCSV {
		result, err = u.client.SendCSV(ctx, data, u.exerciseFor(relPath), u.opts.Equipment)
	} else {
		result, err = u.client.SendJSON(ctx, data)
	}
	if err != nil {
		return err
	}

	u.stats.FilesUploaded++
	u.stats.RepsSent += result.RepsReceived
	u.stats.SamplesSent += result.SamplesReceived
	u.stats.SetsResegmented += result.SetsResegmented
	if err := u.state.MarkUploaded(relPath, info.Size(), hash, result.AnalysisID.String()); err != nil {
		u.log.Warn("failed to mark uploaded", "file", relPath, "error", err)
	}
	u.log.Info("uploaded capture",
		"file", relPath,
		"reps", result.RepsReceived,
		"fatigue_score", result.FatigueScore,
		"fatigue_level", result.FatigueLevel,
	)
	return nil
}

func (u *Uploader) exerciseFor(relPath string) string {
	if u.opts.Exercise != "" {
		return u.opts.Exercise
	}
	dir := filepath.Dir(relPath)
	if dir == "." {
		return ""
	}
	return filepath.Base(dir)
}

// captureFiles returns the .json and .csv files under root, sorted.
func captureFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".csv":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
