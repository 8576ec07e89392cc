package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/claude/replens/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "RepLens server URL (e.g. https://replens.tail1234.ts.net)")
	capturePath := flag.String("path", "", "directory of .json/.csv capture files")
	apiKey := flag.String("api-key", os.Getenv("REPLENS_AUTH_API_KEY"), "ingest API key (default $REPLENS_AUTH_API_KEY)")
	exercise := flag.String("exercise", "", "exercise for CSV captures (default: parent directory name)")
	equipment := flag.String("equipment", "", "equipment for CSV captures")
	stateDir := flag.String("state-dir", "", "state directory (default ~/.replens-upload)")
	dryRun := flag.Bool("dry-run", false, "parse captures but don't send to server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("replens-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *capturePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: replens-upload -server <URL> -path <capture dir> [-exercise NAME] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}

	info, err := os.Stat(*capturePath)
	if err != nil || !info.IsDir() {
		log.Error("capture directory not found", "path", *capturePath)
		os.Exit(1)
	}

	// Open state database
	dir := *stateDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		dir = filepath.Join(homeDir, ".replens-upload")
	}
	state, err := upload.OpenStateDB(dir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	var client *upload.Client
	if !*dryRun {
		client = upload.NewClient(*serverURL, *apiKey)
	} else {
		log.Info("DRY RUN mode: captures will be parsed but not sent")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := upload.Options{Exercise: *exercise, Equipment: *equipment, DryRun: *dryRun}
	stats, err := upload.New(client, state, *capturePath, opts, log).Run(ctx)
	printStats(stats)
	if err != nil {
		log.Error("upload failed", "error", err)
		os.Exit(1)
	}
	log.Info("upload complete")
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files uploaded:   %d\n", stats.FilesUploaded)
	fmt.Printf("  Files skipped:    %d (already uploaded)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Reps sent:        %d\n", stats.RepsSent)
	fmt.Printf("  Samples sent:     %d\n", stats.SamplesSent)
	fmt.Printf("  Sets resegmented: %d\n", stats.SetsResegmented)
	fmt.Println()
}
