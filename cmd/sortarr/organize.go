package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/sortarr/internal/cache"
	"github.com/vmunix/sortarr/internal/config"
	"github.com/vmunix/sortarr/internal/fileops"
	"github.com/vmunix/sortarr/internal/metadata"
	"github.com/vmunix/sortarr/internal/pipeline"
	"github.com/vmunix/sortarr/internal/planner"
	"github.com/vmunix/sortarr/internal/tmdb"
	"github.com/vmunix/sortarr/pkg/parse"
)

var organizeCmd = &cobra.Command{
	Use:   "organize [flags] <file-or-directory>...",
	Short: "Organize media files into the library",
	Long: `Parse, resolve and move media files into the configured library.

Directories are scanned recursively for video files; sample files are
skipped.

Examples:
  sortarr organize ~/downloads
  sortarr organize --dry-run ~/downloads/Frieren.S01E05.1080p.mkv
  sortarr organize --target /mnt/anime ~/downloads
  sortarr organize --confirm ~/downloads`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOrganizeCmd,
}

func init() {
	rootCmd.AddCommand(organizeCmd)
	organizeCmd.Flags().Bool("dry-run", false, "Plan moves without touching any file")
	organizeCmd.Flags().String("target", "", "Override the configured target root")
	organizeCmd.Flags().Bool("no-metadata", false, "Skip TMDB lookups, organize from filenames only")
	organizeCmd.Flags().Bool("confirm", false, "Plan everything first, ask once, then move as a batch")
}

func runOrganizeCmd(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	target, _ := cmd.Flags().GetString("target")
	noMetadata, _ := cmd.Flags().GetBool("no-metadata")
	confirm, _ := cmd.Flags().GetBool("confirm")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if target != "" {
		cfg.Organize.TargetRoot = target
	}
	log := newLogger(cfg.Log.Level)

	if cfg.Organize.TargetRoot == "" {
		return fmt.Errorf("no target root: set organize.target_root or pass --target")
	}
	if !noMetadata && cfg.TMDB.APIKey == "" {
		return fmt.Errorf("tmdb.api_key is not set; use --no-metadata to organize without lookups")
	}

	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No video files found.")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wire the pipeline.
	var resolver pipeline.Lookup
	var flush func()
	if !noMetadata {
		client := tmdb.NewClient(cfg.TMDB.APIKey, tmdb.WithLanguage(cfg.TMDB.Language))

		// Bad credentials abort before any file is touched.
		if err := client.Ping(ctx); err != nil {
			if errors.Is(err, tmdb.ErrUnauthorized) {
				return fmt.Errorf("TMDB rejected the configured api key")
			}
			log.Warn("provider ping failed, continuing", "error", err)
		}

		var store *cache.Store
		store, err = cache.Open(cfg.Cache.Path)
		if err != nil {
			log.Warn("metadata cache unavailable", "path", cfg.Cache.Path, "error", err)
			store = nil
		} else {
			defer store.Close()
		}

		r := metadata.NewResolver(client, store, metadata.Config{
			CacheTTL:    cfg.Cache.TTL,
			MinInterval: cfg.Metadata.MinInterval,
			Overrides:   metadataOverrides(cfg),
			SearchPages: cfg.Metadata.SearchPages,
			DetailLimit: cfg.Metadata.DetailLimit,
		}, log)
		resolver = r
		flush = r.Flush

		var sw *pipeline.SidecarWriter
		if cfg.Organize.WriteSidecars {
			sw = pipeline.NewSidecarWriter(client.ImageBaseURL(), nil)
		}
		if confirm && !dryRun {
			return runConfirmed(ctx, cfg, resolver, sw, files, flush, log)
		}
		return runPipeline(ctx, cfg, resolver, sw, files, dryRun, flush, log)
	}

	if confirm && !dryRun {
		return runConfirmed(ctx, cfg, nil, nil, files, nil, log)
	}
	return runPipeline(ctx, cfg, nil, nil, files, dryRun, nil, log)
}

func runPipeline(ctx context.Context, cfg *config.Config, resolver pipeline.Lookup, sw *pipeline.SidecarWriter, files []string, dryRun bool, flush func(), log *slog.Logger) error {
	pl := planner.New(planner.Config{
		FolderTemplate:   cfg.Organize.FolderTemplate,
		KeepOriginalName: cfg.Organize.KeepOriginalName,
		Overwrite:        cfg.Organize.Overwrite,
	})
	ex := fileops.NewExecutor(fileops.Config{
		MaxAttempts: cfg.FileOps.MaxAttempts,
		Backoff:     cfg.FileOps.Backoff,
		Overwrite:   cfg.Organize.Overwrite,
	}, log)

	p := pipeline.New(resolver, pl, ex, sw, pipeline.Config{
		MaxConcurrent: cfg.Organize.MaxConcurrent,
		DryRun:        dryRun,
		Retry:         metadata.RetryPolicy{MaxAttempts: cfg.FileOps.MaxAttempts, Backoff: cfg.FileOps.Backoff},
	}, log)

	out := make(chan pipeline.Result)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for res := range out {
			printResult(res, dryRun)
		}
	}()

	stats := p.Run(ctx, files, cfg.Organize.TargetRoot, out)
	<-done

	if flush != nil {
		flush()
	}

	fmt.Printf("\n%d processed: %d organized, %d failed (%s)\n",
		stats.Total, stats.Succeeded, stats.Failed, stats.Elapsed.Round(time.Millisecond))
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", stats.Failed, stats.Total)
	}
	return nil
}

// runConfirmed plans every file up front without touching anything, shows the
// planned moves, asks once, then executes them as a single batch with running
// progress counts.
func runConfirmed(ctx context.Context, cfg *config.Config, resolver pipeline.Lookup, sw *pipeline.SidecarWriter, files []string, flush func(), log *slog.Logger) error {
	pl := planner.New(planner.Config{
		FolderTemplate:   cfg.Organize.FolderTemplate,
		KeepOriginalName: cfg.Organize.KeepOriginalName,
		Overwrite:        cfg.Organize.Overwrite,
	})
	ex := fileops.NewExecutor(fileops.Config{
		MaxAttempts: cfg.FileOps.MaxAttempts,
		Backoff:     cfg.FileOps.Backoff,
		Overwrite:   cfg.Organize.Overwrite,
	}, log)

	// Sidecars are written after the moves, not by the planning pass.
	p := pipeline.New(resolver, pl, ex, nil, pipeline.Config{
		MaxConcurrent: cfg.Organize.MaxConcurrent,
		DryRun:        true,
		Retry:         metadata.RetryPolicy{MaxAttempts: cfg.FileOps.MaxAttempts, Backoff: cfg.FileOps.Backoff},
	}, log)

	out := make(chan pipeline.Result)
	done := make(chan struct{})
	var planned []pipeline.Result
	go func() {
		defer close(done)
		for res := range out {
			printResult(res, true)
			if res.State == pipeline.StateDone {
				planned = append(planned, res)
			}
		}
	}()

	stats := p.Run(ctx, files, cfg.Organize.TargetRoot, out)
	<-done

	if flush != nil {
		flush()
	}

	if len(planned) == 0 {
		fmt.Println("\nNothing to move.")
		if stats.Failed > 0 {
			return fmt.Errorf("%d of %d files failed", stats.Failed, stats.Total)
		}
		return nil
	}

	if !promptYes(fmt.Sprintf("\nMove %d files? [y/N] ", len(planned))) {
		fmt.Println("Aborted.")
		return nil
	}

	ops := make([]*fileops.FileOperation, len(planned))
	for i, res := range planned {
		ops[i] = &fileops.FileOperation{Source: res.SourcePath, Target: res.TargetPath, Kind: fileops.KindMove}
	}

	failed := ex.RunBatch(ctx, ops, cfg.Organize.MaxConcurrent, func(pr fileops.Progress) {
		fmt.Printf("\r  %d/%d moved, %d failed", pr.Completed-pr.Failed, pr.Total, pr.Failed)
	})
	fmt.Println()

	if sw != nil {
		for i, op := range ops {
			if op.Err != nil || planned[i].Metadata == nil {
				continue
			}
			wctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := sw.Write(wctx, op.Target, planned[i].Metadata); err != nil {
				log.Warn("sidecar write failed", "target", op.Target, "error", err)
			}
			cancel()
		}
	}

	failed += stats.Failed
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, stats.Total)
	}
	return nil
}

// promptYes asks on stdout and reads a single line from stdin. Anything but
// an explicit yes declines.
func promptYes(prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

// collectFiles expands the argument list into concrete video files.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			found, err := fileops.FindVideos(arg)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
			continue
		}
		files = append(files, arg)
	}
	return files, nil
}

// metadataOverrides converts config overrides to the resolver's keyed form.
func metadataOverrides(cfg *config.Config) map[string]metadata.Override {
	if len(cfg.Metadata.Overrides) == 0 {
		return nil
	}
	out := make(map[string]metadata.Override, len(cfg.Metadata.Overrides))
	for title, ov := range cfg.Metadata.Overrides {
		out[parse.CleanTitle(title)] = metadata.Override{ID: ov.ID, MediaType: ov.MediaType}
	}
	return out
}

func printResult(res pipeline.Result, dryRun bool) {
	if jsonOutput {
		printResultJSON(res)
		return
	}
	switch res.State {
	case pipeline.StateDone:
		arrow := "->"
		if dryRun {
			arrow = "would move to"
		}
		fmt.Printf("  %s %s %s\n", res.SourcePath, arrow, res.TargetPath)
	default:
		fmt.Printf("  %s FAILED: %v\n", res.SourcePath, res.Err)
	}
}

func printResultJSON(res pipeline.Result) {
	out := map[string]any{
		"source": res.SourcePath,
		"state":  string(res.State),
	}
	if res.TargetPath != "" {
		out["target"] = res.TargetPath
	}
	if res.Err != nil {
		out["error"] = res.Err.Error()
	}
	if res.Metadata != nil {
		out["title"] = res.Metadata.Title
		out["tmdb_id"] = res.Metadata.ID
	}
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(out)
}
