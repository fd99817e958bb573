package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vmunix/sortarr/internal/cache"
	"github.com/vmunix/sortarr/internal/metadata"
	"github.com/vmunix/sortarr/internal/tmdb"
	"github.com/vmunix/sortarr/pkg/parse"
)

var searchCmd = &cobra.Command{
	Use:   "search <title>...",
	Short: "Resolve titles against TMDB without touching files",
	Long: `Run the same metadata resolution organize uses, on bare titles,
and print the winning match for each. A title may carry a year or a
release-style filename; both are parsed the same way organize parses them.

Examples:
  sortarr search "Frieren"
  sortarr search "Akira 1988" "Mushoku.Tensei.S02E01.1080p.mkv"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchCmd,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.TMDB.APIKey == "" {
		return fmt.Errorf("tmdb.api_key is not set")
	}
	log := newLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := tmdb.NewClient(cfg.TMDB.APIKey, tmdb.WithLanguage(cfg.TMDB.Language))
	if err := client.Ping(ctx); err != nil {
		if errors.Is(err, tmdb.ErrUnauthorized) {
			return fmt.Errorf("TMDB rejected the configured api key")
		}
		log.Warn("provider ping failed, continuing", "error", err)
	}

	store, err := cache.Open(cfg.Cache.Path)
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
	defer r.Flush()

	reqs := make([]metadata.Request, len(args))
	for i, arg := range args {
		info := parse.Parse(arg)
		reqs[i] = metadata.Request{Title: info.Title, Year: info.Year}
	}

	results := r.ResolveAll(ctx, reqs, metadata.BatchOptions{
		Concurrency: cfg.Organize.MaxConcurrent,
		Retry:       metadata.RetryPolicy{MaxAttempts: cfg.FileOps.MaxAttempts, Backoff: cfg.FileOps.Backoff},
	})

	for i, rec := range results {
		printSearchResult(args[i], rec)
	}
	return nil
}

func printSearchResult(query string, rec *metadata.Record) {
	if jsonOutput {
		out := map[string]any{"query": query, "found": rec != nil}
		if rec != nil {
			out["id"] = rec.ID
			out["title"] = rec.Title
			out["media_type"] = rec.MediaType
			if rec.Year > 0 {
				out["year"] = rec.Year
			}
		}
		_ = json.NewEncoder(os.Stdout).Encode(out)
		return
	}
	if rec == nil {
		fmt.Printf("  %s: no match\n", query)
		return
	}
	if rec.Year > 0 {
		fmt.Printf("  %s -> %s (%d) [%s #%d]\n", query, rec.Title, rec.Year, rec.MediaType, rec.ID)
		return
	}
	fmt.Printf("  %s -> %s [%s #%d]\n", query, rec.Title, rec.MediaType, rec.ID)
}
