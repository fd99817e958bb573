package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/sortarr/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the metadata cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts and age range",
	RunE:  runCacheStatsCmd,
}

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired entries and enforce the size cap",
	RunE:  runCacheCleanupCmd,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached entries",
	RunE:  runCacheClearCmd,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cacheCleanupCmd, cacheClearCmd)
}

func openCache() (*cache.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cache.Open(cfg.Cache.Path)
}

func runCacheStatsCmd(cmd *cobra.Command, args []string) error {
	store, err := openCache()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.GetStats(context.Background())
	if err != nil {
		return fmt.Errorf("cache stats: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("Entries:  %d\n", stats.Entries)
	if stats.Entries > 0 {
		fmt.Printf("Oldest:   %s\n", stats.Oldest.Format(time.RFC3339))
		fmt.Printf("Newest:   %s\n", stats.Newest.Format(time.RFC3339))
	}
	return nil
}

func runCacheCleanupCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.Cleanup(context.Background(), cfg.Cache.TTL, cfg.Cache.MaxItems)
	if err != nil {
		return fmt.Errorf("cache cleanup: %w", err)
	}

	fmt.Printf("Removed %d entries.\n", removed)
	return nil
}

func runCacheClearCmd(cmd *cobra.Command, args []string) error {
	store, err := openCache()
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.Clear(context.Background())
	if err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}

	fmt.Printf("Removed %d entries.\n", removed)
	return nil
}
