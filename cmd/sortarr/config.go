package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/vmunix/sortarr/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage sortarr configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	RunE:  runConfigInitCmd,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config file for problems",
	RunE:  runConfigValidateCmd,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShowCmd,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configValidateCmd, configShowCmd)

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}

func runConfigInitCmd(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	fmt.Println("Set TMDB_API_KEY or edit tmdb.api_key before organizing.")
	return nil
}

func runConfigValidateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return fatalConfig(errs)
	}
	fmt.Println("Configuration OK.")
	return nil
}

func runConfigShowCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Never echo credentials.
	if cfg.TMDB.APIKey != "" {
		cfg.TMDB.APIKey = "<set>"
	}
	return toml.NewEncoder(os.Stdout).Encode(cfg)
}
