// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bibwatch CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bibwatch/internal/secrets"
	"github.com/pdiddy/bibwatch/pkg/types"
)

// loadedSecrets holds contact identifiers loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, else the named secret, else "".
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the bibwatch CLI.
var rootCmd = &cobra.Command{
	Use:   "bibwatch",
	Short: "Track bibliographic search results across academic sources",
	Long: `bibwatch runs a bibliographic query against academic APIs (Crossref,
OpenAlex, DOAJ, arXiv), reconciles the results into one record per
publication, and reports what changed since the previous run of the same
query.

Each run writes its merged record set in several export formats plus a
change report and a run manifest, under a run-scoped output directory.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bibwatch.yaml or ~/.config/bibwatch/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bibwatch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bibwatch"))
		}
	}

	viper.SetEnvPrefix("BIBWATCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig builds the pipeline configuration from defaults overlaid
// with config-file and environment values.
func loadConfig() types.Config {
	cfg := types.DefaultConfig()

	if v := viper.GetDuration("http.timeout"); v > 0 {
		cfg.HTTP.Timeout = v
	}
	if v := viper.GetString("http.contact"); v != "" {
		cfg.HTTP.Contact = v
	}
	if v := viper.GetInt("fetch.max_concurrent"); v > 0 {
		cfg.Fetch.MaxConcurrent = v
	}
	if v := viper.GetInt("fetch.max_attempts"); v > 0 {
		cfg.Fetch.MaxAttempts = v
	}
	if v := viper.GetDuration("fetch.base_delay"); v > 0 {
		cfg.Fetch.BaseDelay = v
	}
	if v := viper.GetDuration("fetch.max_delay"); v > 0 {
		cfg.Fetch.MaxDelay = v
	}
	if v := viper.GetFloat64("fetch.per_source_rps"); v > 0 {
		cfg.Fetch.PerSourceRPS = v
	}
	if v := viper.GetInt("fetch.page_size"); v > 0 {
		cfg.Fetch.PageSize = v
	}
	for _, s := range viper.GetStringSlice("sources.enabled") {
		cfg.Sources.Enabled = append(cfg.Sources.Enabled, types.Source(s))
	}
	for _, s := range viper.GetStringSlice("sources.priority") {
		cfg.Sources.Priority = append(cfg.Sources.Priority, types.Source(s))
	}
	if v := viper.GetInt("sources.per_source_limit"); v > 0 {
		cfg.Sources.PerSourceLimit = v
	}
	if v := viper.GetString("output.root"); v != "" {
		cfg.Output.Root = v
	}
	if v := viper.GetStringSlice("output.formats"); len(v) > 0 {
		cfg.Output.Formats = v
	}
	if v := viper.GetStringSlice("diff.tracked_fields"); len(v) > 0 {
		cfg.Diff.TrackedFields = v
	}

	return cfg
}

// localTime renders a manifest timestamp for terminal output.
func localTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
