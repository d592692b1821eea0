// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the itemharvest CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dkoval/itemharvest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the itemharvest CLI.
var rootCmd = &cobra.Command{
	Use:   "itemharvest",
	Short: "Extract a cross-referenced item catalog from a game wiki",
	Long: `itemharvest crawls a wiki's item index, extracts per-item cost, stat
bonuses, abilities, and recipe components, resolves recipe references across
categories, and exports the assembled catalog as JSON.

Each stage is a subcommand: crawl runs the full extraction pipeline, images
downloads item images from a crawl manifest, and catalog manages a SQLite
index over exported catalogs.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./itemharvest.yaml or ~/.config/itemharvest/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("itemharvest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "itemharvest"))
		}
	}

	viper.SetEnvPrefix("ITEMHARVEST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		return
	}

	// The predecessor crawler read ./config.yml; keep accepting it.
	if cfgFile == "" {
		viper.SetConfigName("config")
		viper.SetConfigType("yml")
		if err := viper.ReadInConfig(); err == nil {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// loadCrawlConfig unmarshals the effective configuration and applies
// defaults. Flags handled per-command override it afterwards.
func loadCrawlConfig() (types.CrawlConfig, error) {
	cfg := types.CrawlConfig{
		Browser: types.BrowserConfig{Headless: true},
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing configuration: %w", err)
	}
	return cfg.WithDefaults(), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
