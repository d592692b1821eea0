// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkoval/itemharvest/internal/images"
	"github.com/dkoval/itemharvest/pkg/types"
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Download item images from a crawl manifest",
	Long: `Images reads the image manifest written by crawl and downloads every
listed image into the configured image directory. Existing files are kept;
individual download failures are skipped.`,
	RunE: runImages,
}

func init() {
	imagesCmd.Flags().String("manifest", "", "manifest path (default: <output dir>/images.json)")

	rootCmd.AddCommand(imagesCmd)
}

func runImages(cmd *cobra.Command, args []string) error {
	cfg, err := loadCrawlConfig()
	if err != nil {
		return err
	}

	manifestPath, _ := cmd.Flags().GetString("manifest")
	if manifestPath == "" {
		manifestPath = filepath.Join(cfg.Output.Directory, manifestFile)
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("reading manifest %s: %w", manifestPath, err)
	}
	var manifest []types.ImageRef
	if err := json.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("parsing manifest %s: %w", manifestPath, err)
	}

	dir := filepath.Join(cfg.Output.Directory, cfg.Output.Image.Directory)
	delay := time.Duration(cfg.Network.Period.Activation) * time.Millisecond
	downloader := images.NewDownloader(&http.Client{Timeout: cfg.Network.Timeout}, dir, delay)

	result, err := downloader.DownloadAll(cmd.Context(), manifest, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d image(s) failed to download", result.Failed)
	}
	return nil
}
