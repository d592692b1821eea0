// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkoval/itemharvest/internal/browser"
	"github.com/dkoval/itemharvest/internal/images"
	"github.com/dkoval/itemharvest/internal/persist"
	"github.com/dkoval/itemharvest/internal/wiki"
	"github.com/dkoval/itemharvest/pkg/types"
)

// manifestFile is the image manifest written next to the catalog export.
const manifestFile = "images.json"

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run the full extraction pipeline",
	Long: `Crawl visits the configured item index page, lists its category
sections, fetches the detail page of every item in the targeted categories,
resolves recipe references across the whole index, and writes the catalog
JSON plus an image manifest into the output directory. With images enabled
it also downloads the item images.

Listing always completes before any detail fetch, and recipe resolution runs
only after all targeted categories are fetched: a recipe in one category may
reference an item whose home category is another.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().String("url", "", "item index page address (overrides config)")
	crawlCmd.Flags().StringSlice("category", nil, "category to fetch in detail (repeatable, overrides config)")
	crawlCmd.Flags().String("output-dir", "", "output directory (overrides config)")
	crawlCmd.Flags().String("filename", "", "catalog filename (overrides config)")
	crawlCmd.Flags().Bool("images", false, "download item images after the export")
	crawlCmd.Flags().Bool("abilities", false, "extract per-ability blocks from item pages")
	crawlCmd.Flags().Bool("no-headless", false, "show the browser window")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := loadCrawlConfig()
	if err != nil {
		return err
	}
	applyCrawlFlags(cmd, &cfg)

	if cfg.URL == "" {
		return fmt.Errorf("no index page configured: set url in the config or pass --url")
	}
	if len(cfg.Target.Category) == 0 {
		return fmt.Errorf("no target categories configured: set target.category or pass --category")
	}

	abilities, _ := cmd.Flags().GetBool("abilities")

	if err := persist.EnsureDirectory(cfg.Output.Directory); err != nil {
		return err
	}

	ctx := cmd.Context()
	session, err := browser.NewChromeSession(ctx, browser.Options{
		Headless:          cfg.Browser.Headless,
		NavigationTimeout: cfg.Network.Timeout,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	crawler := wiki.NewCrawler(session, cfg.URL, wiki.ExtractOptions{Abilities: abilities}, os.Stdout)

	if err := crawler.LoadIndex(ctx); err != nil {
		return err
	}

	failed := 0
	for _, category := range cfg.Target.Category {
		result, err := crawler.FetchCategory(ctx, category)
		if err != nil {
			return err
		}
		failed += result.Failed
	}

	export, err := crawler.Export(cfg.Target.Category)
	if err != nil {
		return err
	}

	catalogPath := filepath.Join(cfg.Output.Directory, cfg.Output.Filename)
	if err := persist.WriteJSON(catalogPath, export); err != nil {
		return err
	}
	fmt.Printf("Catalog written to %s\n", catalogPath)

	manifest := crawler.ImageManifest()
	manifestPath := filepath.Join(cfg.Output.Directory, manifestFile)
	if err := persist.WriteJSON(manifestPath, manifest); err != nil {
		return err
	}
	fmt.Printf("Image manifest written to %s\n", manifestPath)

	if cfg.Output.Image.Active {
		dir := filepath.Join(cfg.Output.Directory, cfg.Output.Image.Directory)
		delay := time.Duration(cfg.Network.Period.Activation) * time.Millisecond
		downloader := images.NewDownloader(&http.Client{Timeout: cfg.Network.Timeout}, dir, delay)

		result, err := downloader.DownloadAll(ctx, manifest, os.Stdout)
		if err != nil {
			return err
		}
		if result.HasFailures() {
			fmt.Fprintf(os.Stderr, "warning: %d image(s) failed to download\n", result.Failed)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d item(s) failed extraction", failed)
	}
	return nil
}

func applyCrawlFlags(cmd *cobra.Command, cfg *types.CrawlConfig) {
	if url, _ := cmd.Flags().GetString("url"); url != "" {
		cfg.URL = url
	}
	if categories, _ := cmd.Flags().GetStringSlice("category"); len(categories) > 0 {
		cfg.Target.Category = categories
	}
	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		cfg.Output.Directory = dir
	}
	if name, _ := cmd.Flags().GetString("filename"); name != "" {
		cfg.Output.Filename = name
	}
	if on, _ := cmd.Flags().GetBool("images"); on {
		cfg.Output.Image.Active = true
	}
	if noHeadless, _ := cmd.Flags().GetBool("no-headless"); noHeadless {
		cfg.Browser.Headless = false
	}
}
