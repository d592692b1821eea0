// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkoval/itemharvest/internal/catalog"
	"github.com/dkoval/itemharvest/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the SQLite catalog index (index, query, export)",
	Long: `Catalog maintains a local SQLite index built from exported catalog
JSON. Use subcommands to ingest an export, query items by name or ability
text, or export the index to YAML or JSON.`,
}

// --- index subcommand ---

var catalogIndexCmd = &cobra.Command{
	Use:   "index [catalog.json]",
	Short: "Ingest an exported catalog into the index",
	Long: `Index reads a catalog JSON file written by crawl and ingests it into
the SQLite index with FTS5 full-text search over item names and ability
text. Re-indexing a category replaces its previous rows.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalogIndex,
}

func runCatalogIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadCrawlConfig()
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.Output.Directory, cfg.Output.Filename)
	if len(args) > 0 {
		path = args[0]
	}

	store, err := catalog.NewStore(catalogConfig(cmd, cfg))
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Ingest(cmd.Context(), path, os.Stdout)
	return err
}

// --- query subcommand ---

var catalogQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Query the catalog index",
	Long: `Query searches the catalog index with FTS5 full-text search over item
names and ability text, optionally filtered by category.`,
	RunE: runCatalogQuery,
}

func runCatalogQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadCrawlConfig()
	if err != nil {
		return err
	}

	store, err := catalog.NewStore(catalogConfig(cmd, cfg))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search text or --category")
	}

	results, err := store.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []catalog.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-28s  %-18s  %-6s  %s\n",
		"Rank", "Item", "Category", "Cost", "Active")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for i, r := range results {
		cost := "-"
		if r.Cost != nil {
			cost = fmt.Sprintf("%d", *r.Cost)
		}
		active := ""
		if r.Detail != nil {
			active = r.Detail.Active
		}
		if len(active) > 30 {
			active = active[:27] + "..."
		}
		name := r.Name
		if len(name) > 28 {
			name = name[:25] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-28s  %-18s  %-6s  %s\n",
			i+1, name, r.Category, cost, active)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog index to YAML or JSON",
	Long: `Export writes the full catalog index (or a filtered subset) to
export.yaml or export.json in the catalog directory. Supports the same
filter flags as query.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg, err := loadCrawlConfig()
	if err != nil {
		return err
	}

	store, err := catalog.NewStore(catalogConfig(cmd, cfg))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", filepath.Join(cfg.Catalog.Directory, "export.yaml"))
	case "json":
		if err := store.ExportJSON(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", filepath.Join(cfg.Catalog.Directory, "export.json"))
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func catalogConfig(cmd *cobra.Command, cfg types.CrawlConfig) types.CatalogConfig {
	out := cfg.Catalog
	if dir, _ := cmd.Flags().GetString("catalog-dir"); dir != "" {
		out.Directory = dir
	}
	if maxResults, _ := cmd.Flags().GetInt("max-results"); maxResults > 0 {
		out.MaxResults = maxResults
	}
	return out
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) catalog.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	category, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")

	return catalog.QueryOptions{
		Query:      queryText,
		Category:   category,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	catalogCmd.PersistentFlags().String("catalog-dir", "", "catalog index directory (overrides config)")
	catalogCmd.PersistentFlags().Int("max-results", 0, "maximum number of query results (0 = config default)")

	// Query flags.
	catalogQueryCmd.Flags().String("query", "", "full-text search query")
	catalogQueryCmd.Flags().String("category", "", "filter by category name")
	catalogQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	catalogQueryCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	catalogExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	catalogExportCmd.Flags().String("category", "", "filter by category for partial export")
	catalogExportCmd.Flags().Int("limit", 0, "maximum items to export (0 = all)")

	// Wire subcommands.
	catalogCmd.AddCommand(catalogIndexCmd)
	catalogCmd.AddCommand(catalogQueryCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
