// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"context"
	"fmt"
	"io"

	"github.com/dkoval/itemharvest/internal/browser"
	"github.com/dkoval/itemharvest/pkg/types"
)

// Crawler walks the wiki through a sequentially reused browser session: the
// index page once, then one item page at a time. Nothing here runs
// concurrently except the per-item ability batch, so the catalog needs no
// locking.
type Crawler struct {
	session  browser.Session
	baseURL  string
	opts     ExtractOptions
	progress io.Writer
	catalog  *Catalog
}

// NewCrawler builds a crawler on an open session. Progress and warnings are
// written to w.
func NewCrawler(session browser.Session, baseURL string, opts ExtractOptions, w io.Writer) *Crawler {
	return &Crawler{
		session:  session,
		baseURL:  baseURL,
		opts:     opts,
		progress: w,
	}
}

// Catalog returns the catalog built by LoadIndex, or nil before it ran.
func (c *Crawler) Catalog() *Catalog {
	return c.catalog
}

// LoadIndex navigates to the index page and lists its categories. It must
// complete before any detail fetch or export.
func (c *Crawler) LoadIndex(ctx context.Context) error {
	fmt.Fprintf(c.progress, "visiting %s\n", c.baseURL)
	if err := c.session.Navigate(ctx, c.baseURL); err != nil {
		return err
	}
	doc, err := c.session.Document(ctx)
	if err != nil {
		return err
	}

	c.catalog = ListCategories(doc, c.baseURL, c.progress)
	fmt.Fprintf(c.progress, "listed %d categories, %d items indexed\n",
		len(c.catalog.order), c.catalog.Len())
	if n := c.catalog.Collisions(); n > 0 {
		fmt.Fprintf(c.progress, "warning: %d duplicate item name(s) in the index\n", n)
	}
	return nil
}

// FetchResult holds the outcome of one category's detail pass.
type FetchResult struct {
	Fetched int
	Failed  int
}

// Total returns the number of items visited.
func (r FetchResult) Total() int {
	return r.Fetched + r.Failed
}

// HasFailures reports whether any item failed.
func (r FetchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchCategory fills in the details of every item of one category, in
// document order. A category name with no catalog entry is a hard error. A
// failing item is reported and skipped; the walk continues — a single
// malformed page must not cost the whole catalog.
func (c *Crawler) FetchCategory(ctx context.Context, category string) (FetchResult, error) {
	var result FetchResult

	if c.catalog == nil {
		return result, fmt.Errorf("index not loaded")
	}
	items, ok := c.catalog.Items(category)
	if !ok {
		return result, fmt.Errorf("no such category: %q", category)
	}

	fmt.Fprintf(c.progress, "fetching %q (%d items)\n", category, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := c.fetchItem(ctx, item); err != nil {
			fmt.Fprintf(c.progress, "failed:  %s (%v)\n", item.ID, err)
			result.Failed++
			continue
		}
		fmt.Fprintf(c.progress, "fetched: %s\n", item.ID)
		result.Fetched++
	}

	fmt.Fprintf(c.progress, "category %q: %d fetched, %d failed\n",
		category, result.Fetched, result.Failed)
	return result, nil
}

// fetchItem navigates to one item page and extracts its cost and detail. The
// snapshot is taken only after the lazy-load placeholder under the main image
// is gone, so the detail carries the resolved image address.
func (c *Crawler) fetchItem(ctx context.Context, item *types.Item) error {
	if err := c.session.Navigate(ctx, item.URL); err != nil {
		return err
	}
	if err := c.session.WaitNotPresent(ctx, selMainImage+" "+SelLazyImage); err != nil {
		return err
	}
	doc, err := c.session.Document(ctx)
	if err != nil {
		return err
	}

	item.Cost = ExtractCost(doc)
	item.Detail = ExtractDetail(doc, c.opts, c.progress)
	return nil
}

// Export shapes the crawled catalog into its exported view for the given
// categories.
func (c *Crawler) Export(categories []string) (Export, error) {
	if c.catalog == nil {
		return nil, fmt.Errorf("index not loaded")
	}
	return BuildExport(categories, c.catalog)
}

// ImageManifest returns one image reference per indexed item, sorted by item
// ID. Items whose detail page was never fetched carry an empty address.
func (c *Crawler) ImageManifest() []types.ImageRef {
	if c.catalog == nil {
		return nil
	}
	refs := make([]types.ImageRef, 0, c.catalog.Len())
	for _, item := range c.catalog.Indexed() {
		ref := types.ImageRef{ID: item.ID}
		if item.Detail != nil {
			ref.URL = item.Detail.Image
		}
		refs = append(refs, ref)
	}
	return refs
}
