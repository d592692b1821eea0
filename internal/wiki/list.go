// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wiki extracts a cross-referenced item catalog from wiki item pages.
// The pipeline runs in three phases: list the category sections of the index
// page into a Catalog, fetch per-item detail pages one at a time, then resolve
// recipe references into an exportable view. Resolution needs the fully
// populated catalog, so listing always completes before anything else runs.
package wiki

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dkoval/itemharvest/pkg/types"
)

const (
	// selHeading matches the structural level of category section headings.
	selHeading = "h3"

	// classHeadline marks a heading's section-name node.
	classHeadline = "mw-headline"

	// classItemList marks the item-list container following a category heading.
	classItemList = "itemlist"

	// wikiPathMarker splits an item link into site prefix and item ID.
	wikiPathMarker = "/wiki/"
)

// Catalog holds the category map and the global item index built from the
// index page. Items are shared pointers: the detail pass fills them in place,
// and both the category map and the index observe the enrichment.
type Catalog struct {
	order      []string
	categories map[string][]*types.Item
	index      map[string]*types.Item
	collisions int
}

// Categories returns the category names in document order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Items returns the items of a category in document order. The second return
// distinguishes an absent category from one listed without an item container
// (nil slice, true).
func (c *Catalog) Items(name string) ([]*types.Item, bool) {
	items, ok := c.categories[name]
	return items, ok
}

// Lookup resolves an item by name against the global index.
func (c *Catalog) Lookup(name string) (*types.Item, bool) {
	item, ok := c.index[name]
	return item, ok
}

// Indexed returns all indexed items sorted by ID.
func (c *Catalog) Indexed() []*types.Item {
	items := make([]*types.Item, 0, len(c.index))
	for _, item := range c.index {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// Len returns the number of indexed items.
func (c *Catalog) Len() int {
	return len(c.index)
}

// Collisions returns how many index insertions overwrote an earlier item of
// the same name.
func (c *Catalog) Collisions() int {
	return c.collisions
}

// ListCategories scans the index page for category sections and builds the
// catalog. A heading qualifies as a category anchor only when its first child
// is a section-name node; other headings are page furniture and are skipped.
// A qualifying heading whose next sibling is not an item-list container is
// recorded with a nil item slice. Item links are absolutized against baseURL.
//
// Every stub is inserted into the global index keyed by its name. A name
// collision overwrites the earlier entry and is reported on w.
func ListCategories(doc *goquery.Document, baseURL string, w io.Writer) *Catalog {
	cat := &Catalog{
		categories: make(map[string][]*types.Item),
		index:      make(map[string]*types.Item),
	}

	doc.Find(selHeading).Each(func(_ int, heading *goquery.Selection) {
		marker := heading.Children().First()
		if !marker.HasClass(classHeadline) {
			return
		}
		anchor, _ := marker.Attr("id")
		if anchor == "" {
			return
		}
		name := strings.TrimSpace(marker.Text())

		container := heading.Next()
		if !container.HasClass(classItemList) {
			cat.order = append(cat.order, name)
			cat.categories[name] = nil
			return
		}

		var items []*types.Item
		container.Children().Each(func(_ int, entry *goquery.Selection) {
			item := listItem(entry, baseURL)
			if item == nil {
				return
			}
			items = append(items, item)

			if _, exists := cat.index[item.Name]; exists {
				cat.collisions++
				fmt.Fprintf(w, "warning: duplicate item name %q, later entry wins\n", item.Name)
			}
			cat.index[item.Name] = item
		})

		cat.order = append(cat.order, name)
		cat.categories[name] = items
	})

	return cat
}

// listItem builds an item stub from one item-list entry. The entry's first
// child is the item link, the second carries the display name (raw markup
// preserved).
func listItem(entry *goquery.Selection, baseURL string) *types.Item {
	link := entry.Children().Eq(0)
	href, ok := link.Attr("href")
	if !ok {
		return nil
	}

	title, _ := link.Attr("title")
	name, err := entry.Children().Eq(1).Html()
	if err != nil {
		name = ""
	}

	return &types.Item{
		ID:    itemID(href),
		Title: title,
		Name:  strings.TrimSpace(name),
		URL:   absoluteURL(baseURL, href),
	}
}

// itemID derives the stable item slug: the path remainder after the wiki
// path marker, or the bare path when the marker is absent.
func itemID(href string) string {
	if _, after, ok := strings.Cut(href, wikiPathMarker); ok {
		return after
	}
	return strings.TrimPrefix(href, "/")
}

// absoluteURL resolves href against base. A href that does not parse is
// returned unchanged.
func absoluteURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
