// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"fmt"
	"strings"

	"github.com/dkoval/itemharvest/pkg/types"
)

// Export is the externally persisted catalog shape: category name to item
// records. Exported records never carry page addresses, inline image
// references, or raw recipe references.
type Export map[string][]*types.Item

// scrollPrefix is the naming convention of ingredient-scroll components:
// "Recipe (<cost>)". A recipe reference that misses the index is assumed to
// be such a scroll and its cost is read from the label.
const scrollPrefix = "Recipe ("

// syntheticID names the synthetic placeholder entries produced for
// unresolvable recipe references.
const syntheticID = "Recipe"

// BuildExport shapes the catalog into its exported view. For every targeted
// category it copies each item, drops the page address, drops the inline
// image reference, and replaces raw recipe references with resolved
// components. A targeted category missing from the catalog is a hard error;
// it aborts the export.
//
// BuildExport never mutates the catalog, so resolving the same catalog twice
// yields structurally equal results. It must only run once listing has fully
// completed: a recipe in one category may reference an item listed in
// another.
func BuildExport(categories []string, cat *Catalog) (Export, error) {
	out := make(Export, len(categories))
	for _, name := range categories {
		items, ok := cat.Items(name)
		if !ok {
			return nil, fmt.Errorf("no such category: %q", name)
		}

		records := make([]*types.Item, len(items))
		for i, item := range items {
			records[i] = exportItem(item, cat)
		}
		out[name] = records
	}
	return out, nil
}

// exportItem copies one item into its exported form.
func exportItem(item *types.Item, cat *Catalog) *types.Item {
	record := *item
	record.URL = ""

	if item.Detail != nil {
		detail := *item.Detail
		detail.Image = ""
		detail.Recipe = resolveRecipe(item.Detail.RecipeIDs, cat)
		detail.RecipeIDs = nil
		record.Detail = &detail
	}
	return &record
}

// resolveRecipe cross-references raw component names against the global
// index. A hit becomes a shallow copy of the indexed item with its detail
// cleared — recipe trees are only ever expanded one level. A miss becomes a
// synthetic recipe-scroll placeholder.
func resolveRecipe(refs []string, cat *Catalog) []*types.Item {
	if refs == nil {
		return nil
	}

	resolved := make([]*types.Item, len(refs))
	for i, ref := range refs {
		if hit, ok := cat.Lookup(ref); ok {
			component := *hit
			component.URL = ""
			component.Detail = nil
			resolved[i] = &component
			continue
		}
		resolved[i] = syntheticScroll(ref)
	}
	return resolved
}

// syntheticScroll fabricates a placeholder entry for a recipe reference with
// no catalog entry, reading the cost from the scroll naming convention.
func syntheticScroll(ref string) *types.Item {
	item := &types.Item{
		ID:    syntheticID,
		Title: syntheticID,
		Name:  ref,
	}
	if cost, ok := leadingInt(strings.TrimPrefix(ref, scrollPrefix)); ok {
		item.Cost = &cost
	}
	return item
}
