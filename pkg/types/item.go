// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Unit classifies a stat bonus magnitude as a percentage or a flat value.
type Unit string

const (
	UnitPercent  Unit = "PERCENT"
	UnitConstant Unit = "CONSTANT"
)

// Bonus is a signed numeric stat modifier with an inferred unit. The unit is
// PERCENT when the source token carried a percent sign, CONSTANT otherwise.
type Bonus struct {
	Value float64 `json:"value" yaml:"value"`
	Unit  Unit    `json:"unit" yaml:"unit"`
}

// Ability is one ability block from an item page. Any field may be empty when
// the corresponding substructure is missing from the page.
type Ability struct {
	// Name is the ability name as shown in the ability header.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Type is the ability type label as found in source (e.g. "Active",
	// "Passive", "Toggle").
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Description is the free-text ability description.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ItemDetail is the enriched attribute bundle extracted from an item's page.
type ItemDetail struct {
	// Image is the resolved main-image address. It is exported through the
	// image manifest, never inlined in the catalog output.
	Image string `json:"image,omitempty" yaml:"image,omitempty"`

	// Passive is the passive-ability summary from the stat table.
	Passive string `json:"passive,omitempty" yaml:"passive,omitempty"`

	// Active is the active-ability summary from the stat table.
	Active string `json:"active,omitempty" yaml:"active,omitempty"`

	// Bonus maps stat name to its modifier.
	Bonus map[string]Bonus `json:"bonus,omitempty" yaml:"bonus,omitempty"`

	// Disassemble reports whether the item can be taken apart. Nil when the
	// page has no such row.
	Disassemble *bool `json:"disassemble,omitempty" yaml:"disassemble,omitempty"`

	// RecipeIDs holds raw recipe-component names in page order. They exist
	// only between extraction and resolution; resolved catalogs carry Recipe
	// instead.
	RecipeIDs []string `json:"recipeIds,omitempty" yaml:"recipe_ids,omitempty"`

	// Recipe holds the resolved recipe components: shallow copies of known
	// items (no nested detail) or synthetic recipe-scroll placeholders.
	Recipe []*Item `json:"recipe,omitempty" yaml:"recipe,omitempty"`

	// Abilities lists per-ability blocks when ability extraction is enabled.
	Abilities []Ability `json:"abilities,omitempty" yaml:"abilities,omitempty"`
}

// Item is one catalog entry.
type Item struct {
	// ID is the page-path remainder after the wiki path marker
	// (e.g. "Boots_of_Speed").
	ID string `json:"id" yaml:"id"`

	// Title is the display title from the item link.
	Title string `json:"title" yaml:"title"`

	// Name is the human-readable name. It may retain embedded markup from the
	// listing and is the key of the global item index.
	Name string `json:"name" yaml:"name"`

	// URL is the item's page address. Dropped from exported catalogs.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Cost is the total gold cost. Nil when the page carries none.
	Cost *int `json:"cost,omitempty" yaml:"cost,omitempty"`

	Detail *ItemDetail `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// ImageRef pairs an item ID with its main-image address for the download pass.
// URL may be empty when the item's detail page was never fetched or carried
// no image.
type ImageRef struct {
	ID  string `json:"id" yaml:"id"`
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}
