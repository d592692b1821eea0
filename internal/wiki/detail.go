// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dkoval/itemharvest/pkg/types"
)

const (
	// selInfobox matches the item info box on a detail page.
	selInfobox = ".infobox"

	// selMainImage matches the main-image link inside the info box.
	selMainImage = "#itemmainimage a"

	// selCostCell matches the distinguished total-cost cell. No stable class
	// or id exists for it; the inline style is the only marker.
	selCostCell = `[style="width:50%; background-color:#DAA520;"]`

	// selStatsBody matches the body of the two-column stat table.
	selStatsBody = `table[style="text-align:left;"] > tbody`

	// SelLazyImage matches the placeholder a lazy-loaded image carries until
	// the real asset address is resolved. Detail pages must not be read
	// before this placeholder is gone.
	SelLazyImage = `[src="data:image/gif;base64,R0lGODlhAQABAIABAAAAAP///yH5BAEAAAEALAAAAAABAAEAQAICTAEAOw%3D%3D"]`

	// costMarker precedes the numeric cost in the cost cell's text.
	costMarker = "Cost"

	// footnoteSuffix is the footnote marker some source variants append to
	// stat labels.
	footnoteSuffix = "[?]"
)

// Stat-table row labels. Labels are matched after footnote-marker
// normalization, so "Bonus" and "Bonus [?]" dispatch identically.
const (
	labelActive      = "Active"
	labelPassive     = "Passive"
	labelBonus       = "Bonus"
	labelDisassemble = "Disassemble?"
	labelRecipe      = "Recipe"
)

// brPattern splits bonus markup on line breaks.
var brPattern = regexp.MustCompile(`<br\s*/?>`)

// tagPattern strips residual tag-like substrings from bonus fragments.
var tagPattern = regexp.MustCompile(`<.+?>`)

// ExtractOptions selects optional extraction stages.
type ExtractOptions struct {
	// Abilities enables the per-ability block scan.
	Abilities bool
}

// ExtractCost reads the item's total cost from the info box. The cost cell's
// text carries the literal cost marker followed by the value; surrounding
// noise is tolerated. A missing or unparseable cost yields nil, never an
// error: an unknown cost must not fail the item.
func ExtractCost(doc *goquery.Document) *int {
	cell := doc.Find(selInfobox).First().Find(selCostCell).First()
	if cell.Length() == 0 {
		return nil
	}
	_, after, ok := strings.Cut(cell.Text(), costMarker)
	if !ok {
		return nil
	}
	n, ok := leadingInt(after)
	if !ok {
		return nil
	}
	return &n
}

// ExtractDetail reads an item's detail page into an ItemDetail. The document
// must be a snapshot taken after the lazy-load placeholder disappeared, or
// the image field captures the unresolved placeholder address.
//
// Every field is optional: anything unlocatable is simply left empty.
// Warnings go to w.
func ExtractDetail(doc *goquery.Document, opts ExtractOptions, w io.Writer) *types.ItemDetail {
	detail := &types.ItemDetail{}
	infobox := doc.Find(selInfobox).First()

	if src, ok := infobox.Find(selMainImage).First().Children().First().Attr("src"); ok {
		detail.Image = src
	}

	seenRecipe := false
	infobox.Find(selStatsBody).First().Children().Each(func(_ int, row *goquery.Selection) {
		cells := row.Children()
		if cells.Length() < 2 {
			return
		}
		value := cells.Eq(1) // a possible third cell is page furniture

		switch normalizeLabel(cells.Eq(0).Text()) {
		case labelActive:
			detail.Active = flatText(value)
		case labelPassive:
			detail.Passive = flatText(value)
		case labelBonus:
			if html, err := value.Html(); err == nil {
				detail.Bonus = parseBonuses(html)
			}
		case labelDisassemble:
			yes := flatText(value) == "Yes"
			detail.Disassemble = &yes
		case labelRecipe:
			if seenRecipe {
				fmt.Fprintf(w, "warning: multiple recipe rows on one page, keeping the first\n")
				return
			}
			seenRecipe = true
			detail.RecipeIDs = recipeRefs(row)
		}
	})

	if opts.Abilities {
		detail.Abilities = extractAbilities(doc, w)
	}

	return detail
}

// normalizeLabel trims a stat label and strips the optional footnote marker,
// collapsing both label variants onto one dispatch key.
func normalizeLabel(label string) string {
	label = strings.TrimSpace(strings.ReplaceAll(label, "\n", ""))
	label = strings.TrimSuffix(label, footnoteSuffix)
	return strings.TrimSpace(label)
}

// flatText returns the selection's text with newlines stripped.
func flatText(sel *goquery.Selection) string {
	return strings.TrimSpace(strings.ReplaceAll(sel.Text(), "\n", ""))
}

// parseBonuses splits bonus markup into fragments of the form
// "<signed-number><unit?> <stat name...>" and builds the bonus map. The unit
// is PERCENT when the numeric token carries a percent sign. A repeated stat
// name keeps the last occurrence. Returns nil when nothing parses.
func parseBonuses(html string) map[string]types.Bonus {
	fragments := brPattern.Split(html, -1)
	for i, f := range fragments {
		fragments[i] = strings.TrimSpace(tagPattern.ReplaceAllString(f, ""))
	}
	// A final line break leaves one empty trailing fragment.
	if n := len(fragments); n > 0 && fragments[n-1] == "" {
		fragments = fragments[:n-1]
	}

	var bonuses map[string]types.Bonus
	for _, f := range fragments {
		fields := strings.Fields(f)
		if len(fields) < 2 {
			continue
		}
		token, name := fields[0], strings.Join(fields[1:], " ")

		value, err := strconv.ParseFloat(strings.ReplaceAll(token, "%", ""), 64)
		if err != nil {
			continue
		}
		unit := types.UnitConstant
		if strings.Contains(token, "%") {
			unit = types.UnitPercent
		}

		if bonuses == nil {
			bonuses = make(map[string]types.Bonus)
		}
		bonuses[name] = types.Bonus{Value: value, Unit: unit}
	}
	return bonuses
}

// recipeRefs collects raw recipe-component names for a recipe row. The
// component list lives in the row after the recipe row, two levels down; each
// link-element component pairs with a resource sub-list two siblings further,
// whose entries carry the component names as link titles. The traversal is
// positional throughout: the recipe block exposes no stable markers.
func recipeRefs(row *goquery.Selection) []string {
	var ids []string
	row.Next().Children().First().Children().Each(func(_ int, comp *goquery.Selection) {
		if !comp.Is("a") {
			return
		}
		holder := comp.Next().Next()
		if holder.Length() == 0 {
			return
		}
		resources := holder.Children().First()
		if resources.Length() == 0 {
			return
		}

		var refs []string
		resources.Children().Each(func(_ int, res *goquery.Selection) {
			if title, ok := res.Children().First().Attr("title"); ok {
				refs = append(refs, title)
			}
		})
		ids = refs
	})
	return ids
}

// leadingInt parses the leading decimal integer of s, skipping leading
// whitespace and tolerating trailing noise.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
