// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"

	"github.com/dkoval/itemharvest/pkg/types"
)

const (
	// selAbilityBox matches one ability block on a detail page.
	selAbilityBox = ".ability-background"

	// selAbilityDescription matches the description box inside an ability
	// block.
	selAbilityDescription = ".ability-description"
)

// extractAbilities scans all ability blocks of a page. The per-block reads
// are independent best-effort attempts, so they run concurrently and are
// awaited jointly; results keep page order. When any attempt panics on an
// unexpected block shape, the whole batch degrades to "abilities unknown"
// for this item — the surrounding page walk must continue regardless.
func extractAbilities(doc *goquery.Document, w io.Writer) []types.Ability {
	boxes := doc.Find(selAbilityBox)
	n := boxes.Length()
	if n == 0 {
		return nil
	}

	abilities := make([]types.Ability, n)
	var failed atomic.Bool
	var wg sync.WaitGroup

	boxes.Each(func(i int, box *goquery.Selection) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					failed.Store(true)
					fmt.Fprintf(w, "warning: ability block %d: %v\n", i, r)
				}
			}()
			abilities[i] = extractAbility(box)
		}()
	})
	wg.Wait()

	if failed.Load() {
		fmt.Fprintf(w, "warning: ability extraction failed, recording abilities as unknown\n")
		return nil
	}
	return abilities
}

// extractAbility reads one ability block. The name sits at the end of a
// three-level first-child chain in the block's header; the type label ends a
// last-child chain in the description box's head row, and the description is
// the description box's last child. The chains are positional: the header
// and description boxes expose no finer markers. A missing substructure
// leaves the field empty.
func extractAbility(box *goquery.Selection) types.Ability {
	ab := types.Ability{
		Name: strings.TrimSpace(firstChain(box, 3).Text()),
	}

	desc := box.Find(selAbilityDescription).First()
	if desc.Length() == 0 {
		return ab
	}
	ab.Type = strings.TrimSpace(lastChain(desc.Children().First(), 2).Text())
	ab.Description = strings.TrimSpace(desc.Children().Last().Text())
	return ab
}

// firstChain descends depth levels of first children.
func firstChain(sel *goquery.Selection, depth int) *goquery.Selection {
	for i := 0; i < depth; i++ {
		sel = sel.Children().First()
	}
	return sel
}

// lastChain descends depth levels of last children.
func lastChain(sel *goquery.Selection, depth int) *goquery.Selection {
	for i := 0; i < depth; i++ {
		sel = sel.Children().Last()
	}
	return sel
}
