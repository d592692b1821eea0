// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"bytes"
	"testing"
)

const abilityPage = `<html><body>
<div class="ability-background">
 <div><div><div>Phase</div></div></div>
 <div class="ability-description">
  <div><span>Ability</span><span><b>No Target</b></span></div>
  <div>Gives increased movement speed and phased movement.</div>
 </div>
</div>
<div class="ability-background">
 <div><div><div>Blink</div></div></div>
 <div class="ability-description">
  <div><span>Ability</span><span><b>Point Target</b></span></div>
  <div>Teleport a short distance.</div>
 </div>
</div>
</body></html>`

func TestExtractAbilities(t *testing.T) {
	var buf bytes.Buffer
	abilities := extractAbilities(mustDoc(t, abilityPage), &buf)

	if len(abilities) != 2 {
		t.Fatalf("got %d abilities, want 2", len(abilities))
	}

	first := abilities[0]
	if first.Name != "Phase" {
		t.Errorf("Name = %q, want Phase", first.Name)
	}
	if first.Type != "No Target" {
		t.Errorf("Type = %q, want No Target", first.Type)
	}
	if first.Description != "Gives increased movement speed and phased movement." {
		t.Errorf("Description = %q", first.Description)
	}

	// Page order survives the concurrent scan.
	if abilities[1].Name != "Blink" {
		t.Errorf("abilities[1].Name = %q, want Blink", abilities[1].Name)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected warnings: %q", buf.String())
	}
}

func TestExtractAbilitiesNone(t *testing.T) {
	if got := extractAbilities(mustDoc(t, `<html><body></body></html>`), &bytes.Buffer{}); got != nil {
		t.Errorf("abilities = %v, want nil", got)
	}
}

func TestExtractAbilityMissingSubstructure(t *testing.T) {
	const page = `<html><body>
<div class="ability-background">
 <div><div><div>Lonely</div></div></div>
</div>
<div class="ability-background"></div>
</body></html>`

	abilities := extractAbilities(mustDoc(t, page), &bytes.Buffer{})
	if len(abilities) != 2 {
		t.Fatalf("got %d abilities, want 2", len(abilities))
	}

	if abilities[0].Name != "Lonely" || abilities[0].Type != "" || abilities[0].Description != "" {
		t.Errorf("missing description box: %+v", abilities[0])
	}
	empty := abilities[1]
	if empty.Name != "" || empty.Type != "" || empty.Description != "" {
		t.Errorf("empty block should yield empty fields: %+v", empty)
	}
}

func TestExtractDetailWithAbilities(t *testing.T) {
	detail := ExtractDetail(mustDoc(t, abilityPage), ExtractOptions{Abilities: true}, &bytes.Buffer{})
	if len(detail.Abilities) != 2 {
		t.Fatalf("got %d abilities, want 2", len(detail.Abilities))
	}
	if detail.Abilities[0].Name != "Phase" {
		t.Errorf("Abilities[0].Name = %q, want Phase", detail.Abilities[0].Name)
	}
}
