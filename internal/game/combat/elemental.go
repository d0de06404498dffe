// Package combat computes the damage the ledger will apply for adventurer
// and beast attacks. Every function is pure: identical inputs, including
// entropy, always produce identical results.
package combat

import "github.com/cory-johannsen/survivor/internal/game/catalog"

// strong maps each attack type to the armor material it beats.
var strong = map[catalog.Type]catalog.Type{
	catalog.TypeMagic:    catalog.TypeMetal,
	catalog.TypeBlade:    catalog.TypeCloth,
	catalog.TypeBludgeon: catalog.TypeHide,
}

// weak maps each attack type to the armor material it loses against.
var weak = map[catalog.Type]catalog.Type{
	catalog.TypeMagic:    catalog.TypeHide,
	catalog.TypeBlade:    catalog.TypeMetal,
	catalog.TypeBludgeon: catalog.TypeCloth,
}

// ElementalAdjustedDamage applies the attack-type versus armor-material matchup.
//
// Postcondition: returns base+floor(base/2) for the three winning pairs,
// base-floor(base/2) for the three losing pairs and base otherwise.
func ElementalAdjustedDamage(base int, attack, armor catalog.Type) int {
	half := base / 2
	if m, ok := strong[attack]; ok && m == armor {
		return base + half
	}
	if m, ok := weak[attack]; ok && m == armor {
		return base - half
	}
	return base
}

// neckPairs lists the neck item that reinforces each armor material.
var neckPairs = map[catalog.Type]catalog.ItemID{
	catalog.TypeCloth: catalog.Amulet,
	catalog.TypeHide:  catalog.Pendant,
	catalog.TypeMetal: catalog.Necklace,
}

// NeckReinforces reports whether neck is the amulet, pendant or necklace
// paired with the armor material.
func NeckReinforces(armor catalog.Type, neck catalog.ItemID) bool {
	if neck == catalog.None {
		return false
	}
	want, ok := neckPairs[armor]
	return ok && want == neck
}
