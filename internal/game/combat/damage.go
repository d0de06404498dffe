package combat

import (
	"slices"

	"github.com/cory-johannsen/survivor/internal/game/adventurer"
	"github.com/cory-johannsen/survivor/internal/game/catalog"
)

const (
	// MinAttackDamage is the floor of any adventurer attack.
	MinAttackDamage = 4
	// MinBeastDamage is the floor of any beast attack.
	MinBeastDamage = 2

	prefixMultiplier = 8
	suffixMultiplier = 2
	// ringBonusPercent is the per-ring-level amplification of the platinum
	// and titanium rings.
	ringBonusPercent = 3
	neckBonusPercent = 3
	// beastLuckPerLevel scales adventurer level into the beast's crit chance.
	beastLuckPerLevel = 3
)

// ArmorSlots are the locations a beast can strike.
var ArmorSlots = []catalog.Slot{
	catalog.SlotChest, catalog.SlotHead, catalog.SlotWaist, catalog.SlotFoot, catalog.SlotHand,
}

// power returns level*(6-tier), the shared attack and armor curve.
func power(level, tier int) int {
	return level * (6 - tier)
}

func ringAmplify(amount int, ring adventurer.Item, trait catalog.ItemID) int {
	if ring.ID != trait || amount <= 0 {
		return amount
	}
	return amount + amount*ringBonusPercent*ring.Level()/100
}

// CriticalHitBonus returns the extra damage of a critical hit, or 0 when
// entropy exceeds the luck threshold luck*255/100. A titanium ring amplifies
// the bonus by 3% per ring level; pass the empty item for no ring.
//
// Postcondition: returns 0 or a value >= damage when damage is non-negative.
func CriticalHitBonus(damage, luck int, ring adventurer.Item, entropy int) int {
	if entropy*100 > luck*255 {
		return 0
	}
	return ringAmplify(damage, ring, catalog.TitaniumRing)
}

// WeaponSpecialBonus returns the bonus for weapon specials matching the
// beast's name prefix (x8) and name suffix (x2). A platinum ring amplifies
// the bonus by 3% per ring level.
//
// Postcondition: returns 0 when the beast has no specials or the weapon has none unlocked.
func WeaponSpecialBonus(weapon adventurer.Item, seed uint64, beast adventurer.Beast, damage int, ring adventurer.Item) int {
	if beast.SpecialPrefix == "" && beast.SpecialSuffix == "" {
		return 0
	}
	specials := catalog.SpecialsFor(weapon.ID, weapon.Level(), seed)
	bonus := 0
	if specials.Prefix != "" && specials.Prefix == beast.SpecialPrefix {
		bonus += damage * prefixMultiplier
	}
	if specials.NameSuffix != "" && specials.NameSuffix == beast.SpecialSuffix {
		bonus += damage * suffixMultiplier
	}
	return ringAmplify(bonus, ring, catalog.PlatinumRing)
}

// StrengthDamage returns floor(damage*strength*10/100).
//
// Postcondition: returns 0 when strength is 0.
func StrengthDamage(damage, strength int) int {
	if strength == 0 {
		return 0
	}
	return damage * strength * 10 / 100
}

// AttackDamage computes the damage adv deals to beast. A zero entropy
// disables the critical hit roll.
//
// Precondition: adv must be non-nil.
// Postcondition: returns a value >= MinAttackDamage.
func AttackDamage(adv *adventurer.Adventurer, beast adventurer.Beast, entropy int) int {
	weapon := adv.Equipment.Weapon
	def, ok := catalog.LookupItem(weapon.ID)
	if weapon.Empty() || !ok {
		return MinAttackDamage
	}

	attack := power(weapon.Level(), def.Tier)
	armor := power(beast.Level, beast.Tier)
	var beastArmor catalog.Type
	if bdef, ok := catalog.LookupBeast(beast.ID); ok {
		beastArmor = bdef.Armor
	}

	damage := ElementalAdjustedDamage(attack, def.Type, beastArmor)
	ring := adv.Equipment.Ring
	damage += WeaponSpecialBonus(weapon, adv.ItemSpecialsSeed, beast, damage, ring)
	if entropy != 0 {
		damage += CriticalHitBonus(damage, adv.Stats.Luck, ring, entropy)
	}
	total := damage + StrengthDamage(damage, adv.Stats.Strength) - armor
	return max(MinAttackDamage, total)
}

// BeastDamage computes the damage beast deals to adv at location. An
// unarmored location takes the beast's base attack.
//
// Precondition: adv must be non-nil.
// Postcondition: returns a value >= MinBeastDamage.
func BeastDamage(beast adventurer.Beast, adv *adventurer.Adventurer, location catalog.Slot, entropy int) int {
	attack := power(beast.Level, beast.Tier)
	armor := adv.Equipment.Slot(location)
	def, ok := catalog.LookupItem(armor.ID)
	if armor.Empty() || !ok || !slices.Contains(ArmorSlots, location) {
		return max(MinBeastDamage, attack)
	}

	armorValue := power(armor.Level(), def.Tier)
	damage := max(MinBeastDamage, attack-armorValue)
	if bdef, ok := catalog.LookupBeast(beast.ID); ok {
		damage = ElementalAdjustedDamage(damage, bdef.Attack, def.Type)
	}
	damage += CriticalHitBonus(damage, adv.Level()*beastLuckPerLevel, adventurer.Item{}, entropy)

	neck := adv.Equipment.Neck
	if NeckReinforces(def.Type, neck.ID) {
		damage -= armorValue * neck.Level() * neckBonusPercent / 100
	}
	return max(MinBeastDamage, damage)
}

// AbilityBasedPercentage returns the percentage chance a stat grants
// against an adventurer of the level derived from xp.
//
// Postcondition: returns 100 when stat >= level, otherwise floor(stat*100/level).
func AbilityBasedPercentage(xp, stat int) int {
	level := adventurer.CalculateLevel(xp)
	if stat >= level {
		return 100
	}
	return stat * 100 / level
}

// AbilityBasedAvoidThreat reports whether stat avoids a threat given the
// ledger's random byte rnd.
func AbilityBasedAvoidThreat(level, stat, rnd int) bool {
	if stat >= level {
		return true
	}
	return stat*255 > level*rnd
}

// Preview is the expected damage exchange against the engaged beast.
type Preview struct {
	// Hit is the attack damage without a critical hit.
	Hit int
	// Critical is the attack damage on the luckiest nonzero roll.
	Critical int
	// Taken maps each armor slot to the beast's non-critical damage there.
	Taken map[catalog.Slot]int
}

// PreviewBattle computes the damage bounds shown to the player during battle.
// The beast's critical roll is excluded by passing maximal entropy.
//
// Precondition: adv must be non-nil.
func PreviewBattle(adv *adventurer.Adventurer, beast adventurer.Beast) Preview {
	p := Preview{
		Hit:      AttackDamage(adv, beast, 0),
		Critical: AttackDamage(adv, beast, 1),
		Taken:    make(map[catalog.Slot]int, len(ArmorSlots)),
	}
	for _, slot := range ArmorSlots {
		p.Taken[slot] = BeastDamage(beast, adv, slot, noCritEntropy)
	}
	return p
}

// noCritEntropy exceeds every reachable crit threshold.
const noCritEntropy = 1 << 20
