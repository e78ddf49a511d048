// Package character models the player character of a session.
//
// A character is derived once from two closed choices, a lineage and a
// vocation, and is mutated afterwards only by combat resolution, item use,
// and progression. Derivation is table-driven: vocations contribute base
// ability scores, a hit die, an armor bonus, a mana formula and a starting
// kit; lineages contribute ability bonuses.
package character
