package character

import (
	"fmt"
	"strings"
)

// Category classifies inventory items.
type Category string

const (
	CategoryWeapon     Category = "weapon"
	CategoryArmor      Category = "armor"
	CategoryConsumable Category = "consumable"
	CategoryTool       Category = "tool"
	CategoryFocus      Category = "focus"
	CategoryMisc       Category = "misc"
)

// Effect is what a consumable does when used.
type Effect string

const (
	EffectNone   Effect = ""
	EffectHeal   Effect = "heal"
	EffectMana   Effect = "mana"
	EffectEscape Effect = "escape"
)

// Item is one inventory entry.
//
// Quantity is meaningful for stackable items only; a stackable item whose
// quantity reaches zero is removed from the inventory.
type Item struct {
	Name     string   `json:"name"`
	Category Category `json:"type"`
	Damage   string   `json:"damage,omitempty"`
	ACBonus  int      `json:"acBonus,omitempty"`
	Equipped bool     `json:"equipped,omitempty"`
	Effect   Effect   `json:"effect,omitempty"`
	Value    int      `json:"value,omitempty"`
	Quantity int      `json:"quantity,omitempty"`
}

// ItemUse reports the result of using an inventory item.
type ItemUse struct {
	Success  bool
	Item     string
	Effect   Effect
	Restored int
	Message  string
}

// DefaultCombatItem is used when a combat item action names no item.
const DefaultCombatItem = "Health Potion"

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// FindItem returns the index of the first item named name
// (case-insensitive), or -1.
func (c *Character) FindItem(name string) int {
	name = strings.TrimSpace(name)
	for i, item := range c.Inventory {
		if strings.EqualFold(item.Name, name) {
			return i
		}
	}
	return -1
}

// AddLoot appends each item to the inventory with quantity 1.
func (c *Character) AddLoot(items []Item) {
	for _, item := range items {
		item.Quantity = 1
		if item.Category == "" {
			item.Category = CategoryMisc
		}
		c.Inventory = append(c.Inventory, item)
	}
}

// UseItem consumes one unit of the first consumable named name with a
// positive quantity.
//
// Healing and mana effects never raise a vital above its maximum. When no
// such consumable exists the character is left untouched and Success is
// false.
func (c *Character) UseItem(name string) ItemUse {
	idx := -1
	for i, item := range c.Inventory {
		if strings.EqualFold(item.Name, strings.TrimSpace(name)) && item.Category == CategoryConsumable && item.Quantity > 0 {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ItemUse{Item: name, Message: fmt.Sprintf("You don't have any %s to use.", name)}
	}

	item := &c.Inventory[idx]
	use := ItemUse{Success: true, Item: item.Name, Effect: item.Effect}
	switch item.Effect {
	case EffectHeal:
		use.Restored = c.Heal(item.Value)
		use.Message = fmt.Sprintf("You use %s and recover %d HP! (%d/%d)", item.Name, use.Restored, c.CurrentHP, c.MaxHP)
	case EffectMana:
		use.Restored = c.RestoreMana(item.Value)
		use.Message = fmt.Sprintf("You use %s and recover %d MP! (%d/%d)", item.Name, use.Restored, c.CurrentMP, c.MaxMP)
	default:
		use.Message = fmt.Sprintf("You use %s.", item.Name)
	}

	item.Quantity--
	if item.Quantity <= 0 {
		c.Inventory = append(c.Inventory[:idx], c.Inventory[idx+1:]...)
	}
	return use
}
