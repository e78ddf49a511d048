package character

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// title builds a fresh caser per call; casers carry state and must not be
// shared between goroutines.
func title(value string) string {
	return cases.Title(language.English).String(value)
}

// Label returns the display label for a lineage.
func (l Lineage) Label() string {
	return title(string(l))
}

// Label returns the display label for a vocation.
func (v Vocation) Label() string {
	return title(string(v))
}

// Title describes the character as "Name, a Level N Lineage Vocation".
func (c Character) Title() string {
	return fmt.Sprintf("%s, a Level %d %s %s", c.Name, c.Level, c.Lineage.Label(), c.Vocation.Label())
}

// InventoryNames lists item names in inventory order, joined by ", ".
func (c Character) InventoryNames() string {
	names := make([]string, 0, len(c.Inventory))
	for _, item := range c.Inventory {
		names = append(names, item.Name)
	}
	return strings.Join(names, ", ")
}
