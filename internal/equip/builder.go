// Package equip provides the equipment-list builder shared by the process
// calculators: each sized unit becomes an item with specs and a design-basis
// narrative, under a per-run incrementing id.
package equip

import "massbal/pkg/api"

// Builder accumulates equipment items for one calculator run. Ids start at 1
// and are not stable across runs.
type Builder struct {
	nextID int
	items  []api.EquipmentItem
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{nextID: 1, items: []api.EquipmentItem{}}
}

// Add appends one equipment item and returns its id.
func (b *Builder) Add(item api.EquipmentItem) int {
	item.ID = b.nextID
	b.nextID++
	if item.Specs == nil {
		item.Specs = map[string]api.SpecEntry{}
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	b.items = append(b.items, item)
	return item.ID
}

// Items returns the accumulated list.
func (b *Builder) Items() []api.EquipmentItem {
	return b.items
}
