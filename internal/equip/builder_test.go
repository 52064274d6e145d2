package equip

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"massbal/pkg/api"
)

func TestBuilderAssignsSequentialIDs(t *testing.T) {
	b := NewBuilder()
	b.Add(api.EquipmentItem{Type: "Mechanical Fine Screen", Quantity: 2})
	b.Add(api.EquipmentItem{Type: "Vortex Grit Chamber"})

	items := b.Items()
	assert.Len(t, items, 2)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, 2, items[1].ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity, "quantity defaults to one")
}
