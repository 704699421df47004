package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nadrieril/rustorio/internal/domain/catalog"
	"github.com/Nadrieril/rustorio/internal/domain/inventory"
)

func TestMemoryStock_TakeAndDeposit(t *testing.T) {
	stock := inventory.NewMemoryStock(map[catalog.ResourceType]int{"IronOre": 10})

	require.NoError(t, stock.Take("IronOre", 4))
	assert.Equal(t, 6, stock.Available("IronOre"))

	stock.Deposit("IronOre", 2)
	assert.Equal(t, 8, stock.Available("IronOre"))

	stock.Deposit("IronPlate", 3)
	assert.Equal(t, 3, stock.Available("IronPlate"))
}

func TestMemoryStock_TakeInsufficient(t *testing.T) {
	stock := inventory.NewMemoryStock(map[catalog.ResourceType]int{"IronOre": 2})

	err := stock.Take("IronOre", 5)
	require.Error(t, err)

	var insufficient *inventory.ErrInsufficientStock
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 5, insufficient.Requested)
	assert.Equal(t, 2, insufficient.Available)

	// Nothing was taken.
	assert.Equal(t, 2, stock.Available("IronOre"))
}

func TestMemoryStock_UnknownResource(t *testing.T) {
	stock := inventory.NewMemoryStock(nil)
	assert.Equal(t, 0, stock.Available("Copper"))
}

func TestMemoryStock_Snapshot(t *testing.T) {
	stock := inventory.NewMemoryStock(map[catalog.ResourceType]int{"IronOre": 5})
	snapshot := stock.Snapshot()
	snapshot["IronOre"] = 0

	// Snapshot is a copy.
	assert.Equal(t, 5, stock.Available("IronOre"))
}
