package helpers

import (
	"testing"

	"github.com/Nadrieril/rustorio/internal/domain/catalog"
)

// GearCatalog returns a small gear-wheel production chain:
// IronOre (MiningDrill) -> IronPlate (Furnace) -> GearWheel (Assembler).
func GearCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Recipe{
		{
			Output:         "IronOre",
			OutputQuantity: 1,
			Entity:         "MiningDrill",
			Duration:       2,
		},
		{
			Output:         "IronPlate",
			OutputQuantity: 1,
			Entity:         "Furnace",
			Duration:       3,
			Inputs: []catalog.Ingredient{
				{Resource: "IronOre", Quantity: 1},
			},
		},
		{
			Output:         "GearWheel",
			OutputQuantity: 1,
			Entity:         "Assembler",
			Duration:       1,
			Inputs: []catalog.Ingredient{
				{Resource: "IronPlate", Quantity: 2},
			},
		},
	})
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return cat
}
