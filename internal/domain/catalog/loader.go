package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// recipeFile is the on-disk YAML shape of a catalog.
type recipeFile struct {
	Recipes []recipeDef `yaml:"recipes"`
}

type recipeDef struct {
	Output         string          `yaml:"output"`
	OutputQuantity int             `yaml:"output_quantity"`
	Entity         string          `yaml:"entity"`
	Duration       uint64          `yaml:"duration"`
	Inputs         []ingredientDef `yaml:"inputs"`
}

type ingredientDef struct {
	Resource string `yaml:"resource"`
	Quantity int    `yaml:"quantity"`
}

// Parse builds a validated catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var file recipeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	recipes := make([]Recipe, 0, len(file.Recipes))
	for _, def := range file.Recipes {
		qty := def.OutputQuantity
		if qty == 0 {
			qty = 1
		}
		r := Recipe{
			Output:         ResourceType(def.Output),
			OutputQuantity: qty,
			Entity:         EntityType(def.Entity),
			Duration:       def.Duration,
		}
		for _, ing := range def.Inputs {
			r.Inputs = append(r.Inputs, Ingredient{
				Resource: ResourceType(ing.Resource),
				Quantity: ing.Quantity,
			})
		}
		recipes = append(recipes, r)
	}
	return New(recipes)
}

// LoadFile reads and parses a catalog YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}
