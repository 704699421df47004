package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Nadrieril/rustorio/internal/domain/catalog"
	"github.com/Nadrieril/rustorio/internal/domain/inventory"
)

// Scenario describes one simulation setup: the catalog to load, starting
// stock, the machines on the floor, and the requests to submit.
type Scenario struct {
	Catalog  string             `yaml:"catalog"`
	Stock    map[string]int     `yaml:"stock"`
	Machines []ScenarioMachine  `yaml:"machines"`
	Requests []ScenarioRequest  `yaml:"requests"`
}

type ScenarioMachine struct {
	Entity        string `yaml:"entity"`
	Count         int    `yaml:"count"`
	BatchCapacity int    `yaml:"batch_capacity"`
}

type ScenarioRequest struct {
	Resource string `yaml:"resource"`
	Quantity int    `yaml:"quantity"`
}

// LoadScenario reads and validates a scenario file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}
	if s.Catalog == "" {
		return nil, fmt.Errorf("scenario is missing a catalog path")
	}
	if len(s.Requests) == 0 {
		return nil, fmt.Errorf("scenario has no requests")
	}
	for i, m := range s.Machines {
		if m.Entity == "" {
			return nil, fmt.Errorf("machine %d is missing an entity type", i)
		}
		if m.Count < 0 {
			return nil, fmt.Errorf("machine %d has a negative count", i)
		}
	}
	for i, r := range s.Requests {
		if r.Resource == "" {
			return nil, fmt.Errorf("request %d is missing a resource", i)
		}
		if r.Quantity <= 0 {
			return nil, fmt.Errorf("request %d must have a positive quantity", i)
		}
	}
	return &s, nil
}

// InitialStock builds the starting stock from the scenario
func (s *Scenario) InitialStock() *inventory.MemoryStock {
	initial := make(map[catalog.ResourceType]int, len(s.Stock))
	for res, qty := range s.Stock {
		initial[catalog.ResourceType(res)] = qty
	}
	return inventory.NewMemoryStock(initial)
}
