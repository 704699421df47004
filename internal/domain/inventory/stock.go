package inventory

import (
	"fmt"

	"github.com/Nadrieril/rustorio/internal/domain/catalog"
)

// Stock is the narrow inventory interface the engine consumes from the host
// simulation. The engine only ever queries availability, withdraws secured
// quantities, and deposits produced output.
type Stock interface {
	// Available returns the quantity of the resource currently in stock.
	Available(res catalog.ResourceType) int

	// Take withdraws qty units. Fails without side effects when stock is
	// insufficient.
	Take(res catalog.ResourceType, qty int) error

	// Deposit adds qty units of the resource to stock.
	Deposit(res catalog.ResourceType, qty int)
}

// ErrInsufficientStock indicates a withdrawal exceeded what was available.
type ErrInsufficientStock struct {
	Resource  catalog.ResourceType
	Requested int
	Available int
}

func (e *ErrInsufficientStock) Error() string {
	return fmt.Sprintf("insufficient stock of %q: requested %d, available %d",
		e.Resource, e.Requested, e.Available)
}

// MemoryStock is the in-process Stock implementation used by the reference
// host and by tests.
type MemoryStock struct {
	amounts map[catalog.ResourceType]int
}

// NewMemoryStock creates a stock store seeded with the given amounts.
func NewMemoryStock(initial map[catalog.ResourceType]int) *MemoryStock {
	amounts := make(map[catalog.ResourceType]int, len(initial))
	for res, qty := range initial {
		if qty > 0 {
			amounts[res] = qty
		}
	}
	return &MemoryStock{amounts: amounts}
}

func (s *MemoryStock) Available(res catalog.ResourceType) int {
	return s.amounts[res]
}

func (s *MemoryStock) Take(res catalog.ResourceType, qty int) error {
	if qty <= 0 {
		return nil
	}
	have := s.amounts[res]
	if have < qty {
		return &ErrInsufficientStock{Resource: res, Requested: qty, Available: have}
	}
	if have == qty {
		delete(s.amounts, res)
	} else {
		s.amounts[res] = have - qty
	}
	return nil
}

func (s *MemoryStock) Deposit(res catalog.ResourceType, qty int) {
	if qty <= 0 {
		return
	}
	s.amounts[res] += qty
}

// Snapshot returns a copy of current stock levels, for status reporting.
func (s *MemoryStock) Snapshot() map[catalog.ResourceType]int {
	out := make(map[catalog.ResourceType]int, len(s.amounts))
	for res, qty := range s.amounts {
		out[res] = qty
	}
	return out
}
