package catalog

// ResourceType identifies a kind of craftable or storable item.
// Values are stable for the lifetime of a loaded catalog.
type ResourceType string

// EntityType identifies a kind of production entity (furnace, assembler, ...).
// Machines of the same entity type are interchangeable for assignment purposes.
type EntityType string

// Ingredient is one input line of a recipe: a resource and the quantity
// consumed per crafting run.
type Ingredient struct {
	Resource ResourceType
	Quantity int
}
