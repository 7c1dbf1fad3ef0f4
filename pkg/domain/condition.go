package domain

// ConditionKind enumerates the conditions a choice may be gated on.
type ConditionKind string

const (
	CondHasItem        ConditionKind = "has_item"
	CondMissingItem    ConditionKind = "missing_item"
	CondInventoryEmpty ConditionKind = "inventory_empty"
	CondFlag           ConditionKind = "flag"
	CondVariableEquals ConditionKind = "variable_equals"
	CondVisited        ConditionKind = "visited"
)

// Condition is a closed sum type over the known condition kinds.
type Condition interface {
	Kind() ConditionKind
}

// HasItem holds when the inventory contains at least Quantity of Item.
type HasItem struct {
	Item     string `mapstructure:"item"`
	Quantity int    `mapstructure:"quantity"`
}

// MissingItem holds when Item is absent from the inventory.
type MissingItem struct {
	Item string `mapstructure:"item"`
}

// InventoryEmpty holds when no items are carried.
type InventoryEmpty struct{}

// FlagIs holds when the flag equals Value (unset flags are false).
type FlagIs struct {
	Flag  string `mapstructure:"flag"`
	Value bool   `mapstructure:"value"`
}

// VariableEquals holds when the variable equals Value.
type VariableEquals struct {
	Name  string `mapstructure:"name"`
	Value any    `mapstructure:"value"`
}

// Visited holds when Node appears in the visit log.
type Visited struct {
	Node string `mapstructure:"node"`
}

// UnknownCondition preserves a condition whose kind is not recognized.
type UnknownCondition struct {
	Type string
	Raw  map[string]any
}

func (HasItem) Kind() ConditionKind { return CondHasItem }
func (MissingItem) Kind() ConditionKind { return CondMissingItem }
func (InventoryEmpty) Kind() ConditionKind { return CondInventoryEmpty }
func (FlagIs) Kind() ConditionKind { return CondFlag }
func (VariableEquals) Kind() ConditionKind { return CondVariableEquals }
func (Visited) Kind() ConditionKind { return CondVisited }
func (c UnknownCondition) Kind() ConditionKind { return ConditionKind(c.Type) }

// ActionKind enumerates the effects a node or choice may apply.
type ActionKind string

const (
	ActAddItem        ActionKind = "add_item"
	ActUseItem        ActionKind = "use_item"
	ActClearInventory ActionKind = "clear_inventory"
	ActSetFlag        ActionKind = "set_flag"
	ActSetVariable    ActionKind = "set_variable"
)

// Action is a closed sum type over the known action kinds.
type Action interface {
	Kind() ActionKind
}

// AddItem adds Quantity of Item.
type AddItem struct {
	Item     string `mapstructure:"item"`
	Quantity int    `mapstructure:"quantity"`
}

// UseItem consumes Quantity of Item.
type UseItem struct {
	Item     string `mapstructure:"item"`
	Quantity int    `mapstructure:"quantity"`
}

// ClearInventory drops every item.
type ClearInventory struct{}

// SetFlag assigns a flag.
type SetFlag struct {
	Flag  string `mapstructure:"flag"`
	Value bool   `mapstructure:"value"`
}

// SetVariable assigns a string or numeric variable.
type SetVariable struct {
	Name  string `mapstructure:"name"`
	Value any    `mapstructure:"value"`
}

// UnknownAction preserves an action whose kind is not recognized.
type UnknownAction struct {
	Type string
	Raw  map[string]any
}

func (AddItem) Kind() ActionKind { return ActAddItem }
func (UseItem) Kind() ActionKind { return ActUseItem }
func (ClearInventory) Kind() ActionKind { return ActClearInventory }
func (SetFlag) Kind() ActionKind { return ActSetFlag }
func (SetVariable) Kind() ActionKind { return ActSetVariable }
func (a UnknownAction) Kind() ActionKind { return ActionKind(a.Type) }
