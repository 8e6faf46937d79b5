package types

import (
	"sort"
	"strings"
)

// Entity type names as they appear in API paths.
const (
	EntityRecipes     = "recipes"
	EntityIngredients = "ingredients"
	EntityMeals       = "meals"
	EntityFoodItems   = "food-items"
	EntityUnitTypes   = "unit-types"
	EntityCategories  = "categories"
)

// EntitySpec describes how one entity type is addressed on the backend.
type EntitySpec struct {
	Name     string // path segment, e.g. "food-items"
	Endpoint string // API path, e.g. "/food-items"
	IDField  string // identifier key in payloads
	ListKey  string // envelope key of the list response
}

// DefaultEntitySpec derives the endpoint and id field from the type name
// alone: "/{name}" and "{name}_id".
func DefaultEntitySpec(name string) EntitySpec {
	return EntitySpec{
		Name:     name,
		Endpoint: "/" + name,
		IDField:  name + "_id",
		ListKey:  strings.ReplaceAll(name, "-", "_"),
	}
}

var registry = map[string]EntitySpec{
	EntityRecipes:     {Name: EntityRecipes, Endpoint: "/recipes", IDField: "recipe_id", ListKey: "recipes"},
	EntityIngredients: {Name: EntityIngredients, Endpoint: "/ingredients", IDField: "ingredient_id", ListKey: "ingredients"},
	EntityMeals:       {Name: EntityMeals, Endpoint: "/meals", IDField: "meal_id", ListKey: "meals"},
	EntityFoodItems:   {Name: EntityFoodItems, Endpoint: "/food-items", IDField: "fooditem_id", ListKey: "food_items"},
	EntityUnitTypes:   {Name: EntityUnitTypes, Endpoint: "/unit-types", IDField: "id", ListKey: "unit_types"},
	EntityCategories:  {Name: EntityCategories, Endpoint: "/categories", IDField: "category_id", ListKey: "categories"},
}

// aliases maps singular and underscore spellings to registered names.
var aliases = map[string]string{
	"recipe":     EntityRecipes,
	"ingredient": EntityIngredients,
	"meal":       EntityMeals,
	"food-item":  EntityFoodItems,
	"food_items": EntityFoodItems,
	"food_item":  EntityFoodItems,
	"fooditems":  EntityFoodItems,
	"unit-type":  EntityUnitTypes,
	"unit_types": EntityUnitTypes,
	"unit_type":  EntityUnitTypes,
	"units":      EntityUnitTypes,
	"category":   EntityCategories,
}

// LookupEntity returns the registered spec for name or one of its aliases.
// Returns ErrUnknownEntityType for anything else.
func LookupEntity(name string) (EntitySpec, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	spec, ok := registry[key]
	if !ok {
		return EntitySpec{}, ErrUnknownEntityType
	}
	return spec, nil
}

// EntityNames returns the registered entity type names, sorted.
func EntityNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
