package types

// OperationState is the state bundle owned by one composable instance.
// Success and Error are never set together.
type OperationState struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
	Success bool   `json:"success"`
}

// Failed reports whether the last operation recorded an error.
func (s OperationState) Failed() bool {
	return s.Error != ""
}

// Search result categories, in display order.
const (
	CategoryRecipes     = "recipes"
	CategoryMeals       = "meals"
	CategoryFoodItems   = "food_items"
	CategoryIngredients = "ingredients"
)

// SearchCategories lists the four search result categories.
var SearchCategories = []string{
	CategoryRecipes,
	CategoryMeals,
	CategoryFoodItems,
	CategoryIngredients,
}

// SearchResultSet groups search hits by category. All four categories are
// always present; Normalize replaces missing ones with empty slices.
type SearchResultSet struct {
	Recipes     []*Object `json:"recipes" yaml:"recipes"`
	Meals       []*Object `json:"meals" yaml:"meals"`
	FoodItems   []*Object `json:"food_items" yaml:"food_items"`
	Ingredients []*Object `json:"ingredients" yaml:"ingredients"`
}

// EmptySearchResults returns the four-key empty result set.
func EmptySearchResults() SearchResultSet {
	return SearchResultSet{
		Recipes:     []*Object{},
		Meals:       []*Object{},
		FoodItems:   []*Object{},
		Ingredients: []*Object{},
	}
}

// Normalize replaces nil categories with empty slices.
func (r SearchResultSet) Normalize() SearchResultSet {
	if r.Recipes == nil {
		r.Recipes = []*Object{}
	}
	if r.Meals == nil {
		r.Meals = []*Object{}
	}
	if r.FoodItems == nil {
		r.FoodItems = []*Object{}
	}
	if r.Ingredients == nil {
		r.Ingredients = []*Object{}
	}
	return r
}

// Category returns the hits for one category name.
func (r SearchResultSet) Category(name string) []*Object {
	switch name {
	case CategoryRecipes:
		return r.Recipes
	case CategoryMeals:
		return r.Meals
	case CategoryFoodItems:
		return r.FoodItems
	case CategoryIngredients:
		return r.Ingredients
	default:
		return nil
	}
}

// Total returns the number of hits across all categories.
func (r SearchResultSet) Total() int {
	return len(r.Recipes) + len(r.Meals) + len(r.FoodItems) + len(r.Ingredients)
}

// DisplayColumn is a table column derived from an item's keys.
type DisplayColumn struct {
	Field string `json:"field" yaml:"field"`
	Label string `json:"label" yaml:"label"`
}
