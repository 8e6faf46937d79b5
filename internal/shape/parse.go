package shape

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// ParseItemData flattens the item under "item", or every item under
// "items", for display. The envelope and its other keys are left as they
// are. The input is never modified; a shallow copy is returned.
//
// Per field of each item:
//   - "ingredients" arrays become "{quantity} {unit} {name}" lines
//   - "instructions" arrays are sorted by step_number and numbered
//   - "categories" arrays become category names
//   - other arrays of objects become their name-like values joined by ", "
//   - a nested object becomes its first name-like value
//
// Field names are matched case-insensitively. This is a presentation
// transform and is not reversible.
func ParseItemData(payload *types.Object) *types.Object {
	if payload == nil {
		return nil
	}
	result := payload.Clone()

	if raw, ok := result.Get("items"); ok {
		if items, isArr := raw.([]any); isArr {
			shaped := make([]any, len(items))
			for i, it := range items {
				shaped[i] = shapeItem(it)
			}
			result.Set("items", shaped)
			return result
		}
	}
	if raw, ok := result.Get("item"); ok && truthy(raw) {
		result.Set("item", shapeItem(raw))
	}
	return result
}

// ShapeItem applies the ParseItemData field rules to a single item.
func ShapeItem(item *types.Object) *types.Object {
	shaped, _ := shapeItem(item).(*types.Object)
	return shaped
}

func shapeItem(v any) any {
	item, ok := v.(*types.Object)
	if !ok || item == nil {
		return v
	}
	out := item.Clone()
	for _, f := range item.Fields() {
		switch value := f.Value.(type) {
		case []any:
			out.Set(f.Key, shapeArray(f.Key, value))
		case *types.Object:
			if name, found := NameLike(value); found {
				out.Set(f.Key, name)
			}
		}
	}
	return out
}

func shapeArray(key string, arr []any) any {
	switch strings.ToLower(key) {
	case "ingredients":
		return formatIngredients(arr)
	case "instructions":
		return formatInstructions(arr)
	case "categories":
		return formatCategories(arr)
	}

	var names []string
	for _, el := range objects(arr) {
		if name, found := NameLike(el); found {
			names = append(names, types.FormatValue(name))
		}
	}
	if len(names) == 0 {
		return arr
	}
	return strings.Join(names, ", ")
}

func formatIngredients(arr []any) []any {
	lines := []any{}
	for _, ing := range objects(arr) {
		quantity := firstTruthy(ing, "ri_quantity", "quantity")
		unit := firstTruthy(ing, "unit_type", "unit")
		name := firstTruthy(ing, "ingredient_name", "name")
		line := strings.TrimSpace(quantity + " " + unit + " " + name)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// formatInstructions numbers steps in step_number order (missing steps sort
// as 0, ties keep source order). Numbers are assigned before steps with no
// text are dropped, so a blank step leaves a gap.
func formatInstructions(arr []any) []any {
	steps := objects(arr)
	sort.SliceStable(steps, func(i, j int) bool {
		return stepNumber(steps[i]) < stepNumber(steps[j])
	})
	lines := []any{}
	for i, step := range steps {
		text := firstTruthy(step, "instruction_text", "text", "instruction")
		if text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, text))
	}
	return lines
}

func formatCategories(arr []any) []any {
	names := []any{}
	for _, cat := range objects(arr) {
		if name := firstTruthy(cat, "category_name", "name"); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// NameLike returns the value of the first key, in key order, whose name
// contains "name" (case-insensitive) and whose value is not null.
func NameLike(obj *types.Object) (any, bool) {
	for _, f := range obj.Fields() {
		if f.Value == nil {
			continue
		}
		if strings.Contains(strings.ToLower(f.Key), "name") {
			return f.Value, true
		}
	}
	return nil, false
}

func objects(arr []any) []*types.Object {
	out := make([]*types.Object, 0, len(arr))
	for _, v := range arr {
		if obj, ok := v.(*types.Object); ok && obj != nil {
			out = append(out, obj)
		}
	}
	return out
}

// firstTruthy returns the display text of the first key holding a truthy
// value: not null, false, zero or the empty string.
func firstTruthy(obj *types.Object, keys ...string) string {
	for _, k := range keys {
		if v, ok := obj.Get(k); ok && truthy(v) {
			return types.FormatValue(v)
		}
	}
	return ""
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case *types.Object:
		return t != nil
	default:
		return true
	}
}

func stepNumber(step *types.Object) float64 {
	v, ok := step.Get("step_number")
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
