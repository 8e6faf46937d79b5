// Package shape turns raw API payloads into display-ready structures:
// table columns derived from an item's keys, and items whose nested
// objects and arrays are flattened into strings.
package shape

import (
	"strings"
	"unicode"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// GetColumns derives one column per key of item, in key order, skipping the
// identifier field. When idField is empty the first key is assumed to be
// the identifier and skipped.
func GetColumns(item *types.Object, idField string) []types.DisplayColumn {
	keys := item.Keys()
	columns := make([]types.DisplayColumn, 0, len(keys))
	for i, key := range keys {
		if idField == "" && i == 0 {
			continue
		}
		if idField != "" && key == idField {
			continue
		}
		columns = append(columns, types.DisplayColumn{Field: key, Label: Label(key)})
	}
	return columns
}

// RemoveColumns drops columns whose field is in exclude, keeping order.
func RemoveColumns(columns []types.DisplayColumn, exclude []string) []types.DisplayColumn {
	drop := make(map[string]bool, len(exclude))
	for _, f := range exclude {
		drop[f] = true
	}
	kept := make([]types.DisplayColumn, 0, len(columns))
	for _, col := range columns {
		if !drop[col.Field] {
			kept = append(kept, col)
		}
	}
	return kept
}

// Label turns a field name into a column heading: underscores become
// spaces and the first letter of every word is upper-cased
// ("ri_quantity" -> "Ri Quantity").
func Label(field string) string {
	runes := []rune(strings.ReplaceAll(field, "_", " "))
	for i, r := range runes {
		if isWordRune(r) && (i == 0 || !isWordRune(runes[i-1])) {
			runes[i] = unicode.ToUpper(r)
		}
	}
	return string(runes)
}

// isWordRune matches the \w class: letters, digits and underscore.
func isWordRune(r rune) bool {
	return r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
