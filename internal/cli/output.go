package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/larder/internal/shape"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// printer renders command results in the selected --format.
type printer struct {
	w      io.Writer
	format string
}

func (a *app) printer(w io.Writer) printer {
	return printer{w: w, format: a.flags.format}
}

// structured reports whether the format is machine-readable.
func (p printer) structured() bool {
	return p.format == formatJSON || p.format == formatYAML
}

// encode writes v as indented JSON or YAML.
func (p printer) encode(v any) error {
	if p.format == formatYAML {
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// detail renders one entity. Text and table formats show the shaped item
// as label/value rows with the id first.
func (p printer) detail(item *types.Object, idField string, raw bool) error {
	if p.structured() {
		return p.encode(item)
	}
	shown := item
	if !raw {
		shown = shapeDetail(item)
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	if id := shown.String(idField); id != "" && idField != "" {
		fmt.Fprintf(tw, "ID:\t%s\n", id)
	}
	for _, col := range shape.GetColumns(shown, idField) {
		v, _ := shown.Get(col.Field)
		fmt.Fprintf(tw, "%s:\t%s\n", col.Label, displayValue(v))
	}
	return tw.Flush()
}

// list renders entities as a table whose columns come from the first item.
func (p printer) list(items []*types.Object, idField string, exclude []string) error {
	if p.structured() {
		return p.encode(items)
	}
	if len(items) == 0 {
		fmt.Fprintln(p.w, "No entries.")
		return nil
	}
	shaped := shapeList(items)
	columns := shape.RemoveColumns(shape.GetColumns(shaped[0], idField), exclude)

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	header := []string{"ID"}
	for _, col := range columns {
		header = append(header, strings.ToUpper(col.Label))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, item := range shaped {
		row := []string{item.String(idField)}
		for _, col := range columns {
			v, _ := item.Get(col.Field)
			row = append(row, displayValue(v))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// searchOutput is the structured form of a search result.
type searchOutput struct {
	Query   string                `json:"query" yaml:"query"`
	Total   int                   `json:"total" yaml:"total"`
	Results types.SearchResultSet `json:"results" yaml:"results"`
}

// search renders hits grouped by category.
func (p printer) search(query string, results types.SearchResultSet) error {
	if p.structured() {
		return p.encode(searchOutput{Query: query, Total: results.Total(), Results: results})
	}
	fmt.Fprintf(p.w, "%d results for %q\n", results.Total(), query)
	for _, category := range types.SearchCategories {
		hits := results.Category(category)
		if len(hits) == 0 {
			continue
		}
		fmt.Fprintf(p.w, "\n%s (%d)\n", shape.Label(category), len(hits))
		for _, hit := range hits {
			name, ok := shape.NameLike(hit)
			if !ok && hit.Len() > 0 {
				name = hit.String(hit.Keys()[0])
			}
			fmt.Fprintf(p.w, "  %s\n", types.FormatValue(name))
		}
	}
	return nil
}

// shapeDetail flattens a detail payload the way detail pages show it.
func shapeDetail(item *types.Object) *types.Object {
	shaped := shape.ParseItemData(types.NewObject(types.Field{Key: "item", Value: item}))
	v, _ := shaped.Get("item")
	if obj, ok := v.(*types.Object); ok {
		return obj
	}
	return item
}

// shapeList flattens list payloads the way list pages show them.
func shapeList(items []*types.Object) []*types.Object {
	arr := make([]any, len(items))
	for i, item := range items {
		arr[i] = item
	}
	shaped := shape.ParseItemData(types.NewObject(types.Field{Key: "items", Value: arr}))
	v, _ := shaped.Get("items")
	out := make([]*types.Object, 0, len(items))
	if list, ok := v.([]any); ok {
		for _, e := range list {
			if obj, ok := e.(*types.Object); ok {
				out = append(out, obj)
			}
		}
	}
	return out
}

// displayValue renders a shaped value for a table cell. String lists are
// joined rather than printed as JSON.
func displayValue(v any) string {
	list, ok := v.([]any)
	if !ok {
		return types.FormatValue(v)
	}
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = types.FormatValue(e)
	}
	return strings.Join(parts, "; ")
}
