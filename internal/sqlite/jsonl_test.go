package sqlite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mesh-intelligence/larder/pkg/types"
)

func TestExportImportRoundTrip(t *testing.T) {
	src := attached(t)
	src.PutEntity(types.EntityRecipes, "1", recipe("1", "Soup"))
	src.PutEntity(types.EntityRecipes, "2", recipe("2", "Bread"))
	src.PutEntity(types.EntityMeals, "9", types.NewObject(types.Field{Key: "meal_id", Value: "9"}))

	path := filepath.Join(t.TempDir(), "recipes.jsonl")
	n, err := src.Export(path, types.EntityRecipes)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Export wrote %d records, want 2", n)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 2 {
		t.Errorf("export has %d lines, want 2", lines)
	}

	dst := attached(t)
	n, err = dst.Import(path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Import stored %d records, want 2", n)
	}
	got, err := dst.GetEntity(types.EntityRecipes, "2")
	if err != nil {
		t.Fatalf("GetEntity after import: %v", err)
	}
	if got.Payload.String("recipe_name") != "Bread" {
		t.Errorf("recipe_name = %q, want Bread", got.Payload.String("recipe_name"))
	}
}

func TestImportSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.jsonl")
	content := strings.Join([]string{
		`{"entity_type":"recipes","entity_id":"1","payload":{"recipe_id":"1"},"fetched_at":"2026-01-02T03:04:05Z"}`,
		`not json`,
		``,
		`{"entity_type":"recipes","payload":{"recipe_id":"2"}}`,
		`{"entity_type":"meals","entity_id":"5","payload":{"meal_id":"5"}}`,
	}, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	b := attached(t)
	n, err := b.Import(path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Import stored %d records, want 2", n)
	}
	if _, err := b.GetEntity(types.EntityMeals, "5"); err != nil {
		t.Errorf("meal 5 not imported: %v", err)
	}
}

func TestWriteJSONLLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jsonl")
	if err := writeJSONL(path, nil); err != nil {
		t.Fatalf("writeJSONL failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "out.jsonl" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}

func TestImportMissingFile(t *testing.T) {
	b := attached(t)
	if _, err := b.Import(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Error("expected error for missing file")
	}
}
