package sqlite

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// readJSONL reads a JSONL file and returns each non-empty, parseable line.
// Malformed lines are skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to path using the temp-file, fsync,
// rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail(fmt.Errorf("writing record: %w", err))
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail(fmt.Errorf("writing newline: %w", err))
		}
	}
	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("flushing buffer: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Export writes every cached entity of entityType (all types when empty) to
// path as JSONL. Returns the number of records written.
func (b *Backend) Export(path, entityType string) (int, error) {
	entities, err := b.ListEntities(entityType)
	if err != nil {
		return 0, err
	}
	records := make([]json.RawMessage, 0, len(entities))
	for _, e := range entities {
		data, err := json.Marshal(e)
		if err != nil {
			return 0, fmt.Errorf("encode %s/%s: %w", e.EntityType, e.EntityID, err)
		}
		records = append(records, data)
	}
	if err := writeJSONL(path, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Import loads a JSONL file written by Export. Lines that are malformed or
// lack an entity type or id are skipped. Returns the number of records
// stored.
func (b *Backend) Import(path string) (int, error) {
	records, err := readJSONL(path)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, rec := range records {
		var e CachedEntity
		if err := json.Unmarshal(rec, &e); err != nil {
			continue
		}
		if e.EntityType == "" || e.EntityID == "" || e.Payload == nil {
			continue
		}
		if e.FetchedAt.IsZero() {
			e.FetchedAt = b.now()
		}
		if err := b.putEntity(e); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
