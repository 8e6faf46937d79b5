package sqlite

import (
	"fmt"
	"time"
)

// SearchRecord is one entry of the search history.
type SearchRecord struct {
	SearchID   string    `json:"search_id"`
	Query      string    `json:"query"`
	Total      int       `json:"total"`
	SearchedAt time.Time `json:"searched_at"`
}

// RecordSearch appends a search to the history.
func (b *Backend) RecordSearch(query string, total int) (SearchRecord, error) {
	rec := SearchRecord{
		SearchID:   newID(),
		Query:      query,
		Total:      total,
		SearchedAt: b.now(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return SearchRecord{}, err
	}
	_, err = db.Exec(`INSERT INTO searches (search_id, query, total, searched_at) VALUES (?, ?, ?, ?)`,
		rec.SearchID, rec.Query, rec.Total, rec.SearchedAt.UTC().Format(timeLayout))
	if err != nil {
		return SearchRecord{}, fmt.Errorf("record search: %w", err)
	}
	return rec, nil
}

// RecentSearches returns up to limit searches, newest first. A
// non-positive limit returns all of them.
func (b *Backend) RecentSearches(limit int) ([]SearchRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`SELECT search_id, query, total, searched_at FROM searches
ORDER BY searched_at DESC, search_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	defer rows.Close()

	var out []SearchRecord
	for rows.Next() {
		var rec SearchRecord
		var searchedAt string
		if err := rows.Scan(&rec.SearchID, &rec.Query, &rec.Total, &searchedAt); err != nil {
			return nil, err
		}
		rec.SearchedAt, err = time.Parse(timeLayout, searchedAt)
		if err != nil {
			return nil, fmt.Errorf("decode searched_at: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
