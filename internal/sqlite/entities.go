package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// CachedEntity is one stored entity payload.
type CachedEntity struct {
	EntityType string        `json:"entity_type"`
	EntityID   string        `json:"entity_id"`
	Payload    *types.Object `json:"payload"`
	FetchedAt  time.Time     `json:"fetched_at"`
}

// PutEntity stores payload as the latest copy of entityType/entityID.
func (b *Backend) PutEntity(entityType, entityID string, payload *types.Object) error {
	return b.putEntity(CachedEntity{
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    payload,
		FetchedAt:  b.now(),
	})
}

func (b *Backend) putEntity(e CachedEntity) error {
	if e.EntityID == "" {
		return types.ErrInvalidID
	}
	if e.Payload == nil {
		e.Payload = types.NewObject()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return err
	}
	data, err := e.Payload.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	_, err = db.Exec(`INSERT INTO entities (entity_type, entity_id, payload, fetched_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (entity_type, entity_id) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		e.EntityType, e.EntityID, string(data), e.FetchedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("store entity: %w", err)
	}
	return nil
}

// GetEntity returns the cached copy of entityType/entityID.
// Returns ErrNotFound when nothing is cached.
func (b *Backend) GetEntity(entityType, entityID string) (*CachedEntity, error) {
	if entityID == "" {
		return nil, types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return nil, err
	}
	row := db.QueryRow(`SELECT entity_type, entity_id, payload, fetched_at FROM entities
WHERE entity_type = ? AND entity_id = ?`, entityType, entityID)
	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	return e, err
}

// ListEntities returns cached entities, newest first. An empty entityType
// lists every type.
func (b *Backend) ListEntities(entityType string) ([]CachedEntity, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return nil, err
	}

	query := `SELECT entity_type, entity_id, payload, fetched_at FROM entities`
	var args []any
	if entityType != "" {
		query += ` WHERE entity_type = ?`
		args = append(args, entityType)
	}
	query += ` ORDER BY fetched_at DESC, entity_type, entity_id`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	var out []CachedEntity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// DeleteEntity drops the cached copy, if any.
func (b *Backend) DeleteEntity(entityType, entityID string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return err
	}
	_, err = db.Exec(`DELETE FROM entities WHERE entity_type = ? AND entity_id = ?`, entityType, entityID)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(s scanner) (*CachedEntity, error) {
	var e CachedEntity
	var payload, fetchedAt string
	if err := s.Scan(&e.EntityType, &e.EntityID, &payload, &fetchedAt); err != nil {
		return nil, err
	}
	obj, err := types.ParseObject([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("decode cached payload %s/%s: %w", e.EntityType, e.EntityID, err)
	}
	e.Payload = obj
	e.FetchedAt, err = time.Parse(timeLayout, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("decode fetched_at: %w", err)
	}
	return &e, nil
}
