package sqlite

// Schema DDL. Tables are created if missing so the cache survives across
// runs.
const (
	createEntities = `CREATE TABLE IF NOT EXISTS entities (
    entity_type TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    payload TEXT NOT NULL,
    fetched_at TEXT NOT NULL,
    PRIMARY KEY (entity_type, entity_id)
);`

	createSearches = `CREATE TABLE IF NOT EXISTS searches (
    search_id TEXT PRIMARY KEY,
    query TEXT NOT NULL,
    total INTEGER NOT NULL,
    searched_at TEXT NOT NULL
);`
)

// Index DDL.
const (
	idxEntitiesFetched = `CREATE INDEX IF NOT EXISTS idx_entities_fetched ON entities(entity_type, fetched_at);`
	idxSearchesTime    = `CREATE INDEX IF NOT EXISTS idx_searches_time ON searches(searched_at);`
)

var schemaStatements = []string{
	createEntities,
	createSearches,
	idxEntitiesFetched,
	idxSearchesTime,
}
