// Package types defines the data model shared by the larder client library
// and CLI: ordered JSON objects, per-operation state bundles, search result
// sets, display columns, configuration, the entity-type registry, and the
// request error taxonomy.
package types
