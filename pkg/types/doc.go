// Package types defines the Trial entity, sync run records, configuration,
// and standard errors shared by the trialmirror ingestion pipeline, storage
// backend, and read API.
package types
