// Package duarchive is an optional secondary sink for document content
// (SPEC_FULL.md C9): in addition to the base64 row the orchestrator upserts,
// a configured Archiver may persist the raw bytes to blob storage.
package duarchive

import "context"

// Archiver persists one document's raw bytes out-of-band. A Put failure is
// logged by the caller and never fails the sync; the document_content row
// upsert is the source of truth regardless of archive outcome. The returned
// locator, when non-empty, is recorded on the document_content row.
type Archiver interface {
	Put(ctx context.Context, envelopeID, documentID string, content []byte) (locator string, err error)
}
