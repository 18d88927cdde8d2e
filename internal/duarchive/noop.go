package duarchive

import "context"

// Noop discards every document; it is the default Archiver when no bucket is
// configured.
type Noop struct{}

// NewNoop builds a Noop Archiver.
func NewNoop() *Noop { return &Noop{} }

// Put does nothing, never fails, and returns an empty locator.
func (Noop) Put(ctx context.Context, envelopeID, documentID string, content []byte) (string, error) {
	return "", nil
}
