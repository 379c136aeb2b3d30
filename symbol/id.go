package symbol

import "github.com/google/uuid"

// IDGenerator produces registry IDs.
//
// IDs only identify a registry in logs and in cross-unit diagnostics; they
// play no part in Symbol identity.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 IDs, so registries created
// later sort later in logs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
