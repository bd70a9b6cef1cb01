package persistence

import (
	"errors"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("manifest store is closed")

// IManifestStore persists produced manifests so claims can be served later.
// Manifests are keyed by merkle root and are never modified once saved.
// All implementations must be thread-safe.
type IManifestStore interface {
	// SaveManifest stores a record under its merkle root. Saving the same
	// root again replaces the previous record.
	SaveManifest(record *ManifestRecord) error

	// LoadManifest returns the record for root.
	// Returns nil if it doesn't exist, error only on storage failure.
	LoadManifest(merkleRoot string) (*ManifestRecord, error)

	// LoadClaim returns one account's claim from the manifest with root.
	// Returns nil if either is missing, error only on storage failure.
	LoadClaim(merkleRoot, account string) (*types.Claim, error)

	// ListManifests returns every stored record ordered by CreatedAt, then root.
	// Returns an empty slice if nothing is stored.
	ListManifests() ([]*ManifestRecord, error)

	// DeleteManifest removes the record and its claims.
	// Idempotent - returns nil if root doesn't exist.
	DeleteManifest(merkleRoot string) error

	// Close releases the store. Idempotent.
	Close() error

	// HealthCheck returns nil if the store is usable.
	HealthCheck() error
}
