package persistence

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
)

// ManifestRecord is a manifest plus the metadata needed to re-verify it.
type ManifestRecord struct {
	// ID uniquely identifies this save
	ID string `json:"id"`

	// MerkleRoot duplicates Manifest.MerkleRoot and is the storage key
	MerkleRoot string `json:"merkleRoot"`

	// HashType is the strategy the tree was built with. Claims only verify
	// with the same strategy.
	HashType hashing.HashType `json:"hashType"`

	// CreatedAt is the Unix timestamp the record was created
	CreatedAt int64 `json:"createdAt"`

	Manifest *types.Manifest `json:"manifest"`
}

// NewManifestRecord wraps manifest with a fresh ID and the current time.
func NewManifestRecord(manifest *types.Manifest, hashType hashing.HashType) (*ManifestRecord, error) {
	if manifest == nil {
		return nil, fmt.Errorf("cannot create record for nil manifest")
	}
	if _, err := hashing.HashFromHex(manifest.MerkleRoot); err != nil {
		return nil, fmt.Errorf("manifest has invalid merkle root: %w", err)
	}
	return &ManifestRecord{
		ID:         uuid.New().String(),
		MerkleRoot: manifest.MerkleRoot,
		HashType:   hashType,
		CreatedAt:  time.Now().Unix(),
		Manifest:   manifest,
	}, nil
}

// Validate checks the fields every backend relies on.
func (r *ManifestRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("cannot save nil ManifestRecord")
	}
	if r.Manifest == nil {
		return fmt.Errorf("record %s has no manifest", r.ID)
	}
	if r.MerkleRoot == "" || r.MerkleRoot != r.Manifest.MerkleRoot {
		return fmt.Errorf("record root %q does not match manifest root %q", r.MerkleRoot, r.Manifest.MerkleRoot)
	}
	return nil
}

// SortRecords orders records by CreatedAt, then by root.
func SortRecords(records []*ManifestRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt != records[j].CreatedAt {
			return records[i].CreatedAt < records[j].CreatedAt
		}
		return records[i].MerkleRoot < records[j].MerkleRoot
	})
}
