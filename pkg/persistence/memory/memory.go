package memory

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
)

// MemoryManifestStore is an in-memory implementation of IManifestStore.
// This implementation is intended for TESTING ONLY.
//
// Records are held in their serialized form, so every load returns a fresh
// copy and callers can never mutate stored state.
type MemoryManifestStore struct {
	mu sync.RWMutex

	// merkle root -> serialized ManifestRecord
	records map[string][]byte

	closed bool
}

// NewMemoryManifestStore creates a new in-memory store.
// Logs a loud warning since nothing survives the process.
func NewMemoryManifestStore(logger *zap.Logger) *MemoryManifestStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Sugar().Warnw("Using in-memory manifest store - ALL DATA WILL BE LOST ON EXIT",
		"hint", "set MERKLE_STORE_TYPE=badger or leveldb to keep manifests",
	)

	return &MemoryManifestStore{
		records: make(map[string][]byte),
	}
}

// SaveManifest stores a copy of record.
func (m *MemoryManifestStore) SaveManifest(record *persistence.ManifestRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	data, err := persistence.MarshalManifestRecord(record)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	m.records[record.MerkleRoot] = data
	return nil
}

// LoadManifest retrieves a record by merkle root.
func (m *MemoryManifestStore) LoadManifest(merkleRoot string) (*persistence.ManifestRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	data, exists := m.records[merkleRoot]
	if !exists {
		return nil, nil // Not found is not an error
	}

	return persistence.UnmarshalManifestRecord(data)
}

// LoadClaim retrieves one claim from a stored manifest.
func (m *MemoryManifestStore) LoadClaim(merkleRoot, account string) (*types.Claim, error) {
	record, err := m.LoadManifest(merkleRoot)
	if err != nil || record == nil {
		return nil, err
	}

	claim, ok := record.Manifest.Claim(account)
	if !ok {
		return nil, nil
	}
	return &claim, nil
}

// ListManifests returns all records ordered by creation time.
func (m *MemoryManifestStore) ListManifests() ([]*persistence.ManifestRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	result := make([]*persistence.ManifestRecord, 0, len(m.records))
	for root, data := range m.records {
		record, err := persistence.UnmarshalManifestRecord(data)
		if err != nil {
			return nil, fmt.Errorf("corrupt record for root %s: %w", root, err)
		}
		result = append(result, record)
	}

	persistence.SortRecords(result)
	return result, nil
}

// DeleteManifest removes a record.
func (m *MemoryManifestStore) DeleteManifest(merkleRoot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	delete(m.records, merkleRoot)
	return nil
}

// Close marks the store closed and drops its contents.
func (m *MemoryManifestStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.records = nil
	return nil
}

// HealthCheck always succeeds while the store is open.
func (m *MemoryManifestStore) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return persistence.ErrClosed
	}
	return nil
}
