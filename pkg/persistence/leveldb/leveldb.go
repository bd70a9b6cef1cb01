package leveldb

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
)

// Key layout matches the badger backend so data can be migrated by copying keys.
const (
	keyPrefixManifest    = "manifest:"
	keyPrefixClaim       = "claim:"
	keySchemaVersion     = "metadata:schema_version"
	currentSchemaVersion = "v1"
)

// LevelDBManifestStore is a persistent IManifestStore backed by goleveldb.
type LevelDBManifestStore struct {
	db     *leveldb.DB
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// NewLevelDBManifestStore opens (or creates) a LevelDB database at dataPath.
func NewLevelDBManifestStore(dataPath string, logger *zap.Logger) (*LevelDBManifestStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	absPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	db, err := leveldb.OpenFile(absPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb database at %s: %w", absPath, err)
	}

	ls := &LevelDBManifestStore{
		db:     db,
		logger: logger,
	}
	if err := ls.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Infow("LevelDB manifest store initialized", "path", absPath)
	return ls, nil
}

func (l *LevelDBManifestStore) initSchema() error {
	existing, err := l.db.Get([]byte(keySchemaVersion), nil)
	if err == leveldb.ErrNotFound {
		return l.db.Put([]byte(keySchemaVersion), []byte(currentSchemaVersion), &opt.WriteOptions{Sync: true})
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if string(existing) != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existing, currentSchemaVersion)
	}
	return nil
}

func manifestKey(merkleRoot string) []byte {
	return []byte(keyPrefixManifest + merkleRoot)
}

func claimKey(merkleRoot, account string) []byte {
	return []byte(keyPrefixClaim + persistence.ClaimKey(merkleRoot, account))
}

func claimPrefix(merkleRoot string) []byte {
	return []byte(keyPrefixClaim + persistence.ClaimKey(merkleRoot, ""))
}

// get returns nil, nil for a missing key.
func (l *LevelDBManifestStore) get(key []byte) ([]byte, error) {
	data, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	return data, err
}

// SaveManifest writes the record and its claims in one atomic batch.
func (l *LevelDBManifestStore) SaveManifest(record *persistence.ManifestRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return persistence.ErrClosed
	}

	data, err := persistence.MarshalManifestRecord(record)
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	var claimErr error
	record.Manifest.Claims.Range(func(account string, claim types.Claim) bool {
		var value []byte
		value, claimErr = persistence.MarshalClaim(&claim)
		if claimErr != nil {
			return false
		}
		batch.Put(claimKey(record.MerkleRoot, account), value)
		return true
	})
	if claimErr != nil {
		return fmt.Errorf("failed to encode claims for %s: %w", record.MerkleRoot, claimErr)
	}
	batch.Put(manifestKey(record.MerkleRoot), data)

	if err := l.db.Write(batch, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", record.MerkleRoot, err)
	}

	l.logger.Sugar().Debugw("Saved manifest",
		"merkleRoot", record.MerkleRoot,
		"claims", record.Manifest.Claims.Len(),
	)
	return nil
}

// LoadManifest retrieves a record by merkle root
func (l *LevelDBManifestStore) LoadManifest(merkleRoot string) (*persistence.ManifestRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, persistence.ErrClosed
	}

	data, err := l.get(manifestKey(merkleRoot))
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest %s: %w", merkleRoot, err)
	}
	if data == nil {
		return nil, nil
	}
	return persistence.UnmarshalManifestRecord(data)
}

// LoadClaim reads a single claim key
func (l *LevelDBManifestStore) LoadClaim(merkleRoot, account string) (*types.Claim, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, persistence.ErrClosed
	}

	data, err := l.get(claimKey(merkleRoot, account))
	if err != nil {
		return nil, fmt.Errorf("failed to load claim %s for %s: %w", account, merkleRoot, err)
	}
	if data == nil {
		return nil, nil
	}
	return persistence.UnmarshalClaim(data)
}

// ListManifests returns all records ordered by creation time
func (l *LevelDBManifestStore) ListManifests() ([]*persistence.ManifestRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, persistence.ErrClosed
	}

	records := make([]*persistence.ManifestRecord, 0)

	iter := l.db.NewIterator(util.BytesPrefix([]byte(keyPrefixManifest)), nil)
	defer iter.Release()

	for iter.Next() {
		record, err := persistence.UnmarshalManifestRecord(iter.Value())
		if err != nil {
			l.logger.Sugar().Warnw("Failed to unmarshal ManifestRecord, skipping",
				"key", string(iter.Key()), "error", err)
			continue
		}
		records = append(records, record)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to list manifests: %w", err)
	}

	persistence.SortRecords(records)
	return records, nil
}

// DeleteManifest removes the record and every claim key under its root
func (l *LevelDBManifestStore) DeleteManifest(merkleRoot string) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return persistence.ErrClosed
	}

	batch := new(leveldb.Batch)
	batch.Delete(manifestKey(merkleRoot))

	iter := l.db.NewIterator(util.BytesPrefix(claimPrefix(merkleRoot)), nil)
	for iter.Next() {
		batch.Delete(append([]byte{}, iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return fmt.Errorf("failed to scan claims for %s: %w", merkleRoot, err)
	}

	return l.db.Write(batch, &opt.WriteOptions{Sync: true})
}

// Close closes the database
func (l *LevelDBManifestStore) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	if err := l.db.Close(); err != nil {
		return fmt.Errorf("failed to close leveldb database: %w", err)
	}

	l.logger.Sugar().Info("LevelDB manifest store closed")
	return nil
}

// HealthCheck reads the schema key
func (l *LevelDBManifestStore) HealthCheck() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return persistence.ErrClosed
	}

	_, err := l.db.Get([]byte(keySchemaVersion), nil)
	if err == leveldb.ErrNotFound {
		return fmt.Errorf("schema version not found - database may be corrupted")
	}
	return err
}
