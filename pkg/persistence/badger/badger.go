package badger

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
)

// Key prefixes for namespacing
const (
	keyPrefixManifest    = "manifest:"
	keyPrefixClaim       = "claim:"
	keySchemaVersion     = "metadata:schema_version"
	currentSchemaVersion = "v1"
)

// BadgerManifestStore is a persistent IManifestStore backed by Badger.
// Every claim is also written under its own key so LoadClaim does not
// decode the whole manifest.
type BadgerManifestStore struct {
	db       *badgerdb.DB
	logger   *zap.Logger
	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

// NewBadgerManifestStore opens (or creates) a Badger database at dataPath.
// SyncWrites is enabled and a background goroutine runs value log GC.
func NewBadgerManifestStore(dataPath string, logger *zap.Logger) (*BadgerManifestStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	absPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	opts := badgerdb.DefaultOptions(absPath)
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.SyncWrites = true
	opts.CompactL0OnClose = true
	opts.NumVersionsToKeep = 1

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", absPath, err)
	}

	bs := &BadgerManifestStore{
		db:     db,
		logger: logger,
	}

	if err := bs.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bs.gcCancel = cancel
	bs.gcWg.Add(1)
	go bs.runGC(ctx)

	logger.Sugar().Infow("Badger manifest store initialized", "path", absPath)

	return bs, nil
}

// initSchema initializes or validates the schema version
func (b *BadgerManifestStore) initSchema() error {
	return b.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keySchemaVersion))
		if err == badgerdb.ErrKeyNotFound {
			return txn.Set([]byte(keySchemaVersion), []byte(currentSchemaVersion))
		}
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

		var existingVersion string
		err = item.Value(func(val []byte) error {
			existingVersion = string(val)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to read schema version value: %w", err)
		}

		if existingVersion != currentSchemaVersion {
			return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
		}
		return nil
	})
}

func (b *BadgerManifestStore) runGC(ctx context.Context) {
	defer b.gcWg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := b.db.RunValueLogGC(0.5)
			if err != nil && err != badgerdb.ErrNoRewrite {
				b.logger.Sugar().Warnw("Badger GC error", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
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

// SaveManifest writes the record and one key per claim in a single batch.
func (b *BadgerManifestStore) SaveManifest(record *persistence.ManifestRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return persistence.ErrClosed
	}

	data, err := persistence.MarshalManifestRecord(record)
	if err != nil {
		return err
	}

	// WriteBatch splits large manifests across transactions
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	var claimErr error
	record.Manifest.Claims.Range(func(account string, claim types.Claim) bool {
		var value []byte
		value, claimErr = persistence.MarshalClaim(&claim)
		if claimErr != nil {
			return false
		}
		claimErr = wb.Set(claimKey(record.MerkleRoot, account), value)
		return claimErr == nil
	})
	if claimErr != nil {
		return fmt.Errorf("failed to write claims for %s: %w", record.MerkleRoot, claimErr)
	}

	// Manifest key last so a partially written batch is never listed
	if err := wb.Set(manifestKey(record.MerkleRoot), data); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", record.MerkleRoot, err)
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("failed to flush manifest %s: %w", record.MerkleRoot, err)
	}

	b.logger.Sugar().Debugw("Saved manifest",
		"merkleRoot", record.MerkleRoot,
		"claims", record.Manifest.Claims.Len(),
	)
	return nil
}

func (b *BadgerManifestStore) get(key []byte) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key)
		if err == badgerdb.ErrKeyNotFound {
			return nil // Not found is not an error
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...) // Copy value
			return nil
		})
	})
	return data, err
}

// LoadManifest retrieves a record by merkle root
func (b *BadgerManifestStore) LoadManifest(merkleRoot string) (*persistence.ManifestRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, persistence.ErrClosed
	}

	data, err := b.get(manifestKey(merkleRoot))
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest %s: %w", merkleRoot, err)
	}
	if data == nil {
		return nil, nil
	}

	return persistence.UnmarshalManifestRecord(data)
}

// LoadClaim reads a single claim key
func (b *BadgerManifestStore) LoadClaim(merkleRoot, account string) (*types.Claim, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, persistence.ErrClosed
	}

	data, err := b.get(claimKey(merkleRoot, account))
	if err != nil {
		return nil, fmt.Errorf("failed to load claim %s for %s: %w", account, merkleRoot, err)
	}
	if data == nil {
		return nil, nil
	}

	return persistence.UnmarshalClaim(data)
}

// ListManifests returns all records ordered by creation time
func (b *BadgerManifestStore) ListManifests() ([]*persistence.ManifestRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, persistence.ErrClosed
	}

	records := make([]*persistence.ManifestRecord, 0)

	err := b.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefixManifest)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			var data []byte
			err := item.Value(func(val []byte) error {
				data = append([]byte{}, val...)
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to read value: %w", err)
			}

			record, err := persistence.UnmarshalManifestRecord(data)
			if err != nil {
				b.logger.Sugar().Warnw("Failed to unmarshal ManifestRecord, skipping",
					"key", string(item.Key()), "error", err)
				continue
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list manifests: %w", err)
	}

	persistence.SortRecords(records)
	return records, nil
}

// DeleteManifest removes the record and every claim key under its root
func (b *BadgerManifestStore) DeleteManifest(merkleRoot string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return persistence.ErrClosed
	}

	var keys [][]byte
	err := b.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = claimPrefix(merkleRoot)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan claims for %s: %w", merkleRoot, err)
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	if err := wb.Delete(manifestKey(merkleRoot)); err != nil {
		return err
	}
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// Close stops GC and closes the database
func (b *BadgerManifestStore) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if b.gcCancel != nil {
		b.gcCancel()
	}
	b.gcWg.Wait()

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger database: %w", err)
	}

	b.logger.Sugar().Info("Badger manifest store closed")
	return nil
}

// HealthCheck reads the schema key
func (b *BadgerManifestStore) HealthCheck() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return persistence.ErrClosed
	}

	return b.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte(keySchemaVersion))
		if err == badgerdb.ErrKeyNotFound {
			return fmt.Errorf("schema version not found - database may be corrupted")
		}
		return err
	})
}
