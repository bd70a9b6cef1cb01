package leveldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/testutil"
)

var _ persistence.IManifestStore = (*LevelDBManifestStore)(nil)

func TestLevelDBManifestStore(t *testing.T) {
	testLogger := testutil.TestLogger(t)
	testutil.RunManifestStoreSuite(t, func(t *testing.T) persistence.IManifestStore {
		ls, err := NewLevelDBManifestStore(t.TempDir(), testLogger)
		require.NoError(t, err)
		return ls
	})
}

func TestLevelDBManifestStore_AcrossRestarts(t *testing.T) {
	tmpDir := t.TempDir()
	record := testutil.CreateTestRecord(t, 12, hashing.HashTypeBlake2b256, 99)

	ls, err := NewLevelDBManifestStore(tmpDir, nil)
	require.NoError(t, err)
	require.NoError(t, ls.SaveManifest(record))
	require.NoError(t, ls.Close())

	reopened, err := NewLevelDBManifestStore(tmpDir, nil)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	records, err := reopened.ListManifests()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.ID, records[0].ID)
	assert.Equal(t, hashing.HashTypeBlake2b256, records[0].HashType)
}

// Claim keys sort in canonical address order under their root.
func TestLevelDBManifestStore_ClaimKeysAreOrdered(t *testing.T) {
	ls, err := NewLevelDBManifestStore(t.TempDir(), nil)
	require.NoError(t, err)
	defer func() { _ = ls.Close() }()

	record := testutil.CreateTestRecord(t, 15, hashing.HashTypeSHA256, 1)
	require.NoError(t, ls.SaveManifest(record))

	prefix := claimPrefix(record.MerkleRoot)
	iter := ls.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	var accounts []string
	for iter.Next() {
		accounts = append(accounts, string(iter.Key()[len(prefix):]))
	}
	require.NoError(t, iter.Error())
	assert.Equal(t, record.Manifest.Claims.Addresses(), accounts)
}
