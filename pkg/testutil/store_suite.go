package testutil

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/distributor"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
)

// RunManifestStoreSuite runs the behaviour every IManifestStore backend
// shares. newStore must return a fresh, empty store.
func RunManifestStoreSuite(t *testing.T, newStore func(t *testing.T) persistence.IManifestStore) {
	t.Run("SaveAndLoad", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		record := CreateTestRecord(t, 5, hashing.HashTypeSHA256, 1000)
		require.NoError(t, store.SaveManifest(record))

		loaded, err := store.LoadManifest(record.MerkleRoot)
		require.NoError(t, err)
		require.NotNil(t, loaded)

		assert.Equal(t, record.ID, loaded.ID)
		assert.Equal(t, record.HashType, loaded.HashType)
		assert.Equal(t, record.CreatedAt, loaded.CreatedAt)
		assertSameManifestJSON(t, record, loaded)

		hasher, err := hashing.NewHasher(loaded.HashType)
		require.NoError(t, err)
		require.NoError(t, distributor.VerifyManifest(hasher, loaded.Manifest))
	})

	t.Run("LoadNotFound", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		loaded, err := store.LoadManifest("00")
		require.NoError(t, err)
		assert.Nil(t, loaded)

		claim, err := store.LoadClaim("00", "nobody")
		require.NoError(t, err)
		assert.Nil(t, claim)
	})

	t.Run("SaveNil", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		err := store.SaveManifest(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nil ManifestRecord")
	})

	t.Run("LoadClaim", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		record := CreateTestRecord(t, 7, hashing.HashTypeKeccak256, 1000)
		require.NoError(t, store.SaveManifest(record))

		for _, account := range record.Manifest.Claims.Addresses() {
			expected, _ := record.Manifest.Claim(account)

			claim, err := store.LoadClaim(record.MerkleRoot, account)
			require.NoError(t, err)
			require.NotNil(t, claim)
			assert.Equal(t, expected, *claim)

			valid, err := distributor.VerifyClaim(hashing.NewKeccak256(), record.MerkleRoot, account, *claim)
			require.NoError(t, err)
			assert.True(t, valid)
		}

		missing, err := store.LoadClaim(record.MerkleRoot, "nobody")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("ListOrdered", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		empty, err := store.ListManifests()
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)

		newest := CreateTestRecord(t, 3, hashing.HashTypeSHA256, 3000)
		oldest := CreateTestRecord(t, 4, hashing.HashTypeSHA256, 1000)
		middle := CreateTestRecord(t, 5, hashing.HashTypeBlake2b256, 2000)
		for _, r := range []*persistence.ManifestRecord{newest, oldest, middle} {
			require.NoError(t, store.SaveManifest(r))
		}

		records, err := store.ListManifests()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, oldest.MerkleRoot, records[0].MerkleRoot)
		assert.Equal(t, middle.MerkleRoot, records[1].MerkleRoot)
		assert.Equal(t, newest.MerkleRoot, records[2].MerkleRoot)
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		first := CreateTestRecord(t, 3, hashing.HashTypeSHA256, 1000)
		require.NoError(t, store.SaveManifest(first))

		second := CreateTestRecord(t, 3, hashing.HashTypeSHA256, 2000)
		require.Equal(t, first.MerkleRoot, second.MerkleRoot)
		require.NoError(t, store.SaveManifest(second))

		loaded, err := store.LoadManifest(first.MerkleRoot)
		require.NoError(t, err)
		assert.Equal(t, second.ID, loaded.ID)

		records, err := store.ListManifests()
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		keep := CreateTestRecord(t, 3, hashing.HashTypeSHA256, 1000)
		drop := CreateTestRecord(t, 4, hashing.HashTypeSHA256, 2000)
		require.NoError(t, store.SaveManifest(keep))
		require.NoError(t, store.SaveManifest(drop))

		require.NoError(t, store.DeleteManifest(drop.MerkleRoot))
		// Idempotent
		require.NoError(t, store.DeleteManifest(drop.MerkleRoot))

		loaded, err := store.LoadManifest(drop.MerkleRoot)
		require.NoError(t, err)
		assert.Nil(t, loaded)

		account := drop.Manifest.Claims.Addresses()[0]
		claim, err := store.LoadClaim(drop.MerkleRoot, account)
		require.NoError(t, err)
		assert.Nil(t, claim)

		kept, err := store.LoadManifest(keep.MerkleRoot)
		require.NoError(t, err)
		assert.NotNil(t, kept)
	})

	t.Run("ReturnedRecordsAreCopies", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		record := CreateTestRecord(t, 3, hashing.HashTypeSHA256, 1000)
		require.NoError(t, store.SaveManifest(record))
		record.Manifest.TokenTotal = "0"

		loaded, err := store.LoadManifest(record.MerkleRoot)
		require.NoError(t, err)
		assert.Equal(t, "6000", loaded.Manifest.TokenTotal)

		loaded.Manifest.TokenTotal = "1"
		again, err := store.LoadManifest(record.MerkleRoot)
		require.NoError(t, err)
		assert.Equal(t, "6000", again.Manifest.TokenTotal)
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		records := make([]*persistence.ManifestRecord, 8)
		for i := range records {
			records[i] = CreateTestRecord(t, i+1, hashing.HashTypeSHA256, int64(i))
		}

		var wg sync.WaitGroup
		errs := make(chan error, len(records)*2)
		for _, r := range records {
			wg.Add(1)
			go func(r *persistence.ManifestRecord) {
				defer wg.Done()
				if err := store.SaveManifest(r); err != nil {
					errs <- err
					return
				}
				loaded, err := store.LoadManifest(r.MerkleRoot)
				if err != nil {
					errs <- err
					return
				}
				if loaded == nil {
					errs <- fmt.Errorf("manifest %s not found after save", r.MerkleRoot)
				}
			}(r)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		listed, err := store.ListManifests()
		require.NoError(t, err)
		assert.Len(t, listed, len(records))
	})

	t.Run("Close", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.HealthCheck())

		require.NoError(t, store.Close())
		// Idempotent
		require.NoError(t, store.Close())

		record := CreateTestRecord(t, 2, hashing.HashTypeSHA256, 1000)
		require.ErrorIs(t, store.SaveManifest(record), persistence.ErrClosed)
		_, err := store.LoadManifest(record.MerkleRoot)
		require.ErrorIs(t, err, persistence.ErrClosed)
		_, err = store.LoadClaim(record.MerkleRoot, "a")
		require.ErrorIs(t, err, persistence.ErrClosed)
		_, err = store.ListManifests()
		require.ErrorIs(t, err, persistence.ErrClosed)
		require.ErrorIs(t, store.DeleteManifest(record.MerkleRoot), persistence.ErrClosed)
		require.ErrorIs(t, store.HealthCheck(), persistence.ErrClosed)
	})
}

func assertSameManifestJSON(t *testing.T, expected, actual *persistence.ManifestRecord) {
	t.Helper()
	a, err := json.Marshal(expected.Manifest)
	require.NoError(t, err)
	b, err := json.Marshal(actual.Manifest)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
