package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/distributor"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/logger"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
)

// TestLogger returns a production logger for tests that exercise logging paths.
func TestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	require.NoError(t, err)
	return l
}

// CreateBalanceRecords creates n records with distinct addresses and
// amounts (i+1)*1000, returned in reverse address order.
func CreateBalanceRecords(n int) []types.BalanceRecord {
	records := make([]types.BalanceRecord, n)
	for i := range records {
		records[n-1-i] = types.BalanceRecord{
			Address:  fmt.Sprintf("user-%04d.near", i),
			Earnings: fmt.Sprintf("%d", (i+1)*1000),
		}
	}
	return records
}

// CreateTestManifest parses n generated records with hasher.
func CreateTestManifest(t *testing.T, n int, hasher hashing.Hasher) *types.Manifest {
	t.Helper()
	manifest, err := distributor.NewParser(hasher, nil).Parse(CreateBalanceRecords(n))
	require.NoError(t, err)
	return manifest
}

// CreateTestRecord wraps a generated manifest in a ManifestRecord with a
// fixed CreatedAt so ordering is deterministic.
func CreateTestRecord(t *testing.T, n int, hashType hashing.HashType, createdAt int64) *persistence.ManifestRecord {
	t.Helper()
	hasher, err := hashing.NewHasher(hashType)
	require.NoError(t, err)

	record, err := persistence.NewManifestRecord(CreateTestManifest(t, n, hasher), hashType)
	require.NoError(t, err)
	record.CreatedAt = createdAt
	return record
}
