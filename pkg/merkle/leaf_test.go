package merkle

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/hashing"
)

func TestEncodeLeaf(t *testing.T) {
	data, err := EncodeLeaf(0, "alice", uint256.NewInt(100))
	require.NoError(t, err)
	require.Equal(t,
		"0000000000000000"+"616c696365"+"64000000000000000000000000000000",
		hex.EncodeToString(data),
	)

	t.Run("little endian index", func(t *testing.T) {
		data, err := EncodeLeaf(0x0102030405060708, "", uint256.NewInt(0))
		require.NoError(t, err)
		require.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, data[:IndexWidth])
		require.Len(t, data, IndexWidth+AmountWidth)
	})

	t.Run("little endian amount", func(t *testing.T) {
		amount := uint256.NewInt(0x0102)
		data, err := EncodeLeaf(1, "x", amount)
		require.NoError(t, err)
		require.Equal(t, byte('x'), data[IndexWidth])
		tail := data[IndexWidth+1:]
		require.Len(t, tail, AmountWidth)
		require.Equal(t, byte(0x02), tail[0])
		require.Equal(t, byte(0x01), tail[1])
	})

	t.Run("utf8 account bytes", func(t *testing.T) {
		data, err := EncodeLeaf(2, "ünï.near", uint256.NewInt(1))
		require.NoError(t, err)
		require.Equal(t, []byte("ünï.near"), data[IndexWidth:len(data)-AmountWidth])
	})

	t.Run("max 128-bit amount", func(t *testing.T) {
		maxAmount := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))
		data, err := EncodeLeaf(3, "max", maxAmount)
		require.NoError(t, err)
		for _, b := range data[len(data)-AmountWidth:] {
			require.Equal(t, byte(0xFF), b)
		}
	})
}

func TestEncodeLeafRejectsWideAmounts(t *testing.T) {
	tooWide := new(uint256.Int).Lsh(uint256.NewInt(1), 128)

	_, err := EncodeLeaf(7, "whale", tooWide)
	require.Error(t, err)

	var encErr *EncodingError
	require.True(t, errors.As(err, &encErr))
	require.Equal(t, uint64(7), encErr.Index)
	require.Equal(t, "whale", encErr.Account)
	require.Equal(t, "340282366920938463463374607431768211456", encErr.Amount)
	require.Contains(t, err.Error(), "exceeds 128 bits")

	_, err = EncodeLeaf(0, "nil", nil)
	require.True(t, errors.As(err, &encErr))

	_, err = HashLeaf(hashing.NewSHA256(), 7, "whale", tooWide)
	require.True(t, errors.As(err, &encErr))
}

func TestHashLeaf(t *testing.T) {
	for _, hashType := range hashing.SupportedHashTypes() {
		t.Run(hashType.String(), func(t *testing.T) {
			hasher, err := hashing.NewHasher(hashType)
			require.NoError(t, err)

			leaf1, err := HashLeaf(hasher, 0, "alice", uint256.NewInt(100))
			require.NoError(t, err)
			leaf2, err := HashLeaf(hasher, 0, "alice", uint256.NewInt(100))
			require.NoError(t, err)
			require.Equal(t, leaf1, leaf2)

			data, err := EncodeLeaf(0, "alice", uint256.NewInt(100))
			require.NoError(t, err)
			require.Equal(t, hasher.Hash(data), leaf1)

			otherIndex, err := HashLeaf(hasher, 1, "alice", uint256.NewInt(100))
			require.NoError(t, err)
			require.NotEqual(t, leaf1, otherIndex)

			otherAmount, err := HashLeaf(hasher, 0, "alice", uint256.NewInt(101))
			require.NoError(t, err)
			require.NotEqual(t, leaf1, otherAmount)

			otherAccount, err := HashLeaf(hasher, 0, "alicf", uint256.NewInt(100))
			require.NoError(t, err)
			require.NotEqual(t, leaf1, otherAccount)
		})
	}
}
