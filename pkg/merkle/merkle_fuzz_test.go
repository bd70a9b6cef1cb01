package merkle

import (
	"encoding/binary"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/hashing"
)

func FuzzEncodeLeafLayout(f *testing.F) {
	f.Add(uint64(0), "alice", uint64(100), uint64(0))
	f.Add(uint64(1<<63), "", uint64(0), uint64(1<<63))
	f.Add(uint64(42), "こんにちは.near", ^uint64(0), ^uint64(0))

	f.Fuzz(func(t *testing.T, index uint64, account string, lo, hi uint64) {
		amount := new(uint256.Int).Lsh(uint256.NewInt(hi), 64)
		amount.Or(amount, uint256.NewInt(lo))

		data, err := EncodeLeaf(index, account, amount)
		require.NoError(t, err)
		require.Len(t, data, IndexWidth+len(account)+AmountWidth)

		require.Equal(t, index, binary.LittleEndian.Uint64(data[:IndexWidth]))
		require.Equal(t, account, string(data[IndexWidth:IndexWidth+len(account)]))
		tail := data[IndexWidth+len(account):]
		require.Equal(t, lo, binary.LittleEndian.Uint64(tail[:8]))
		require.Equal(t, hi, binary.LittleEndian.Uint64(tail[8:]))
	})
}

func FuzzProofsVerify(f *testing.F) {
	f.Add(uint8(1), uint8(0))
	f.Add(uint8(5), uint8(4))
	f.Add(uint8(33), uint8(17))

	hasher := hashing.NewSHA256()

	f.Fuzz(func(t *testing.T, n uint8, pick uint8) {
		if n == 0 {
			return
		}
		leaves := make([]hashing.Hash, n)
		for i := range leaves {
			leaves[i] = hasher.Hash([]byte{byte(i), n})
		}

		tree, err := BuildMerkleTree(leaves, hasher)
		require.NoError(t, err)

		proof, err := tree.GenerateProof(int(pick) % int(n))
		require.NoError(t, err)
		require.True(t, proof.Verify(hasher, tree.GetRoot()))
	})
}
