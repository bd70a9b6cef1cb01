package merkle

import (
	"encoding/binary"

	"github.com/holiman/uint256"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/hashing"
)

const (
	// IndexWidth is the little-endian byte width of the index field of a leaf.
	IndexWidth = 8
	// AmountWidth is the little-endian byte width of the amount field of a leaf.
	AmountWidth = 16
	// MaxAmountBits is the widest amount a leaf can carry.
	MaxAmountBits = AmountWidth * 8
)

// EncodeLeaf returns the leaf preimage:
//
//	index (8 bytes LE) || account (raw UTF-8) || amount (16 bytes LE)
//
// There are no separators or length prefixes. Verifiers recompute the same
// bytes, so the layout must not change even though the variable-length
// account field is not delimited.
func EncodeLeaf(index uint64, account string, amount *uint256.Int) ([]byte, error) {
	if amount == nil {
		return nil, &EncodingError{Index: index, Account: account, Amount: "<nil>", Reason: "amount is nil"}
	}
	if amount.BitLen() > MaxAmountBits {
		return nil, &EncodingError{
			Index:   index,
			Account: account,
			Amount:  amount.Dec(),
			Reason:  "amount exceeds 128 bits",
		}
	}

	data := make([]byte, 0, IndexWidth+len(account)+AmountWidth)
	data = binary.LittleEndian.AppendUint64(data, index)
	data = append(data, account...)

	// Bytes32 is big-endian; the low 16 bytes are written in reverse.
	be := amount.Bytes32()
	for i := 0; i < AmountWidth; i++ {
		data = append(data, be[len(be)-1-i])
	}
	return data, nil
}

// HashLeaf hashes the encoded leaf with the given strategy.
func HashLeaf(hasher hashing.Hasher, index uint64, account string, amount *uint256.Int) (hashing.Hash, error) {
	data, err := EncodeLeaf(index, account, amount)
	if err != nil {
		return hashing.Hash{}, err
	}
	return hasher.Hash(data), nil
}
