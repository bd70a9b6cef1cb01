package merkle

import "github.com/Layr-Labs/merkle-distributor-go/pkg/hashing"

// MerkleTree is a binary merkle tree whose internal nodes hash their children
// in ascending byte order. An unpaired node at the end of a level is promoted
// to the next level unchanged.
type MerkleTree struct {
	// Leaves contains the leaf hashes in the order they were supplied
	Leaves []hashing.Hash

	// Root is the merkle root hash
	Root hashing.Hash

	hasher hashing.Hasher

	// levels[0] holds the leaves as placed in the tree, levels[len-1] the root
	levels [][]hashing.Hash

	// positions maps a supplied leaf index to its slot in levels[0]
	positions []int
}

// MerkleProof is the sibling path for one leaf. Siblings carry no left/right
// marker; verification re-sorts every pair.
type MerkleProof struct {
	// LeafIndex is the index of the leaf as supplied to BuildMerkleTree
	LeafIndex int

	// Leaf is the hash of the leaf being proven
	Leaf hashing.Hash

	// Proof contains the sibling hashes from the leaf level up to the root.
	// Levels where the node was promoted contribute nothing.
	Proof []hashing.Hash
}

// HexProof returns the proof hashes hex-encoded without a 0x prefix.
func (p *MerkleProof) HexProof() []string {
	out := make([]string, len(p.Proof))
	for i, h := range p.Proof {
		out[i] = h.Hex()
	}
	return out
}
