package merkle

import "github.com/Layr-Labs/merkle-distributor-go/pkg/hashing"

// VerifyProof folds proof into leaf, hashing every step as a sorted pair, and
// reports whether the result equals root. It holds no state and is safe for
// concurrent use.
func VerifyProof(hasher hashing.Hasher, leaf hashing.Hash, proof []hashing.Hash, root hashing.Hash) bool {
	if hasher == nil {
		return false
	}

	current := leaf
	for _, sibling := range proof {
		current = HashSortedPair(hasher, current, sibling)
	}
	return current == root
}

// Verify checks the proof against root.
func (p *MerkleProof) Verify(hasher hashing.Hasher, root hashing.Hash) bool {
	if p == nil {
		return false
	}
	return VerifyProof(hasher, p.Leaf, p.Proof, root)
}
