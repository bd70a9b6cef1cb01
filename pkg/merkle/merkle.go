package merkle

import (
	"fmt"
	"sort"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/hashing"
)

type treeOptions struct {
	sortLeaves bool
}

// TreeOption configures BuildMerkleTree.
type TreeOption func(*treeOptions)

// WithSortedLeaves sorts leaf hashes ascending before building, the way
// merkletreejs does with `sort: true`. Proofs are still requested by the
// index the leaf was supplied at.
func WithSortedLeaves() TreeOption {
	return func(o *treeOptions) {
		o.sortLeaves = true
	}
}

// BuildMerkleTree creates a binary merkle tree over leaves in the given order.
//
// Each level pairs adjacent hashes left to right and combines a pair as
// H(min || max). If a level has an odd number of nodes the last one is
// promoted to the next level unchanged, it is never duplicated.
func BuildMerkleTree(leaves []hashing.Hash, hasher hashing.Hasher, opts ...TreeOption) (*MerkleTree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}
	if hasher == nil {
		return nil, fmt.Errorf("hasher cannot be nil")
	}

	var o treeOptions
	for _, opt := range opts {
		opt(&o)
	}

	supplied := make([]hashing.Hash, len(leaves))
	copy(supplied, leaves)

	positions := make([]int, len(leaves))
	for i := range positions {
		positions[i] = i
	}

	base := make([]hashing.Hash, len(leaves))
	copy(base, leaves)
	if o.sortLeaves {
		// order[k] is the supplied index of the leaf placed at slot k
		order := make([]int, len(leaves))
		copy(order, positions)
		sort.SliceStable(order, func(i, j int) bool {
			return supplied[order[i]].Compare(supplied[order[j]]) < 0
		})
		for slot, idx := range order {
			base[slot] = supplied[idx]
			positions[idx] = slot
		}
	}

	levels := make([][]hashing.Hash, 0)
	levels = append(levels, base)

	currentLevel := base
	for len(currentLevel) > 1 {
		nextLevel := make([]hashing.Hash, 0, (len(currentLevel)+1)/2)

		for i := 0; i < len(currentLevel); i += 2 {
			if i+1 == len(currentLevel) {
				// Odd node out: promote unchanged
				nextLevel = append(nextLevel, currentLevel[i])
				continue
			}
			nextLevel = append(nextLevel, HashSortedPair(hasher, currentLevel[i], currentLevel[i+1]))
		}

		levels = append(levels, nextLevel)
		currentLevel = nextLevel
	}

	return &MerkleTree{
		Leaves:    supplied,
		Root:      currentLevel[0],
		hasher:    hasher,
		levels:    levels,
		positions: positions,
	}, nil
}

// GetRoot returns the merkle root.
func (mt *MerkleTree) GetRoot() hashing.Hash {
	return mt.Root
}

// LeafCount returns the number of leaves in the tree.
func (mt *MerkleTree) LeafCount() int {
	return len(mt.Leaves)
}

// Depth returns the number of levels above the leaves.
func (mt *MerkleTree) Depth() int {
	return len(mt.levels) - 1
}

// Hasher returns the strategy the tree was built with.
func (mt *MerkleTree) Hasher() hashing.Hasher {
	return mt.hasher
}

// GenerateProof creates a merkle proof for the leaf supplied at leafIndex.
func (mt *MerkleTree) GenerateProof(leafIndex int) (*MerkleProof, error) {
	if leafIndex < 0 || leafIndex >= len(mt.Leaves) {
		return nil, fmt.Errorf("leaf index %d out of bounds (tree has %d leaves)", leafIndex, len(mt.Leaves))
	}

	proof := make([]hashing.Hash, 0, mt.Depth())
	index := mt.positions[leafIndex]

	for level := 0; level < len(mt.levels)-1; level++ {
		currentLevel := mt.levels[level]

		siblingIndex := index ^ 1
		if siblingIndex < len(currentLevel) {
			proof = append(proof, currentLevel[siblingIndex])
		}

		index = index / 2
	}

	return &MerkleProof{
		LeafIndex: leafIndex,
		Leaf:      mt.Leaves[leafIndex],
		Proof:     proof,
	}, nil
}

// ProofForLeaf returns the proof for the first supplied leaf equal to leaf.
func (mt *MerkleTree) ProofForLeaf(leaf hashing.Hash) (*MerkleProof, error) {
	for i, l := range mt.Leaves {
		if l == leaf {
			return mt.GenerateProof(i)
		}
	}
	return nil, fmt.Errorf("leaf %s not found in tree", leaf.Hex())
}

// HashSortedPair computes H(min(a, b) || max(a, b)).
func HashSortedPair(hasher hashing.Hasher, a, b hashing.Hash) hashing.Hash {
	if a.Compare(b) <= 0 {
		return hasher.Hash(a[:], b[:])
	}
	return hasher.Hash(b[:], a[:])
}
