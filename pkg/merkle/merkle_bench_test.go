package merkle

import (
	"fmt"
	"testing"

	"github.com/holiman/uint256"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/hashing"
)

// BenchmarkMerkleTreeBuild benchmarks merkle tree construction with various sizes
func BenchmarkMerkleTreeBuild(b *testing.B) {
	sizes := []int{10, 100, 1000, 10000}
	hasher := hashing.NewSHA256()

	for _, size := range sizes {
		b.Run(fmt.Sprintf("Leaves_%d", size), func(b *testing.B) {
			leaves := createTestLeaves(size)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_, _ = BuildMerkleTree(leaves, hasher)
			}
		})
	}
}

// BenchmarkMerkleProofGeneration benchmarks proof generation
func BenchmarkMerkleProofGeneration(b *testing.B) {
	sizes := []int{10, 100, 1000, 10000}
	hasher := hashing.NewSHA256()

	for _, size := range sizes {
		tree, _ := BuildMerkleTree(createTestLeaves(size), hasher)

		b.Run(fmt.Sprintf("Leaves_%d", size), func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_, _ = tree.GenerateProof(i % size)
			}
		})
	}
}

// BenchmarkMerkleProofVerification benchmarks proof verification
func BenchmarkMerkleProofVerification(b *testing.B) {
	sizes := []int{10, 100, 1000, 10000}

	for _, hashType := range hashing.SupportedHashTypes() {
		hasher, _ := hashing.NewHasher(hashType)

		for _, size := range sizes {
			tree, _ := BuildMerkleTree(createTestLeaves(size), hasher)
			proof, _ := tree.GenerateProof(0)

			b.Run(fmt.Sprintf("%s/Leaves_%d", hashType, size), func(b *testing.B) {
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					_ = proof.Verify(hasher, tree.Root)
				}
			})
		}
	}
}

// BenchmarkHashLeaf benchmarks leaf encoding and hashing
func BenchmarkHashLeaf(b *testing.B) {
	hasher := hashing.NewSHA256()
	amount := uint256.NewInt(1_000_000_000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = HashLeaf(hasher, uint64(i), "account.near", amount)
	}
}
