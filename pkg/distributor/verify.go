package distributor

import (
	"fmt"
	"math/big"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
)

// VerifyClaim recomputes the leaf for account from the claim and checks its
// proof against merkleRoot. A false result with a nil error means the claim
// is well formed but not part of the tree. Malformed hex or amounts produce
// an error.
func VerifyClaim(hasher hashing.Hasher, merkleRoot string, account string, claim types.Claim) (bool, error) {
	if hasher == nil {
		return false, fmt.Errorf("hasher cannot be nil")
	}

	root, err := hashing.HashFromHex(merkleRoot)
	if err != nil {
		return false, &ParseError{Value: merkleRoot, Err: err}
	}

	amount, err := parseAmount(account, claim.Amount)
	if err != nil {
		return false, err
	}

	proof := make([]hashing.Hash, len(claim.Proof))
	for i, s := range claim.Proof {
		h, err := hashing.HashFromHex(s)
		if err != nil {
			return false, &ParseError{Account: account, Value: s, Err: err}
		}
		proof[i] = h
	}

	leaf, err := merkle.HashLeaf(hasher, claim.Index, account, amount)
	if err != nil {
		return false, err
	}
	return merkle.VerifyProof(hasher, leaf, proof, root), nil
}

// VerifyManifest checks a whole manifest: every proof verifies, indices are
// 0..n-1 in ascending address order, and tokenTotal is the exact sum of the
// claim amounts.
func VerifyManifest(hasher hashing.Hasher, manifest *types.Manifest) error {
	if manifest == nil {
		return fmt.Errorf("manifest cannot be nil")
	}
	if manifest.Claims.Len() == 0 {
		return merkle.ErrEmptyTree
	}

	declared, ok := new(big.Int).SetString(manifest.TokenTotal, 10)
	if !ok {
		return &ParseError{Value: manifest.TokenTotal, Err: errInvalidDecimal}
	}

	total := new(big.Int)
	var (
		position uint64
		previous string
		err      error
	)
	manifest.Claims.Range(func(account string, claim types.Claim) bool {
		if position > 0 && account <= previous {
			err = &ValidationError{Account: account, Reason: "claims are not in ascending address order"}
			return false
		}
		if claim.Index != position {
			err = &ValidationError{
				Account: account,
				Reason:  fmt.Sprintf("index %d does not match canonical position %d", claim.Index, position),
			}
			return false
		}

		var valid bool
		valid, err = VerifyClaim(hasher, manifest.MerkleRoot, account, claim)
		if err != nil {
			return false
		}
		if !valid {
			err = &ValidationError{Account: account, Reason: "proof does not verify against merkle root"}
			return false
		}

		amount, _ := new(big.Int).SetString(claim.Amount, 10)
		total.Add(total, amount)
		previous = account
		position++
		return true
	})
	if err != nil {
		return err
	}

	if total.Cmp(declared) != 0 {
		return &ValidationError{
			Reason: fmt.Sprintf("tokenTotal %s does not equal sum of claims %s", declared, total),
		}
	}
	return nil
}
