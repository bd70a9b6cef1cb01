package types

import (
	"encoding/json"

	"github.com/holiman/uint256"
)

// BalanceRecord is one raw input row: an account and what it earned.
// Records are unordered and unvalidated.
type BalanceRecord struct {
	Address  string          `json:"address"`
	Earnings string          `json:"earnings"` // decimal string
	Reasons  string          `json:"reasons"`
	Flags    map[string]bool `json:"flags,omitempty"`
}

// AccountEntry is a validated account with its canonical index.
type AccountEntry struct {
	Account string
	Amount  *uint256.Int
	Index   uint64 // rank of Account in ascending byte-wise address order
	Flags   map[string]bool
}

// Claim is what one account presents to a verifier to withdraw its amount.
type Claim struct {
	Index  uint64          `json:"index"`
	Amount string          `json:"amount"` // decimal string
	Proof  []string        `json:"proof"`  // hex, no 0x prefix, leaf level first
	Flags  map[string]bool `json:"flags,omitempty"` // nil is omitted, empty encodes as {}
}

// MarshalJSON omits flags only when the map is nil.
func (c Claim) MarshalJSON() ([]byte, error) {
	type claimJSON struct {
		Index  uint64           `json:"index"`
		Amount string           `json:"amount"`
		Proof  []string         `json:"proof"`
		Flags  *map[string]bool `json:"flags,omitempty"`
	}
	out := claimJSON{Index: c.Index, Amount: c.Amount, Proof: c.Proof}
	if c.Flags != nil {
		out.Flags = &c.Flags
	}
	return json.Marshal(out)
}

// Manifest is the published distributor artifact. It is not modified after
// it has been produced.
type Manifest struct {
	MerkleRoot string `json:"merkleRoot"` // hex, no 0x prefix
	TokenTotal string `json:"tokenTotal"` // decimal string
	Claims     Claims `json:"claims"`
}

// Claim returns the claim for address.
func (m *Manifest) Claim(address string) (Claim, bool) {
	return m.Claims.Get(address)
}
