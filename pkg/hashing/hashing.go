package hashing

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/wealdtech/go-merkletree/v2/sha3"
	"golang.org/x/crypto/blake2b"
)

// HashLength is the output size in bytes of every supported strategy.
const HashLength = 32

// Hash is a fixed-size digest used for leaves, internal nodes and roots.
type Hash [HashLength]byte

// Hex returns the lowercase hex encoding of the hash without a 0x prefix.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	return append([]byte{}, h[:]...)
}

func (h Hash) String() string {
	return h.Hex()
}

// Compare orders two hashes byte-wise, like bytes.Compare.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

// HashFromHex decodes a 32-byte hex string. A leading 0x is accepted.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(trimmed) != HashLength*2 {
		return h, fmt.Errorf("hash must be %d hex chars, got %d", HashLength*2, len(trimmed))
	}
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return h, fmt.Errorf("invalid hex hash %q: %w", s, err)
	}
	copy(h[:], b)
	return h, nil
}

// HashType names a hash strategy.
type HashType string

func (t HashType) String() string {
	return string(t)
}

const (
	HashTypeSHA256     HashType = "sha256"
	HashTypeKeccak256  HashType = "keccak256"
	HashTypeSHA3_256   HashType = "sha3-256"
	HashTypeBlake2b256 HashType = "blake2b-256"
)

// DefaultHashType is the strategy existing off-chain manifests were generated with.
const DefaultHashType = HashTypeSHA256

// Hasher is a hash strategy. Hash digests the concatenation of its arguments.
// A single Hasher must be used for both leaves and internal nodes of a tree.
type Hasher interface {
	Hash(data ...[]byte) Hash
	Type() HashType
}

// NewHasher returns the strategy registered under hashType.
func NewHasher(hashType HashType) (Hasher, error) {
	switch HashType(strings.ToLower(string(hashType))) {
	case HashTypeSHA256:
		return NewSHA256(), nil
	case HashTypeKeccak256:
		return NewKeccak256(), nil
	case HashTypeSHA3_256:
		return NewSHA3_256(), nil
	case HashTypeBlake2b256:
		return NewBlake2b256(), nil
	default:
		return nil, fmt.Errorf("unsupported hash type: %s", hashType)
	}
}

// SupportedHashTypes returns every registered strategy name.
func SupportedHashTypes() []HashType {
	return []HashType{
		HashTypeSHA256,
		HashTypeKeccak256,
		HashTypeSHA3_256,
		HashTypeBlake2b256,
	}
}

// GetSupportedHashTypesString returns the supported names for CLI help.
func GetSupportedHashTypesString() string {
	names := make([]string, 0, len(SupportedHashTypes()))
	for _, t := range SupportedHashTypes() {
		names = append(names, t.String())
	}
	return strings.Join(names, ", ")
}

// SHA256 is the default strategy.
type SHA256 struct{}

func NewSHA256() *SHA256 { return &SHA256{} }

func (s *SHA256) Hash(data ...[]byte) Hash {
	h := sha256.New()
	for _, d := range data {
		h.Write(d)
	}
	var out Hash
	h.Sum(out[:0])
	return out
}

func (s *SHA256) Type() HashType { return HashTypeSHA256 }

// Keccak256 is the legacy Keccak used by the EVM and by near_sdk::env::keccak256.
type Keccak256 struct{}

func NewKeccak256() *Keccak256 { return &Keccak256{} }

func (k *Keccak256) Hash(data ...[]byte) Hash {
	return Hash(crypto.Keccak256Hash(data...))
}

func (k *Keccak256) Type() HashType { return HashTypeKeccak256 }

// SHA3_256 is FIPS-202 SHA3-256.
type SHA3_256 struct {
	inner *sha3.SHA256
}

func NewSHA3_256() *SHA3_256 {
	return &SHA3_256{inner: sha3.New256()}
}

func (s *SHA3_256) Hash(data ...[]byte) Hash {
	var out Hash
	copy(out[:], s.inner.Hash(data...))
	return out
}

func (s *SHA3_256) Type() HashType { return HashTypeSHA3_256 }

// Blake2b256 is unkeyed BLAKE2b with a 256-bit digest.
type Blake2b256 struct{}

func NewBlake2b256() *Blake2b256 { return &Blake2b256{} }

func (b *Blake2b256) Hash(data ...[]byte) Hash {
	return Hash(blake2b.Sum256(bytes.Join(data, nil)))
}

func (b *Blake2b256) Type() HashType { return HashTypeBlake2b256 }
