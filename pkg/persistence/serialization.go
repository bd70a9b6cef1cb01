package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
)

// MarshalManifestRecord serializes a ManifestRecord to JSON bytes.
// Claims keep their canonical order through the ordered Claims encoder.
func MarshalManifestRecord(record *ManifestRecord) ([]byte, error) {
	if record == nil {
		return nil, fmt.Errorf("cannot marshal nil ManifestRecord")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ManifestRecord to JSON: %w", err)
	}

	return data, nil
}

// UnmarshalManifestRecord deserializes a ManifestRecord from JSON bytes.
func UnmarshalManifestRecord(data []byte) (*ManifestRecord, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var record ManifestRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to ManifestRecord: %w", err)
	}

	return &record, nil
}

// MarshalClaim serializes a single Claim to JSON bytes.
func MarshalClaim(claim *types.Claim) ([]byte, error) {
	if claim == nil {
		return nil, fmt.Errorf("cannot marshal nil Claim")
	}

	return json.Marshal(claim)
}

// UnmarshalClaim deserializes a Claim from JSON bytes.
func UnmarshalClaim(data []byte) (*types.Claim, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var claim types.Claim
	if err := json.Unmarshal(data, &claim); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to Claim: %w", err)
	}

	return &claim, nil
}

// CopyManifestRecord returns a deep copy by round-tripping through JSON.
func CopyManifestRecord(record *ManifestRecord) (*ManifestRecord, error) {
	data, err := MarshalManifestRecord(record)
	if err != nil {
		return nil, err
	}
	return UnmarshalManifestRecord(data)
}

// ClaimKey is the key suffix used by the ordered backends for one claim.
// Byte-wise key order under a root equals canonical address order.
func ClaimKey(merkleRoot, account string) string {
	return merkleRoot + ":" + account
}
