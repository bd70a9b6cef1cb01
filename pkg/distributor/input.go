package distributor

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
)

// LoadBalanceRecords reads a balance document from path.
func LoadBalanceRecords(path string) ([]types.BalanceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read balance file %s", path)
	}
	records, err := DecodeBalanceRecords(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode balance file %s", path)
	}
	return records, nil
}

// DecodeBalanceRecords accepts either an array of
// {"address", "earnings", "reasons", "flags"} objects or an object mapping
// address to earnings. Earnings may be a JSON string or a JSON integer.
func DecodeBalanceRecords(data []byte) ([]types.BalanceRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &ParseError{Err: errors.New("empty balance document")}
	}

	switch trimmed[0] {
	case '[':
		var raw []struct {
			Address  string          `json:"address"`
			Earnings json.RawMessage `json:"earnings"`
			Reasons  string          `json:"reasons"`
			Flags    map[string]bool `json:"flags"`
		}
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, &ParseError{Err: err}
		}
		records := make([]types.BalanceRecord, len(raw))
		for i, r := range raw {
			earnings, err := earningsText(r.Address, r.Earnings)
			if err != nil {
				return nil, err
			}
			records[i] = types.BalanceRecord{
				Address:  r.Address,
				Earnings: earnings,
				Reasons:  r.Reasons,
				Flags:    r.Flags,
			}
		}
		return records, nil
	case '{':
		return decodeBalanceObject(trimmed)
	default:
		return nil, &ParseError{Err: errors.New("balance document must be a JSON array or object")}
	}
}

// decodeBalanceObject walks the object token by token so that records keep
// document order and repeated keys reach the duplicate check.
func decodeBalanceObject(data []byte) ([]types.BalanceRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, &ParseError{Err: err}
	}

	var records []types.BalanceRecord
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		address, ok := tok.(string)
		if !ok {
			return nil, &ParseError{Err: errors.Errorf("unexpected token %v", tok)}
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, &ParseError{Account: address, Err: err}
		}
		earnings, err := earningsText(address, value)
		if err != nil {
			return nil, err
		}
		records = append(records, types.BalanceRecord{Address: address, Earnings: earnings})
	}
	if _, err := dec.Token(); err != nil {
		return nil, &ParseError{Err: err}
	}
	return records, nil
}

func earningsText(account string, raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", &ParseError{Account: account, Err: errors.New("missing earnings")}
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", &ParseError{Account: account, Value: string(raw), Err: err}
		}
		return s, nil
	}
	// Numbers are kept as written so precision is never lost to float64.
	// Anything that is not an integer fails later in amount parsing.
	if raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9') {
		return string(raw), nil
	}
	return "", &ParseError{Account: account, Value: string(raw), Err: errors.New("earnings must be a string or integer")}
}

// EncodeManifest serializes a manifest. Indented output uses two spaces.
func EncodeManifest(manifest *types.Manifest, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(manifest, "", "  ")
	}
	return json.Marshal(manifest)
}

// WriteManifest writes the manifest to path with mode 0644.
func WriteManifest(path string, manifest *types.Manifest, pretty bool) error {
	data, err := EncodeManifest(manifest, pretty)
	if err != nil {
		return errors.Wrap(err, "failed to encode manifest")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write manifest %s", path)
	}
	return nil
}

// LoadManifest reads a manifest written by WriteManifest.
func LoadManifest(path string) (*types.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest %s", path)
	}
	var manifest types.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrapf(&ParseError{Value: path, Err: err}, "failed to decode manifest")
	}
	return &manifest, nil
}
