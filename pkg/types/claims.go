package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Claims maps addresses to claims and remembers insertion order, which for a
// manifest is the canonical ascending address order. JSON encoding keeps that
// order.
type Claims struct {
	order     []string
	byAddress map[string]Claim
}

// NewClaims returns an empty Claims with room for n entries.
func NewClaims(n int) Claims {
	return Claims{
		order:     make([]string, 0, n),
		byAddress: make(map[string]Claim, n),
	}
}

// Set stores claim under address. A new address is appended to the order;
// an existing one keeps its position.
func (c *Claims) Set(address string, claim Claim) {
	if c.byAddress == nil {
		c.byAddress = make(map[string]Claim)
	}
	if _, exists := c.byAddress[address]; !exists {
		c.order = append(c.order, address)
	}
	c.byAddress[address] = claim
}

// Get returns the claim for address.
func (c Claims) Get(address string) (Claim, bool) {
	claim, ok := c.byAddress[address]
	return claim, ok
}

// Len returns the number of claims.
func (c Claims) Len() int {
	return len(c.order)
}

// Addresses returns the addresses in order.
func (c Claims) Addresses() []string {
	return append([]string{}, c.order...)
}

// Range calls fn for every claim in order until fn returns false.
func (c Claims) Range(fn func(address string, claim Claim) bool) {
	for _, address := range c.order {
		if !fn(address, c.byAddress[address]) {
			return
		}
	}
}

// MarshalJSON encodes the claims as a JSON object in insertion order.
func (c Claims) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, address := range c.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(address)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(c.byAddress[address])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal claim for %s: %w", address, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the order keys appear in.
// Duplicate keys are rejected.
func (c *Claims) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = Claims{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("claims must be a JSON object")
	}

	out := NewClaims(0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		address, ok := tok.(string)
		if !ok {
			return fmt.Errorf("claims key must be a string, got %v", tok)
		}
		if _, dup := out.byAddress[address]; dup {
			return fmt.Errorf("duplicate claim for address %s", address)
		}

		var claim Claim
		if err := dec.Decode(&claim); err != nil {
			return fmt.Errorf("failed to decode claim for %s: %w", address, err)
		}
		out.Set(address, claim)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}
