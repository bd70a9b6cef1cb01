package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManifest() *Manifest {
	claims := NewClaims(3)
	claims.Set("zed", Claim{Index: 2, Amount: "3", Proof: []string{"aa"}})
	claims.Set("alice", Claim{Index: 0, Amount: "1", Proof: []string{"bb", "cc"}, Flags: map[string]bool{"isLP": true}})
	claims.Set("mike", Claim{Index: 1, Amount: "2", Proof: []string{}})
	return &Manifest{MerkleRoot: "ff", TokenTotal: "6", Claims: claims}
}

func TestClaimsPreserveInsertionOrder(t *testing.T) {
	m := testManifest()
	require.Equal(t, []string{"zed", "alice", "mike"}, m.Claims.Addresses())
	require.Equal(t, 3, m.Claims.Len())

	// Overwriting keeps the original position
	m.Claims.Set("zed", Claim{Index: 9, Amount: "9"})
	require.Equal(t, []string{"zed", "alice", "mike"}, m.Claims.Addresses())
	claim, ok := m.Claim("zed")
	require.True(t, ok)
	assert.Equal(t, uint64(9), claim.Index)

	_, ok = m.Claim("nobody")
	assert.False(t, ok)
}

func TestClaimsMarshalJSONOrder(t *testing.T) {
	data, err := json.Marshal(testManifest())
	require.NoError(t, err)

	expected := `{"merkleRoot":"ff","tokenTotal":"6","claims":{` +
		`"zed":{"index":2,"amount":"3","proof":["aa"]},` +
		`"alice":{"index":0,"amount":"1","proof":["bb","cc"],"flags":{"isLP":true}},` +
		`"mike":{"index":1,"amount":"2","proof":[]}}}`
	require.Equal(t, expected, string(data))
}

func TestClaimMarshalJSONFlags(t *testing.T) {
	withNil, err := json.Marshal(Claim{Index: 0, Amount: "1", Proof: []string{}})
	require.NoError(t, err)
	assert.Equal(t, `{"index":0,"amount":"1","proof":[]}`, string(withNil))

	withEmpty, err := json.Marshal(Claim{Index: 0, Amount: "1", Proof: []string{}, Flags: map[string]bool{}})
	require.NoError(t, err)
	assert.Equal(t, `{"index":0,"amount":"1","proof":[],"flags":{}}`, string(withEmpty))

	var decoded Claim
	require.NoError(t, json.Unmarshal(withEmpty, &decoded))
	assert.NotNil(t, decoded.Flags)
	assert.Empty(t, decoded.Flags)
}

func TestClaimsUnmarshalJSONOrder(t *testing.T) {
	original := testManifest()
	data, err := json.MarshalIndent(original, "", "  ")
	require.NoError(t, err)

	var decoded Manifest
	require.NoError(t, json.Unmarshal(data, &decoded))

	require.Equal(t, original.MerkleRoot, decoded.MerkleRoot)
	require.Equal(t, original.TokenTotal, decoded.TokenTotal)
	require.Equal(t, original.Claims.Addresses(), decoded.Claims.Addresses())

	alice, ok := decoded.Claim("alice")
	require.True(t, ok)
	assert.Equal(t, []string{"bb", "cc"}, alice.Proof)
	assert.True(t, alice.Flags["isLP"])

	mike, ok := decoded.Claim("mike")
	require.True(t, ok)
	assert.NotNil(t, mike.Proof)
	assert.Empty(t, mike.Proof)
}

func TestClaimsUnmarshalJSONErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"array", `[]`},
		{"duplicate key", `{"a":{"index":0,"amount":"1","proof":[]},"a":{"index":1,"amount":"1","proof":[]}}`},
		{"bad claim", `{"a":{"index":"zero"}}`},
		{"truncated", `{"a":{"index":0}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var c Claims
			require.Error(t, json.Unmarshal([]byte(tc.input), &c))
		})
	}
}

func TestClaimsZeroValue(t *testing.T) {
	var c Claims
	require.Equal(t, 0, c.Len())

	data, err := json.Marshal(c)
	require.NoError(t, err)
	require.Equal(t, "{}", string(data))

	c.Set("a", Claim{Amount: "1"})
	require.Equal(t, []string{"a"}, c.Addresses())

	var fromNull Claims
	require.NoError(t, json.Unmarshal([]byte("null"), &fromNull))
	require.Equal(t, 0, fromNull.Len())
}

func TestClaimsRange(t *testing.T) {
	m := testManifest()

	var visited []string
	m.Claims.Range(func(address string, claim Claim) bool {
		visited = append(visited, address)
		return address != "alice"
	})
	require.Equal(t, []string{"zed", "alice"}, visited)
}
