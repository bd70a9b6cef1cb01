package distributor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Decoding must never panic, and whatever decodes must either parse into a
// manifest that verifies or fail with an error.
func FuzzDecodeAndParse(f *testing.F) {
	f.Add(`{"alice": "100", "bob": "200"}`)
	f.Add(`[{"address": "a", "earnings": 5, "reasons": "x"}]`)
	f.Add(`{"a": "-1"}`)
	f.Add(`[`)

	f.Fuzz(func(t *testing.T, doc string) {
		if len(doc) > 4096 {
			doc = doc[:4096]
		}

		records, err := DecodeBalanceRecords([]byte(doc))
		if err != nil {
			return
		}

		parser := NewParser(nil, nil)
		manifest, err := parser.Parse(records)
		if err != nil {
			require.Nil(t, manifest)
			return
		}
		require.NoError(t, VerifyManifest(parser.Hasher(), manifest))
	})
}
