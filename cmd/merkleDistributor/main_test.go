package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
)

const aliceBobRoot = "b26e153261cfc57fadd7241b1fb5d99567318748d66cf8420c41521a483d9a40"

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"merkle-distributor"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "balances.json", `[
		{"address": "bob", "earnings": "200", "reasons": ""},
		{"address": "alice", "earnings": "100", "reasons": ""}
	]`)
	output := filepath.Join(dir, "manifest.json")

	stdout, err := runApp(t, "generate", "-i", input, "-o", output)
	require.NoError(t, err)

	var manifest types.Manifest
	require.NoError(t, json.Unmarshal([]byte(stdout), &manifest))
	assert.Equal(t, aliceBobRoot, manifest.MerkleRoot)
	assert.Equal(t, "300", manifest.TokenTotal)
	assert.Equal(t, []string{"alice", "bob"}, manifest.Claims.Addresses())

	written, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(written), "\n  \"merkleRoot\": \""+aliceBobRoot+"\"")

	stdout, err = runApp(t, "verify", "-m", output)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"valid":true`)

	stdout, err = runApp(t, "verify", "-m", output, "--account", "bob")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"account":"bob"`)

	// Wrong strategy must not verify
	_, err = runApp(t, "--hash", "keccak256", "verify", "-m", output)
	require.Error(t, err)
}

func TestGenerateCommandRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		name     string
		contents string
		errPart  string
	}{
		{"duplicate", `[{"address":"a","earnings":"1"},{"address":"a","earnings":"2"}]`, "duplicate"},
		{"zero", `{"a":"0"}`, "positive"},
		{"malformed", `{"a":"1.5"}`, "parse error"},
		{"empty", `[]`, "empty"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := writeFile(t, dir, tc.name+".json", tc.contents)
			_, err := runApp(t, "generate", "-i", input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errPart)
		})
	}
}

func TestStoreCommands(t *testing.T) {
	for _, storeType := range []string{"badger", "leveldb"} {
		t.Run(storeType, func(t *testing.T) {
			dir := t.TempDir()
			storePath := filepath.Join(dir, "store")
			input := writeFile(t, dir, "balances.json", `{"alice": "100", "bob": "200"}`)
			storeFlags := []string{"--store-type", storeType, "--store-path", storePath}

			_, err := runApp(t, append(storeFlags, "generate", "-i", input)...)
			require.NoError(t, err)

			stdout, err := runApp(t, append(storeFlags, "proof", "--root", "0x"+aliceBobRoot, "--account", "alice")...)
			require.NoError(t, err)

			var proof proofResult
			require.NoError(t, json.Unmarshal([]byte(stdout), &proof))
			assert.Equal(t, "alice", proof.Account)
			assert.Equal(t, aliceBobRoot, proof.MerkleRoot)
			require.NotNil(t, proof.Claim)
			assert.Equal(t, uint64(0), proof.Claim.Index)
			assert.Equal(t, "100", proof.Claim.Amount)

			_, err = runApp(t, append(storeFlags, "proof", "--root", aliceBobRoot, "--account", "mallory")...)
			require.Error(t, err)

			stdout, err = runApp(t, append(storeFlags, "list")...)
			require.NoError(t, err)

			var summaries []manifestSummary
			require.NoError(t, json.Unmarshal([]byte(stdout), &summaries))
			require.Len(t, summaries, 1)
			assert.Equal(t, aliceBobRoot, summaries[0].MerkleRoot)
			assert.Equal(t, 2, summaries[0].Claims)
			assert.Equal(t, "sha256", summaries[0].HashType.String())
		})
	}
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "hashType: blake2b-256\nworkers: 4\nreasonFlags:\n  isLP: Liquidity provider\n")
	input := writeFile(t, dir, "balances.json", `[
		{"address": "alice", "earnings": "100", "reasons": "Liquidity provider"},
		{"address": "bob", "earnings": "200", "reasons": "staker"}
	]`)

	stdout, err := runApp(t, "--config", cfgPath, "generate", "-i", input)
	require.NoError(t, err)
	var fromFile types.Manifest
	require.NoError(t, json.Unmarshal([]byte(stdout), &fromFile))
	assert.NotEqual(t, aliceBobRoot, fromFile.MerkleRoot)

	alice, _ := fromFile.Claim("alice")
	assert.Equal(t, map[string]bool{"isLP": true}, alice.Flags)
	bob, _ := fromFile.Claim("bob")
	assert.Equal(t, map[string]bool{"isLP": false}, bob.Flags)

	// --hash overrides the file
	stdout, err = runApp(t, "--config", cfgPath, "--hash", "sha256", "generate", "-i", input)
	require.NoError(t, err)
	var fromFlag types.Manifest
	require.NoError(t, json.Unmarshal([]byte(stdout), &fromFlag))
	assert.Equal(t, aliceBobRoot, fromFlag.MerkleRoot)
}

func TestInvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "balances.json", `{"alice": "1"}`)

	testCases := []struct {
		name    string
		args    []string
		errPart string
	}{
		{"unknown hash", []string{"--hash", "md5", "generate", "-i", input}, "hashType"},
		{"store without path", []string{"--store-type", "badger", "generate", "-i", input}, "storePath"},
		{"bad reason flag", []string{"generate", "-i", input, "--reason-flag", "isLP"}, "name=substring"},
		{"list without store", []string{"list"}, "store is required"},
		{"memory store", []string{"--store-type", "memory", "list"}, "storeType"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runApp(t, tc.args...)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tc.errPart), err.Error())
		})
	}
}
