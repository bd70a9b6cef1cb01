package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/hashing"
)

// Environment variable names for the merkle distributor CLI
const (
	EnvMerkleHashType  = "MERKLE_HASH_TYPE"
	EnvMerkleWorkers   = "MERKLE_WORKERS"
	EnvMerkleStoreType = "MERKLE_STORE_TYPE"
	EnvMerkleStorePath = "MERKLE_STORE_PATH"
	EnvMerkleVerbose   = "MERKLE_VERBOSE"
)

type StoreType string

func (s StoreType) String() string {
	return string(s)
}

// IsPersistent reports whether the store writes to disk and needs a path.
func (s StoreType) IsPersistent() bool {
	return s == StoreTypeBadger || s == StoreTypeLevelDB
}

const (
	StoreTypeNone    StoreType = "none"
	StoreTypeBadger  StoreType = "badger"
	StoreTypeLevelDB StoreType = "leveldb"
)

// GetSupportedStoreTypes returns all store types
func GetSupportedStoreTypes() []StoreType {
	return []StoreType{
		StoreTypeNone,
		StoreTypeBadger,
		StoreTypeLevelDB,
	}
}

// GetSupportedStoreTypesString returns supported store types for CLI help
func GetSupportedStoreTypesString() string {
	return strings.Join(storeTypeNames(), ", ")
}

const (
	DefaultWorkers = 1
	MaxWorkers     = 1024
)

// DistributorConfig is the configuration shared by every CLI command
type DistributorConfig struct {
	// Hash strategy for leaves and internal nodes
	HashType hashing.HashType `json:"hashType" yaml:"hashType"`

	// Goroutines used for proof generation
	Workers int `json:"workers" yaml:"workers"`

	// Where generated manifests are kept, if anywhere
	StoreType StoreType `json:"storeType" yaml:"storeType"`
	StorePath string    `json:"storePath" yaml:"storePath"`

	// Build the tree over sorted leaf hashes
	SortLeaves bool `json:"sortLeaves" yaml:"sortLeaves"`

	// Flag name -> substring of a record's reasons
	ReasonFlags map[string]string `json:"reasonFlags,omitempty" yaml:"reasonFlags,omitempty"`

	// Emit "flags": {} for records with reasons but no flags
	EmptyFlags bool `json:"emptyFlags" yaml:"emptyFlags"`

	Debug bool `json:"debug" yaml:"debug"`
}

// NewDefaultDistributorConfig returns the configuration used when nothing is set.
func NewDefaultDistributorConfig() *DistributorConfig {
	return &DistributorConfig{
		HashType:  hashing.DefaultHashType,
		Workers:   DefaultWorkers,
		StoreType: StoreTypeNone,
	}
}

// LoadConfigFile reads a YAML config on top of the defaults. Unknown keys
// are rejected so typos don't silently fall back to defaults.
func LoadConfigFile(path string) (*DistributorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config bytes on top of the defaults.
func ParseConfig(data []byte) (*DistributorConfig, error) {
	cfg := NewDefaultDistributorConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration and normalizes the hash type and
// store type to lower case.
func (c *DistributorConfig) Validate() error {
	var allErrors field.ErrorList

	c.HashType = hashing.HashType(strings.ToLower(c.HashType.String()))
	if _, err := hashing.NewHasher(c.HashType); err != nil {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("hashType"), c.HashType, hashTypeNames()))
	}

	if c.Workers < 1 || c.Workers > MaxWorkers {
		allErrors = append(allErrors, field.Invalid(field.NewPath("workers"), c.Workers,
			fmt.Sprintf("must be between 1-%d", MaxWorkers)))
	}

	c.StoreType = StoreType(strings.ToLower(c.StoreType.String()))
	if c.StoreType == "" {
		c.StoreType = StoreTypeNone
	}
	if !isSupportedStoreType(c.StoreType) {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("storeType"), c.StoreType, storeTypeNames()))
	} else if c.StoreType.IsPersistent() && c.StorePath == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("storePath"),
			fmt.Sprintf("storePath is required for store type %s", c.StoreType)))
	}

	for name, substr := range c.ReasonFlags {
		if name == "" {
			allErrors = append(allErrors, field.Invalid(field.NewPath("reasonFlags"), name, "flag name cannot be empty"))
		}
		if substr == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("reasonFlags").Key(name), "substring cannot be empty"))
		}
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func isSupportedStoreType(s StoreType) bool {
	for _, supported := range GetSupportedStoreTypes() {
		if s == supported {
			return true
		}
	}
	return false
}

func storeTypeNames() []string {
	names := make([]string, 0, len(GetSupportedStoreTypes()))
	for _, s := range GetSupportedStoreTypes() {
		names = append(names, s.String())
	}
	return names
}

func hashTypeNames() []string {
	names := make([]string, 0, len(hashing.SupportedHashTypes()))
	for _, h := range hashing.SupportedHashTypes() {
		names = append(names, h.String())
	}
	return names
}
