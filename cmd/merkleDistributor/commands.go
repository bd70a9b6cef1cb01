package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/config"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/distributor"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/logger"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence/badger"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence/leveldb"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
)

// loadConfig layers the config file, then flags and environment, over the defaults.
func loadConfig(c *cli.Context) (*config.DistributorConfig, error) {
	cfg := config.NewDefaultDistributorConfig()
	if path := c.String("config"); path != "" {
		fileCfg, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if c.IsSet("hash") {
		cfg.HashType = hashing.HashType(c.String("hash"))
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("store-type") {
		cfg.StoreType = config.StoreType(c.String("store-type"))
	}
	if c.IsSet("store-path") {
		cfg.StorePath = c.String("store-path")
	}
	if c.IsSet("verbose") {
		cfg.Debug = c.Bool("verbose")
	}
	if c.IsSet("sort-leaves") {
		cfg.SortLeaves = c.Bool("sort-leaves")
	}
	if c.IsSet("empty-flags") {
		cfg.EmptyFlags = c.Bool("empty-flags")
	}
	if rules := c.StringSlice("reason-flag"); len(rules) > 0 {
		if cfg.ReasonFlags == nil {
			cfg.ReasonFlags = make(map[string]string, len(rules))
		}
		for _, rule := range rules {
			name, substr, ok := strings.Cut(rule, "=")
			if !ok {
				return nil, fmt.Errorf("reason flag %q must be name=substring", rule)
			}
			cfg.ReasonFlags[name] = substr
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

type commandEnv struct {
	cfg    *config.DistributorConfig
	hasher hashing.Hasher
	logger *zap.Logger
}

func setup(c *cli.Context) (*commandEnv, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	hasher, err := hashing.NewHasher(cfg.HashType)
	if err != nil {
		return nil, err
	}

	return &commandEnv{cfg: cfg, hasher: hasher, logger: l}, nil
}

// openStore returns nil when no store is configured.
func openStore(cfg *config.DistributorConfig, l *zap.Logger) (persistence.IManifestStore, error) {
	var (
		store persistence.IManifestStore
		err   error
	)
	switch cfg.StoreType {
	case config.StoreTypeNone:
		return nil, nil
	case config.StoreTypeBadger:
		store, err = badger.NewBadgerManifestStore(cfg.StorePath, l)
	case config.StoreTypeLevelDB:
		store, err = leveldb.NewLevelDBManifestStore(cfg.StorePath, l)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.StoreType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreType, err)
	}

	if err := store.HealthCheck(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("store health check failed: %w", err)
	}
	return store, nil
}

func requireStore(env *commandEnv) (persistence.IManifestStore, error) {
	store, err := openStore(env.cfg, env.logger)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("a manifest store is required, set --store-type and --store-path")
	}
	return store, nil
}

func generateCommand(c *cli.Context) error {
	env, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = env.logger.Sync() }()

	records, err := distributor.LoadBalanceRecords(c.String("input"))
	if err != nil {
		return err
	}
	env.logger.Sugar().Infow("Loaded balance records",
		"input", c.String("input"),
		"records", len(records),
	)

	opts := []distributor.ParserOption{distributor.WithWorkers(env.cfg.Workers)}
	if env.cfg.SortLeaves {
		opts = append(opts, distributor.WithSortedLeaves())
	}
	if len(env.cfg.ReasonFlags) > 0 {
		opts = append(opts, distributor.WithReasonFlags(env.cfg.ReasonFlags))
	}
	if env.cfg.EmptyFlags {
		opts = append(opts, distributor.WithEmptyFlags())
	}

	manifest, err := distributor.NewParser(env.hasher, env.logger, opts...).Parse(records)
	if err != nil {
		return fmt.Errorf("failed to build manifest: %w", err)
	}

	if output := c.String("output"); output != "" {
		if err := distributor.WriteManifest(output, manifest, true); err != nil {
			return err
		}
		env.logger.Sugar().Infow("Wrote manifest", "output", output)
	}

	store, err := openStore(env.cfg, env.logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() { _ = store.Close() }()

		record, err := persistence.NewManifestRecord(manifest, env.hasher.Type())
		if err != nil {
			return err
		}
		if err := store.SaveManifest(record); err != nil {
			return fmt.Errorf("failed to save manifest: %w", err)
		}
		env.logger.Sugar().Infow("Saved manifest",
			"id", record.ID,
			"merkleRoot", record.MerkleRoot,
			"storeType", env.cfg.StoreType,
		)
	}

	data, err := distributor.EncodeManifest(manifest, false)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}

type verifyResult struct {
	MerkleRoot string           `json:"merkleRoot"`
	HashType   hashing.HashType `json:"hashType"`
	Account    string           `json:"account,omitempty"`
	Claims     int              `json:"claims"`
	Valid      bool             `json:"valid"`
}

func verifyCommand(c *cli.Context) error {
	env, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = env.logger.Sync() }()

	manifest, err := distributor.LoadManifest(c.String("manifest"))
	if err != nil {
		return err
	}

	result := verifyResult{
		MerkleRoot: manifest.MerkleRoot,
		HashType:   env.hasher.Type(),
		Claims:     manifest.Claims.Len(),
	}

	if account := c.String("account"); account != "" {
		claim, ok := manifest.Claim(account)
		if !ok {
			return fmt.Errorf("account %s has no claim in manifest", account)
		}
		valid, err := distributor.VerifyClaim(env.hasher, manifest.MerkleRoot, account, claim)
		if err != nil {
			return err
		}
		if !valid {
			return fmt.Errorf("claim for %s does not verify against root %s", account, manifest.MerkleRoot)
		}
		result.Account = account
		result.Claims = 1
	} else if err := distributor.VerifyManifest(env.hasher, manifest); err != nil {
		return fmt.Errorf("manifest verification failed: %w", err)
	}

	result.Valid = true
	env.logger.Sugar().Infow("Verification passed",
		"merkleRoot", result.MerkleRoot,
		"claims", result.Claims,
	)
	return writeJSON(c, result)
}

type proofResult struct {
	Account    string           `json:"account"`
	MerkleRoot string           `json:"merkleRoot"`
	HashType   hashing.HashType `json:"hashType"`
	Claim      *types.Claim     `json:"claim"`
}

func proofCommand(c *cli.Context) error {
	env, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = env.logger.Sync() }()

	store, err := requireStore(env)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	root, err := hashing.HashFromHex(c.String("root"))
	if err != nil {
		return &distributor.ParseError{Value: c.String("root"), Err: err}
	}
	account := c.String("account")

	record, err := store.LoadManifest(root.Hex())
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("no manifest stored for root %s", root.Hex())
	}

	claim, err := store.LoadClaim(record.MerkleRoot, account)
	if err != nil {
		return err
	}
	if claim == nil {
		return fmt.Errorf("account %s has no claim in manifest %s", account, record.MerkleRoot)
	}

	hasher, err := hashing.NewHasher(record.HashType)
	if err != nil {
		return err
	}
	valid, err := distributor.VerifyClaim(hasher, record.MerkleRoot, account, *claim)
	if err != nil {
		return err
	}
	if !valid {
		return fmt.Errorf("stored claim for %s does not verify, store may be corrupted", account)
	}

	return writeJSON(c, proofResult{
		Account:    account,
		MerkleRoot: record.MerkleRoot,
		HashType:   record.HashType,
		Claim:      claim,
	})
}

type manifestSummary struct {
	ID         string           `json:"id"`
	MerkleRoot string           `json:"merkleRoot"`
	HashType   hashing.HashType `json:"hashType"`
	CreatedAt  int64            `json:"createdAt"`
	Claims     int              `json:"claims"`
	TokenTotal string           `json:"tokenTotal"`
}

func listCommand(c *cli.Context) error {
	env, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = env.logger.Sync() }()

	store, err := requireStore(env)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.ListManifests()
	if err != nil {
		return err
	}

	summaries := make([]manifestSummary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, manifestSummary{
			ID:         r.ID,
			MerkleRoot: r.MerkleRoot,
			HashType:   r.HashType,
			CreatedAt:  r.CreatedAt,
			Claims:     r.Manifest.Claims.Len(),
			TokenTotal: r.Manifest.TokenTotal,
		})
	}
	return writeJSON(c, summaries)
}

func writeJSON(c *cli.Context, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}
