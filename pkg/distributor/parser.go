package distributor

import (
	"errors"
	"math/big"
	"sort"
	"strings"

	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
)

var errInvalidDecimal = errors.New("not a base-10 integer")

// Parser turns balance records into a distributor manifest.
type Parser struct {
	hasher      hashing.Hasher
	logger      *zap.Logger
	workers     int
	reasonFlags map[string]string
	emptyFlags  bool
	treeOpts    []merkle.TreeOption
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithWorkers sets how many goroutines generate proofs. Values below 1 mean 1.
func WithWorkers(n int) ParserOption {
	return func(p *Parser) {
		if n < 1 {
			n = 1
		}
		p.workers = n
	}
}

// WithReasonFlags derives claim flags from a record's reasons text. For each
// rule, flag name -> substring, the flag is true when reasons contains the
// substring. Rules only apply to records with non-empty reasons, and flags
// already present on the record take precedence.
func WithReasonFlags(rules map[string]string) ParserOption {
	return func(p *Parser) {
		p.reasonFlags = make(map[string]string, len(rules))
		for name, substr := range rules {
			p.reasonFlags[name] = substr
		}
	}
}

// WithEmptyFlags gives every record with non-empty reasons a flag set, even
// when no rule or record flag fills it, so such claims carry "flags": {}.
func WithEmptyFlags() ParserOption {
	return func(p *Parser) {
		p.emptyFlags = true
	}
}

// WithSortedLeaves builds the tree over sorted leaf hashes. Claim indices are
// still assigned in address order.
func WithSortedLeaves() ParserOption {
	return func(p *Parser) {
		p.treeOpts = append(p.treeOpts, merkle.WithSortedLeaves())
	}
}

// NewParser creates a parser. A nil hasher selects SHA-256 and a nil logger
// discards output.
func NewParser(hasher hashing.Hasher, logger *zap.Logger, opts ...ParserOption) *Parser {
	if hasher == nil {
		hasher = hashing.NewSHA256()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Parser{
		hasher:  hasher,
		logger:  logger,
		workers: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseBalanceMap builds a manifest with the default SHA-256 strategy.
func ParseBalanceMap(records []types.BalanceRecord) (*types.Manifest, error) {
	return NewParser(nil, nil).Parse(records)
}

// Hasher returns the strategy the parser hashes with.
func (p *Parser) Hasher() hashing.Hasher {
	return p.hasher
}

// Parse validates records, assigns canonical indices, builds the tree and
// returns the manifest. Nothing is returned on any error.
func (p *Parser) Parse(records []types.BalanceRecord) (*types.Manifest, error) {
	entries, err := p.Entries(records)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, merkle.ErrEmptyTree
	}

	leaves := make([]hashing.Hash, len(entries))
	for i, entry := range entries {
		leaf, err := merkle.HashLeaf(p.hasher, entry.Index, entry.Account, entry.Amount)
		if err != nil {
			return nil, err
		}
		leaves[i] = leaf
	}

	tree, err := merkle.BuildMerkleTree(leaves, p.hasher, p.treeOpts...)
	if err != nil {
		return nil, err
	}

	proofs, err := p.generateProofs(tree)
	if err != nil {
		return nil, err
	}

	total := new(big.Int)
	claims := types.NewClaims(len(entries))
	for i, entry := range entries {
		total.Add(total, entry.Amount.ToBig())
		claims.Set(entry.Account, types.Claim{
			Index:  entry.Index,
			Amount: entry.Amount.Dec(),
			Proof:  proofs[i],
			Flags:  entry.Flags,
		})
	}

	manifest := &types.Manifest{
		MerkleRoot: tree.GetRoot().Hex(),
		TokenTotal: total.String(),
		Claims:     claims,
	}

	p.logger.Sugar().Infow("Built distributor manifest",
		"merkleRoot", manifest.MerkleRoot,
		"accounts", len(entries),
		"tokenTotal", manifest.TokenTotal,
		"hashType", p.hasher.Type(),
		"depth", tree.Depth(),
	)
	return manifest, nil
}

// Entries validates records and returns them sorted by address with indices
// assigned. Checks run per record in input order: duplicate address, amount
// syntax, sign, then width.
func (p *Parser) Entries(records []types.BalanceRecord) ([]types.AccountEntry, error) {
	byAccount := make(map[string]types.AccountEntry, len(records))

	for _, record := range records {
		if _, dup := byAccount[record.Address]; dup {
			return nil, &ValidationError{Account: record.Address, Reason: "duplicate address"}
		}

		amount, err := parseAmount(record.Address, record.Earnings)
		if err != nil {
			return nil, err
		}

		byAccount[record.Address] = types.AccountEntry{
			Account: record.Address,
			Amount:  amount,
			Flags:   p.flagsFor(record),
		}
	}

	accounts := make([]string, 0, len(byAccount))
	for account := range byAccount {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	entries := make([]types.AccountEntry, len(accounts))
	for i, account := range accounts {
		entry := byAccount[account]
		entry.Index = uint64(i)
		entries[i] = entry
	}

	p.logger.Sugar().Debugw("Canonicalized balance records",
		"records", len(records),
		"accounts", len(entries),
	)
	return entries, nil
}

func (p *Parser) generateProofs(tree *merkle.MerkleTree) ([][]string, error) {
	proofs := make([][]string, tree.LeafCount())

	if p.workers <= 1 {
		for i := range proofs {
			proof, err := tree.GenerateProof(i)
			if err != nil {
				return nil, err
			}
			proofs[i] = proof.HexProof()
		}
		return proofs, nil
	}

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i := range proofs {
		i := i
		g.Go(func() error {
			proof, err := tree.GenerateProof(i)
			if err != nil {
				return err
			}
			proofs[i] = proof.HexProof()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return proofs, nil
}

func (p *Parser) flagsFor(record types.BalanceRecord) map[string]bool {
	derive := record.Reasons != "" && len(p.reasonFlags) > 0
	keepEmpty := record.Reasons != "" && p.emptyFlags
	if len(record.Flags) == 0 && !derive && !keepEmpty {
		return nil
	}

	flags := make(map[string]bool, len(record.Flags)+len(p.reasonFlags))
	for name, value := range record.Flags {
		flags[name] = value
	}
	if derive {
		for name, substr := range p.reasonFlags {
			if _, set := flags[name]; !set {
				flags[name] = strings.Contains(record.Reasons, substr)
			}
		}
	}
	return flags
}

// parseAmount reads a positive base-10 integer that fits in 128 bits. One
// leading "+" and leading zeros are accepted and dropped from the result.
func parseAmount(account, text string) (*uint256.Int, error) {
	value, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, &ParseError{Account: account, Value: text, Err: errInvalidDecimal}
	}
	if value.Sign() <= 0 {
		return nil, &ValidationError{Account: account, Reason: "amount must be positive, got " + value.String()}
	}
	if value.BitLen() > merkle.MaxAmountBits {
		return nil, &merkle.EncodingError{
			Account: account,
			Amount:  value.String(),
			Reason:  "amount exceeds 128 bits",
		}
	}
	amount, _ := uint256.FromBig(value)
	return amount, nil
}
