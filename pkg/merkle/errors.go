package merkle

import (
	"errors"
	"fmt"
)

// ErrEmptyTree is returned when a tree is built from zero leaves.
var ErrEmptyTree = errors.New("cannot build merkle tree from empty leaf list")

// EncodingError reports an amount that does not fit the fixed-width leaf encoding.
type EncodingError struct {
	Index   uint64 // zero when raised before indices are assigned
	Account string
	Amount  string
	Reason  string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode amount %s for account %q: %s", e.Amount, e.Account, e.Reason)
}
