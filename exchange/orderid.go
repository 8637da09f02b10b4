package exchange

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

//
// OrderIDs generates client order ids (idempotency tokens) for a single adapter instance. The
// counter starts at zero and is bumped once per submission attempt, never per retry. Tokens are
// prefixed with a random session id so that two processes never produce the same token.
//
type OrderIDs struct {
	prefix  string
	counter atomic.Uint64
}

func NewOrderIDs() *OrderIDs {
	return NewOrderIDsWithPrefix(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}

func NewOrderIDsWithPrefix(prefix string) *OrderIDs {
	return &OrderIDs{prefix: prefix}
}

//
// Next increments the counter and returns the token for the new value.
//
func (o *OrderIDs) Next() string {
	return o.prefix + strconv.FormatUint(o.counter.Add(1), 10)
}

//
// Count returns how many tokens have been handed out.
//
func (o *OrderIDs) Count() uint64 {
	return o.counter.Load()
}
