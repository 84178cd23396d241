// order.go guards append-only integrity at the store boundary.
//
// Current tank state is derived from the tail of the log, which is only
// sound if the log is totally ordered by (timestamp, id) and never written
// out of order. Rather than silently serving a corrupt log, reads fail
// loudly when the ordering invariant is broken.
package store

import (
	"errors"
	"fmt"

	"github.com/skeeterweed7-rgb/sprayer/pkg/model"
)

// ErrOutOfOrder indicates the persisted log violates the non-decreasing
// timestamp invariant. Tail-derived state cannot be trusted.
var ErrOutOfOrder = errors.New("record log out of order")

// checkOrdered verifies that record timestamps never decrease along the
// slice and that ties are broken by ascending ID.
func checkOrdered(recs []model.Record) error {
	for i := 1; i < len(recs); i++ {
		prev, cur := recs[i-1], recs[i]
		if cur.Timestamp.Before(prev.Timestamp) {
			return fmt.Errorf("%w: record %d precedes record %d in time", ErrOutOfOrder, cur.ID, prev.ID)
		}
		if cur.Timestamp.Equal(prev.Timestamp) && cur.ID < prev.ID {
			return fmt.Errorf("%w: tie between records %d and %d not broken by id", ErrOutOfOrder, prev.ID, cur.ID)
		}
	}
	return nil
}
