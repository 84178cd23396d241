// iface.go defines the Interface for dependency injection and testing.
//
// The concrete *Store type satisfies this interface. Code that depends on
// the store (the ledger, the cmd layer) can accept Interface instead of
// *Store, enabling mock injection in tests.
package store

import (
	"context"
	"time"

	"github.com/skeeterweed7-rgb/sprayer/pkg/model"
)

// Interface defines the full set of store operations.
// The concrete *Store type implements this interface.
type Interface interface {
	// Close closes the database connection.
	Close() error

	// Append appends a record to the operator's log, returning the
	// store-assigned row ID and monotonic timestamp.
	Append(operatorID string, r *model.Record) (int64, time.Time, error)

	// ListAll returns the operator's full log in total order, verifying
	// append-only integrity.
	ListAll(operatorID string) ([]model.Record, error)

	// DeleteByID removes a single record. Used only by reset.
	DeleteByID(id int64) error

	// CountRecords returns the number of records in the operator's log.
	CountRecords(operatorID string) int64

	// MaxRecordID returns the highest record row ID, or 0 if empty.
	MaxRecordID(operatorID string) int64

	// Watch delivers the full current log on every observed change.
	Watch(ctx context.Context, operatorID string, interval time.Duration) <-chan Snapshot
}

// Compile-time check that *Store implements Interface.
var _ Interface = (*Store)(nil)
