// watch.go implements the live change feed over the record log.
//
// There is no push channel in SQLite, so the feed is poll-based: a cheap
// (max id, count) fingerprint is sampled every interval and the full ordered
// list is re-read and delivered whenever it changes. Subscribers always
// receive the entire current log, never a diff, so duplicate or reordered
// deliveries are harmless — consumers recompute derived state idempotently
// from whichever snapshot arrives last.
package store

import (
	"context"
	"time"

	"github.com/skeeterweed7-rgb/sprayer/pkg/model"
)

// Snapshot is one delivery on a watch channel: the full ordered record list,
// or the read error that prevented producing it.
type Snapshot struct {
	Records []model.Record
	Err     error
}

// Watch returns a channel that fires once immediately with the operator's
// current log, then again on every observed change, polling at the given
// interval. The channel closes when ctx is canceled.
func (s *Store) Watch(ctx context.Context, operatorID string, interval time.Duration) <-chan Snapshot {
	if interval <= 0 {
		interval = time.Second
	}
	out := make(chan Snapshot, 1)

	go func() {
		defer close(out)

		// Fingerprint before reading: an append that lands in between is
		// delivered now and again on the next tick, which is harmless
		// since snapshots are full lists.
		emit := func() (maxID, count int64) {
			maxID, count = s.MaxRecordID(operatorID), s.CountRecords(operatorID)
			recs, err := s.ListAll(operatorID)
			select {
			case out <- Snapshot{Records: recs, Err: err}:
			case <-ctx.Done():
			}
			return maxID, count
		}

		lastMax, lastCount := emit()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				maxID, count := s.MaxRecordID(operatorID), s.CountRecords(operatorID)
				if maxID != lastMax || count != lastCount {
					lastMax, lastCount = emit()
				}
			}
		}
	}()
	return out
}
