// Package ledger owns the validated append-only shift history and the
// derived tank state.
//
// Current state is not stored anywhere — it is a function of the newest
// record: gallons left is that record's post-state, capacity is the
// capacity it snapshotted. An empty log falls back to the configured
// starting capacity. Only the tail is consulted; each record carries its
// own post-state, so no fold over the full history is needed. The store
// guards the ordering invariant this depends on (see store.ErrOutOfOrder).
//
// All mutations validate first and append second: the store is never asked
// to persist a physically impossible record (negative inventory,
// over-application, tank overflow).
package ledger

import (
	"math"
	"strings"

	"github.com/skeeterweed7-rgb/sprayer/pkg/model"
	"github.com/skeeterweed7-rgb/sprayer/pkg/store"
)

// Options carries the tank defaults the ledger falls back to when the log
// is empty.
type Options struct {
	// DefaultCapacity is the starting tank capacity in gallons.
	DefaultCapacity float64
	// RefillTolerance is the minimum useful refill in gallons; a refill
	// that would add no more than this is rejected as TankFull instead of
	// being recorded as a no-op.
	RefillTolerance float64
}

// State is the derived tank state exposed to presentation.
type State struct {
	Capacity    float64 `json:"capacity"`
	GallonsLeft float64 `json:"gallonsLeft"`
}

// Ledger maintains the operator's record log snapshot and serializes all
// append operations through validation. Not goroutine-safe; in this
// architecture each Ledger lives on a single flow (one CLI invocation or
// one watch consumer) and cross-process coordination is the store's job.
type Ledger struct {
	store    store.Interface
	operator string
	opts     Options

	records []model.Record

	// setCap overrides the derived capacity between an explicit
	// SetCapacity call and the next append, which snapshots it into a
	// record. After that the last logged capacity wins again.
	setCap    float64
	hasSetCap bool
}

// Open performs the operator handshake and loads the current log snapshot.
// Every ledger operation requires a successful Open first; there is no
// ambient operator identity.
func Open(st store.Interface, operatorID string, opts Options) (*Ledger, error) {
	if st == nil || strings.TrimSpace(operatorID) == "" {
		return nil, ErrNotReady
	}
	if opts.DefaultCapacity <= 0 {
		opts.DefaultCapacity = 600
	}
	if opts.RefillTolerance <= 0 {
		opts.RefillTolerance = 0.01
	}
	l := &Ledger{store: st, operator: operatorID, opts: opts}
	recs, err := st.ListAll(operatorID)
	if err != nil {
		return nil, &TransportError{Op: OpRead, Err: err}
	}
	l.records = recs
	return l, nil
}

// Operator returns the operator identity established at Open.
func (l *Ledger) Operator() string { return l.operator }

func (l *Ledger) ready() error {
	if l == nil || l.store == nil || l.operator == "" {
		return ErrNotReady
	}
	return nil
}

// capacity is the capacity currently in effect: an un-logged SetCapacity if
// one is pending, else the newest record's snapshot, else the default.
func (l *Ledger) capacity() float64 {
	if l.hasSetCap {
		return l.setCap
	}
	if n := len(l.records); n > 0 {
		return l.records[n-1].InitialTankVolume
	}
	return l.opts.DefaultCapacity
}

// gallonsLeft is the newest record's post-state, clamped to the capacity in
// effect (inventory can never exceed physical capacity), or the starting
// capacity on an empty log.
func (l *Ledger) gallonsLeft() float64 {
	capGal := l.capacity()
	if n := len(l.records); n > 0 {
		return math.Min(l.records[n-1].GallonsLeft, capGal)
	}
	return capGal
}

// CurrentState returns the derived tank state.
func (l *Ledger) CurrentState() (State, error) {
	if err := l.ready(); err != nil {
		return State{}, err
	}
	return State{Capacity: l.capacity(), GallonsLeft: l.gallonsLeft()}, nil
}

// Records returns a copy of the current log snapshot in total order.
func (l *Ledger) Records() []model.Record {
	out := make([]model.Record, len(l.records))
	copy(out, l.records)
	return out
}

// positiveFinite rejects NaN, infinities, zero and negatives in one place.
func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// LogApplication validates and appends an application record. Chemical
// ratios are taken as already computed (staged via mix.Batch) and are
// frozen into the record. On success the returned record carries the
// store-assigned ID and timestamp.
func (l *Ledger) LogApplication(road string, gallonsUsed float64, chemicals []model.Chemical, conditions model.Conditions) (*model.Record, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	road = strings.TrimSpace(road)
	if road == "" {
		return nil, validationf(EmptyRoad, "road name is required")
	}
	if !positiveFinite(gallonsUsed) {
		return nil, validationf(NonPositiveVolume, "gallons used must be a positive number, got %v", gallonsUsed)
	}
	left := l.gallonsLeft()
	if gallonsUsed > left {
		return nil, validationf(InsufficientInventory,
			"cannot apply %.2f gal with only %.2f gal in the tank", gallonsUsed, left)
	}
	if len(chemicals) == 0 {
		return nil, validationf(EmptyChemicalMix, "at least one chemical is required")
	}
	if !conditions.Complete() {
		return nil, validationf(IncompleteConditions,
			"weather, temperature, wind direction and wind speed are all required")
	}

	rec := model.Record{
		RoadName:          road,
		GallonsUsed:       gallonsUsed,
		GallonsLeft:       left - gallonsUsed,
		InitialTankVolume: l.capacity(),
		ChemicalMix:       append([]model.Chemical(nil), chemicals...),
		WeatherConditions: conditions,
	}
	return l.append(rec)
}

// LogRefill validates and appends a refill record. The added volume is
// capped at capacity; a refill that would add no more than the configured
// tolerance is rejected as TankFull and nothing is appended. The returned
// flag reports whether the request was capped, so callers can tell the
// operator distinctly.
func (l *Ledger) LogRefill(gallonsAdded float64) (*model.Record, bool, error) {
	if err := l.ready(); err != nil {
		return nil, false, err
	}
	if !positiveFinite(gallonsAdded) {
		return nil, false, validationf(NonPositiveVolume, "gallons added must be a positive number, got %v", gallonsAdded)
	}
	capGal, left := l.capacity(), l.gallonsLeft()
	actual := math.Min(capGal, left+gallonsAdded) - left
	if actual <= l.opts.RefillTolerance {
		return nil, false, validationf(TankFull,
			"tank is full: %.2f of %.2f gal", left, capGal)
	}

	rec := model.Record{
		RoadName:          model.RefillLabel,
		GallonsUsed:       -actual,
		GallonsLeft:       left + actual,
		InitialTankVolume: capGal,
		ChemicalMix:       []model.Chemical{},
		WeatherConditions: model.Conditions{},
	}
	out, err := l.append(rec)
	if err != nil {
		return nil, false, err
	}
	capped := actual+l.opts.RefillTolerance < gallonsAdded
	return out, capped, nil
}

func (l *Ledger) append(rec model.Record) (*model.Record, error) {
	id, ts, err := l.store.Append(l.operator, &rec)
	if err != nil {
		return nil, &TransportError{Op: OpWrite, Err: err}
	}
	rec.ID, rec.Timestamp = id, ts
	l.records = append(l.records, rec)
	// The record now carries the capacity; the override has served its turn.
	l.hasSetCap = false
	return &rec, nil
}

// SetCapacity changes the capacity in effect without appending anything.
// The new value is snapshotted into the next logged record; until then
// derived state uses it directly, clamping gallons left down if the tank
// shrank below current inventory.
func (l *Ledger) SetCapacity(gal float64) error {
	if err := l.ready(); err != nil {
		return err
	}
	if !positiveFinite(gal) {
		return validationf(NonPositiveVolume, "capacity must be a positive number, got %v", gal)
	}
	l.setCap = gal
	l.hasSetCap = true
	return nil
}

// Reset deletes every record in the operator's log and restores the
// configured defaults. Deletions are independent with no cross-deletion
// atomicity; a partial failure is reported as PartialResetError and the
// ledger keeps whatever survived so the operator can re-attempt.
func (l *Ledger) Reset() error {
	if err := l.ready(); err != nil {
		return err
	}
	recs, err := l.store.ListAll(l.operator)
	if err != nil {
		return &TransportError{Op: OpRead, Err: err}
	}

	deleted := 0
	var firstErr error
	var remaining []model.Record
	for _, r := range recs {
		if err := l.store.DeleteByID(r.ID); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			remaining = append(remaining, r)
			continue
		}
		deleted++
	}
	if firstErr != nil {
		l.records = remaining
		return &PartialResetError{Deleted: deleted, Remaining: len(remaining), Err: firstErr}
	}

	l.records = nil
	l.hasSetCap = false
	return nil
}

// Apply replaces the in-memory snapshot with one delivered by a store
// notification. Snapshots are full lists, so applying the same snapshot
// twice, or applying them out of order, converges on whichever arrived
// last — derived state is recomputed idempotently from the tail.
func (l *Ledger) Apply(records []model.Record) error {
	if err := l.ready(); err != nil {
		return err
	}
	l.records = append([]model.Record(nil), records...)
	return nil
}
