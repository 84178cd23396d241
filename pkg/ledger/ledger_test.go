package ledger

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/skeeterweed7-rgb/sprayer/pkg/mix"
	"github.com/skeeterweed7-rgb/sprayer/pkg/model"
	"github.com/skeeterweed7-rgb/sprayer/pkg/store"
)

var testOpts = Options{DefaultCapacity: 600, RefillTolerance: 0.01}

func newTestLedger(t *testing.T) (*Ledger, *store.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	l, err := Open(s, "pat", testOpts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return l, s
}

func testMix() []model.Chemical {
	return []model.Chemical{{Name: "copper sulfate", TotalOz: 120, OzPerGal: "0.2000"}}
}

func testConditions() model.Conditions {
	return model.Conditions{Weather: "overcast", Temperature: 54, WindDirection: "NW", WindSpeed: 8}
}

// --- Handshake ---

func TestOpen_RequiresOperator(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer s.Close()

	if _, err := Open(s, "", testOpts); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Open without operator: got %v, want ErrNotReady", err)
	}
	if _, err := Open(s, "   ", testOpts); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Open with blank operator: got %v, want ErrNotReady", err)
	}
	if _, err := Open(nil, "pat", testOpts); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Open without store: got %v, want ErrNotReady", err)
	}
}

func TestUnopenedLedger_AllOperationsNotReady(t *testing.T) {
	var l Ledger

	if _, err := l.CurrentState(); !errors.Is(err, ErrNotReady) {
		t.Errorf("CurrentState: got %v, want ErrNotReady", err)
	}
	if _, err := l.LogApplication("Elk", 50, testMix(), testConditions()); !errors.Is(err, ErrNotReady) {
		t.Errorf("LogApplication: got %v, want ErrNotReady", err)
	}
	if _, _, err := l.LogRefill(20); !errors.Is(err, ErrNotReady) {
		t.Errorf("LogRefill: got %v, want ErrNotReady", err)
	}
	if err := l.SetCapacity(700); !errors.Is(err, ErrNotReady) {
		t.Errorf("SetCapacity: got %v, want ErrNotReady", err)
	}
	if err := l.Reset(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Reset: got %v, want ErrNotReady", err)
	}
}

// --- Derived state ---

func TestCurrentState_EmptyLog(t *testing.T) {
	l, _ := newTestLedger(t)
	st, err := l.CurrentState()
	if err != nil {
		t.Fatalf("CurrentState: %v", err)
	}
	if st.Capacity != 600 || st.GallonsLeft != 600 {
		t.Fatalf("empty log state = %+v, want 600/600", st)
	}
}

func TestCurrentState_TailDerived(t *testing.T) {
	l, _ := newTestLedger(t)
	if _, err := l.LogApplication("Elk", 50, testMix(), testConditions()); err != nil {
		t.Fatalf("LogApplication: %v", err)
	}
	st, _ := l.CurrentState()
	if st.GallonsLeft != 550 || st.Capacity != 600 {
		t.Fatalf("state after application = %+v, want 550/600", st)
	}
}

func TestCurrentState_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	l, _ := Open(s, "pat", testOpts)
	l.LogApplication("Elk", 50, testMix(), testConditions())

	l2, err := Open(s, "pat", testOpts)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	st, _ := l2.CurrentState()
	if st.GallonsLeft != 550 {
		t.Fatalf("reopened state = %+v, want 550 left", st)
	}
}

// --- LogApplication validation ---

func TestLogApplication_EmptyRoad(t *testing.T) {
	l, s := newTestLedger(t)
	_, err := l.LogApplication("  ", 50, testMix(), testConditions())
	if !IsValidation(err, EmptyRoad) {
		t.Fatalf("got %v, want EmptyRoad", err)
	}
	if s.CountRecords("pat") != 0 {
		t.Fatal("rejected operation must append nothing")
	}
}

func TestLogApplication_NonPositiveVolume(t *testing.T) {
	l, _ := newTestLedger(t)
	for _, v := range []float64{0, -10} {
		if _, err := l.LogApplication("Elk", v, testMix(), testConditions()); !IsValidation(err, NonPositiveVolume) {
			t.Errorf("volume %v: got %v, want NonPositiveVolume", v, err)
		}
	}
}

func TestLogApplication_InsufficientInventory(t *testing.T) {
	l, s := newTestLedger(t)
	_, err := l.LogApplication("Elk", 601, testMix(), testConditions())
	if !IsValidation(err, InsufficientInventory) {
		t.Fatalf("got %v, want InsufficientInventory", err)
	}
	if s.CountRecords("pat") != 0 {
		t.Fatal("event count must be unchanged after rejection")
	}
}

func TestLogApplication_EmptyChemicalMix(t *testing.T) {
	l, _ := newTestLedger(t)
	if _, err := l.LogApplication("Elk", 50, nil, testConditions()); !IsValidation(err, EmptyChemicalMix) {
		t.Fatalf("got %v, want EmptyChemicalMix", err)
	}
}

func TestLogApplication_IncompleteConditions(t *testing.T) {
	l, _ := newTestLedger(t)
	cond := testConditions()
	cond.WindDirection = ""
	if _, err := l.LogApplication("Elk", 50, testMix(), cond); !IsValidation(err, IncompleteConditions) {
		t.Fatalf("got %v, want IncompleteConditions", err)
	}
}

func TestLogApplication_Success(t *testing.T) {
	l, _ := newTestLedger(t)
	rec, err := l.LogApplication("Elk", 50, testMix(), testConditions())
	if err != nil {
		t.Fatalf("LogApplication: %v", err)
	}
	if rec.ID <= 0 || rec.Timestamp.IsZero() {
		t.Fatalf("record should carry store-assigned id and timestamp: %+v", rec)
	}
	if rec.GallonsLeft != 550 || rec.InitialTankVolume != 600 {
		t.Fatalf("post-state mismatch: %+v", rec)
	}
}

// --- LogRefill ---

func TestLogRefill_TankFull(t *testing.T) {
	l, s := newTestLedger(t)
	_, _, err := l.LogRefill(50)
	if !IsValidation(err, TankFull) {
		t.Fatalf("refill on full tank: got %v, want TankFull", err)
	}
	if s.CountRecords("pat") != 0 {
		t.Fatal("TankFull must append nothing")
	}
}

func TestLogRefill_CapsAtCapacity(t *testing.T) {
	l, _ := newTestLedger(t)
	// capacity=600, gallonsLeft=580, request 50 -> actualAdded=20.
	if _, err := l.LogApplication("Elk", 20, testMix(), testConditions()); err != nil {
		t.Fatalf("LogApplication: %v", err)
	}

	rec, capped, err := l.LogRefill(50)
	if err != nil {
		t.Fatalf("LogRefill: %v", err)
	}
	if !capped {
		t.Fatal("overfilling refill should report capped")
	}
	if rec.GallonsAdded() != 20 {
		t.Fatalf("actualAdded = %v, want exactly 20", rec.GallonsAdded())
	}
	if rec.GallonsLeft != 600 {
		t.Fatalf("gallons left = %v, want 600", rec.GallonsLeft)
	}
	if !rec.IsRefill() || len(rec.ChemicalMix) != 0 || !rec.WeatherConditions.Empty() {
		t.Fatalf("refill shape wrong: %+v", rec)
	}
}

func TestLogRefill_UncappedNotReported(t *testing.T) {
	l, _ := newTestLedger(t)
	l.LogApplication("Elk", 100, testMix(), testConditions())

	rec, capped, err := l.LogRefill(60)
	if err != nil {
		t.Fatalf("LogRefill: %v", err)
	}
	if capped {
		t.Fatal("refill that fits should not report capped")
	}
	if rec.GallonsUsed != -60 {
		t.Fatalf("stored delta = %v, want -60", rec.GallonsUsed)
	}
}

func TestLogRefill_NonPositiveVolume(t *testing.T) {
	l, _ := newTestLedger(t)
	if _, _, err := l.LogRefill(-5); !IsValidation(err, NonPositiveVolume) {
		t.Fatalf("got %v, want NonPositiveVolume", err)
	}
}

// --- Invariant: gallonsLeft stays within [0, capacity] ---

func TestInventoryStaysInRange(t *testing.T) {
	l, _ := newTestLedger(t)
	ops := []func() error{
		func() error { _, err := l.LogApplication("Elk", 200, testMix(), testConditions()); return err },
		func() error { _, _, err := l.LogRefill(300); return err },
		func() error { _, err := l.LogApplication("Mule", 399.5, testMix(), testConditions()); return err },
		func() error { _, _, err := l.LogRefill(1000); return err },
		func() error { _, err := l.LogApplication("Bear", 600, testMix(), testConditions()); return err },
	}
	for i, op := range ops {
		if err := op(); err != nil {
			t.Fatalf("op %d: %v", i, err)
		}
		st, err := l.CurrentState()
		if err != nil {
			t.Fatalf("op %d state: %v", i, err)
		}
		if st.GallonsLeft < 0 || st.GallonsLeft > st.Capacity {
			t.Fatalf("op %d: gallonsLeft %v outside [0, %v]", i, st.GallonsLeft, st.Capacity)
		}
	}
}

// --- SetCapacity ---

func TestSetCapacity_TakesEffectOnNextEvent(t *testing.T) {
	l, _ := newTestLedger(t)
	if err := l.SetCapacity(800); err != nil {
		t.Fatalf("SetCapacity: %v", err)
	}
	st, _ := l.CurrentState()
	if st.Capacity != 800 || st.GallonsLeft != 800 {
		t.Fatalf("state after SetCapacity = %+v, want 800/800", st)
	}

	rec, err := l.LogApplication("Elk", 50, testMix(), testConditions())
	if err != nil {
		t.Fatalf("LogApplication: %v", err)
	}
	if rec.InitialTankVolume != 800 {
		t.Fatalf("event should snapshot new capacity, got %v", rec.InitialTankVolume)
	}
}

func TestSetCapacity_ClampsInventory(t *testing.T) {
	l, _ := newTestLedger(t)
	l.LogApplication("Elk", 50, testMix(), testConditions()) // 550 left

	if err := l.SetCapacity(500); err != nil {
		t.Fatalf("SetCapacity: %v", err)
	}
	st, _ := l.CurrentState()
	if st.Capacity != 500 || st.GallonsLeft != 500 {
		t.Fatalf("shrunk tank state = %+v, want 500/500", st)
	}
}

func TestSetCapacity_DoesNotAppend(t *testing.T) {
	l, s := newTestLedger(t)
	l.SetCapacity(800)
	if s.CountRecords("pat") != 0 {
		t.Fatal("SetCapacity must not append an event")
	}
}

// --- Ratio freezing ---

func TestRatioFrozenAcrossCapacityChange(t *testing.T) {
	l, _ := newTestLedger(t)

	batch := mix.NewBatch(600, 4)
	batch.Add("copper sulfate", 120)
	rec, err := l.LogApplication("Elk", 50, batch.Chemicals(), testConditions())
	if err != nil {
		t.Fatalf("LogApplication: %v", err)
	}
	if rec.ChemicalMix[0].OzPerGal != "0.2000" {
		t.Fatalf("logged ratio = %q, want 0.2000", rec.ChemicalMix[0].OzPerGal)
	}

	if err := l.SetCapacity(800); err != nil {
		t.Fatalf("SetCapacity: %v", err)
	}
	got := l.Records()[0].ChemicalMix[0].OzPerGal
	if got != "0.2000" {
		t.Fatalf("committed ratio changed to %q after capacity change", got)
	}
}

// --- Reset ---

func TestReset_RestoresDefaults(t *testing.T) {
	l, s := newTestLedger(t)
	l.LogApplication("Elk", 50, testMix(), testConditions())
	l.LogRefill(30)
	l.SetCapacity(800)

	if err := l.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	st, err := l.CurrentState()
	if err != nil {
		t.Fatalf("CurrentState: %v", err)
	}
	if st.Capacity != 600 || st.GallonsLeft != 600 {
		t.Fatalf("state after reset = %+v, want 600/600", st)
	}
	if s.CountRecords("pat") != 0 {
		t.Fatal("reset should delete every record")
	}
	if len(l.Records()) != 0 {
		t.Fatal("snapshot should be empty after reset")
	}
}

// --- Apply (store notification path) ---

func TestApply_Idempotent(t *testing.T) {
	l, s := newTestLedger(t)
	l.LogApplication("Elk", 50, testMix(), testConditions())

	snap, err := s.ListAll("pat")
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if err := l.Apply(snap); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	st1, _ := l.CurrentState()
	if err := l.Apply(snap); err != nil {
		t.Fatalf("Apply twice: %v", err)
	}
	st2, _ := l.CurrentState()
	if st1 != st2 {
		t.Fatalf("duplicate snapshot changed state: %+v vs %+v", st1, st2)
	}
	if st1.GallonsLeft != 550 {
		t.Fatalf("applied state = %+v, want 550 left", st1)
	}
}

// --- Transport failures ---

var errBoom = errors.New("boom")

// failingStore wraps a real store and fails selected operations, verifying
// that raw driver errors never escape the ledger untyped.
type failingStore struct {
	store.Interface
	failAppend      bool
	deleteCalls     int
	failDeleteAfter int // fail DeleteByID once this many calls succeeded
}

func (f *failingStore) Append(op string, r *model.Record) (int64, time.Time, error) {
	if f.failAppend {
		return 0, time.Time{}, errBoom
	}
	return f.Interface.Append(op, r)
}

func (f *failingStore) DeleteByID(id int64) error {
	f.deleteCalls++
	if f.deleteCalls > f.failDeleteAfter {
		return errBoom
	}
	return f.Interface.DeleteByID(id)
}

func newFailingLedger(t *testing.T, f *failingStore) *Ledger {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	f.Interface = s

	l, err := Open(f, "pat", testOpts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return l
}

func TestLogApplication_WrapsWriteFailure(t *testing.T) {
	f := &failingStore{failAppend: true}
	l := newFailingLedger(t, f)

	_, err := l.LogApplication("Elk", 50, testMix(), testConditions())
	var te *TransportError
	if !errors.As(err, &te) || te.Op != OpWrite {
		t.Fatalf("got %v, want TransportError{write}", err)
	}
	if !errors.Is(err, errBoom) {
		t.Fatal("transport error should wrap the underlying failure")
	}

	// Snapshot untouched: the failed append must not change derived state.
	st, _ := l.CurrentState()
	if st.GallonsLeft != 600 {
		t.Fatalf("failed append changed state: %+v", st)
	}
}

func TestReset_PartialFailure(t *testing.T) {
	f := &failingStore{failDeleteAfter: 1}
	l := newFailingLedger(t, f)

	if _, err := l.LogApplication("Elk", 50, testMix(), testConditions()); err != nil {
		t.Fatalf("LogApplication: %v", err)
	}
	if _, _, err := l.LogRefill(30); err != nil {
		t.Fatalf("LogRefill: %v", err)
	}

	err := l.Reset()
	var pre *PartialResetError
	if !errors.As(err, &pre) {
		t.Fatalf("got %v, want PartialResetError", err)
	}
	if pre.Deleted != 1 || pre.Remaining != 1 {
		t.Fatalf("partial reset counts = %d deleted / %d remaining, want 1/1", pre.Deleted, pre.Remaining)
	}
	if len(l.Records()) != 1 {
		t.Fatalf("snapshot should keep the surviving record, got %d", len(l.Records()))
	}
}
