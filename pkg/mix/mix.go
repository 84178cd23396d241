// Package mix converts between "total ounces added to the tank" and
// "ounces per gallon of tank volume".
//
// Ratios are carried as fixed-decimal strings (see model.Chemical.OzPerGal):
// the textual form is what gets persisted, so a historical application's
// concentration is frozen at log time and never shifts with later float
// formatting or capacity changes.
package mix

import (
	"fmt"
	"strconv"

	"github.com/skeeterweed7-rgb/sprayer/pkg/model"
)

// DefaultRatioDecimals is the stored precision of a concentration ratio.
// Kept at 4 for compatibility with existing shift records.
const DefaultRatioDecimals = 4

// Ratio returns totalOz/referenceGal as a fixed-decimal string. A
// non-positive reference volume yields the zero ratio rather than a
// division by zero.
func Ratio(totalOz, referenceGal float64, decimals int) string {
	if decimals < 0 {
		decimals = DefaultRatioDecimals
	}
	if referenceGal <= 0 {
		return strconv.FormatFloat(0, 'f', decimals, 64)
	}
	return strconv.FormatFloat(totalOz/referenceGal, 'f', decimals, 64)
}

// QuantityApplied reconstructs how many ounces of a chemical were dispensed
// on an application: the gallons actually used times the frozen ratio.
// A malformed ratio counts as zero.
func QuantityApplied(gallonsUsed float64, ozPerGal string) float64 {
	ratio, err := strconv.ParseFloat(ozPerGal, 64)
	if err != nil {
		return 0
	}
	return gallonsUsed * ratio
}

// Batch is the staged, not-yet-logged chemical mix for the next
// application. Ratios of staged chemicals track the reference tank volume:
// editing the volume before logging recomputes every staged ratio. Once the
// ledger copies a batch into a record, the copies are frozen — a Batch never
// reaches back into history.
type Batch struct {
	referenceGal float64
	decimals     int
	chems        []model.Chemical
}

// NewBatch creates an empty staged mix against the given reference volume.
func NewBatch(referenceGal float64, decimals int) *Batch {
	if decimals < 0 {
		decimals = DefaultRatioDecimals
	}
	return &Batch{referenceGal: referenceGal, decimals: decimals}
}

// Add stages a chemical, computing its ratio against the current reference
// volume.
func (b *Batch) Add(name string, totalOz float64) error {
	if name == "" {
		return fmt.Errorf("chemical name is required")
	}
	if totalOz <= 0 {
		return fmt.Errorf("chemical %q: total ounces must be positive, got %v", name, totalOz)
	}
	b.chems = append(b.chems, model.Chemical{
		Name:     name,
		TotalOz:  totalOz,
		OzPerGal: Ratio(totalOz, b.referenceGal, b.decimals),
	})
	return nil
}

// SetReferenceVolume changes the reference tank volume and recomputes every
// staged ratio against it.
func (b *Batch) SetReferenceVolume(gal float64) {
	b.referenceGal = gal
	for i := range b.chems {
		b.chems[i].OzPerGal = Ratio(b.chems[i].TotalOz, gal, b.decimals)
	}
}

// Chemicals returns a copy of the staged mix.
func (b *Batch) Chemicals() []model.Chemical {
	out := make([]model.Chemical, len(b.chems))
	copy(out, b.chems)
	return out
}

// Len returns the number of staged chemicals.
func (b *Batch) Len() int { return len(b.chems) }
