// Package report renders a deterministic, human-readable summary of a
// shift's record log.
//
// Build is a pure function of its inputs: the same snapshot, state and
// generation time always produce byte-identical text. Records are
// partitioned into applications and refills by the sentinel road label;
// each partition is rendered most-recent-first, numbered #1 for the newest
// entry in that partition.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/skeeterweed7-rgb/sprayer/pkg/mix"
	"github.com/skeeterweed7-rgb/sprayer/pkg/model"
)

const timeLayout = "2006-01-02 15:04:05"

// Params carries everything Build needs beyond the record log itself.
type Params struct {
	Capacity    float64
	GallonsLeft float64
	OperatorID  string
	GeneratedAt time.Time
	// VolumeDecimals controls volume/quantity rendering precision.
	// Zero means the wire-compatible default of 2.
	VolumeDecimals int
}

// Build renders the shift report. Records must be in total (chronological)
// order, as delivered by the store.
func Build(records []model.Record, p Params) string {
	dec := p.VolumeDecimals
	if dec <= 0 {
		dec = 2
	}
	vol := func(v float64) string { return fmt.Sprintf("%.*f", dec, v) }

	var apps, refills []model.Record
	for _, r := range records {
		if r.IsRefill() {
			refills = append(refills, r)
		} else {
			apps = append(apps, r)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SPRAY SHIFT REPORT\n")
	fmt.Fprintf(&b, "operator:  %s\n", p.OperatorID)
	fmt.Fprintf(&b, "generated: %s\n", p.GeneratedAt.Format(timeLayout))
	fmt.Fprintf(&b, "tank:      %s / %s gal\n", vol(p.GallonsLeft), vol(p.Capacity))
	b.WriteString("\n")

	writeConditions(&b, records)
	b.WriteString("\n")

	fmt.Fprintf(&b, "applications (%d):\n", len(apps))
	if len(apps) == 0 {
		b.WriteString("  none\n")
	}
	for i := len(apps) - 1; i >= 0; i-- {
		r := apps[i]
		fmt.Fprintf(&b, "  #%d %s\n", len(apps)-i, r.RoadName)
		fmt.Fprintf(&b, "     time:      %s\n", formatTime(r.Timestamp))
		fmt.Fprintf(&b, "     used:      %s gal\n", vol(r.GallonsUsed))
		fmt.Fprintf(&b, "     remaining: %s gal\n", vol(r.GallonsLeft))
		for _, c := range r.ChemicalMix {
			fmt.Fprintf(&b, "     %s: %s oz applied (%s oz/gal)\n",
				c.Name, vol(mix.QuantityApplied(r.GallonsUsed, c.OzPerGal)), c.OzPerGal)
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "refills (%d):\n", len(refills))
	if len(refills) == 0 {
		b.WriteString("  none\n")
	}
	for i := len(refills) - 1; i >= 0; i-- {
		r := refills[i]
		fmt.Fprintf(&b, "  #%d added %s gal\n", len(refills)-i, vol(r.GallonsAdded()))
		fmt.Fprintf(&b, "     time:      %s\n", formatTime(r.Timestamp))
		fmt.Fprintf(&b, "     remaining: %s gal\n", vol(r.GallonsLeft))
	}
	return b.String()
}

// writeConditions renders the most recently logged application's weather.
// A refill may be the newest record but never carries conditions, so the
// scan walks back to the last application with a complete set; with none,
// the section says so explicitly instead of printing blank fields.
func writeConditions(b *strings.Builder, records []model.Record) {
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if r.IsRefill() || r.WeatherConditions.Empty() {
			continue
		}
		c := r.WeatherConditions
		fmt.Fprintf(b, "conditions at last application:\n")
		fmt.Fprintf(b, "  weather:     %s\n", c.Weather)
		fmt.Fprintf(b, "  temperature: %.1f F\n", c.Temperature)
		fmt.Fprintf(b, "  wind:        %s at %.1f mph\n", c.WindDirection, c.WindSpeed)
		return
	}
	fmt.Fprintf(b, "conditions at last application: not available\n")
}

// formatTime renders a store-assigned timestamp, or N/A while the store has
// not confirmed one.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(timeLayout)
}
