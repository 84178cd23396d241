// Package model defines the core domain types for the spray-tank ledger.
//
// A work shift is an append-only sequence of immutable records. Each record
// is either an application (chemical liquid dispensed on a named road) or a
// refill (liquid added back to the tank). Every record carries its own
// post-state — the gallons left and the tank capacity in effect when it was
// written — so current state is always derivable from the tail of the log.
//
// The JSON field names here are the wire/storage contract and must not
// change: existing shift databases and any downstream consumer of exported
// records depend on them.
package model

import "time"

// RefillLabel is the sentinel road name that marks a refill record.
// Refills never carry chemicals or weather conditions.
const RefillLabel = "REFILL"

// Chemical is one component of an application's mix. OzPerGal is the
// concentration frozen at log time, stored as a fixed 4-decimal string so
// historical ratios stay stable and human-reviewable regardless of later
// float formatting changes.
type Chemical struct {
	Name     string  `json:"name"`
	TotalOz  float64 `json:"totalOz"`
	OzPerGal string  `json:"ozPerGal"`
}

// Conditions records the weather at the time of an application. All four
// fields are required on an application; a refill carries the zero value,
// which serializes as an empty object rather than null.
type Conditions struct {
	Weather       string  `json:"weather,omitempty"`
	Temperature   float64 `json:"temperature,omitempty"`
	WindDirection string  `json:"windDirection,omitempty"`
	WindSpeed     float64 `json:"windSpeed,omitempty"`
}

// Empty reports whether no condition field is set (the refill case).
func (c Conditions) Empty() bool {
	return c.Weather == "" && c.Temperature == 0 && c.WindDirection == "" && c.WindSpeed == 0
}

// Complete reports whether every condition field is set. Zero-equivalent
// values count as missing.
func (c Conditions) Complete() bool {
	return c.Weather != "" && c.Temperature != 0 && c.WindDirection != "" && c.WindSpeed != 0
}

// Record is a single entry in the append-only shift log.
//
// GallonsUsed is signed: positive for an application (volume consumed),
// negative for a refill (volume added). GallonsLeft is the tank volume
// remaining after the record, always within [0, InitialTankVolume].
// InitialTankVolume is the capacity in effect when the record was written.
// ID and Timestamp are assigned by the store on append; a zero Timestamp
// means the store has not confirmed the record yet.
type Record struct {
	ID                int64      `json:"id,omitempty"`
	RoadName          string     `json:"roadName"`
	GallonsUsed       float64    `json:"gallonsUsed"`
	GallonsLeft       float64    `json:"gallonsLeft"`
	InitialTankVolume float64    `json:"initialTankVolume"`
	ChemicalMix       []Chemical `json:"chemicalMix"`
	WeatherConditions Conditions `json:"weatherConditions"`
	Timestamp         time.Time  `json:"timestamp,omitempty"`
}

// IsRefill reports whether the record is a refill, discriminated by the
// sentinel road label.
func (r Record) IsRefill() bool { return r.RoadName == RefillLabel }

// GallonsAdded returns the volume a refill added (the absolute value of its
// negative delta). Zero for applications.
func (r Record) GallonsAdded() float64 {
	if r.GallonsUsed < 0 {
		return -r.GallonsUsed
	}
	return 0
}
