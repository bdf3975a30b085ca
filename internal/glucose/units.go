// Package glucose holds the pure unit-conversion and threshold-classification
// helpers shared by both rendering modes. Upstream values always arrive in
// mg/dL; user-configured thresholds are expressed in whichever unit the user
// selected, so callers must convert readings with the same unit before
// comparing against thresholds.
package glucose

import (
	"fmt"
	"math"
)

// Unit is the display unit for glucose values.
type Unit string

const (
	UnitMgdl Unit = "mgdl"
	UnitMmol Unit = "mmol"
)

// One mmol/L of glucose is 18 mg/dL.
const mgdlPerMmol = 18.0

// Convert maps a raw mg/dL reading into the display unit. mmol/L values are
// rounded to one decimal place; mg/dL values are left untouched.
func Convert(mgdl float64, unit Unit) float64 {
	if unit == UnitMmol {
		return math.Round(mgdl/mgdlPerMmol*10) / 10
	}
	return mgdl
}

// ConvertDelta rescales a mg/dL delta into the display unit, rounded to two
// decimal places for mmol/L.
func ConvertDelta(mgdl float64, unit Unit) float64 {
	if unit == UnitMmol {
		return math.Round(mgdl/mgdlPerMmol*100) / 100
	}
	return mgdl
}

// FormatReading renders a converted value for display: one decimal place in
// mmol/L, integral in mg/dL.
func FormatReading(v float64, unit Unit) string {
	if unit == UnitMmol {
		return fmt.Sprintf("%.1f", v)
	}
	return fmt.Sprintf("%d", int(math.Round(v)))
}

// FormatDelta renders a converted delta with an explicit sign. Non-negative
// deltas get a "+" prefix.
func FormatDelta(v float64, unit Unit) string {
	if unit == UnitMmol {
		return fmt.Sprintf("%+.2f", v)
	}
	return fmt.Sprintf("%+d", int(math.Round(v)))
}

// Severity is the three-tier classification of a reading against the
// configured thresholds.
type Severity int

const (
	SeverityInRange Severity = iota
	SeverityAlert
	SeverityUrgent
)

// Thresholds are the four classification boundaries, expressed in the same
// unit as the values they are compared against.
type Thresholds struct {
	High       float64
	Low        float64
	UrgentHigh float64
	UrgentLow  float64
}

// Classify buckets a value into a severity band. Boundaries are inclusive on
// the alert side: a value exactly at a threshold is already alerting.
func Classify(v float64, t Thresholds) Severity {
	switch {
	case v >= t.UrgentHigh || v <= t.UrgentLow:
		return SeverityUrgent
	case v >= t.High || v <= t.Low:
		return SeverityAlert
	default:
		return SeverityInRange
	}
}
