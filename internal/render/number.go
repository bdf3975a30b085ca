package render

import (
	"strings"
	"time"

	"github.com/glucodeck/glucodeck/internal/config"
	"github.com/glucodeck/glucodeck/internal/glucose"
	"github.com/glucodeck/glucodeck/internal/models"
)

// Number renders the number-mode face: the current reading large and
// centered, the trend arrow and delta beneath it, and a muted elapsed-time
// label at the bottom.
func Number(snap *models.Snapshot, s config.Settings, now time.Time) string {
	if !snap.HasReading() {
		return placeholder("No Data")
	}

	unit := s.Unit()
	value := glucose.Convert(snap.BGNow.Last, unit)
	color := severityColor(glucose.Classify(value, s.Thresholds()), s)

	var b strings.Builder
	openCanvas(&b)
	centeredText(&b, 66, 44, color, "bold", glucose.FormatReading(value, unit))
	centeredText(&b, 98, 20, lightTextColor, "normal",
		models.Arrow(snap.Direction.Value)+" "+deltaText(snap.Delta, unit))
	centeredText(&b, 130, 13, mutedTextColor, "normal", AgoLabel(snap.BGNow.Time(), now))
	closeCanvas(&b)
	return b.String()
}

// deltaText prefers the upstream display string. When the display unit is
// mmol/L the upstream string is still in mg/dL, so the scaled numeric delta
// is rescaled and reformatted instead, provided upstream supplied one.
func deltaText(d models.Delta, unit glucose.Unit) string {
	if unit == glucose.UnitMmol && d.Scaled != nil {
		return glucose.FormatDelta(glucose.ConvertDelta(*d.Scaled, unit), unit)
	}
	if d.Display != "" {
		return d.Display
	}
	if d.Scaled != nil {
		return glucose.FormatDelta(*d.Scaled, unit)
	}
	return ""
}
