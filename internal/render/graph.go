package render

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/glucodeck/glucodeck/internal/config"
	"github.com/glucodeck/glucodeck/internal/glucose"
	"github.com/glucodeck/glucodeck/internal/models"
)

// Plotting rectangle, inset from the canvas edges to leave room for the
// header line and the gridline labels.
const (
	plotLeft   = 10.0
	plotRight  = 138.0
	plotTop    = 30.0
	plotBottom = 134.0

	axisPadding = 0.15
)

// Graph renders the graph-mode face: threshold bands, gridlines, the sample
// polyline with severity-colored markers, and a header with the current
// reading. Samples are spaced by rank on the x axis, not by elapsed time, so
// gaps in the upload stream compress visually rather than leaving holes.
func Graph(snap *models.Snapshot, history []models.Entry, s config.Settings, now time.Time) string {
	if len(history) == 0 {
		return placeholder("No History")
	}

	unit := s.Unit()
	th := s.Thresholds()

	// Upstream order is not trusted.
	sorted := make([]models.Entry, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	vals := make([]float64, len(sorted))
	for i, e := range sorted {
		vals[i] = glucose.Convert(e.SGV, unit)
	}

	// The axis always spans both the data and the urgent thresholds, padded
	// so extreme values never touch the plot edges.
	axisMin, axisMax := th.UrgentLow, th.UrgentHigh
	for _, v := range vals {
		axisMin = math.Min(axisMin, v)
		axisMax = math.Max(axisMax, v)
	}
	span := axisMax - axisMin
	if span <= 0 {
		span = 1
	}
	axisMin -= span * axisPadding
	axisMax += span * axisPadding

	y := func(v float64) float64 {
		return plotBottom - (v-axisMin)/(axisMax-axisMin)*(plotBottom-plotTop)
	}
	x := func(i int) float64 {
		if len(vals) == 1 {
			return (plotLeft + plotRight) / 2
		}
		return plotLeft + float64(i)*(plotRight-plotLeft)/float64(len(vals)-1)
	}

	var b strings.Builder
	openCanvas(&b)

	// Five alternating bands bounded by the four thresholds, top to bottom.
	band(&b, axisMax, th.UrgentHigh, s.Urgent, axisMin, axisMax, y)
	band(&b, th.UrgentHigh, th.High, s.Alert, axisMin, axisMax, y)
	band(&b, th.High, th.Low, s.InRange, axisMin, axisMax, y)
	band(&b, th.Low, th.UrgentLow, s.Alert, axisMin, axisMax, y)
	band(&b, th.UrgentLow, axisMin, s.Urgent, axisMin, axisMax, y)

	for _, gv := range []float64{math.Round(axisMax), math.Round((axisMax + axisMin) / 2), math.Round(axisMin)} {
		gy := y(gv)
		fmt.Fprintf(&b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#3a3a3c" stroke-width="1"/>`,
			num(plotLeft), num(gy), num(plotRight), num(gy))
		anchoredText(&b, plotLeft+2, gy-2, 9, mutedTextColor, "start", "normal",
			glucose.FormatReading(gv, unit))
	}

	thresholdLine(&b, th.UrgentHigh, s.Urgent, axisMin, axisMax, y)
	thresholdLine(&b, th.High, s.Alert, axisMin, axisMax, y)
	thresholdLine(&b, th.Low, s.Alert, axisMin, axisMax, y)
	thresholdLine(&b, th.UrgentLow, s.Urgent, axisMin, axisMax, y)

	var points strings.Builder
	for i, v := range vals {
		if i > 0 {
			points.WriteByte(' ')
		}
		points.WriteString(num(x(i)) + "," + num(y(v)))
	}
	// Soft outer glow under the trend line.
	fmt.Fprintf(&b, `<polyline points="%s" fill="none" stroke="#ffffff" stroke-width="6" stroke-opacity="0.2" stroke-linejoin="round" stroke-linecap="round"/>`,
		points.String())
	fmt.Fprintf(&b, `<polyline points="%s" fill="none" stroke="#ffffff" stroke-width="2" stroke-linejoin="round" stroke-linecap="round"/>`,
		points.String())

	for i, v := range vals {
		color := severityColor(glucose.Classify(v, th), s)
		if i == len(vals)-1 {
			fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="4.5" fill="%s" stroke="#ffffff" stroke-width="1.5"/>`,
				num(x(i)), num(y(v)), color)
			continue
		}
		fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="2.5" fill="%s"/>`, num(x(i)), num(y(v)), color)
	}

	if snap.HasReading() {
		value := glucose.Convert(snap.BGNow.Last, unit)
		header := fmt.Sprintf("%s %s %s",
			glucose.FormatReading(value, unit),
			deltaText(snap.Delta, unit),
			models.Arrow(snap.Direction.Value))
		anchoredText(&b, plotLeft, 19, 16, severityColor(glucose.Classify(value, th), s), "start", "bold", header)
	}
	anchoredText(&b, plotRight, 19, 11, mutedTextColor, "end", "normal",
		fmt.Sprintf("%dh", s.GraphHours))

	closeCanvas(&b)
	return b.String()
}

// band fills the horizontal stripe between two values, clamped to the padded
// axis range. Degenerate stripes are skipped.
func band(b *strings.Builder, top, bottom float64, color string, axisMin, axisMax float64, y func(float64) float64) {
	top = math.Min(top, axisMax)
	bottom = math.Max(bottom, axisMin)
	if top <= bottom {
		return
	}
	y1 := y(top)
	fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s" fill-opacity="0.16"/>`,
		num(plotLeft), num(y1), num(plotRight-plotLeft), num(y(bottom)-y1), color)
}

func thresholdLine(b *strings.Builder, v float64, color string, axisMin, axisMax float64, y func(float64) float64) {
	if v < axisMin || v > axisMax {
		return
	}
	fmt.Fprintf(b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="1" stroke-dasharray="3,3"/>`,
		num(plotLeft), num(y(v)), num(plotRight), num(y(v)), color)
}
