// Package render turns a fetched snapshot (and optional history) into the
// vector markup shown on the button face. Both renderers are pure functions
// of their inputs; the only ambient input is the wall-clock time used for the
// elapsed-time label, passed in explicitly so tests stay deterministic.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/glucodeck/glucodeck/internal/config"
	"github.com/glucodeck/glucodeck/internal/glucose"
)

// Canvas is the logical button face size in both dimensions.
const Canvas = 144

const (
	backgroundColor = "#1c1c1e"
	lightTextColor  = "#d1d1d6"
	mutedTextColor  = "#8e8e93"
	fontFamily      = "Verdana, Geneva, sans-serif"
)

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func escape(s string) string {
	return textEscaper.Replace(s)
}

func openCanvas(b *strings.Builder) {
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		Canvas, Canvas, Canvas, Canvas)
	fmt.Fprintf(b, `<rect width="%d" height="%d" fill="%s"/>`, Canvas, Canvas, backgroundColor)
}

func closeCanvas(b *strings.Builder) {
	b.WriteString(`</svg>`)
}

func centeredText(b *strings.Builder, y float64, size float64, color, weight, content string) {
	anchoredText(b, Canvas/2, y, size, color, "middle", weight, content)
}

func anchoredText(b *strings.Builder, x, y, size float64, color, anchor, weight, content string) {
	fmt.Fprintf(b,
		`<text x="%s" y="%s" font-family="%s" font-size="%s" font-weight="%s" fill="%s" text-anchor="%s">%s</text>`,
		num(x), num(y), fontFamily, num(size), weight, color, anchor, escape(content))
}

// placeholder renders a centered message on the plain background, used for
// the empty-data states of both modes.
func placeholder(message string) string {
	var b strings.Builder
	openCanvas(&b)
	centeredText(&b, 78, 18, mutedTextColor, "bold", message)
	closeCanvas(&b)
	return b.String()
}

// num formats a coordinate without trailing zero noise.
func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func severityColor(sev glucose.Severity, s config.Settings) string {
	switch sev {
	case glucose.SeverityUrgent:
		return s.Urgent
	case glucose.SeverityAlert:
		return s.Alert
	default:
		return s.InRange
	}
}

// AgoLabel formats the time elapsed since the reading. Readings between one
// and five minutes old show a dashed placeholder instead of the count.
//
// TODO: show the real minute count in the 1-5m window; the dashes mirror the
// upstream web UI's behavior and changing it needs product sign-off.
func AgoLabel(readingAt, now time.Time) string {
	mins := int(now.Sub(readingAt).Minutes())
	switch {
	case mins <= 0:
		return "now"
	case mins <= 5:
		return "----"
	default:
		return fmt.Sprintf("%dm ago", mins)
	}
}
