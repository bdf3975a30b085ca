package models

import "time"

// Snapshot is the decoded response of the combined-properties endpoint
// (bgnow, buckets, delta, direction). It is replaced wholesale on every
// successful fetch and never merged field by field.
type Snapshot struct {
	BGNow     BGNow     `json:"bgnow"`
	Buckets   []Bucket  `json:"buckets"`
	Delta     Delta     `json:"delta"`
	Direction Direction `json:"direction"`
}

// HasReading reports whether the snapshot carries a usable current reading.
func (s *Snapshot) HasReading() bool {
	return s != nil && s.BGNow.Mills > 0
}

// BGNow is the most recent sensor reading as reported upstream, in mg/dL.
type BGNow struct {
	Mean  float64 `json:"mean"`
	Last  float64 `json:"last"`
	Mills int64   `json:"mills"`
}

// Time returns the reading timestamp.
func (b BGNow) Time() time.Time {
	return time.UnixMilli(b.Mills)
}

// Bucket is an upstream-reported time interval. Only the most recent bucket
// is consulted, to estimate when the next reading will arrive.
type Bucket struct {
	Index     int   `json:"index"`
	FromMills int64 `json:"fromMills"`
	ToMills   int64 `json:"toMills"`
}

// End returns the later boundary of the bucket.
func (b Bucket) End() time.Time {
	if b.FromMills > b.ToMills {
		return time.UnixMilli(b.FromMills)
	}
	return time.UnixMilli(b.ToMills)
}

// Duration returns the bucket length. Boundaries arrive in either order.
func (b Bucket) Duration() time.Duration {
	d := b.FromMills - b.ToMills
	if d < 0 {
		d = -d
	}
	return time.Duration(d) * time.Millisecond
}

// Delta describes the short-term change between the two latest readings.
// Display is the upstream-formatted string; Scaled is the numeric change in
// mg/dL suitable for re-scaling into the configured unit. Scaled is a
// pointer so an absent field is distinguishable from a genuine zero change.
type Delta struct {
	Absolute    float64  `json:"absolute"`
	ElapsedMins float64  `json:"elapsedMins"`
	Display     string   `json:"display"`
	Scaled      *float64 `json:"scaled"`
}

// Direction is the upstream trend label, e.g. "Flat" or "FortyFiveUp".
type Direction struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Entry is a single history sample from the entries endpoint, in mg/dL.
type Entry struct {
	SGV        float64 `json:"sgv"`
	Date       int64   `json:"date"`
	DateString string  `json:"dateString"`
	Direction  string  `json:"direction"`
}

// Time returns the sample timestamp.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.Date)
}

var arrows = map[string]string{
	"DoubleUp":          "⇈",
	"SingleUp":          "↑",
	"FortyFiveUp":       "↗",
	"Flat":              "→",
	"FortyFiveDown":     "↘",
	"SingleDown":        "↓",
	"DoubleDown":        "⇊",
	"NOT COMPUTABLE":    "?",
	"RATE OUT OF RANGE": "⚠",
}

// Arrow maps an upstream direction label to its display glyph. Labels
// outside the fixed vocabulary are passed through as literal text.
func Arrow(direction string) string {
	if a, ok := arrows[direction]; ok {
		return a
	}
	return direction
}
