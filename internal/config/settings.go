package config

import (
	"encoding/json"

	"github.com/glucodeck/glucodeck/internal/glucose"
)

// Settings are the per-button options supplied by the host's settings store
// with every event. Fields the user never touched are absent from the JSON,
// so decoding happens over a defaults-initialized value.
//
// Threshold values are expressed in the selected unit, not in mg/dL.
type Settings struct {
	URL        string  `json:"url"`
	Secret     string  `json:"secret"`
	Units      string  `json:"units"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	UrgentHigh float64 `json:"urgentHigh"`
	UrgentLow  float64 `json:"urgentLow"`
	InRange    string  `json:"inRangeColor"`
	Alert      string  `json:"alertColor"`
	Urgent     string  `json:"urgentColor"`
	GraphHours int     `json:"graphHours"`
}

var graphHourChoices = map[int]bool{1: true, 2: true, 4: true, 8: true, 12: true, 24: true}

// DefaultSettings returns the defaults merged under absent host fields.
// Thresholds default to the common mg/dL clinical bands.
func DefaultSettings() Settings {
	return Settings{
		Units:      string(glucose.UnitMgdl),
		High:       180,
		Low:        70,
		UrgentHigh: 260,
		UrgentLow:  55,
		InRange:    "#3db860",
		Alert:      "#e5a50a",
		Urgent:     "#e01b24",
		GraphHours: 8,
	}
}

// ParseSettings decodes a host-provided settings blob over the defaults.
// Malformed JSON or out-of-set enum values fall back to defaults rather
// than failing the event.
func ParseSettings(raw json.RawMessage) Settings {
	s := DefaultSettings()
	if len(raw) > 0 {
		// Absent fields keep their default; a decode error keeps all of them.
		_ = json.Unmarshal(raw, &s)
	}
	if s.Units != string(glucose.UnitMmol) {
		s.Units = string(glucose.UnitMgdl)
	}
	if !graphHourChoices[s.GraphHours] {
		s.GraphHours = DefaultSettings().GraphHours
	}
	return s
}

// Unit returns the selected display unit.
func (s Settings) Unit() glucose.Unit {
	return glucose.Unit(s.Units)
}

// Thresholds returns the configured classification boundaries, already in
// the selected unit.
func (s Settings) Thresholds() glucose.Thresholds {
	return glucose.Thresholds{
		High:       s.High,
		Low:        s.Low,
		UrgentHigh: s.UrgentHigh,
		UrgentLow:  s.UrgentLow,
	}
}
