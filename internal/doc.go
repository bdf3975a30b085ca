// Package glucodeck implements a button-deck plugin for glucose monitoring.
//
// # Architecture
//
// The plugin is structured into several key packages:
//   - api: read-only client for the remote glucose source
//   - config: plugin-level config file and per-button settings
//   - glucose: unit conversion and threshold classification
//   - models: shared data structures for snapshot and history
//   - render: number and graph faces as vector markup
//   - scheduler: instance registry and fetch/render timing loops
//   - streamdeck: host WebSocket protocol
//   - metrics: Prometheus collectors
//
// Key Features
//
//   - Adaptive polling:
//     The fetch loop polls every 30 seconds by default, shortening the wait
//     when the remote's bucket metadata says a reading is imminent, and
//     backing off to 60 seconds after failures.
//
//   - Two display modes:
//     A large-number face and a trend-graph face, toggled by a short press;
//     a long press forces a refresh.
//
//   - Stale tolerance:
//     History fetch failures keep the previous series so graph mode degrades
//     instead of going blank.
//
// For more information about specific packages, see their respective
// documentation.
package glucodeck
