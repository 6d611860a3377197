// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - HTTP API with WebSocket push, Prometheus metrics, badger almanac
// 0.2.0 - Bubble Tea dashboard, lunar event log, next full/new moon search
// 0.1.0 - Initial release: sidereal signs, nakshatra, tithi, headless now mode
