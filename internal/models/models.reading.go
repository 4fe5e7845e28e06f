// FilePath: internal/models/models.reading.go
package models

import "time"

// Reading is one timestamped snapshot of all metric values a device
// reported in a single cycle. Immutable once appended to a history.
type Reading struct {
	DeviceID   string             `json:"device_id"`
	DeviceType DeviceType         `json:"device_type"`
	Timestamp  time.Time          `json:"timestamp"`
	Values     map[string]float64 `json:"values"`
}

// HistorySnapshot is the presentation view of a history buffer: one
// timestamps array plus one value series per metric, aligned by index.
// A metric missing from a given reading reports as null in its series.
type HistorySnapshot struct {
	Timestamps []time.Time           `json:"timestamps"`
	Series     map[string][]*float64 `json:"series"`
}
