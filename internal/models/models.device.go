// FilePath: internal/models/models.device.go
package models

import "time"

// DeviceStatus describes the current operational state of a device.
type DeviceStatus string

const (
	StatusInitializing DeviceStatus = "initializing"
	StatusOnline       DeviceStatus = "online"
	StatusAlert        DeviceStatus = "alert"
	StatusOffline      DeviceStatus = "offline"
	StatusAPIError     DeviceStatus = "api_error"
)

// DeviceType distinguishes the task variant backing a device.
type DeviceType string

const (
	TypeGenerator      DeviceType = "generator"
	TypeWeatherStation DeviceType = "weather_station"
)

// Metric is the static shape of one measured quantity. Metrics are
// immutable once their device has been created; Min must be < Max.
type Metric struct {
	Name string  `json:"name" db:"name"`
	Unit string  `json:"unit" db:"unit"`
	Min  float64 `json:"min" db:"min"`
	Max  float64 `json:"max" db:"max"`
}

// Threshold holds the optional alert bounds for a single metric. A nil
// side is never alerted on.
type Threshold struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// AlertPolicy maps metric names to their configured thresholds. A metric
// absent from the map never alerts.
type AlertPolicy struct {
	Alerts map[string]Threshold `json:"alerts"`
}

// Clone returns a deep copy so callers can hold a policy without racing
// against reconfiguration.
func (p AlertPolicy) Clone() AlertPolicy {
	if p.Alerts == nil {
		return AlertPolicy{}
	}
	alerts := make(map[string]Threshold, len(p.Alerts))
	for name, t := range p.Alerts {
		alerts[name] = t
	}
	return AlertPolicy{Alerts: alerts}
}

// DeviceConfig is the persisted, user-mutable portion of a device.
type DeviceConfig struct {
	Alerts map[string]Threshold `json:"alerts"`
}

// DeviceDefinition is the durable description of a device: everything
// needed to recreate it on restart, and nothing runtime-derived.
type DeviceDefinition struct {
	DeviceType DeviceType   `json:"device_type"`
	Metrics    []Metric     `json:"metrics"`
	Config     DeviceConfig `json:"config"`
}

// DeviceSummary is the read-model handed to the transport layer. It is a
// consistent snapshot taken under the registry lock.
type DeviceSummary struct {
	ID            string             `json:"id"`
	Type          DeviceType         `json:"type"`
	Metrics       []Metric           `json:"metrics"`
	Policy        AlertPolicy        `json:"policy"`
	Status        DeviceStatus       `json:"status"`
	LastValues    map[string]float64 `json:"last_values"`
	CurrentAlerts map[string]string  `json:"current_alerts"`
	LastSeen      time.Time          `json:"last_seen"`
	History       HistorySnapshot    `json:"history"`
}
