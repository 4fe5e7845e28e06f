// FilePath: internal/alerting/alerting.go
package alerting

import (
	"fmt"
	"strings"

	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/models"
)

// Evaluate checks current metric values against a policy and returns a
// description per breached metric. Metrics are evaluated independently:
// a configured max bound wins over a min bound when the value exceeds
// it, a metric without bounds never alerts. An empty result means the
// device is within limits.
func Evaluate(values map[string]float64, policy models.AlertPolicy) map[string]string {
	alerts := make(map[string]string)
	for name, threshold := range policy.Alerts {
		value, ok := values[name]
		if !ok {
			continue
		}
		switch {
		case threshold.Max != nil && value > *threshold.Max:
			alerts[name] = fmt.Sprintf("high: %.2f exceeds maximum %.2f", value, *threshold.Max)
		case threshold.Min != nil && value < *threshold.Min:
			alerts[name] = fmt.Sprintf("low: %.2f below minimum %.2f", value, *threshold.Min)
		}
	}
	return alerts
}

// Changed reports whether the active alert set transitioned: a metric
// started or stopped alerting, or flipped between high and low. The
// value embedded in the description is ignored, so a sustained breach
// counts as one transition, not one per cycle.
func Changed(old, new map[string]string) bool {
	if len(old) != len(new) {
		return true
	}
	for name, msg := range new {
		prev, ok := old[name]
		if !ok || kind(prev) != kind(msg) {
			return true
		}
	}
	return false
}

// kind extracts the direction ("high" or "low") from a description.
func kind(msg string) string {
	if i := strings.IndexByte(msg, ':'); i >= 0 {
		return msg[:i]
	}
	return msg
}

// StatusFor derives a generator device status from its active alerts.
func StatusFor(alerts map[string]string) models.DeviceStatus {
	if len(alerts) > 0 {
		return models.StatusAlert
	}
	return models.StatusOnline
}
