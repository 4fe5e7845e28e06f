package models

// DeviceFilters defines the available filter options for device listings.
// Decoded from query parameters by the transport layer.
type DeviceFilters struct {
	Type   DeviceType   `json:"type" schema:"type"`
	Status DeviceStatus `json:"status" schema:"status"`
}

// Match reports whether a device summary passes the filter. Zero-valued
// fields match everything.
func (f DeviceFilters) Match(d *DeviceSummary) bool {
	if f.Type != "" && d.Type != f.Type {
		return false
	}
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	return true
}
