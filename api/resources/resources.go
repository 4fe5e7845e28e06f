// FilePath: api/resources/resources.go
package resources

import (
	"net/http"

	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/registry"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Devices     *DeviceHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
	Metrics     http.Handler
}

// NewResources creates a new Resources instance
func NewResources(reg *registry.Registry) *Resources {
	return &Resources{
		Devices: &DeviceHandlers{registry: reg},
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}

// SetMetrics sets the metrics scrape handler
func (r *Resources) SetMetrics(h http.Handler) {
	r.Metrics = h
}
