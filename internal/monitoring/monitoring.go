// FilePath: internal/monitoring/monitoring.go
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	nuts "github.com/vaudience/go-nuts"

	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/models"
)

var (
	// ReadingsTotal tracks readings appended per device
	ReadingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iotdash_readings_total",
			Help: "Total number of readings appended to device histories",
		},
		[]string{"device_id", "device_type"},
	)

	// WeatherFetchesTotal tracks weather poll attempts by outcome
	WeatherFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iotdash_weather_fetches_total",
			Help: "Total number of weather fetch attempts by resulting status",
		},
		[]string{"status"},
	)

	// AlertTransitionsTotal tracks alert-set changes per device
	AlertTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iotdash_alert_transitions_total",
			Help: "Total number of times a device's active alert set changed",
		},
		[]string{"device_id"},
	)

	// DevicesActive tracks the number of registered devices
	DevicesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "iotdash_devices_active",
			Help: "Number of devices currently registered",
		},
	)

	// EventsTotal tracks registry lifecycle events
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iotdash_events_total",
			Help: "Total number of registry lifecycle events",
		},
		[]string{"event"},
	)

	// AppStartTime records when the application started
	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "iotdash_app_start_time_seconds",
			Help: "Unix timestamp of when the application started",
		},
	)
)

func init() {
	AppStartTime.SetToCurrentTime()
}

// Service provides monitoring functionality
type Service struct{}

// NewService creates a new monitoring service
func NewService() *Service {
	return &Service{}
}

// Handler exposes the Prometheus scrape endpoint
func (s *Service) Handler() http.Handler {
	return promhttp.Handler()
}

// RecordEvent records a registry lifecycle event with labels
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	EventsTotal.WithLabelValues(eventName).Inc()
	nuts.L.Infof("[Monitoring] Event %s recorded with labels: %v", eventName, labels)
}

// RecordReading counts one appended reading
func (s *Service) RecordReading(deviceID string, deviceType models.DeviceType) {
	ReadingsTotal.WithLabelValues(deviceID, string(deviceType)).Inc()
}

// RecordFetch counts one weather fetch attempt by outcome
func (s *Service) RecordFetch(status models.DeviceStatus) {
	WeatherFetchesTotal.WithLabelValues(string(status)).Inc()
}

// RecordAlertTransition counts one alert-set change
func (s *Service) RecordAlertTransition(deviceID string) {
	AlertTransitionsTotal.WithLabelValues(deviceID).Inc()
}

// SetDeviceCount updates the active device gauge
func (s *Service) SetDeviceCount(n int) {
	DevicesActive.Set(float64(n))
}
