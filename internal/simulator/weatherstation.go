// FilePath: internal/simulator/weatherstation.go
package simulator

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/history"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/models"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/weather"
)

// RainfallSentinel is recorded when a fetch attempt fails, so every
// attempt still produces exactly one reading.
const RainfallSentinel = -1

// RainfallMetric is the single metric a weather station reports.
var RainfallMetric = models.Metric{Name: "rainfall", Unit: "mm", Min: 0, Max: 50}

// WeatherStation polls an external rainfall source. Unlike generators
// its status reflects the fetch outcome, not alert thresholds, and it
// accepts no reconfiguration.
type WeatherStation struct {
	id     string
	source weather.RainfallSource

	mu         *sync.Mutex
	status     models.DeviceStatus
	lastValues map[string]float64
	lastSeen   time.Time
	history    *history.Buffer

	interval     time.Duration
	fetchTimeout time.Duration
	hooks        Hooks

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewWeatherStation creates the external-poller device.
func NewWeatherStation(id string, source weather.RainfallSource, cfg Config) *WeatherStation {
	cfg.applyDefaults()
	return &WeatherStation{
		id:           id,
		source:       source,
		mu:           cfg.Lock,
		status:       models.StatusInitializing,
		lastValues:   make(map[string]float64, 1),
		history:      history.NewBuffer(cfg.HistoryCapacity),
		interval:     cfg.PollInterval,
		fetchTimeout: cfg.FetchTimeout,
		hooks:        cfg.Hooks,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

func (w *WeatherStation) ID() string              { return w.id }
func (w *WeatherStation) Type() models.DeviceType { return models.TypeWeatherStation }
func (w *WeatherStation) Configurable() bool      { return false }

// Start launches the poll loop; the first fetch happens immediately.
func (w *WeatherStation) Start() {
	go w.run()
}

// Stop terminates the poll loop and blocks until it has exited.
func (w *WeatherStation) Stop() {
	w.once.Do(func() { close(w.stop) })
	<-w.done
}

func (w *WeatherStation) run() {
	defer close(w.done)
	defer func() {
		if r := recover(); r != nil {
			nuts.L.Errorf("[WeatherStation:%s] task panic, loop terminated: %v", w.id, r)
		}
	}()

	for {
		select {
		case <-w.stop:
			return
		default:
		}

		w.poll(time.Now())

		select {
		case <-w.stop:
			return
		case <-time.After(w.interval):
		}
	}
}

// poll performs one fetch attempt and records its outcome. Transport
// failures (including timeouts) mark the station Offline; a reachable
// but erroring upstream marks it ApiError. Both record the sentinel.
func (w *WeatherStation) poll(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), w.fetchTimeout)
	rainfall, err := w.source.CurrentRainfall(ctx)
	cancel()

	status := models.StatusOnline
	value := math.Round(rainfall*100) / 100
	switch {
	case err == nil:
	case errors.Is(err, weather.ErrRemote):
		status = models.StatusAPIError
		value = RainfallSentinel
		nuts.L.Warnf("[WeatherStation:%s] upstream error: %v", w.id, err)
	default:
		status = models.StatusOffline
		value = RainfallSentinel
		nuts.L.Warnf("[WeatherStation:%s] fetch failed: %v", w.id, err)
	}

	w.mu.Lock()
	w.status = status
	w.lastValues[RainfallMetric.Name] = value
	w.lastSeen = now
	w.history.Append(models.Reading{
		DeviceID:   w.id,
		DeviceType: models.TypeWeatherStation,
		Timestamp:  now,
		Values:     map[string]float64{RainfallMetric.Name: value},
	})
	w.mu.Unlock()

	if w.hooks.OnReading != nil {
		w.hooks.OnReading(w.id, models.TypeWeatherStation)
	}
	if w.hooks.OnFetch != nil {
		w.hooks.OnFetch(w.id, status)
	}
}

// UpdatePolicy is a no-op: the station has no configurable thresholds.
// The registry rejects reconfiguration before it gets here.
func (w *WeatherStation) UpdatePolicy(models.AlertPolicy) {}

// Definition describes the station. It is never persisted (the station
// is permanent and recreated at startup) but callers still get a
// uniform view.
func (w *WeatherStation) Definition() models.DeviceDefinition {
	return models.DeviceDefinition{
		DeviceType: models.TypeWeatherStation,
		Metrics:    []models.Metric{RainfallMetric},
		Config:     models.DeviceConfig{},
	}
}

// Summary returns a consistent snapshot. Caller holds the shared lock.
func (w *WeatherStation) Summary() models.DeviceSummary {
	lastValues := make(map[string]float64, len(w.lastValues))
	for name, v := range w.lastValues {
		lastValues[name] = v
	}
	return models.DeviceSummary{
		ID:            w.id,
		Type:          models.TypeWeatherStation,
		Metrics:       []models.Metric{RainfallMetric},
		Policy:        models.AlertPolicy{},
		Status:        w.status,
		LastValues:    lastValues,
		CurrentAlerts: map[string]string{},
		LastSeen:      w.lastSeen,
		History:       w.history.Snapshot(),
	}
}
