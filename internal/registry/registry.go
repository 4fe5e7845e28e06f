// FilePath: internal/registry/registry.go
package registry

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/errors"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/models"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/simulator"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/store"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/weather"
)

// DefaultWeatherStationID names the permanent external-poller device.
const DefaultWeatherStationID = "weather-station"

// SeedDevice describes a generator created on first start when the
// durable store is empty.
type SeedDevice struct {
	ID      string
	Metrics []models.Metric
	Policy  models.AlertPolicy
}

// Options configures a Registry.
type Options struct {
	Store            store.Store
	WeatherSource    weather.RainfallSource
	WeatherStationID string
	HistoryCapacity  int
	TickMin          time.Duration
	TickMax          time.Duration
	PollInterval     time.Duration
	FetchTimeout     time.Duration
	Hooks            simulator.Hooks
	Seed             []SeedDevice
}

// Registry is the authoritative, concurrency-safe collection of active
// devices. One coarse mutex serializes structural map changes, device
// field mutations inside task cycles, and cross-device read snapshots.
// Persistence writes happen after the lock is released, best-effort:
// a failed save is reported to the caller but the in-memory change
// stays committed.
type Registry struct {
	mu      sync.Mutex
	devices map[string]simulator.Device

	store     store.Store
	events    *nuts.EventEmitter
	weatherID string
	taskCfg   simulator.Config
}

// New builds the registry, creates the permanent weather station,
// restores persisted devices and starts every task. A corrupt or
// unreadable store is logged and treated as empty rather than failing
// startup.
func New(ctx context.Context, opts Options) *Registry {
	weatherID := normalizeID(opts.WeatherStationID)
	if weatherID == "" {
		weatherID = DefaultWeatherStationID
	}

	r := &Registry{
		devices:   make(map[string]simulator.Device),
		store:     opts.Store,
		events:    nuts.NewEventEmitter(),
		weatherID: weatherID,
	}
	r.taskCfg = simulator.Config{
		Lock:            &r.mu,
		HistoryCapacity: opts.HistoryCapacity,
		TickMin:         opts.TickMin,
		TickMax:         opts.TickMax,
		PollInterval:    opts.PollInterval,
		FetchTimeout:    opts.FetchTimeout,
		Hooks:           opts.Hooks,
	}

	// The weather station is permanent: always present regardless of
	// what the store contains, never persisted itself.
	if opts.WeatherSource != nil {
		station := simulator.NewWeatherStation(weatherID, opts.WeatherSource, r.taskCfg)
		r.devices[weatherID] = station
		station.Start()
	}

	restored := r.restore(ctx)
	if restored == 0 && len(opts.Seed) > 0 {
		for _, seed := range opts.Seed {
			if _, err := r.Create(ctx, seed.ID, seed.Metrics, seed.Policy); err != nil {
				nuts.L.Warnf("[Registry] failed to seed device %s: %v", seed.ID, err)
			}
		}
	}

	nuts.L.Infof("[Registry] Started with %d devices (%d restored)", r.Count(), restored)
	return r
}

func (r *Registry) restore(ctx context.Context) int {
	definitions, err := r.store.Load(ctx)
	if err != nil {
		nuts.L.Warnf("[Registry] could not load persisted devices, starting empty: %v", err)
		return 0
	}

	restored := 0
	for id, def := range definitions {
		id = normalizeID(id)
		if id == "" || id == r.weatherID || def.DeviceType == models.TypeWeatherStation {
			continue
		}
		if err := validateMetrics(def.Metrics); err != nil {
			nuts.L.Warnf("[Registry] skipping persisted device %s: %v", id, err)
			continue
		}
		dev := simulator.NewGenerator(id, def.Metrics, models.AlertPolicy{Alerts: def.Config.Alerts}, r.taskCfg)
		r.mu.Lock()
		r.devices[id] = dev
		r.mu.Unlock()
		dev.Start()
		restored++
	}
	return restored
}

// Create registers and starts a new generator device. The id is
// case-normalized; metrics must be non-empty with unique names and
// min < max. On persistence failure the device is still created and
// the summary is returned alongside the error.
func (r *Registry) Create(ctx context.Context, id string, metrics []models.Metric, policy models.AlertPolicy) (*models.DeviceSummary, error) {
	id = normalizeID(id)
	if id == "" {
		return nil, errors.NewValidationError("device id is required", nil)
	}
	if err := validateMetrics(metrics); err != nil {
		return nil, err
	}

	dev := simulator.NewGenerator(id, metrics, policy, r.taskCfg)

	r.mu.Lock()
	if _, exists := r.devices[id]; exists {
		r.mu.Unlock()
		return nil, errors.NewDuplicateError("device already exists: "+id, nil)
	}
	r.devices[id] = dev
	summary := dev.Summary()
	r.mu.Unlock()

	dev.Start()
	r.events.Emit("device.created", id)
	nuts.L.Infof("[Registry] Created device %s with %d metrics", id, len(metrics))

	if err := r.persist(ctx); err != nil {
		return &summary, err
	}
	return &summary, nil
}

// Get returns a consistent snapshot of one device.
func (r *Registry) Get(ctx context.Context, id string) (*models.DeviceSummary, error) {
	id = normalizeID(id)

	r.mu.Lock()
	defer r.mu.Unlock()
	dev, ok := r.devices[id]
	if !ok {
		return nil, errors.NewNotFoundError("device not found: "+id, nil)
	}
	summary := dev.Summary()
	return &summary, nil
}

// List returns snapshots of all devices matching the filter, sorted by
// id for deterministic presentation order. The whole snapshot is taken
// under one lock acquisition so no device is observed mid-update.
func (r *Registry) List(ctx context.Context, filters models.DeviceFilters) []models.DeviceSummary {
	r.mu.Lock()
	summaries := make([]models.DeviceSummary, 0, len(r.devices))
	for _, dev := range r.devices {
		summary := dev.Summary()
		if filters.Match(&summary) {
			summaries = append(summaries, summary)
		}
	}
	r.mu.Unlock()

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ID < summaries[j].ID
	})
	return summaries
}

// Delete stops a device's task and removes it. The permanent weather
// station cannot be deleted. The task is stopped outside the lock
// because its current cycle may be waiting on that same lock.
func (r *Registry) Delete(ctx context.Context, id string) error {
	id = normalizeID(id)

	r.mu.Lock()
	dev, ok := r.devices[id]
	if !ok {
		r.mu.Unlock()
		return errors.NewNotFoundError("device not found: "+id, nil)
	}
	if id == r.weatherID {
		r.mu.Unlock()
		return errors.NewForbiddenError("the weather station cannot be deleted", nil)
	}
	delete(r.devices, id)
	r.mu.Unlock()

	dev.Stop()
	r.events.Emit("device.deleted", id)
	nuts.L.Infof("[Registry] Deleted device %s", id)

	return r.persist(ctx)
}

// Reconfigure replaces a device's alert policy. It takes effect on the
// task's next cycle. Forbidden for the weather station.
func (r *Registry) Reconfigure(ctx context.Context, id string, policy models.AlertPolicy) error {
	id = normalizeID(id)

	r.mu.Lock()
	dev, ok := r.devices[id]
	if !ok {
		r.mu.Unlock()
		return errors.NewNotFoundError("device not found: "+id, nil)
	}
	if id == r.weatherID || !dev.Configurable() {
		r.mu.Unlock()
		return errors.NewForbiddenError("the weather station cannot be reconfigured", nil)
	}
	dev.UpdatePolicy(policy)
	r.mu.Unlock()

	r.events.Emit("device.reconfigured", id)
	nuts.L.Infof("[Registry] Reconfigured device %s", id)

	return r.persist(ctx)
}

// Count returns the number of registered devices.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.devices)
}

// OnEvent registers a callback for registry lifecycle events
// ("device.created", "device.deleted", "device.reconfigured").
func (r *Registry) OnEvent(event string, handler func(id string)) {
	r.events.On(event, "registry_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if id, ok := args[0].(string); ok {
				handler(id)
			}
		}
	})
}

// Shutdown stops every device task and waits for each to quiesce.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	devices := make([]simulator.Device, 0, len(r.devices))
	for _, dev := range r.devices {
		devices = append(devices, dev)
	}
	r.mu.Unlock()

	for _, dev := range devices {
		dev.Stop()
	}
	nuts.L.Infof("[Registry] All %d device tasks stopped", len(devices))
}

// persist writes the current definitions snapshot, excluding the
// permanent weather station. The definitions are collected under the
// lock but the write itself happens after releasing it.
func (r *Registry) persist(ctx context.Context) error {
	r.mu.Lock()
	definitions := make(map[string]models.DeviceDefinition, len(r.devices))
	for id, dev := range r.devices {
		if id == r.weatherID {
			continue
		}
		definitions[id] = dev.Definition()
	}
	r.mu.Unlock()

	if err := r.store.Save(ctx, definitions); err != nil {
		nuts.L.Errorf("[Registry] failed to persist device definitions: %v", err)
		return errors.NewPersistenceError("failed to persist device definitions", err)
	}
	return nil
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func validateMetrics(metrics []models.Metric) error {
	if len(metrics) == 0 {
		return errors.NewValidationError("at least one metric is required", nil)
	}
	seen := make(map[string]struct{}, len(metrics))
	for _, m := range metrics {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			return errors.NewValidationError("metric name is required", nil)
		}
		if _, dup := seen[name]; dup {
			return errors.NewValidationError("duplicate metric name: "+name, nil)
		}
		seen[name] = struct{}{}
		if m.Min >= m.Max {
			return errors.NewValidationError("metric "+name+" must have min < max", nil)
		}
	}
	return nil
}
