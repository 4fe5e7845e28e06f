// FilePath: internal/simulator/generator.go
package simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/alerting"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/history"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/models"
)

// Generator simulates one device producing synthetic telemetry. Each
// cycle perturbs every metric by up to 10% of its nominal range in a
// random direction, clamped to a 20% overshoot band around the range,
// so values drift like sensor noise without running away. Drift is
// deliberately not re-centered toward the nominal range.
type Generator struct {
	id      string
	metrics []models.Metric

	mu         *sync.Mutex
	policy     models.AlertPolicy
	values     map[string]float64 // full precision, next cycle's base
	lastValues map[string]float64 // rounded to 2dp for reporting
	status     models.DeviceStatus
	alerts     map[string]string
	lastSeen   time.Time
	history    *history.Buffer

	tickMin time.Duration
	tickMax time.Duration
	hooks   Hooks
	rng     *rand.Rand

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewGenerator creates a generator device. Metrics are assumed valid
// (non-empty, min < max); the registry validates before constructing.
func NewGenerator(id string, metrics []models.Metric, policy models.AlertPolicy, cfg Config) *Generator {
	cfg.applyDefaults()
	return &Generator{
		id:         id,
		metrics:    metrics,
		mu:         cfg.Lock,
		policy:     policy.Clone(),
		values:     make(map[string]float64, len(metrics)),
		lastValues: make(map[string]float64, len(metrics)),
		status:     models.StatusInitializing,
		alerts:     make(map[string]string),
		history:    history.NewBuffer(cfg.HistoryCapacity),
		tickMin:    cfg.TickMin,
		tickMax:    cfg.TickMax,
		hooks:      cfg.Hooks,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (g *Generator) ID() string              { return g.id }
func (g *Generator) Type() models.DeviceType { return models.TypeGenerator }
func (g *Generator) Configurable() bool      { return true }

// Start launches the task goroutine. The first cycle runs immediately
// so a freshly created device reports values without waiting a full
// sleep interval.
func (g *Generator) Start() {
	go g.run()
}

// Stop signals the task to terminate. The interruptible sleep means the
// loop quiesces promptly rather than after a full interval. Stop blocks
// until the goroutine has exited; no readings are appended afterwards.
func (g *Generator) Stop() {
	g.once.Do(func() { close(g.stop) })
	<-g.done
}

func (g *Generator) run() {
	defer close(g.done)
	defer func() {
		// A panic in one device task must not take down the process
		// or any other device. The recovered loop does not resume;
		// the device stays listed but stops producing readings.
		if r := recover(); r != nil {
			nuts.L.Errorf("[Generator:%s] task panic, loop terminated: %v", g.id, r)
		}
	}()

	for {
		select {
		case <-g.stop:
			return
		default:
		}

		g.tick(time.Now())

		select {
		case <-g.stop:
			return
		case <-time.After(g.sleepInterval()):
		}
	}
}

// tick runs one simulation cycle: perturb, evaluate, record. All state
// mutation happens under the shared lock so readers never observe a
// device mid-update; hooks fire after the lock is released.
func (g *Generator) tick(now time.Time) {
	g.mu.Lock()

	reported := make(map[string]float64, len(g.metrics))
	for _, m := range g.metrics {
		base, ok := g.values[m.Name]
		if !ok {
			base = (m.Min + m.Max) / 2
		}
		span := m.Max - m.Min
		next := base + (g.rng.Float64()*2-1)*0.1*span
		if low := m.Min - 0.2*span; next < low {
			next = low
		}
		if high := m.Max + 0.2*span; next > high {
			next = high
		}
		g.values[m.Name] = next
		reported[m.Name] = math.Round(next*100) / 100
	}

	previous := g.alerts
	g.alerts = alerting.Evaluate(reported, g.policy)
	g.status = alerting.StatusFor(g.alerts)
	g.lastValues = reported
	g.lastSeen = now
	g.history.Append(models.Reading{
		DeviceID:   g.id,
		DeviceType: models.TypeGenerator,
		Timestamp:  now,
		Values:     reported,
	})
	changed := alerting.Changed(previous, g.alerts)
	current := g.alerts

	g.mu.Unlock()

	if g.hooks.OnReading != nil {
		g.hooks.OnReading(g.id, models.TypeGenerator)
	}
	if changed && g.hooks.OnAlert != nil {
		g.hooks.OnAlert(g.id, current)
	}
}

func (g *Generator) sleepInterval() time.Duration {
	return g.tickMin + time.Duration(g.rng.Float64()*float64(g.tickMax-g.tickMin))
}

// UpdatePolicy replaces the alert policy. It takes effect on the next
// cycle; no forced re-evaluation. Caller holds the shared lock.
func (g *Generator) UpdatePolicy(policy models.AlertPolicy) {
	g.policy = policy.Clone()
}

// Definition returns the durable description of the device. Caller
// holds the shared lock.
func (g *Generator) Definition() models.DeviceDefinition {
	metrics := make([]models.Metric, len(g.metrics))
	copy(metrics, g.metrics)
	return models.DeviceDefinition{
		DeviceType: models.TypeGenerator,
		Metrics:    metrics,
		Config:     models.DeviceConfig{Alerts: g.policy.Clone().Alerts},
	}
}

// Summary returns a consistent snapshot for presentation. Caller holds
// the shared lock.
func (g *Generator) Summary() models.DeviceSummary {
	metrics := make([]models.Metric, len(g.metrics))
	copy(metrics, g.metrics)
	lastValues := make(map[string]float64, len(g.lastValues))
	for name, v := range g.lastValues {
		lastValues[name] = v
	}
	alerts := make(map[string]string, len(g.alerts))
	for name, msg := range g.alerts {
		alerts[name] = msg
	}
	return models.DeviceSummary{
		ID:            g.id,
		Type:          models.TypeGenerator,
		Metrics:       metrics,
		Policy:        g.policy.Clone(),
		Status:        g.status,
		LastValues:    lastValues,
		CurrentAlerts: alerts,
		LastSeen:      g.lastSeen,
		History:       g.history.Snapshot(),
	}
}
