// FilePath: internal/simulator/device.go
package simulator

import (
	"sync"
	"time"

	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/models"
)

// Device is the uniform contract both task variants present to the
// registry. Summary, Definition and UpdatePolicy touch device state that
// the task loop also mutates; callers must hold the shared registry
// lock for those three. Start and Stop manage the task goroutine and
// take no lock.
type Device interface {
	ID() string
	Type() models.DeviceType
	Configurable() bool
	Definition() models.DeviceDefinition
	Summary() models.DeviceSummary
	UpdatePolicy(policy models.AlertPolicy)
	Start()
	Stop()
}

// Hooks carries observer callbacks out of the task loops. They are
// invoked outside the shared lock, so implementations may do I/O.
type Hooks struct {
	// OnReading fires after every appended reading.
	OnReading func(deviceID string, deviceType models.DeviceType)
	// OnAlert fires when a device's active alert set changes.
	OnAlert func(deviceID string, alerts map[string]string)
	// OnFetch fires after every weather fetch attempt with the
	// resulting device status.
	OnFetch func(deviceID string, status models.DeviceStatus)
}

// Config holds the knobs shared by both task variants. Lock is the
// registry's coarse lock; every device field mutation happens under it.
type Config struct {
	Lock            *sync.Mutex
	HistoryCapacity int
	TickMin         time.Duration
	TickMax         time.Duration
	PollInterval    time.Duration
	FetchTimeout    time.Duration
	Hooks           Hooks
}

func (c *Config) applyDefaults() {
	if c.Lock == nil {
		c.Lock = &sync.Mutex{}
	}
	if c.TickMin <= 0 {
		c.TickMin = 2 * time.Second
	}
	if c.TickMax <= c.TickMin {
		c.TickMax = c.TickMin + 3*time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 300 * time.Second
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 10 * time.Second
	}
}
