// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	nuts "github.com/vaudience/go-nuts"

	"github.com/kriss2012/Real-Time-IoT-Dashboard/api"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/config"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/database"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/models"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/monitoring"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/notify"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/registry"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/simulator"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/store"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/weather"
)

// Server wires the engine, its collaborators and the HTTP transport
type Server struct {
	config     *config.Config
	srv        *http.Server
	registry   *registry.Registry
	store      store.Store
	publisher  *notify.RedisPublisher
	monitoring *monitoring.Service
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{config: cfg}
}

// Start initializes all services, begins listening for requests and
// blocks until shutdown
func (s *Server) Start() error {
	s.monitoring = monitoring.NewService()

	st, err := s.initStore()
	if err != nil {
		return err
	}
	s.store = st

	if s.config.Redis.Enabled {
		publisher, err := notify.NewRedisPublisher(
			s.config.Redis.Addr, s.config.Redis.Password, s.config.Redis.DB, s.config.Redis.Channel)
		if err != nil {
			// Alert fanout is best-effort; run without it.
			nuts.L.Warnf("[Server] Redis publisher unavailable: %v", err)
		} else {
			s.publisher = publisher
		}
	}

	weatherClient := weather.NewClient(
		s.config.Weather.Latitude, s.config.Weather.Longitude, s.config.Weather.FetchTimeout)

	s.registry = registry.New(context.Background(), registry.Options{
		Store:            st,
		WeatherSource:    weatherClient,
		WeatherStationID: s.config.Weather.StationID,
		HistoryCapacity:  s.config.Simulator.HistoryCapacity,
		TickMin:          s.config.Simulator.TickMin,
		TickMax:          s.config.Simulator.TickMax,
		PollInterval:     s.config.Weather.PollInterval,
		FetchTimeout:     s.config.Weather.FetchTimeout,
		Hooks:            s.buildHooks(),
		Seed:             s.seedDevices(),
	})

	s.setupEventHandlers()
	s.monitoring.SetDeviceCount(s.registry.Count())

	router := api.NewRouter(s.registry, s.handleHealth(), s.monitoring.Handler())
	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      router.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down
// the server, the device tasks and the store
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	s.registry.Shutdown()
	if s.publisher != nil {
		s.publisher.Close()
	}
	if err := s.store.Close(); err != nil {
		nuts.L.Warnf("[Server] Error closing store: %v", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

func (s *Server) initStore() (store.Store, error) {
	switch s.config.Store.Backend {
	case "postgres":
		db, err := database.NewPostgresDB(s.config.Store.Postgres)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres store: %w", err)
		}
		pg, err := store.NewPostgresStore(db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize postgres store: %w", err)
		}
		return pg, nil
	default:
		return store.NewFileStore(s.config.Store.FilePath), nil
	}
}

// buildHooks routes task-loop observations into monitoring and, when
// enabled, the Redis alert channel
func (s *Server) buildHooks() simulator.Hooks {
	return simulator.Hooks{
		OnReading: func(deviceID string, deviceType models.DeviceType) {
			s.monitoring.RecordReading(deviceID, deviceType)
		},
		OnAlert: func(deviceID string, alerts map[string]string) {
			s.monitoring.RecordAlertTransition(deviceID)
			if s.publisher != nil {
				s.publisher.PublishAlert(deviceID, alerts)
			}
		},
		OnFetch: func(deviceID string, status models.DeviceStatus) {
			s.monitoring.RecordFetch(status)
		},
	}
}

// seedDevices mirrors the original deployment: one default generator
// with temperature and humidity when the store is empty
func (s *Server) seedDevices() []registry.SeedDevice {
	if s.config.Simulator.SeedDevice == "" {
		return nil
	}
	return []registry.SeedDevice{
		{
			ID: s.config.Simulator.SeedDevice,
			Metrics: []models.Metric{
				{Name: "temperature", Unit: "C", Min: 18, Max: 32},
				{Name: "humidity", Unit: "%", Min: 30, Max: 70},
			},
		},
	}
}

func (s *Server) setupEventHandlers() {
	s.registry.OnEvent("device.created", func(id string) {
		s.monitoring.RecordEvent("device_created", map[string]string{"device_id": id})
		s.monitoring.SetDeviceCount(s.registry.Count())
	})
	s.registry.OnEvent("device.deleted", func(id string) {
		s.monitoring.RecordEvent("device_deleted", map[string]string{"device_id": id})
		s.monitoring.SetDeviceCount(s.registry.Count())
	})
	s.registry.OnEvent("device.reconfigured", func(id string) {
		s.monitoring.RecordEvent("device_reconfigured", map[string]string{"device_id": id})
	})
}

// handleHealth returns a simple health check handler
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","version":%q,"devices":%d}`, nuts.GetVersion(), s.registry.Count())
	}
}
