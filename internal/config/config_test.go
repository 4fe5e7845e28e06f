package config

import (
	"testing"
	"time"
)

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, Host: "0.0.0.0"},
		Simulator: SimulatorConfig{
			HistoryCapacity: 100,
			TickMin:         2 * time.Second,
			TickMax:         5 * time.Second,
		},
		Weather: WeatherConfig{FetchTimeout: 10 * time.Second},
		Store:   StoreConfig{Backend: "file", FilePath: "data/devices.json"},
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Simulator.HistoryCapacity != 100 {
		t.Errorf("history capacity = %d, want 100", cfg.Simulator.HistoryCapacity)
	}
	if cfg.Simulator.TickMin != 2*time.Second || cfg.Simulator.TickMax != 5*time.Second {
		t.Errorf("tick interval = [%v, %v], want [2s, 5s]", cfg.Simulator.TickMin, cfg.Simulator.TickMax)
	}
	if cfg.Weather.PollInterval != 300*time.Second {
		t.Errorf("poll interval = %v, want 300s", cfg.Weather.PollInterval)
	}
	if cfg.Weather.StationID != "weather-station" {
		t.Errorf("station id = %q, want weather-station", cfg.Weather.StationID)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("store backend = %q, want file", cfg.Store.Backend)
	}
	if cfg.Redis.Enabled {
		t.Error("redis enabled by default, want disabled")
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("IOTDASH_SERVER__PORT", "9000")
	t.Setenv("IOTDASH_SIMULATOR__TICK_MIN", "100ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("server port = %d, want 9000 from environment", cfg.Server.Port)
	}
	if cfg.Simulator.TickMin != 100*time.Millisecond {
		t.Errorf("tick min = %v, want 100ms from environment", cfg.Simulator.TickMin)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(*Config) {}},
		{
			name:    "file backend without path",
			mutate:  func(c *Config) { c.Store.FilePath = "" },
			wantErr: true,
		},
		{
			name: "postgres backend without host",
			mutate: func(c *Config) {
				c.Store.Backend = "postgres"
				c.Store.Postgres.Host = ""
			},
			wantErr: true,
		},
		{
			name: "postgres backend with host",
			mutate: func(c *Config) {
				c.Store.Backend = "postgres"
				c.Store.Postgres.Host = "localhost"
			},
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Store.Backend = "etcd" },
			wantErr: true,
		},
		{
			name:    "tick max not above min",
			mutate:  func(c *Config) { c.Simulator.TickMax = c.Simulator.TickMin },
			wantErr: true,
		},
		{
			name:    "zero tick min",
			mutate:  func(c *Config) { c.Simulator.TickMin = 0 },
			wantErr: true,
		},
		{
			name:    "zero fetch timeout",
			mutate:  func(c *Config) { c.Weather.FetchTimeout = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
