package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	Store     StoreConfig     `mapstructure:"store"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type SimulatorConfig struct {
	HistoryCapacity int           `mapstructure:"history_capacity"`
	TickMin         time.Duration `mapstructure:"tick_min"`
	TickMax         time.Duration `mapstructure:"tick_max"`
	SeedDevice      string        `mapstructure:"seed_device"`
}

type WeatherConfig struct {
	StationID    string        `mapstructure:"station_id"`
	Latitude     float64       `mapstructure:"latitude"`
	Longitude    float64       `mapstructure:"longitude"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

type StoreConfig struct {
	Backend  string         `mapstructure:"backend"` // "file" or "postgres"
	FilePath string         `mapstructure:"file_path"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("IOTDASH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Simulator defaults
	viper.SetDefault("simulator.history_capacity", 100)
	viper.SetDefault("simulator.tick_min", "2s")
	viper.SetDefault("simulator.tick_max", "5s")
	viper.SetDefault("simulator.seed_device", "living_room_sensor")

	// Weather defaults (Berlin)
	viper.SetDefault("weather.station_id", "weather-station")
	viper.SetDefault("weather.latitude", 52.52)
	viper.SetDefault("weather.longitude", 13.405)
	viper.SetDefault("weather.poll_interval", "300s")
	viper.SetDefault("weather.fetch_timeout", "10s")

	// Store defaults
	viper.SetDefault("store.backend", "file")
	viper.SetDefault("store.file_path", "data/devices.json")
	viper.SetDefault("store.postgres.port", 5432)
	viper.SetDefault("store.postgres.sslmode", "disable")

	// Redis defaults
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.channel", "iotdash.alerts")
}

func validateConfig(config *Config) error {
	switch config.Store.Backend {
	case "file":
		if config.Store.FilePath == "" {
			return fmt.Errorf("store file path is required")
		}
	case "postgres":
		if config.Store.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
	default:
		return fmt.Errorf("unknown store backend: %s", config.Store.Backend)
	}
	if config.Simulator.TickMin <= 0 || config.Simulator.TickMax <= config.Simulator.TickMin {
		return fmt.Errorf("simulator tick interval must satisfy 0 < tick_min < tick_max")
	}
	if config.Weather.FetchTimeout <= 0 {
		return fmt.Errorf("weather fetch timeout must be positive")
	}
	return nil
}
