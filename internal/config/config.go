package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Engine   EngineConfig   `toml:"engine"`
	Physics  PhysicsConfig  `toml:"physics"`
	Level    LevelConfig    `toml:"level"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
}

type EngineConfig struct {
	Name             string        `toml:"name"`
	TickRate         time.Duration `toml:"tick_rate"`
	MaxEventsPerTick int           `toml:"max_events_per_tick"` // 0 = drain everything buffered
}

// Transport kinds for reaching the simulation context.
const (
	TransportLocal     = "local"
	TransportWebsocket = "websocket"
)

type PhysicsConfig struct {
	Enabled          bool          `toml:"enabled"`
	Path             string        `toml:"path"`      // simulation module handed over with Init
	Transport        string        `toml:"transport"` // "local" or "websocket"
	Address          string        `toml:"address"`   // ws://host:port/path when transport is websocket
	ReadyTimeout     time.Duration `toml:"ready_timeout"`
	StepRate         time.Duration `toml:"step_rate"`
	CommandQueueSize int           `toml:"command_queue_size"`
	EventQueueSize   int           `toml:"event_queue_size"`
}

type LevelConfig struct {
	Path string `toml:"path"`
}

type DatabaseConfig struct {
	Enabled          bool          `toml:"enabled"`
	Driver           string        `toml:"driver"` // "pgx" or "sqlite"
	DSN              string        `toml:"dsn"`
	MaxOpenConns     int           `toml:"max_open_conns"`
	MaxIdleConns     int           `toml:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `toml:"conn_max_lifetime"`
	SnapshotInterval int           `toml:"snapshot_interval"` // ticks between scene snapshots
}

// ServerConfig configures cmd/physicsd, the remote simulation host.
type ServerConfig struct {
	BindAddress string `toml:"bind_address"`
	Path        string `toml:"path"`
	ScriptRoot  string `toml:"script_root"` // module paths from clients resolve under this directory
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes TOML over the defaults. name is only used in error messages.
func Parse(data []byte, name string) (*Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", name, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Physics.Transport {
	case TransportLocal:
	case TransportWebsocket:
		if c.Physics.Address == "" {
			return fmt.Errorf("physics.address is required for the websocket transport")
		}
	default:
		return fmt.Errorf("unknown physics.transport %q", c.Physics.Transport)
	}
	if c.Engine.TickRate <= 0 {
		return fmt.Errorf("engine.tick_rate must be positive")
	}
	if c.Physics.CommandQueueSize <= 0 || c.Physics.EventQueueSize <= 0 {
		return fmt.Errorf("physics queue sizes must be positive")
	}
	return nil
}

func Defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			Name:             "mage",
			TickRate:         16 * time.Millisecond,
			MaxEventsPerTick: 512,
		},
		Physics: PhysicsConfig{
			Enabled:          false,
			Path:             "scripts/physics/simple.lua",
			Transport:        TransportLocal,
			ReadyTimeout:     10 * time.Second,
			StepRate:         16 * time.Millisecond,
			CommandQueueSize: 256,
			EventQueueSize:   1024,
		},
		Database: DatabaseConfig{
			Enabled:          false,
			Driver:           "sqlite",
			DSN:              "data/mage.db",
			MaxOpenConns:     4,
			MaxIdleConns:     2,
			ConnMaxLifetime:  30 * time.Minute,
			SnapshotInterval: 3750, // 3750 ticks × 16ms ≈ 1 minute
		},
		Server: ServerConfig{
			BindAddress: "127.0.0.1:7420",
			Path:        "/physics",
			ScriptRoot:  "scripts/physics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
