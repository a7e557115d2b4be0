package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings contains match pacing and rules configuration. Delays are
// presentation pacing only; the authoritative state never waits on them.
type GameSettings struct {
	RoundCap         int `hcl:"round_cap,optional"`
	TurnTimeoutSec   int `hcl:"turn_timeout_seconds,optional"`
	DealDelayMs      int `hcl:"deal_delay_ms,optional"`
	TrickDisplayMs   int `hcl:"trick_display_ms,optional"`
	RoundCountdownMs int `hcl:"round_countdown_ms,optional"`
}

// TurnTimeout returns the per-action deadline.
func (g GameSettings) TurnTimeout() time.Duration {
	return time.Duration(g.TurnTimeoutSec) * time.Second
}

// DealDelay returns the pause between dealing and the bidding gate.
func (g GameSettings) DealDelay() time.Duration {
	return time.Duration(g.DealDelayMs) * time.Millisecond
}

// TrickDisplay returns the resolved-trick display window.
func (g GameSettings) TrickDisplay() time.Duration {
	return time.Duration(g.TrickDisplayMs) * time.Millisecond
}

// RoundCountdown returns the pause before the next round's bidding gate.
func (g GameSettings) RoundCountdown() time.Duration {
	return time.Duration(g.RoundCountdownMs) * time.Millisecond
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			RoundCap:         7,
			TurnTimeoutSec:   30,
			DealDelayMs:      3000,
			TrickDisplayMs:   2000,
			RoundCountdownMs: 10000,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to
// defaults when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	applyDefaults(&config)
	return &config, nil
}

func applyDefaults(c *Config) {
	def := DefaultConfig()
	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = def.Server.LogLevel
	}
	if c.Game.RoundCap == 0 {
		c.Game.RoundCap = def.Game.RoundCap
	}
	if c.Game.TurnTimeoutSec == 0 {
		c.Game.TurnTimeoutSec = def.Game.TurnTimeoutSec
	}
	if c.Game.DealDelayMs == 0 {
		c.Game.DealDelayMs = def.Game.DealDelayMs
	}
	if c.Game.TrickDisplayMs == 0 {
		c.Game.TrickDisplayMs = def.Game.TrickDisplayMs
	}
	if c.Game.RoundCountdownMs == 0 {
		c.Game.RoundCountdownMs = def.Game.RoundCountdownMs
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Game.RoundCap < 1 || c.Game.RoundCap > 11 {
		return fmt.Errorf("round cap must be in [1,11], got %d", c.Game.RoundCap)
	}
	if c.Game.TurnTimeoutSec <= 0 {
		return fmt.Errorf("turn timeout must be positive, got %d", c.Game.TurnTimeoutSec)
	}
	return nil
}

// ListenAddress returns the host:port the server binds to.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
