// Package config loads the server's HCL configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"golang.org/x/text/language"

	"github.com/lox/blackjackbot/internal/deck"
	"github.com/lox/blackjackbot/internal/game"
)

const maxDecks = 8

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings
	Game   GameSettings
	Stats  StatsSettings
}

// ServerSettings contains listener and logging configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings are the table rules and session housekeeping
type GameSettings struct {
	DeckCount        int    `hcl:"deck_count,optional"`
	MaxPlayers       int    `hcl:"max_players,optional"`
	DealerHitsSoft17 *bool  `hcl:"dealer_hits_soft_17,optional"`
	Language         string `hcl:"language,optional"`
	IdleTimeout      string `hcl:"idle_timeout,optional"`
	SweepInterval    string `hcl:"sweep_interval,optional"`
	Seed             int64  `hcl:"seed,optional"`
}

// StatsSettings configures the outcome database
type StatsSettings struct {
	Path    string `hcl:"path,optional"`
	Enabled *bool  `hcl:"enabled,optional"`
}

// file mirrors Config with optional blocks.
type file struct {
	Server *ServerSettings `hcl:"server,block"`
	Game   *GameSettings   `hcl:"game,block"`
	Stats  *StatsSettings  `hcl:"stats,block"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	hitSoft17, statsEnabled := true, true
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			DeckCount:        deck.DefaultDeckCount,
			MaxPlayers:       game.DefaultMaxPlayers,
			DealerHitsSoft17: &hitSoft17,
			Language:         "en",
			IdleTimeout:      "5m",
			SweepInterval:    "5m",
		},
		Stats: StatsSettings{
			Path:    "blackjack.db",
			Enabled: &statsEnabled,
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults; attributes left out of the file keep their default values.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	diags = gohcl.DecodeBody(f.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := Default()
	cfg.merge(raw)
	return cfg, nil
}

func (c *Config) merge(raw file) {
	if s := raw.Server; s != nil {
		if s.Address != "" {
			c.Server.Address = s.Address
		}
		if s.Port != 0 {
			c.Server.Port = s.Port
		}
		if s.LogLevel != "" {
			c.Server.LogLevel = s.LogLevel
		}
	}

	if g := raw.Game; g != nil {
		if g.DeckCount != 0 {
			c.Game.DeckCount = g.DeckCount
		}
		if g.MaxPlayers != 0 {
			c.Game.MaxPlayers = g.MaxPlayers
		}
		if g.DealerHitsSoft17 != nil {
			c.Game.DealerHitsSoft17 = g.DealerHitsSoft17
		}
		if g.Language != "" {
			c.Game.Language = g.Language
		}
		if g.IdleTimeout != "" {
			c.Game.IdleTimeout = g.IdleTimeout
		}
		if g.SweepInterval != "" {
			c.Game.SweepInterval = g.SweepInterval
		}
		c.Game.Seed = g.Seed
	}

	if s := raw.Stats; s != nil {
		if s.Path != "" {
			c.Stats.Path = s.Path
		}
		if s.Enabled != nil {
			c.Stats.Enabled = s.Enabled
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}

	if c.Game.DeckCount < 1 || c.Game.DeckCount > maxDecks {
		return fmt.Errorf("deck count must be between 1 and %d", maxDecks)
	}
	if c.Game.MaxPlayers < 1 || c.Game.MaxPlayers > game.DefaultMaxPlayers {
		return fmt.Errorf("max players must be between 1 and %d", game.DefaultMaxPlayers)
	}
	if err := c.Rules().Validate(); err != nil {
		return err
	}
	if _, err := c.Language(); err != nil {
		return err
	}
	if _, err := c.IdleTimeout(); err != nil {
		return err
	}
	if _, err := c.SweepInterval(); err != nil {
		return err
	}

	if c.StatsEnabled() && strings.TrimSpace(c.Stats.Path) == "" {
		return fmt.Errorf("stats path is required when stats are enabled")
	}
	return nil
}

// ServerAddress returns the full listen address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Rules returns the table rules for new sessions
func (c *Config) Rules() game.Rules {
	return game.Rules{
		DeckCount:        c.Game.DeckCount,
		MaxPlayers:       c.Game.MaxPlayers,
		DealerHitsSoft17: c.Game.DealerHitsSoft17 == nil || *c.Game.DealerHitsSoft17,
	}
}

// Language parses the default table language
func (c *Config) Language() (language.Tag, error) {
	tag, err := language.Parse(c.Game.Language)
	if err != nil {
		return language.Und, fmt.Errorf("invalid language %q: %w", c.Game.Language, err)
	}
	return tag, nil
}

// IdleTimeout is how long a session may sit idle before it is reaped
func (c *Config) IdleTimeout() (time.Duration, error) {
	return positiveDuration("idle_timeout", c.Game.IdleTimeout)
}

// SweepInterval is how often the reaper runs
func (c *Config) SweepInterval() (time.Duration, error) {
	return positiveDuration("sweep_interval", c.Game.SweepInterval)
}

// StatsEnabled reports whether outcomes are persisted
func (c *Config) StatsEnabled() bool {
	return c.Stats.Enabled == nil || *c.Stats.Enabled
}

func positiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, d)
	}
	return d, nil
}
