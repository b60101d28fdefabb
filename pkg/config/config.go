// Package config holds the settings shared by the sweepterm binaries. Values
// come from an optional JSON file and are then overridden by flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/qnkhuat/sweepterm/pkg/grid"
	"github.com/qnkhuat/sweepterm/pkg/gui"
)

const (
	MaxSize            = 99
	DefaultIdleTimeout = 5 * time.Minute
)

type Config struct {
	Size     int    `json:"size"`
	Mines    int    `json:"mines"`
	Seed     int64  `json:"seed"`
	Nickname string `json:"nickname"`

	Theme  string         `json:"theme"`
	Themes []gui.ThemeHex `json:"themes"`

	Connect    string   `json:"connect"`
	ListenTCP  string   `json:"listenTcp"`
	ListenSSH  string   `json:"listenSsh"`
	ListenHTTP string   `json:"listenHttp"`
	HostKey    string   `json:"hostKey"`
	ClientPath string   `json:"clientPath"`
	Database   string   `json:"database"`
	LogPath    string   `json:"logPath"`
	Idle       Duration `json:"idleTimeout"`
}

// Duration reads "5m" style strings from JSON
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func Default() Config {
	return Config{
		Size:       grid.DefaultSize,
		Mines:      grid.DefaultMines,
		Theme:      gui.ThemeBasic.Name,
		ListenTCP:  ":1998",
		ListenSSH:  ":2222",
		ListenHTTP: ":8080",
		Idle:       Duration(DefaultIdleTimeout),
	}
}

// Load reads path over the defaults. A missing path yields the defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	} else if err != nil {
		return c, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	c.Validate()
	return c, nil
}

// Validate clamps out of range values instead of rejecting them
func (c *Config) Validate() {
	if c.Size < 1 {
		c.Size = 1
	} else if c.Size > MaxSize {
		c.Size = MaxSize
	}

	if c.Mines < 0 {
		c.Mines = 0
	} else if c.Mines > c.Size*c.Size {
		c.Mines = c.Size * c.Size
	}

	if c.Theme == "" {
		c.Theme = gui.ThemeBasic.Name
	}
	if c.Idle <= 0 {
		c.Idle = Duration(DefaultIdleTimeout)
	}
}

func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.Idle)
}

// LoadTheme resolves the configured theme, falling back to the basic one
func (c Config) LoadTheme() gui.Theme {
	t, err := gui.ImportThemes(c.Theme, c.Themes)
	if err != nil {
		return gui.ThemeBasic
	}
	return t
}
