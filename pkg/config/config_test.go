package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qnkhuat/sweepterm/pkg/gui"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.json")} {
		c, err := Load(path)
		if err != nil {
			t.Fatalf("failed to load %q: %v", path, err)
		}
		if c.Size != 10 || c.Mines != 10 || c.Theme != "basic" || c.IdleTimeout() != DefaultIdleTimeout || c.LogPath != "" {
			t.Errorf("unexpected defaults %+v", c)
		}
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `{
		"size": 16,
		"mines": 40,
		"theme": "ocean",
		"idleTimeout": "90s",
		"themes": [{"name": "ocean", "hidden": "#005f87", "mine": "#ff0000"}]
	}`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if c.Size != 16 || c.Mines != 40 {
		t.Errorf("expected 16/40, got %d/%d", c.Size, c.Mines)
	}
	if c.IdleTimeout() != 90*time.Second {
		t.Errorf("expected 90s idle timeout, got %s", c.IdleTimeout())
	}
	// Unset fields keep their defaults
	if c.ListenTCP != ":1998" {
		t.Errorf("expected default tcp address, got %q", c.ListenTCP)
	}

	theme := c.LoadTheme()
	if theme.Name != "ocean" || theme.Mine.Hex() != 0xff0000 {
		t.Errorf("unexpected theme %+v", theme)
	}
}

func TestLoadInvalid(t *testing.T) {
	for _, body := range []string{`{"size": `, `{"idleTimeout": "soon"}`} {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("expected error for %s", body)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		in, want Config
	}{
		{Config{Size: 0, Mines: 5}, Config{Size: 1, Mines: 1}},
		{Config{Size: 500, Mines: -3}, Config{Size: MaxSize, Mines: 0}},
		{Config{Size: 4, Mines: 100}, Config{Size: 4, Mines: 16}},
	}

	for _, tt := range tests {
		c := tt.in
		c.Validate()
		if c.Size != tt.want.Size || c.Mines != tt.want.Mines {
			t.Errorf("validate %+v: wanted %d/%d got %d/%d", tt.in, tt.want.Size, tt.want.Mines, c.Size, c.Mines)
		}
		if c.Theme != gui.ThemeBasic.Name {
			t.Errorf("expected basic theme, got %q", c.Theme)
		}
	}
}

func TestLoadThemeFallback(t *testing.T) {
	c := Default()
	c.Theme = "nope"
	if got := c.LoadTheme(); got.Name != gui.ThemeBasic.Name {
		t.Errorf("expected basic fallback, got %q", got.Name)
	}

	c.Theme = "dark"
	if got := c.LoadTheme(); got.Name != "dark" {
		t.Errorf("expected dark theme, got %q", got.Name)
	}
}
