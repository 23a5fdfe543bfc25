// Package config loads inkmail settings from the environment and from
// ~/.inkmail/config.json.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Env is the process environment. Flags override it in the CLI.
type Env struct {
	ConfigDir string `env:"INKMAIL_CONFIG_DIR"`

	// AppURL is the loopback origin the OAuth callback listens on.
	AppURL       string   `env:"INKMAIL_APP_URL" envDefault:"http://127.0.0.1:8787"`
	ClientID     string   `env:"INKMAIL_GITHUB_CLIENT_ID"`
	ClientSecret string   `env:"INKMAIL_GITHUB_CLIENT_SECRET"`
	Scopes       []string `env:"INKMAIL_GITHUB_SCOPES" envSeparator:"," envDefault:"read:user,user:email"`

	Glyphs   string `env:"INKMAIL_TUI_GLYPHS"`
	LogFile  string `env:"INKMAIL_LOG_FILE"`
	LogLevel string `env:"INKMAIL_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}

// OAuthConfigured reports whether a GitHub client id is set.
func (e Env) OAuthConfigured() bool {
	return strings.TrimSpace(e.ClientID) != ""
}

// CallbackURL is the redirect target handed to the OAuth provider.
func (e Env) CallbackURL() string {
	return strings.TrimRight(strings.TrimSpace(e.AppURL), "/") + "/auth/callback"
}

type File struct {
	TUI *TUIConfig `json:"tui,omitempty"`
}

type TUIConfig struct {
	// Glyphs selects the glyph set ("unicode", "ascii").
	Glyphs string `json:"glyphs,omitempty"`
	// Preview shows the markdown preview pane on start.
	Preview bool `json:"preview,omitempty"`
	// Theme is "light", "dark" or "auto"; INKMAIL_TUI_THEME wins.
	Theme string `json:"theme,omitempty"`
}

func Dir(e Env) (string, error) {
	if v := strings.TrimSpace(e.ConfigDir); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".inkmail"), nil
}

func Path(e Env) (string, error) {
	dir, err := Dir(e)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load returns an empty File when none exists yet.
func Load(e Env) (*File, error) {
	path, err := Path(e)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &File{}, nil
		}
		return nil, err
	}
	var cfg File
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(e Env, cfg *File) error {
	path, err := Path(e)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// ResolveGlyphs picks the glyph set: env first, then the config file.
func (e Env) ResolveGlyphs(cfg *File) string {
	if v := strings.ToLower(strings.TrimSpace(e.Glyphs)); v != "" {
		return v
	}
	if cfg != nil && cfg.TUI != nil {
		return strings.ToLower(strings.TrimSpace(cfg.TUI.Glyphs))
	}
	return ""
}

// Keys lists the settings accepted by Set.
var Keys = []string{"tui.glyphs", "tui.preview", "tui.theme"}

// Set updates one setting from its string form.
func (f *File) Set(key, value string) error {
	if f.TUI == nil {
		f.TUI = &TUIConfig{}
	}
	value = strings.ToLower(strings.TrimSpace(value))
	switch key {
	case "tui.glyphs":
		if value != "unicode" && value != "ascii" && value != "" {
			return fmt.Errorf("invalid %s %q (want unicode|ascii)", key, value)
		}
		f.TUI.Glyphs = value
	case "tui.preview":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		f.TUI.Preview = b
	case "tui.theme":
		if value != "light" && value != "dark" && value != "auto" && value != "" {
			return fmt.Errorf("invalid %s %q (want light|dark|auto)", key, value)
		}
		f.TUI.Theme = value
	default:
		return fmt.Errorf("unknown key %q (want one of %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}
