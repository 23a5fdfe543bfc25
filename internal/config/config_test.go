package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnv_Defaults(t *testing.T) {
	for _, k := range []string{"INKMAIL_APP_URL", "INKMAIL_GITHUB_SCOPES", "INKMAIL_GITHUB_CLIENT_ID"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	e, err := LoadEnv()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if e.AppURL != "http://127.0.0.1:8787" {
		t.Fatalf("unexpected app url %q", e.AppURL)
	}
	if len(e.Scopes) != 2 || e.Scopes[0] != "read:user" {
		t.Fatalf("unexpected scopes %v", e.Scopes)
	}
	if e.OAuthConfigured() {
		t.Fatal("no client id means not configured")
	}
	if e.CallbackURL() != "http://127.0.0.1:8787/auth/callback" {
		t.Fatalf("unexpected callback %q", e.CallbackURL())
	}
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("INKMAIL_APP_URL", "http://localhost:9000/")
	t.Setenv("INKMAIL_GITHUB_CLIENT_ID", "abc")
	t.Setenv("INKMAIL_GITHUB_SCOPES", "repo,gist")
	t.Setenv("INKMAIL_TUI_GLYPHS", "ASCII")

	e, err := LoadEnv()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if !e.OAuthConfigured() || e.ClientID != "abc" {
		t.Fatalf("expected client id, got %+v", e)
	}
	if e.CallbackURL() != "http://localhost:9000/auth/callback" {
		t.Fatalf("unexpected callback %q", e.CallbackURL())
	}
	if len(e.Scopes) != 2 || e.Scopes[1] != "gist" {
		t.Fatalf("unexpected scopes %v", e.Scopes)
	}
	if got := e.ResolveGlyphs(&File{TUI: &TUIConfig{Glyphs: "unicode"}}); got != "ascii" {
		t.Fatalf("env must win over file, got %q", got)
	}
}

func TestLoadSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")
	e := Env{ConfigDir: dir}

	cfg, err := Load(e)
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if cfg.TUI != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}

	cfg.TUI = &TUIConfig{Glyphs: "ascii", Preview: true}
	if err := Save(e, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(e)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.TUI == nil || got.TUI.Glyphs != "ascii" || !got.TUI.Preview {
		t.Fatalf("unexpected config %+v", got.TUI)
	}
	if g := e.ResolveGlyphs(got); g != "ascii" {
		t.Fatalf("expected file glyphs, got %q", g)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(e); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFileSet(t *testing.T) {
	tests := []struct {
		key, value string
		wantErr    bool
		check      func(f *File) bool
	}{
		{key: "tui.glyphs", value: "ASCII", check: func(f *File) bool { return f.TUI.Glyphs == "ascii" }},
		{key: "tui.glyphs", value: "boxes", wantErr: true},
		{key: "tui.preview", value: "true", check: func(f *File) bool { return f.TUI.Preview }},
		{key: "tui.preview", value: "maybe", wantErr: true},
		{key: "tui.theme", value: "dark", check: func(f *File) bool { return f.TUI.Theme == "dark" }},
		{key: "tui.theme", value: "sepia", wantErr: true},
		{key: "nope", value: "x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			var f File
			err := f.Set(tt.key, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("set: %v", err)
			}
			if !tt.check(&f) {
				t.Fatalf("unexpected config %+v", f.TUI)
			}
		})
	}
}
