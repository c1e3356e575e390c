package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/km-arc/go-yii/framework/alias"
	"github.com/km-arc/go-yii/framework/config"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func setEnv(t *testing.T, key, val string) {
	t.Helper()
	t.Setenv(key, val) // automatically restored after test
}

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "APP_BASE_PATH", "/srv/app")
	cfg := config.Load("testdata/empty.env")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"App.Name", cfg.App.Name, "GoYii"},
		{"App.Env", cfg.App.Env, "local"},
		{"App.Port", cfg.App.Port, "8000"},
		{"Paths.Base", cfg.Paths.Base, "/srv/app"},
		{"Paths.Runtime", cfg.Paths.Runtime, "/srv/app/runtime"},
		{"Paths.Vendor", cfg.Paths.Vendor, "/srv/app/vendor"},
		{"Paths.WebRoot", cfg.Paths.WebRoot, "/srv/app/public"},
		{"Paths.Web", cfg.Paths.Web, ""},
		{"Log.Level", cfg.Log.Level, "info"},
		{"Log.Format", cfg.Log.Format, "console"},
		{"AliasesFile", cfg.AliasesFile, "/srv/app/config/aliases.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	// godotenv never overrides variables that are already set, so make sure
	// the keys from app.env start unset and are cleaned up afterwards.
	for _, k := range []string{"APP_NAME", "APP_BASE_PATH", "LOG_LEVEL"} {
		setEnv(t, k, "")
		os.Unsetenv(k)
	}

	cfg := config.Load("testdata/app.env")

	if cfg.App.Name != "Aliased" {
		t.Errorf("App.Name: got %q want %q", cfg.App.Name, "Aliased")
	}
	if cfg.Paths.Base != "/srv/app" {
		t.Errorf("Paths.Base: got %q want %q", cfg.Paths.Base, "/srv/app")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level: got %q want %q", cfg.Log.Level, "debug")
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	setEnv(t, "APP_NAME", "MyApp")
	setEnv(t, "APP_ENV", "production")
	setEnv(t, "APP_PORT", "9000")
	setEnv(t, "APP_RUNTIME_PATH", "/var/run/app")
	setEnv(t, "APP_WEB_URL", "/static")

	cfg := config.Load("testdata/empty.env")

	if cfg.App.Name != "MyApp" {
		t.Errorf("App.Name: got %q want %q", cfg.App.Name, "MyApp")
	}
	if cfg.App.Env != "production" {
		t.Errorf("App.Env: got %q want %q", cfg.App.Env, "production")
	}
	if cfg.App.Port != "9000" {
		t.Errorf("App.Port: got %q want %q", cfg.App.Port, "9000")
	}
	if cfg.Paths.Runtime != "/var/run/app" {
		t.Errorf("Paths.Runtime: got %q want %q", cfg.Paths.Runtime, "/var/run/app")
	}
	if cfg.Paths.Web != "/static" {
		t.Errorf("Paths.Web: got %q want %q", cfg.Paths.Web, "/static")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format in production: got %q want %q", cfg.Log.Format, "json")
	}
}

func TestLoad_RelativeBaseIsMadeAbsolute(t *testing.T) {
	setEnv(t, "APP_BASE_PATH", "relative/app")
	cfg := config.Load("testdata/empty.env")

	if !filepath.IsAbs(cfg.Paths.Base) {
		t.Errorf("Paths.Base %q should be absolute", cfg.Paths.Base)
	}
}

func TestLoad_AppDebug(t *testing.T) {
	setEnv(t, "APP_DEBUG", "false")
	if config.Load("testdata/empty.env").App.Debug {
		t.Error("expected App.Debug to be false")
	}
	setEnv(t, "APP_DEBUG", "true")
	if !config.Load("testdata/empty.env").App.Debug {
		t.Error("expected App.Debug to be true")
	}
}

// ── Get / GetInt / GetBool ───────────────────────────────────────────────────

func TestGet_ReturnsValue(t *testing.T) {
	setEnv(t, "CUSTOM_KEY", "hello")
	if got := config.Get("CUSTOM_KEY", "default"); got != "hello" {
		t.Errorf("got %q want %q", got, "hello")
	}
}

func TestGet_ReturnsFallback(t *testing.T) {
	os.Unsetenv("MISSING_KEY")
	if got := config.Get("MISSING_KEY", "fallback"); got != "fallback" {
		t.Errorf("got %q want %q", got, "fallback")
	}
}

func TestGetInt(t *testing.T) {
	setEnv(t, "SOME_INT", "42")
	if got := config.GetInt("SOME_INT", 0); got != 42 {
		t.Errorf("got %d want %d", got, 42)
	}
	setEnv(t, "SOME_INT", "notanint")
	if got := config.GetInt("SOME_INT", 99); got != 99 {
		t.Errorf("got %d want %d", got, 99)
	}
}

func TestGetBool(t *testing.T) {
	for _, val := range []string{"true", "1", "True", "TRUE"} {
		setEnv(t, "BOOL_KEY", val)
		if !config.GetBool("BOOL_KEY", false) {
			t.Errorf("expected true for %q", val)
		}
	}
	setEnv(t, "BOOL_KEY", "notabool")
	if !config.GetBool("BOOL_KEY", true) {
		t.Error("expected fallback true")
	}
}

// ── Aliases ──────────────────────────────────────────────────────────────────

func TestLoadAliases_KeepsFileOrder(t *testing.T) {
	defs, err := config.LoadAliases("testdata/aliases.yaml")
	if err != nil {
		t.Fatalf("LoadAliases: %v", err)
	}

	want := []alias.Definition{
		{Alias: "@yii", Path: "/yii/framework/"},
		{Alias: "@tii", Path: "@yii/test"},
		{Alias: "yii/gii", Path: "/yii/gii"},
	}
	if len(defs) != len(want) {
		t.Fatalf("got %d definitions, want %d", len(defs), len(want))
	}
	for i := range want {
		if defs[i] != want[i] {
			t.Errorf("defs[%d]: got %+v, want %+v", i, defs[i], want[i])
		}
	}

	r := alias.New()
	if err := r.SetMany(defs); err != nil {
		t.Fatalf("SetMany: %v", err)
	}
	if got, _ := r.Get("@tii"); got != "/yii/framework/test" {
		t.Errorf("@tii: got %q", got)
	}
}

func TestLoadAliases_MissingFile(t *testing.T) {
	defs, err := config.LoadAliases("testdata/nope.yaml")
	if err != nil || defs != nil {
		t.Errorf("got (%v, %v), want (nil, nil)", defs, err)
	}
}

func TestLoadAliases_NotAMapping(t *testing.T) {
	if _, err := config.LoadAliases("testdata/bad_aliases.yaml"); err == nil {
		t.Error("expected an error for a sequence of aliases")
	}
}

func TestParseAliases_NoAliasesKey(t *testing.T) {
	defs, err := config.ParseAliases([]byte("other: 1\n"))
	if err != nil || len(defs) != 0 {
		t.Errorf("got (%v, %v), want no definitions", defs, err)
	}
}
