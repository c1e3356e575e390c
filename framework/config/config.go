package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
type Config struct {
	App   AppConfig
	Paths PathsConfig
	Log   LogConfig

	// AliasesFile is a YAML file of extra aliases applied at bootstrap.
	AliasesFile string
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	Port  string
}

// PathsConfig holds the directories behind the framework's default aliases.
type PathsConfig struct {
	Base    string // @app
	Runtime string // @runtime
	Vendor  string // @vendor
	WebRoot string // @webroot
	Web     string // @web (URL path)
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // json | console
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	base := env("APP_BASE_PATH", ".")
	if abs, err := filepath.Abs(base); err == nil {
		base = abs
	}

	appEnv := env("APP_ENV", "local")
	defaultFormat := "console"
	if appEnv == "production" {
		defaultFormat = "json"
	}

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "GoYii"),
			Env:   appEnv,
			Debug: envBool("APP_DEBUG", true),
			Port:  env("APP_PORT", "8000"),
		},
		Paths: PathsConfig{
			Base:    base,
			Runtime: env("APP_RUNTIME_PATH", filepath.Join(base, "runtime")),
			Vendor:  env("APP_VENDOR_PATH", filepath.Join(base, "vendor")),
			WebRoot: env("APP_WEBROOT", filepath.Join(base, "public")),
			Web:     env("APP_WEB_URL", ""),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info"),
			Format: env("LOG_FORMAT", defaultFormat),
		},
		AliasesFile: env("ALIASES_FILE", filepath.Join(base, "config", "aliases.yaml")),
	}
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
