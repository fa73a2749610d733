package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// APIConfig holds the settings for the read API daemon (spec §6 "API
// CLI/flags").
type APIConfig struct {
	StorePath   string   `koanf:"db"`
	Listen      string   `koanf:"listen"`
	CORSOrigins []string `koanf:"cors_origins"`
}

func defaultAPIConfig() APIConfig {
	return APIConfig{
		StorePath: defaultStorePath(),
		Listen:    "127.0.0.1:8081",
	}
}

// RegisterAPIFlags binds the API's CLI flags onto fs.
func RegisterAPIFlags(fs *pflag.FlagSet) {
	d := defaultAPIConfig()
	fs.String("db", d.StorePath, "path to the SQLite store file (must already exist)")
	fs.String("listen", d.Listen, "host:port to listen on")
	fs.String("cors-origins", "", "comma-separated Origin allowlist for browser CORS (or '*'); default: disabled")
}

// LoadAPIConfig reads flags, falling back to the INDEXER_API_CORS_ORIGINS
// env var when --cors-origins was not passed, following
// apiconfig.readConfig's structs-then-env layering idiom.
func LoadAPIConfig(fs *pflag.FlagSet) (APIConfig, error) {
	k := koanf.New(".")
	d := defaultAPIConfig()
	if err := k.Load(structs.Provider(d, "koanf"), nil); err != nil {
		return APIConfig{}, fmt.Errorf("load api config defaults: %w", err)
	}

	envPrefix := "INDEXER_API_"
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return APIConfig{}, fmt.Errorf("load api config env: %w", err)
	}

	var cfg APIConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return APIConfig{}, fmt.Errorf("unmarshal api config: %w", err)
	}
	// koanf's env provider loads CORS_ORIGINS as a single comma-joined
	// string (there is no list parser registered); split it here.
	if raw := k.String("cors_origins"); raw != "" && len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = splitOrigins(raw)
	}

	if v, err := fs.GetString("db"); err == nil && fs.Changed("db") {
		cfg.StorePath = v
	}
	if v, err := fs.GetString("listen"); err == nil && fs.Changed("listen") {
		cfg.Listen = v
	}
	if fs.Changed("cors-origins") {
		v, err := fs.GetString("cors-origins")
		if err != nil {
			return APIConfig{}, err
		}
		cfg.CORSOrigins = splitOrigins(v)
	} else if len(cfg.CORSOrigins) == 0 {
		// explicit fallback for the documented env var, in case it wasn't
		// picked up as "cors_origins" above (e.g. process started before
		// koanf's env scan, or the var is set without the INDEXER_API_ prefix
		// stripped form matching exactly "CORS_ORIGINS").
		if raw, ok := os.LookupEnv("INDEXER_API_CORS_ORIGINS"); ok {
			cfg.CORSOrigins = splitOrigins(raw)
		}
	}

	if err := cfg.Validate(); err != nil {
		return APIConfig{}, err
	}
	return cfg, nil
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate enforces spec §6/§7: DB missing and invalid listen are
// misconfiguration (exit code 2).
func (c APIConfig) Validate() error {
	if c.StorePath == "" {
		return fmt.Errorf("%w: --db is required", ErrConfig)
	}
	if _, err := os.Stat(c.StorePath); err != nil {
		return fmt.Errorf("%w: db not found: %s", ErrConfig, c.StorePath)
	}
	if c.Listen == "" {
		return fmt.Errorf("%w: --listen is required", ErrConfig)
	}
	if !strings.Contains(c.Listen, ":") {
		return fmt.Errorf("%w: --listen must be host:port", ErrConfig)
	}
	return nil
}
