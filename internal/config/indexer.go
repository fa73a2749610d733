package config

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// IndexerConfig holds the settings for the indexer daemon (spec §6 "Indexer
// CLI/flags").
type IndexerConfig struct {
	RPCURL         string        `koanf:"rpc"`
	StorePath      string        `koanf:"db"`
	PollInterval   time.Duration `koanf:"poll_interval"`
	StartHeight    int64         `koanf:"start_height"`
	HasStartHeight bool          `koanf:"-"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

func defaultIndexerConfig() IndexerConfig {
	return IndexerConfig{
		RPCURL:         "http://localhost:26657",
		StorePath:      defaultStorePath(),
		PollInterval:   2 * time.Second,
		RequestTimeout: 15 * time.Second,
	}
}

// RegisterIndexerFlags binds the indexer's CLI flags onto fs, pre-populated
// with defaults. Mirrors the teacher's layering idiom
// (apiconfig.readConfig): struct defaults first, flags override last.
func RegisterIndexerFlags(fs *pflag.FlagSet) {
	d := defaultIndexerConfig()
	fs.String("rpc", d.RPCURL, "CometBFT JSON-RPC base URL")
	fs.String("db", d.StorePath, "path to the SQLite store file")
	fs.Float64("poll-seconds", d.PollInterval.Seconds(), "tail poll interval in seconds (minimum 0.5)")
	fs.Int64("start-height", 0, "explicit height to resume from (overrides the stored checkpoint)")
	fs.Duration("request-timeout", d.RequestTimeout, "timeout for each RPC request")
}

// LoadIndexerConfig reads the registered flags (and applies koanf's
// struct-provider defaults for anything a flag did not touch) into an
// IndexerConfig.
func LoadIndexerConfig(fs *pflag.FlagSet) (IndexerConfig, error) {
	k := koanf.New(".")
	d := defaultIndexerConfig()
	if err := k.Load(structs.Provider(d, "koanf"), nil); err != nil {
		return IndexerConfig{}, fmt.Errorf("load indexer config defaults: %w", err)
	}

	var cfg IndexerConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return IndexerConfig{}, fmt.Errorf("unmarshal indexer config: %w", err)
	}

	if v, err := fs.GetString("rpc"); err == nil && fs.Changed("rpc") {
		cfg.RPCURL = v
	}
	if v, err := fs.GetString("db"); err == nil && fs.Changed("db") {
		cfg.StorePath = v
	}
	if v, err := fs.GetFloat64("poll-seconds"); err == nil {
		if fs.Changed("poll-seconds") {
			cfg.PollInterval = time.Duration(v * float64(time.Second))
		}
	}
	if fs.Changed("start-height") {
		v, err := fs.GetInt64("start-height")
		if err != nil {
			return IndexerConfig{}, err
		}
		cfg.StartHeight = v
		cfg.HasStartHeight = true
	}
	if v, err := fs.GetDuration("request-timeout"); err == nil && fs.Changed("request-timeout") {
		cfg.RequestTimeout = v
	}

	if err := cfg.Validate(); err != nil {
		return IndexerConfig{}, err
	}
	return cfg, nil
}

// Validate enforces spec §6's minimum poll interval and rejects an
// impossible start height. Returns a Config-kind error (exit code 2, spec
// §7).
func (c IndexerConfig) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("%w: --rpc is required", ErrConfig)
	}
	if c.StorePath == "" {
		return fmt.Errorf("%w: --db is required", ErrConfig)
	}
	if c.PollInterval < 500*time.Millisecond {
		return fmt.Errorf("%w: --poll-seconds must be at least 0.5", ErrConfig)
	}
	if c.HasStartHeight && c.StartHeight < 0 {
		return fmt.Errorf("%w: --start-height must not be negative", ErrConfig)
	}
	return nil
}
