// Package config loads layoutfix configuration files.
//
// A configuration file is TOML (layoutfix.toml) or YAML (layoutfix.yaml).
// Values of the form ${NAME} are expanded from the environment before
// decoding, keys the file leaves out keep their defaults, and the result is
// validated before it is returned:
//
//	cfg, err := config.Load("layoutfix.toml")
//	if err != nil {
//	    return err
//	}
//	cfg.ApplyEnv()
//
// Three environment variables override file values: LAYOUTFIX_CONFIG selects
// the file (see Resolve), LAYOUTFIX_REDIS_ADDR sets cache.redis_addr and
// LAYOUTFIX_ANALYSIS_URL sets analysis.url.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/layoutfix/pkg/correction"
	"github.com/matzehuels/layoutfix/pkg/critic"
	"github.com/matzehuels/layoutfix/pkg/errors"
)

// Environment variables read by Resolve and ApplyEnv.
const (
	EnvConfig      = "LAYOUTFIX_CONFIG"
	EnvRedisAddr   = "LAYOUTFIX_REDIS_ADDR"
	EnvAnalysisURL = "LAYOUTFIX_ANALYSIS_URL"
)

// DefaultFiles are tried in order by Resolve when no path is given.
var DefaultFiles = []string{"layoutfix.toml", "layoutfix.yaml", "layoutfix.yml"}

// Cache backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Config is the complete file configuration.
type Config struct {
	Canvas     CanvasConfig     `toml:"canvas" yaml:"canvas" json:"canvas"`
	Correction CorrectionConfig `toml:"correction" yaml:"correction" json:"correction"`
	Critic     critic.Config    `toml:"critic" yaml:"critic" json:"critic"`
	Analysis   AnalysisConfig   `toml:"analysis" yaml:"analysis" json:"analysis"`
	Cache      CacheConfig      `toml:"cache" yaml:"cache" json:"cache"`
	Server     ServerConfig     `toml:"server" yaml:"server" json:"server"`

	// Tokens optionally points at a TOML design token override.
	Tokens string `toml:"tokens" yaml:"tokens" json:"tokens,omitempty"`
}

// CanvasConfig is the default canvas for drafts that do not declare one.
type CanvasConfig struct {
	Width  float64 `toml:"width" yaml:"width" json:"width"`
	Height float64 `toml:"height" yaml:"height" json:"height"`
}

// CorrectionConfig holds orchestrator and revision-loop settings.
type CorrectionConfig struct {
	ValidateFirst     bool `toml:"validate_first" yaml:"validate_first" json:"validate_first"`
	MaxRevisions      int  `toml:"max_revisions" yaml:"max_revisions" json:"max_revisions"`
	SoftGlowIntensity int  `toml:"soft_glow_intensity" yaml:"soft_glow_intensity" json:"soft_glow_intensity"`
}

// Corrector returns the orchestrator configuration.
func (c CorrectionConfig) Corrector() correction.Config {
	return correction.Config{SoftGlowIntensity: c.SoftGlowIntensity, ValidateFirst: c.ValidateFirst}
}

// AnalysisConfig points at the external image analysis provider. An empty
// URL disables it and every run uses the documented default analysis.
type AnalysisConfig struct {
	URL      string        `toml:"url" yaml:"url" json:"url,omitempty"`
	Timeout  time.Duration `toml:"timeout" yaml:"timeout" json:"timeout"`
	CacheTTL time.Duration `toml:"cache_ttl" yaml:"cache_ttl" json:"cache_ttl"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend   string        `toml:"backend" yaml:"backend" json:"backend"`
	Dir       string        `toml:"dir" yaml:"dir" json:"dir,omitempty"`
	RedisAddr string        `toml:"redis_addr" yaml:"redis_addr" json:"redis_addr,omitempty"`
	RedisDB   int           `toml:"redis_db" yaml:"redis_db" json:"redis_db,omitempty"`
	TTL       time.Duration `toml:"ttl" yaml:"ttl" json:"ttl"`
	// MemorySize bounds the in-process LRU tier placed in front of the
	// backend. Zero disables the tier.
	MemorySize int `toml:"memory_size" yaml:"memory_size" json:"memory_size"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr" json:"addr"`
	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes" yaml:"max_body_bytes" json:"max_body_bytes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Canvas: CanvasConfig{Width: 1080, Height: 1080},
		Correction: CorrectionConfig{
			MaxRevisions:      1,
			SoftGlowIntensity: correction.DefaultSoftGlowIntensity,
		},
		Critic: critic.DefaultConfig(),
		Analysis: AnalysisConfig{
			Timeout:  10 * time.Second,
			CacheTTL: 7 * 24 * time.Hour,
		},
		Cache: CacheConfig{
			Backend:    BackendFile,
			TTL:        24 * time.Hour,
			MemorySize: 256,
		},
		Server: ServerConfig{Addr: ":8080", MaxBodyBytes: 4 << 20},
	}
}

// Load reads, expands, decodes and validates a configuration file. The
// format is chosen by extension.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return Parse(data, ext)
}

// Parse decodes configuration data in the given format ("toml", "yaml" or
// "yml") on top of Default.
func Parse(data []byte, format string) (Config, error) {
	cfg := Default()
	expanded := os.ExpandEnv(string(data))

	switch format {
	case "toml":
		md, err := toml.Decode(expanded, &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse toml config")
		}
		if un := md.Undecoded(); len(un) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", un[0].String())
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse yaml config")
		}
	default:
		return Config{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q", format)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
	}
	return cfg, nil
}

// Resolve finds the configuration file to use: an explicit path, then
// LAYOUTFIX_CONFIG, then the first of DefaultFiles present in dir. It
// returns "" when none exists, which means built-in defaults.
func Resolve(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	for _, name := range DefaultFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadOrDefault loads the resolved file, or returns Default when there is
// none. Environment overrides are applied in both cases.
func LoadOrDefault(explicit, dir string) (Config, error) {
	cfg := Default()
	if path := Resolve(explicit, dir); path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides file values with LAYOUTFIX_REDIS_ADDR and
// LAYOUTFIX_ANALYSIS_URL. A Redis address also selects the redis backend.
func (c *Config) ApplyEnv() {
	if addr := os.Getenv(EnvRedisAddr); addr != "" {
		c.Cache.RedisAddr = addr
		c.Cache.Backend = BackendRedis
	}
	if u := os.Getenv(EnvAnalysisURL); u != "" {
		c.Analysis.URL = u
	}
}
