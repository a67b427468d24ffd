package config

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/layoutfix/pkg/critic"
	"github.com/matzehuels/layoutfix/pkg/errors"
)

// Validate checks every section.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Canvas),
		validation.Field(&c.Correction),
		validation.Field(&c.Critic, validation.By(validateCritic)),
		validation.Field(&c.Analysis),
		validation.Field(&c.Cache),
		validation.Field(&c.Server),
	)
}

// Validate validates the canvas section.
func (c CanvasConfig) Validate() error {
	return errors.ValidateCanvas(c.Width, c.Height)
}

// Validate validates the correction section.
func (c CorrectionConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MaxRevisions, validation.Min(0), validation.Max(5)),
		validation.Field(&c.SoftGlowIntensity, validation.Min(0), validation.Max(3)),
	)
}

func validateCritic(value any) error {
	c, _ := value.(critic.Config)
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.MinimumScore, validation.Min(0.0), validation.Max(100.0)),
		validation.Field(&c.MinimumIntegrationScore, validation.Min(0.0), validation.Max(100.0)),
		validation.Field(&c.MaximumCriticalIssues, validation.Min(0)),
		validation.Field(&c.MaxCoverage, validation.Min(0.0), validation.Max(1.0)),
	); err != nil {
		return err
	}
	known := map[critic.Criterion]bool{}
	for _, k := range critic.Criteria() {
		known[k] = true
	}
	for k, w := range c.Weights {
		if !known[k] {
			return fmt.Errorf("weights: unknown criterion %q", k)
		}
		if w < 0 {
			return fmt.Errorf("weights: %s must not be negative", k)
		}
	}
	return nil
}

// Validate validates the analysis section.
func (c AnalysisConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.URL, validation.When(c.URL != "", validation.By(func(any) error { return errors.ValidateURL(c.URL) }))),
		validation.Field(&c.Timeout, validation.Min(0)),
		validation.Field(&c.CacheTTL, validation.Min(0)),
	)
}

// Validate validates the cache section.
func (c CacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendFile, BackendRedis, BackendMemory, BackendNone)),
		validation.Field(&c.RedisAddr, validation.When(c.Backend == BackendRedis, validation.Required)),
		validation.Field(&c.TTL, validation.Min(0)),
		validation.Field(&c.MemorySize, validation.Min(0)),
	)
}

// Validate validates the server section.
func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.MaxBodyBytes, validation.Min(int64(1))),
	)
}
