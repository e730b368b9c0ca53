package config

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap/zapcore"

	"property_report/pkg/core/agent"
)

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be within [1,65535], got %d", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit must be >= 0, got %f", c.Server.RateLimit))
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("server.rate_burst must be >= 1 when rate limiting, got %d", c.Server.RateBurst))
	}
	if c.Server.RequestTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must be >= 0"))
	}

	active := c.LLM.ActiveProvider
	if active != "" && !slices.Contains(knownProviders, active) {
		errs = append(errs, fmt.Errorf("llm.active_provider must be one of %v, got %q", knownProviders, active))
	}
	if active != "" && active != agent.FallbackProvider && c.LLM.Providers[active].APIKey == "" {
		errs = append(errs, fmt.Errorf("llm.active_provider %s has no api key (set %s)", active, keyEnv(c, active)))
	}
	for name, a := range c.LLM.Agents {
		if a.Provider != "" && !slices.Contains(knownProviders, a.Provider) {
			errs = append(errs, fmt.Errorf("llm.agents.%s.provider %q is unknown", name, a.Provider))
		}
	}

	if c.Report.Tolerance < 0 || c.Report.Tolerance >= 1 {
		errs = append(errs, fmt.Errorf("report.tolerance must be within [0,1), got %f", c.Report.Tolerance))
	}
	if c.Report.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("report.cache_ttl must be >= 0, got %s", c.Report.CacheTTL))
	}
	if c.Report.HostedPromptVersion != "" && c.Report.HostedPromptID == "" {
		errs = append(errs, errors.New("report.hosted_prompt_version is set without report.hosted_prompt_id"))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

func keyEnv(c Config, provider string) string {
	if env := c.LLM.Providers[provider].APIKeyEnv; env != "" {
		return env
	}
	return defaultKeyEnv[provider]
}
