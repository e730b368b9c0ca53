package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"property_report/pkg/core/llm"
)

// ReportWriter is the agent type that produces property reports.
const ReportWriter = "report_writer"

// FallbackProvider serves requests when nothing else is configured.
const FallbackProvider = "stub"

// ErrUnknownProvider is returned when switching to an unregistered provider.
var ErrUnknownProvider = errors.New("unknown provider")

type Config struct {
	ActiveProvider string                        `yaml:"active_provider"`
	Agents         map[string]AgentConfig        `yaml:"agents"`
	Providers      map[string]llm.ProviderConfig `yaml:"providers"`
}

type AgentConfig struct {
	Provider    string `yaml:"provider"` // Optional override
	Model       string `yaml:"model"`    // Optional override
	Description string `yaml:"description"`
}

// Generation is the raw provider output plus where it came from.
type Generation struct {
	Text     string
	Provider string
	Model    string
	Elapsed  time.Duration
}

type Manager struct {
	mu        sync.RWMutex
	config    Config
	providers map[string]llm.Provider
	logger    *zap.Logger
}

// NewManager builds the provider set from config. Providers without an API
// key are still registered; they fail on first use with llm.ErrMissingAPIKey.
func NewManager(config Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	pc := config.Providers
	m := &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"openai":         llm.NewOpenAIProvider(pc["openai"]),
			"gemini":         &llm.GeminiProvider{Config: pc["gemini"]},
			"deepseek":       &llm.DeepSeekProvider{Config: pc["deepseek"]},
			FallbackProvider: &llm.StubProvider{},
		},
		logger: logger.Named("agent"),
	}
	return m
}

// Register adds or replaces a provider under its own name.
func (m *Manager) Register(p llm.Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[p.Name()] = p
}

func (m *Manager) GetProvider(agentType string) llm.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// 1. Check for agent-specific override
	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return p
		}
	}

	// 2. Use global active provider
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}

	// 3. Fallback
	return m.providers[FallbackProvider]
}

// Generate routes req to the provider for agentType, filling the model from
// the agent or provider config when the request leaves it empty.
func (m *Manager) Generate(ctx context.Context, agentType string, req llm.Request) (*Generation, error) {
	provider := m.GetProvider(agentType)
	if req.Model == "" {
		req.Model = m.modelFor(agentType, provider.Name())
	}

	start := time.Now()
	text, err := provider.GenerateResponse(ctx, req)
	elapsed := time.Since(start)

	fields := []zap.Field{
		zap.String("agent", agentType),
		zap.String("provider", provider.Name()),
		zap.String("model", req.Model),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil {
		m.logger.Warn("generation failed", append(fields, zap.Error(err))...)
		return nil, fmt.Errorf("%s: %w", provider.Name(), err)
	}
	m.logger.Info("generation complete", append(fields, zap.Int("bytes", len(text)))...)

	return &Generation{Text: text, Provider: provider.Name(), Model: req.Model, Elapsed: elapsed}, nil
}

func (m *Manager) modelFor(agentType, provider string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.config.Agents[agentType]; ok && a.Model != "" && (a.Provider == "" || a.Provider == provider) {
		return a.Model
	}
	return m.config.Providers[provider].Model
}

func (m *Manager) SetGlobalProvider(newProvider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, newProvider)
	}
	m.config.ActiveProvider = newProvider
	m.logger.Info("global provider switched", zap.String("provider", newProvider))
	return nil
}

// GetActiveProvider returns the name of the provider that will serve
// requests without an agent override.
func (m *Manager) GetActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.providers[m.config.ActiveProvider]; ok {
		return m.config.ActiveProvider
	}
	return FallbackProvider
}

// Available lists registered provider names, sorted.
func (m *Manager) Available() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
