// Package agent routes each production role to its configured LLM provider.
package agent

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v2"

	"agentic_studio/pkg/core/llm"
)

// Config selects providers globally and per role.
type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

// AgentConfig is an optional per-role override.
type AgentConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	Description string `yaml:"description"`
}

// Credentials carries the API keys for every backend. Empty keys simply
// leave that backend unregistered.
type Credentials struct {
	OpenAIKey   string
	GeminiKey   string
	DeepSeekKey string
}

// LoadConfig reads an agent config YAML from disk.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read agent config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse agent config: %w", err)
	}
	if cfg.ActiveProvider == "" {
		cfg.ActiveProvider = "openai"
	}
	return cfg, nil
}

// Manager owns the provider registry and the role routing table.
type Manager struct {
	config    Config
	providers map[string]llm.TextProvider
	vision    llm.VisionProvider
	log       *zap.Logger
}

// NewManager builds providers for every credential present and wires them
// under their canonical names.
func NewManager(ctx context.Context, config Config, creds Credentials, log *zap.Logger) (*Manager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		config:    config,
		providers: make(map[string]llm.TextProvider),
		log:       log,
	}

	if creds.OpenAIKey != "" {
		p, err := llm.NewOpenAIProvider(creds.OpenAIKey, "")
		if err != nil {
			return nil, err
		}
		m.providers["openai"] = p
		m.vision = p
	}
	if creds.GeminiKey != "" {
		p, err := llm.NewGeminiProvider(ctx, creds.GeminiKey, "")
		if err != nil {
			return nil, err
		}
		m.providers["gemini"] = p
	}
	if creds.DeepSeekKey != "" {
		p, err := llm.NewDeepSeekProvider(creds.DeepSeekKey, "")
		if err != nil {
			return nil, err
		}
		m.providers["deepseek"] = p
	}

	if len(m.providers) == 0 {
		return nil, fmt.Errorf("no LLM credentials configured")
	}
	if _, ok := m.providers[config.ActiveProvider]; !ok {
		return nil, fmt.Errorf("active provider %q has no credentials", config.ActiveProvider)
	}
	log.Info("agent manager ready",
		zap.String("active_provider", config.ActiveProvider),
		zap.Int("providers", len(m.providers)))
	return m, nil
}

// Provider resolves the text provider for a role: per-role override first,
// then the global active provider.
func (m *Manager) Provider(role string) llm.TextProvider {
	if ac, ok := m.config.Agents[role]; ok && ac.Provider != "" {
		if p, ok := m.providers[ac.Provider]; ok {
			return p
		}
		m.log.Warn("role override names an unregistered provider, using active",
			zap.String("role", role), zap.String("provider", ac.Provider))
	}
	return m.providers[m.config.ActiveProvider]
}

// Vision returns the vision-capable provider, if any backend supplies one.
func (m *Manager) Vision() (llm.VisionProvider, bool) {
	return m.vision, m.vision != nil
}

// SetGlobalProvider switches the active provider at runtime.
func (m *Manager) SetGlobalProvider(name string) error {
	if _, ok := m.providers[name]; !ok {
		return fmt.Errorf("provider %q not registered", name)
	}
	m.config.ActiveProvider = name
	m.log.Info("global provider switched", zap.String("provider", name))
	return nil
}

// ActiveProvider returns the current global provider name.
func (m *Manager) ActiveProvider() string {
	return m.config.ActiveProvider
}
