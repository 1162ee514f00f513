// Package roles implements the production agents: Producer, ScriptWriter,
// VideoGenerator, AudioGenerator, QA Verifier, Critic and Editor. Each agent
// is a contract over pure inputs and outputs; LLM and generation backends
// are injected collaborators.
package roles

import (
	"context"

	"go.uber.org/zap"

	"agentic_studio/pkg/core/llm"
	"agentic_studio/pkg/core/prompt"
	"agentic_studio/pkg/core/utils"
	"agentic_studio/pkg/models"
)

// jsonOptions asks providers for structured output.
func jsonOptions() map[string]interface{} {
	return map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	}
}

// queryJSON runs one agent query and coerces the output into schema.
// A parse failure triggers exactly one retry with a schema-emphasizing
// prompt; a second failure surfaces as InvalidAgentResponse.
func queryJSON(ctx context.Context, provider llm.TextProvider, reg *prompt.Registry, promptID, role, userPrompt, systemPrompt string, schema interface{}) error {
	raw, err := provider.Query(ctx, userPrompt, systemPrompt, jsonOptions())
	if err != nil {
		return err
	}
	if parseErr := utils.ParseInto(raw, schema); parseErr == nil {
		return nil
	}

	retry := reg.RetryPrompt(promptID, userPrompt)
	raw, err = provider.Query(ctx, retry, systemPrompt, jsonOptions())
	if err != nil {
		return err
	}
	if parseErr := utils.ParseInto(raw, schema); parseErr != nil {
		return &models.InvalidAgentResponseError{Role: role, Raw: raw, Err: parseErr}
	}
	return nil
}

func ensureLogger(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
