// Package prompt is the prompt library for the production agents. Templates
// ship as built-in defaults and can be overridden from JSON files on disk,
// so prompt tuning does not require code changes.
package prompt

import (
	"bytes"
	"fmt"
	"text/template"
)

// PromptTemplate is a reusable prompt with metadata.
type PromptTemplate struct {
	ID               string `json:"id"` // e.g. "producer.plan"
	Name             string `json:"name"`
	Category         string `json:"category"` // producer, scriptwriter, qa, critic, editor
	Description      string `json:"description"`
	SystemPrompt     string `json:"system_prompt"`
	UserPromptTmpl   string `json:"user_prompt_template"` // Go text/template
	ResponseSchemaID string `json:"response_schema_ref"`
	Version          string `json:"version"`
}

// ResponseSchema describes the JSON shape an agent must return. Its text is
// appended to retry prompts after a parse failure.
type ResponseSchema struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	JSONSchema  string `json:"json_schema"`
}

// Render executes the user prompt template against the given variables.
func (pt *PromptTemplate) Render(vars map[string]interface{}) (string, error) {
	tmpl, err := template.New(pt.ID).Parse(pt.UserPromptTmpl)
	if err != nil {
		return "", fmt.Errorf("prompt %s: bad template: %w", pt.ID, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("prompt %s: render failed: %w", pt.ID, err)
	}
	return buf.String(), nil
}
