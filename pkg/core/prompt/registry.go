package prompt

import (
	"fmt"
	"sync"
)

// Registry holds prompt templates and response schemas. Registries are
// per-run instances injected into the agents; there is no global one.
type Registry struct {
	mu      sync.RWMutex
	prompts map[string]*PromptTemplate
	schemas map[string]*ResponseSchema
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		prompts: make(map[string]*PromptTemplate),
		schemas: make(map[string]*ResponseSchema),
	}
}

// Register adds or replaces a prompt template.
func (r *Registry) Register(pt *PromptTemplate) error {
	if pt.ID == "" {
		return fmt.Errorf("prompt ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[pt.ID] = pt
	return nil
}

// RegisterSchema adds or replaces a response schema.
func (r *Registry) RegisterSchema(schema *ResponseSchema) error {
	if schema.ID == "" {
		return fmt.Errorf("schema ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[schema.ID] = schema
	return nil
}

// GetPrompt retrieves a prompt template by ID.
func (r *Registry) GetPrompt(id string) (*PromptTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.prompts[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("prompt %q not registered", id)
}

// SystemPrompt returns the system prompt of a template.
func (r *Registry) SystemPrompt(id string) (string, error) {
	p, err := r.GetPrompt(id)
	if err != nil {
		return "", err
	}
	return p.SystemPrompt, nil
}

// RenderUser renders the user prompt of a template against variables.
func (r *Registry) RenderUser(id string, vars map[string]interface{}) (string, error) {
	p, err := r.GetPrompt(id)
	if err != nil {
		return "", err
	}
	return p.Render(vars)
}

// Schema retrieves a response schema by ID.
func (r *Registry) Schema(id string) (*ResponseSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.schemas[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("schema %q not registered", id)
}

// RetryPrompt builds the schema-emphasizing follow-up used after a JSON
// parse failure. If the template has no schema, the base prompt is returned
// with a plain strictness reminder.
func (r *Registry) RetryPrompt(id, basePrompt string) string {
	p, err := r.GetPrompt(id)
	if err != nil || p.ResponseSchemaID == "" {
		return basePrompt + "\n\nRespond with a single valid JSON object and nothing else."
	}
	schema, err := r.Schema(p.ResponseSchemaID)
	if err != nil {
		return basePrompt + "\n\nRespond with a single valid JSON object and nothing else."
	}
	return fmt.Sprintf("%s\n\nYour previous answer was not valid JSON. Respond with a single JSON object matching exactly this schema, with no prose around it:\n%s", basePrompt, schema.JSONSchema)
}

// Count returns the number of registered prompts.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prompts)
}
