package prompt

// Built-in prompt IDs used by the production roles.
const (
	IDProducerPlan     = "producer.plan"
	IDScriptWriter     = "scriptwriter.write"
	IDQAVerify         = "qa.verify"
	IDCriticEvaluate   = "critic.evaluate"
	IDEditorCreateEDL  = "editor.create_edl"
)

// NewDefaultRegistry returns a registry preloaded with the shipped prompts
// and schemas for every role.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, pt := range defaultPrompts {
		_ = r.Register(pt)
	}
	for _, s := range defaultSchemas {
		_ = r.RegisterSchema(s)
	}
	return r
}

var defaultPrompts = []*PromptTemplate{
	{
		ID:               IDProducerPlan,
		Name:             "Producer pilot planning",
		Category:         "producer",
		SystemPrompt:     "You are a video producer planning competing production approaches. You must answer with a single JSON object.",
		UserPromptTmpl:   "Plan 2-3 pilot strategies for this video request:\n{{.Request}}\n\nTotal budget: ${{printf \"%.2f\" .Budget}}.\nAvailable tiers: static_images, motion_graphics, animated, photorealistic.\nEach pilot needs a distinct tier, an allocated budget, a test_scene_count between 2 and 4, a full_scene_count, and a one-sentence rationale. Budgets should roughly sum to the total.{{if .ProviderKnowledge}}\n\nProvider notes:\n{{.ProviderKnowledge}}{{end}}",
		ResponseSchemaID: "producer.pilots",
		Version:          "1",
	},
	{
		ID:               IDScriptWriter,
		Name:             "ScriptWriter scene breakdown",
		Category:         "scriptwriter",
		SystemPrompt:     "You are a video scriptwriter. Break a concept into concrete scenes. Answer with a single JSON object.",
		UserPromptTmpl:   "Write {{.NumScenes}} scenes for this video concept:\n{{.Concept}}\n\nTarget duration: {{printf \"%.0f\" .TargetDuration}} seconds total, production tier {{.Tier}}.\nEvery scene needs scene_id, title, description, duration_sec between 3 and 8, visual_elements, and transitions. Scene durations must sum to within 10 percent of the target. Never put readable text inside visual descriptions; use the text_overlay field instead.",
		ResponseSchemaID: "scriptwriter.scenes",
		Version:          "1",
	},
	{
		ID:               IDQAVerify,
		Name:             "QA scene verification",
		Category:         "qa",
		SystemPrompt:     "You are a meticulous video QA reviewer. Score what you see, not what was intended. Answer with a single JSON object.",
		UserPromptTmpl:   "Review a generated video for this scene:\n{{.SceneDescription}}\n\nOriginal request: {{.Request}}\nProduction tier: {{.Tier}}.\nScore visual_accuracy, style_consistency, technical_quality and narrative_fit from 0 to 100, list concrete issues and suggestions.",
		ResponseSchemaID: "qa.result",
		Version:          "1",
	},
	{
		ID:               IDCriticEvaluate,
		Name:             "Critic pilot evaluation",
		Category:         "critic",
		SystemPrompt:     "You are a demanding executive producer judging whether a pilot earns its remaining budget. Answer with a single JSON object.",
		UserPromptTmpl:   "Evaluate this pilot's test results.\n\nOriginal request: {{.Request}}\nTier: {{.Tier}}. Spent so far: ${{printf \"%.2f\" .Spent}} of ${{printf \"%.2f\" .Allocated}} allocated.\n\nScene results:\n{{.SceneSummary}}\n\nGive critic_score from 0 to 100, gap_analysis, reasoning, and adjustments_needed. If any scene failed QA and you still approve, you must include qa_override_reasoning explaining why.",
		ResponseSchemaID: "critic.results",
		Version:          "1",
	},
	{
		ID:               IDEditorCreateEDL,
		Name:             "Editor cut notes",
		Category:         "editor",
		SystemPrompt:     "You are a video editor writing brief cut notes for an edit decision list.",
		UserPromptTmpl:   "Write one sentence of editorial guidance for a {{.Style}} cut of this video:\n{{.Request}}\n\nScenes:\n{{.SceneSummary}}",
		Version:          "1",
	},
}

var defaultSchemas = []*ResponseSchema{
	{
		ID:         "producer.pilots",
		Name:       "Pilot strategy list",
		JSONSchema: `{"pilots": [{"pilot_id": "string", "tier": "static_images|motion_graphics|animated|photorealistic", "allocated_budget": 0.0, "test_scene_count": 2, "full_scene_count": 10, "rationale": "string"}]}`,
	},
	{
		ID:         "scriptwriter.scenes",
		Name:       "Scene list",
		JSONSchema: `{"scenes": [{"scene_id": "string", "title": "string", "description": "string", "duration_sec": 5.0, "visual_elements": ["string"], "transition_in": "string", "transition_out": "string", "text_overlay": "string", "continuity_group": "string"}]}`,
	},
	{
		ID:         "qa.result",
		Name:       "QA scores",
		JSONSchema: `{"visual_accuracy": 0.0, "style_consistency": 0.0, "technical_quality": 0.0, "narrative_fit": 0.0, "issues": ["string"], "suggestions": ["string"], "visual_analysis": "string"}`,
	},
	{
		ID:         "critic.results",
		Name:       "Critic verdict",
		JSONSchema: `{"critic_score": 0.0, "gap_analysis": "string", "reasoning": "string", "adjustments_needed": ["string"], "qa_override_reasoning": "string"}`,
	},
}
