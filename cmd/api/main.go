// Command api serves the production pipeline over HTTP: provider config,
// run trigger, run history and EDL retrieval.
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	apiconfig "agentic_studio/pkg/api/config"
	"agentic_studio/pkg/api/production"
	"agentic_studio/pkg/core/agent"
	"agentic_studio/pkg/core/knowledge"
	"agentic_studio/pkg/core/pipeline"
	"agentic_studio/pkg/core/prompt"
	"agentic_studio/pkg/core/providers"
	"agentic_studio/pkg/core/roles"
	"agentic_studio/pkg/core/store"
)

func main() {
	godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	cfg := agent.Config{ActiveProvider: "openai"}
	if path := os.Getenv("AGENT_CONFIG"); path != "" {
		cfg, err = agent.LoadConfig(path)
		if err != nil {
			logger.Fatal("agent config", zap.Error(err))
		}
	}
	mgr, err := agent.NewManager(ctx, cfg, agent.Credentials{
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		GeminiKey:   os.Getenv("GEMINI_API_KEY"),
		DeepSeekKey: os.Getenv("DEEPSEEK_API_KEY"),
	}, logger)
	if err != nil {
		logger.Fatal("provider setup", zap.Error(err))
	}

	registry := prompt.NewDefaultRegistry()
	if dir := os.Getenv("PROMPT_DIR"); dir != "" {
		if err := registry.LoadFromDirectory(dir); err != nil {
			logger.Warn("prompt overrides not loaded", zap.Error(err))
		}
	}

	producer := roles.NewProducer(mgr.Provider("producer"), registry, logger)
	writer := roles.NewScriptWriter(mgr.Provider("scriptwriter"), registry, logger)
	critic := roles.NewCritic(mgr.Provider("critic"), registry, logger)
	editor := roles.NewEditor(mgr.Provider("editor"), registry, logger)
	qa := roles.NewQAVerifier(mgr.Provider("qa"), registry, logger)
	if vision, ok := mgr.Vision(); ok {
		qa = qa.WithVision(vision, providers.NewFFmpegFrameExtractor())
	}
	gen := roles.NewVideoGenerator(&providers.MockVideoProvider{}, logger)

	orch := pipeline.NewOrchestrator(producer, critic, editor,
		pipeline.DefaultRunnerFactory(writer, gen, qa, logger), logger).
		WithProviderKnowledge(knowledge.DefaultCatalog().Summary())

	var repo *store.ProductionRepo
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			logger.Warn("database unavailable", zap.Error(err))
		} else {
			defer store.Close()
			repo = store.NewProductionRepo(store.GetPool())
		}
	}

	configHandler := apiconfig.NewHandler(mgr)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	prodHandler := production.NewHandler(orch, repo, logger)
	http.HandleFunc("/api/production/run", prodHandler.HandleRun)
	http.HandleFunc("/api/production/runs", prodHandler.HandleListRuns)
	http.HandleFunc("/api/production/get", prodHandler.HandleGetRun)
	http.HandleFunc("/api/production/edl", prodHandler.HandleGetEDL)

	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	logger.Info("api listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}
