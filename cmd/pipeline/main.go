// Command pipeline runs a full budget-governed production for one request:
// plan pilots, test them in parallel, critique, continue the winners and
// print the final result as JSON. Video generation uses the mock provider;
// plug a real backend behind providers.VideoProvider to go live.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"agentic_studio/pkg/core/agent"
	"agentic_studio/pkg/core/knowledge"
	"agentic_studio/pkg/core/pipeline"
	"agentic_studio/pkg/core/prompt"
	"agentic_studio/pkg/core/providers"
	"agentic_studio/pkg/core/roles"
	"agentic_studio/pkg/core/store"
)

func main() {
	request := flag.String("request", "", "what to produce, e.g. \"60-second video explaining our deploy pipeline\"")
	totalBudget := flag.Float64("budget", 150, "total budget in USD")
	configPath := flag.String("config", "", "agent config YAML (optional)")
	maxPilots := flag.Int("max-pilots", pipeline.DefaultMaxConcurrentPilots, "concurrent pilot cap")
	promptDir := flag.String("prompts", "", "directory with prompt overrides (optional)")
	flag.Parse()

	if *request == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, assuming environment variables are set")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	cfg := agent.Config{ActiveProvider: "openai"}
	if *configPath != "" {
		cfg, err = agent.LoadConfig(*configPath)
		if err != nil {
			logger.Fatal("agent config", zap.Error(err))
		}
	}
	creds := agent.Credentials{
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		GeminiKey:   os.Getenv("GEMINI_API_KEY"),
		DeepSeekKey: os.Getenv("DEEPSEEK_API_KEY"),
	}
	mgr, err := agent.NewManager(ctx, cfg, creds, logger)
	if err != nil {
		logger.Fatal("provider setup", zap.Error(err))
	}

	registry := prompt.NewDefaultRegistry()
	if *promptDir != "" {
		if err := registry.LoadFromDirectory(*promptDir); err != nil {
			logger.Fatal("prompt overrides", zap.Error(err))
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

	videoGen := roles.NewVideoGenerator(&providers.MockVideoProvider{}, logger)

	orch := pipeline.NewOrchestrator(producer, critic, editor,
		pipeline.DefaultRunnerFactory(writer, videoGen, qa, logger), logger).
		WithMaxConcurrentPilots(*maxPilots).
		WithProviderKnowledge(knowledge.DefaultCatalog().Summary())

	result, err := orch.Produce(ctx, *request, *totalBudget)
	if err != nil {
		logger.Fatal("production", zap.Error(err))
	}

	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			logger.Warn("database unavailable, skipping persistence", zap.Error(err))
		} else {
			defer store.Close()
			repo := store.NewProductionRepo(store.GetPool())
			if err := repo.SaveRun(ctx, result); err != nil {
				logger.Warn("failed to persist run", zap.Error(err))
			}
		}
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatal("encode result", zap.Error(err))
	}
	fmt.Println(string(out))
}
