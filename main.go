package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"google.golang.org/genai"

	"github.com/intelligent-rag/server/internal/agent"
	"github.com/intelligent-rag/server/internal/agent/analytics"
	"github.com/intelligent-rag/server/internal/agent/conversations"
	"github.com/intelligent-rag/server/internal/agent/loop"
	"github.com/intelligent-rag/server/internal/agent/model"
	"github.com/intelligent-rag/server/internal/agent/oracle"
	"github.com/intelligent-rag/server/internal/agent/prompts"
	"github.com/intelligent-rag/server/internal/agent/repo"
	"github.com/intelligent-rag/server/internal/agent/tools"
	"github.com/intelligent-rag/server/internal/api"
	"github.com/intelligent-rag/server/internal/core"
	"github.com/intelligent-rag/server/internal/datastore"
	"github.com/intelligent-rag/server/internal/retrieval"
	"github.com/intelligent-rag/server/internal/search"
	logx "github.com/intelligent-rag/server/pkg/logger"
	pkgpostgres "github.com/intelligent-rag/server/pkg/postgres"
	pkgredis "github.com/intelligent-rag/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the service, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Server   api.Config
	Redis    pkgredis.Config
	Postgres pkgpostgres.Config

	// Collaborators
	Retrieval retrieval.Config
	Tavily    search.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Oracle       model.OracleModelConfig
	Loop         model.LoopConfig
	Tools        model.ToolsConfig
	Conversation model.ConversationConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	rdb, err := cfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to initialise redis client")
	}
	defer rdb.Close()

	// ====================================================
	// Reasoning oracle: two Gemini chat models over one client. The
	// decision model gets the tool catalog bound; the plain model serves
	// text generation (SQL synthesis).
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to create gemini client")
	}

	decisionModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Oracle.Model,
		Temperature: &cfg.Oracle.Temperature,
		MaxTokens:   &cfg.Oracle.MaxTokens,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to create decision model")
	}
	plainModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Oracle.Model,
		Temperature: &cfg.Oracle.Temperature,
		MaxTokens:   &cfg.Oracle.MaxTokens,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to create generation model")
	}
	adapter := oracle.NewAdapter(decisionModel, plainModel, cfg.Oracle.Model)

	// ====================================================
	// Analytical data store + usage recorder. Without a database URL the
	// SQL tool is disabled and aggregates stay in memory.
	var recorder analytics.Recorder = analytics.NewMemoryRecorder()
	var store tools.ReadonlyStore
	if cfg.Postgres.URL != "" {
		db, err := cfg.Postgres.New()
		if err != nil {
			logx.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer db.Close()
		if err := analytics.EnsureSchema(ctx, db); err != nil {
			logx.Fatal().Err(err).Msg("failed to ensure analytics schema")
		}
		recorder = analytics.NewPostgresRecorder(db)
		store = datastore.NewPostgres(db)
	} else {
		logx.Warn().Msg("no postgres url configured; sql tool disabled, analytics in memory")
	}

	// ====================================================
	// Tool catalog, fixed at startup and bound to the decision model.
	descriptors := []*tools.Descriptor{
		tools.NewKnowledgeBaseTool(cfg.Retrieval.New(), cfg.Tools.SimilaritySearchK),
		tools.NewWebSearchTool(cfg.Tavily.New()),
	}
	if cfg.Tools.SQLEnabled && store != nil {
		descriptors = append(descriptors, tools.NewSQLQueryTool(adapter, store, cfg.Tools.SQLMaxRows))
	}
	descriptors = append(descriptors, tools.NewCalculateTool())

	registry, err := tools.NewRegistry(descriptors...)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to build tool registry")
	}
	if err := decisionModel.BindTools(registry.ForOracle()); err != nil {
		logx.Fatal().Err(err).Msg("failed to bind tools to decision model")
	}

	callTimeout, err := time.ParseDuration(cfg.Tools.CallTimeout)
	if err != nil {
		logx.Fatal().Err(err).Str("value", cfg.Tools.CallTimeout).Msg("invalid TOOL_CALL_TIMEOUT")
	}
	executor := tools.NewExecutor(registry, callTimeout)

	// ====================================================
	// Orchestration loop + session continuity + service wiring.
	queryTimeout, err := time.ParseDuration(cfg.Loop.QueryTimeout)
	if err != nil {
		logx.Fatal().Err(err).Str("value", cfg.Loop.QueryTimeout).Msg("invalid LOOP_QUERY_TIMEOUT")
	}
	retryBackoff, err := time.ParseDuration(cfg.Loop.RetryBackoff)
	if err != nil {
		logx.Fatal().Err(err).Str("value", cfg.Loop.RetryBackoff).Msg("invalid LOOP_ORACLE_RETRY_BACKOFF")
	}
	orchestrator := loop.New(adapter, executor, loop.Config{
		MaxSteps:     cfg.Loop.MaxSteps,
		QueryTimeout: queryTimeout,
		RetryBackoff: retryBackoff,
		SystemPrompt: prompts.SystemPrompt,
	})

	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Err(err).Str("value", cfg.Conversation.TTL).Msg("invalid CONVERSATION_TTL")
	}
	conversationRepo := repo.NewRedisConversationRepository(rdb, ttl)
	manager := conversations.NewManager(conversationRepo, cfg.Conversation)

	svc := agent.NewService(orchestrator, manager, recorder)

	server := api.NewServer(cfg.Server, svc)
	if err := server.Run(ctx); err != nil {
		logx.Fatal().Err(err).Msg("http server error")
	}
}
