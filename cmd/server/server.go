package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"instareply/internal/config"
	"instareply/internal/domain/bot"
	"instareply/internal/domain/knowledge"
	"instareply/internal/domain/lead"
	"instareply/internal/domain/settings"
	"instareply/internal/infrastructure/database"
	"instareply/internal/infrastructure/gemini"
	"instareply/internal/infrastructure/instagram"
	"instareply/internal/infrastructure/logger"
	analyticsrepo "instareply/internal/infrastructure/repository/analytics"
	conversationrepo "instareply/internal/infrastructure/repository/conversation"
	knowledgerepo "instareply/internal/infrastructure/repository/knowledge"
	leadrepo "instareply/internal/infrastructure/repository/lead"
	settingsrepo "instareply/internal/infrastructure/repository/settings"
	"instareply/internal/interfaces/httpserver"
	"instareply/internal/interfaces/httpserver/handlers"
	"instareply/internal/worker"
)

type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	conversationStore := conversationrepo.NewRepository(db)
	knowledgeIndex := knowledgerepo.NewRepository(db)
	leadRepository := leadrepo.NewRepository(db)
	settingsRepository := settingsrepo.NewRepository(db)
	analyticsRepository := analyticsrepo.NewRepository(db)

	instagramClient := instagram.NewClient(instagram.Config{
		AccessToken:       cfg.InstagramAccessToken,
		BusinessAccountID: cfg.InstagramUserID,
		PageID:            cfg.InstagramPageID,
	}, log)
	geminiClient := gemini.NewClient(gemini.Config{
		APIKey:              cfg.GeminiAPIKey,
		GenerationModel:     cfg.GenerationModel,
		EmbeddingModel:      cfg.EmbeddingModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	}, log)

	retriever := knowledge.NewRetriever(geminiClient, knowledgeIndex, cfg.MatchThreshold, cfg.MatchTopK)
	knowledgeService := knowledge.NewService(geminiClient, knowledgeIndex, cfg.ChunkSize, cfg.ChunkOverlap, log)
	settingsService := settings.NewService(settingsRepository, log)
	leadExtractor := lead.NewExtractor(leadRepository, log)

	taskRunner := worker.NewRunner(worker.Config{
		WorkerCount: cfg.WorkerCount,
		TaskTimeout: cfg.TaskTimeout,
	}, log)
	taskRunner.Start(ctx)
	defer func() {
		log.Info().Msg("stopping task runner")
		taskRunner.Stop()
	}()

	location, err := time.LoadLocation(cfg.BotTimezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", cfg.BotTimezone).Msg("invalid timezone, using UTC")
		location = time.UTC
	}

	engine := bot.NewEngine(bot.Config{
		Store:        conversationStore,
		Persona:      settingsService,
		Retriever:    retriever,
		Generator:    geminiClient,
		Sender:       instagramClient,
		Extractor:    leadExtractor,
		Tasks:        taskRunner,
		Prompts:      bot.NewPromptBuilder(location),
		HistoryLimit: cfg.HistoryLimit,
	}, log)

	httpServer := httpserver.New(cfg, handlers.ProviderDeps{
		VerifyToken:  cfg.InstagramVerifyToken,
		BotAccountID: cfg.InstagramUserID,
		Store:        conversationStore,
		Responder:    engine,
		Profiles:     instagramClient,
		Sender:       instagramClient,
		Leads:        leadRepository,
		Settings:     settingsService,
		Knowledge:    knowledgeService,
		Analytics:    analyticsRepository,
	}, log)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
