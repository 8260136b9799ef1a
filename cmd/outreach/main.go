package main

import (
	"time"

	"outreach/internal/agent"
	outreachconfig "outreach/internal/config"
	"outreach/internal/generate"
	"outreach/internal/publish"
	"outreach/internal/store"
	"outreach/internal/tasks"
	"outreach/internal/webui"
	"outreach/pkg/config"
	"outreach/pkg/database"
	"outreach/pkg/llm"
	"outreach/pkg/logging"
	"outreach/pkg/server"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("outreach")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting Outreach (marketing content agent)")

	cfg := outreachconfig.LoadConfig()

	// Connect to database
	dbConfig := database.DefaultConfig()
	dbConfig.URL = cfg.DatabaseURL
	db := database.MustConnect(dbConfig, logger)
	defer func() { _ = db.Close() }()

	contentStore := store.New(db)

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create LLM provider")
	}
	logger.WithFields(logging.Fields{
		"provider": cfg.LLM.Provider,
		"model":    cfg.LLM.Model,
	}).Info("LLM provider ready")

	composer := generate.NewComposer(generate.ComposerConfig{
		LLM: provider,
		Brand: generate.BrandProfile{
			Company: cfg.BrandCompany,
			Product: cfg.BrandProduct,
			Mission: cfg.BrandMission,
		},
		Logger: logger,
	})

	// One browser session shared by the browser-driven publishers.
	session := publish.NewSession(publish.SessionConfig{
		Headless:    cfg.BrowserHeadless,
		UserDataDir: cfg.BrowserUserDataDir,
		Logger:      logger,
	})
	defer session.Close()

	linkedinPublisher := publish.NewLinkedInPublisher(session, publish.Credentials{
		Login:    cfg.LinkedInEmail,
		Password: cfg.LinkedInPassword,
	}, logger)
	twitterPublisher := publish.NewTwitterPublisher(session, publish.Credentials{
		Login:    cfg.TwitterUsername,
		Password: cfg.TwitterPassword,
	}, logger)
	youtubeUploader := publish.NewYouTubeUploader(cfg.YouTubeOAuthToken, logger)

	orchestrator := agent.NewOrchestrator(agent.OrchestratorConfig{
		LLMProvider: provider,
		Composer:    composer,
		LinkedIn:    linkedinPublisher,
		Twitter:     twitterPublisher,
		YouTube:     youtubeUploader,
		Store:       contentStore,
		Logger:      logger,
		MaxRounds:   cfg.MaxToolRounds,
	})

	runner := tasks.NewRunner(orchestrator, contentStore, logger)

	router := server.SetupRouter(logger, "outreach")
	webui.NewHandler(runner, contentStore, logger).Register(router)

	serverConfig := server.DefaultConfig("outreach", cfg.Port)
	// Agent runs call the model and drive a browser; requests need far
	// more room than an ordinary API handler.
	serverConfig.ReadTimeout = 10 * time.Minute
	serverConfig.WriteTimeout = 10 * time.Minute
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server error")
	}
}
