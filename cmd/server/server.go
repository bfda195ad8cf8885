package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"sitesearch/internal/config"
	domain "sitesearch/internal/domain/search"
	"sitesearch/internal/infrastructure/database"
	"sitesearch/internal/infrastructure/endpoints"
	"sitesearch/internal/infrastructure/httpclient"
	"sitesearch/internal/infrastructure/logger"
	"sitesearch/internal/infrastructure/observability"
	repo "sitesearch/internal/infrastructure/repository/history"
	"sitesearch/internal/infrastructure/searchclient"
	"sitesearch/internal/interfaces/httpserver"
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

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	history, err := newHistoryRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize history repository")
	}

	fetcher := httpclient.NewClient(httpclient.ClientConfig{
		Timeout: cfg.SearchHTTPTimeout,
	})
	indexClient := searchclient.NewClient(newSearchClientConfig(cfg, log), fetcher)
	searchService := domain.NewService(indexClient, history, log)

	httpServer := httpserver.New(cfg, log, searchService)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// newSearchClientConfig resolves the remote index settings. A named endpoint
// profile from the profiles file takes precedence over the flat env settings.
func newSearchClientConfig(cfg *config.Config, log zerolog.Logger) searchclient.ClientConfig {
	clientCfg := searchclient.ClientConfig{
		Endpoint:      cfg.SearchEndpoint,
		Transport:     searchclient.Transport(cfg.SearchTransport),
		CallbackParam: cfg.SearchCallbackParam,
		JSONPTimeout:  cfg.SearchJSONPTimeout,
		Username:      cfg.SearchUsername,
		Password:      cfg.SearchPassword,
	}

	if cfg.EndpointProfile == "" {
		return clientCfg
	}

	profiles, err := endpoints.LoadConfig(cfg.EndpointsFile)
	if err != nil {
		log.Warn().Err(err).Str("file", cfg.EndpointsFile).Msg("load endpoint profiles, falling back to env settings")
		return clientCfg
	}

	profile := profiles.Lookup(cfg.EndpointProfile)
	if profile == nil {
		log.Warn().Str("profile", cfg.EndpointProfile).Msg("endpoint profile not found, falling back to env settings")
		return clientCfg
	}

	clientCfg.Endpoint = profile.Endpoint
	if profile.Transport != "" {
		clientCfg.Transport = searchclient.Transport(profile.Transport)
	}
	if profile.CallbackParam != "" {
		clientCfg.CallbackParam = profile.CallbackParam
	}
	clientCfg.JSONPTimeout = profile.TimeoutDuration()
	if profile.Username != "" {
		clientCfg.Username = profile.Username
		clientCfg.Password = profile.Password
	}
	clientCfg.Headers = profile.Headers

	log.Info().Str("profile", profile.Name).Str("transport", string(clientCfg.Transport)).Msg("using endpoint profile")
	return clientCfg
}

// newHistoryRepository picks postgres when a DSN is configured, otherwise an
// in-memory ring that survives only for the process lifetime.
func newHistoryRepository(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.HistoryRepository, error) {
	if cfg.DatabaseURL == "" {
		log.Info().Msg("no database configured, keeping search history in memory")
		return repo.NewInMemoryRepository(), nil
	}

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return repo.NewPostgresRepository(db), nil
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
