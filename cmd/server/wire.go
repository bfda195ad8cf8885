//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"sitesearch/internal/config"
	domain "sitesearch/internal/domain/search"
	"sitesearch/internal/infrastructure/httpclient"
	"sitesearch/internal/infrastructure/logger"
	"sitesearch/internal/infrastructure/searchclient"
	"sitesearch/internal/interfaces/httpserver"
)

var searchSet = wire.NewSet(
	newFetchClient,
	newIndexClient,
	wire.Bind(new(domain.Searcher), new(*searchclient.Client)),
	domain.NewService,
)

// BuildApplication demonstrates how to assemble the widget service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		historyProvider,
		searchSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newFetchClient(cfg *config.Config) *httpclient.Client {
	return httpclient.NewClient(httpclient.ClientConfig{
		Timeout: cfg.SearchHTTPTimeout,
	})
}

func newIndexClient(cfg *config.Config, log zerolog.Logger, fetcher *httpclient.Client) *searchclient.Client {
	return searchclient.NewClient(newSearchClientConfig(cfg, log), fetcher)
}

func historyProvider(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.HistoryRepository, error) {
	return newHistoryRepository(ctx, cfg, log)
}
