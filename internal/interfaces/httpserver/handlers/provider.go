package handlers

import (
	domain "sitesearch/internal/domain/search"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Search *SearchHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(searchService domain.Service) *Provider {
	return &Provider{
		Search: NewSearchHandler(searchService),
	}
}
