package searchclient

import (
	"fmt"

	"github.com/rs/zerolog/log"

	domainsearch "sitesearch/internal/domain/search"
)

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// ValidateResponse checks whether a search response is well formed enough to
// render. Zero hits is a valid outcome; hits without highlight fragments are
// not renderable and fail validation.
func ValidateResponse(resp *domainsearch.Response) error {
	if resp == nil {
		return ValidationError{Field: "response", Message: "response is nil"}
	}

	if resp.Hits.Total < 0 {
		return ValidationError{Field: "hits.total", Message: "negative total"}
	}

	if resp.Hits.Total > 0 && len(resp.Hits.Hits) == 0 {
		log.Warn().
			Int("total", resp.Hits.Total).
			Msg("index reports hits but returned none")
	}

	renderable := 0
	for idx, hit := range resp.Hits.Hits {
		if len(hit.Highlight) == 0 {
			log.Warn().Int("index", idx).Msg("hit has no highlight fragments")
			continue
		}
		renderable++
	}

	if len(resp.Hits.Hits) > 0 && renderable == 0 {
		return ValidationError{Field: "hits", Message: "no hits carry highlight fragments"}
	}

	return nil
}
