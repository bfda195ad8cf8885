package v1

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/invopop/jsonschema"

	domain "sitesearch/internal/domain/search"
	"sitesearch/internal/infrastructure/httpclient"
	"sitesearch/internal/interfaces/httpserver/handlers"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func registerSearchRoutes(router gin.IRoutes, handler *handlers.SearchHandler) {
	router.GET("/search", getSearch(handler))
	router.POST("/search", postSearch(handler))
	router.GET("/search/schema", getSearchSchema())
	router.GET("/history", getHistory(handler))
}

// getSearch runs the free-text term through the query builder and the
// configured index.
func getSearch(handler *handlers.SearchHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		term := c.Query("q")
		result, err := handler.Search(c.Request.Context(), term)
		if err != nil {
			writeFetchError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// postSearch forwards the request body verbatim to the index, giving the
// caller full control of the query shape.
func postSearch(handler *handlers.SearchHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "read request body"})
			return
		}
		if !json.Valid(body) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "request body must be valid JSON"})
			return
		}

		result, err := handler.SearchRaw(c.Request.Context(), json.RawMessage(body))
		if err != nil {
			writeFetchError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// getSearchSchema exposes the query shape the index accepts, reflected from
// the domain type, so embedding pages can validate overrides client side.
func getSearchSchema() gin.HandlerFunc {
	schema := jsonschema.Reflect(&domain.Query{})
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, schema)
	}
}

// getHistory lists the most recently executed searches.
func getHistory(handler *handlers.SearchHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
				return
			}
			limit = parsed
		}

		records, err := handler.Recent(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"records": records})
	}
}

func writeFetchError(c *gin.Context, err error) {
	fe, ok := httpclient.AsFetchError(err)
	if !ok {
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	status := http.StatusBadGateway
	switch fe.Kind {
	case httpclient.FailureRequest:
		status = http.StatusBadRequest
	case httpclient.FailureCallbackTimeout:
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, errorResponse{Error: fe.Message, Kind: string(fe.Kind)})
}
