package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func TestStartSpan_WithoutSetup(t *testing.T) {
	// No Setup call: spans must still be safe to start, annotate, and end.
	ctx, span := StartSpan(context.Background(), "search.query",
		attribute.String("search.transport", "xhr"))
	require.NotNil(t, span)
	span.RecordError(assert.AnError)
	span.End()

	assert.Equal(t, span, trace.SpanFromContext(ctx))
}
