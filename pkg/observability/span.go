package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// SpanIDs returns the hex trace and span ids of the span in ctx, or two empty
// strings when there is none.
func SpanIDs(ctx context.Context) (traceID, spanID string) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return "", ""
	}
	return sc.TraceID().String(), sc.SpanID().String()
}
