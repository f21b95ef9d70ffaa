package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of the engine's spans.
const TracerName = "github.com/jonathan/ats-simulator"

// Tracer returns the engine tracer from the global provider. Without a
// configured provider spans are no-ops.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
