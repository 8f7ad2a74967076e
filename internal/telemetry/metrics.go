package telemetry

import (
	"context"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instruments are created lazily against the globally registered meter
// provider. Without a configured provider they are no-ops, so the console
// carries zero telemetry overhead unless a deployment wires an exporter.
var (
	initOnce sync.Once

	requestCounter metric.Int64Counter
	guardCounter   metric.Int64Counter
)

func instruments() {
	initOnce.Do(func() {
		meter := otel.Meter("spa-console")

		requestCounter, _ = meter.Int64Counter(
			"gateway.request.count",
			metric.WithDescription("Total API gateway requests"),
			metric.WithUnit("{request}"),
		)
		guardCounter, _ = meter.Int64Counter(
			"guard.decision.count",
			metric.WithDescription("Route guard decisions by outcome"),
			metric.WithUnit("{decision}"),
		)
	})
}

// CountRequest records one API gateway request. A status of 0 means no
// response was received (transport failure).
func CountRequest(ctx context.Context, method, path string, status int) {
	instruments()
	if requestCounter == nil {
		return
	}
	requestCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.String("http.status_code", strconv.Itoa(status)),
	))
}

// CountGuardDecision records one route guard evaluation outcome.
func CountGuardDecision(ctx context.Context, route, outcome string) {
	instruments()
	if guardCounter == nil {
		return
	}
	guardCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("http.route", route),
		attribute.String("guard.outcome", outcome),
	))
}
