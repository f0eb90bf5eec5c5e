package middleware

import (
	"strings"

	"blogsite/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// untracedPrefixes are health check and scrape paths that would only add noise.
var untracedPrefixes = []string{"/health/", "/metrics"}

// TracingMiddleware starts a server span per request. The span is renamed to
// the matched route ("GET /post/:id") once routing is done, so post ids never
// end up in span names.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, p := range untracedPrefixes {
			if strings.HasPrefix(c.Path(), p) {
				return c.Next()
			}
		}

		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := observability.Tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(c.Method()),
				semconv.URLPath(c.Path()),
				semconv.ClientAddress(c.IP()),
				semconv.UserAgentOriginal(c.Get(fiber.HeaderUserAgent)),
			),
		)
		defer span.End()

		c.SetUserContext(ctx)
		err := c.Next()

		route := c.Route().Path
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(
			semconv.HTTPRoute(route),
			semconv.HTTPResponseStatusCode(c.Response().StatusCode()),
		)
		if rid, ok := c.Locals("requestid").(string); ok {
			span.SetAttributes(attribute.String("request.id", rid))
		}
		if uid, ok := c.Locals("userID").(uint); ok {
			span.SetAttributes(attribute.Int64("user.id", int64(uid)))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
}
