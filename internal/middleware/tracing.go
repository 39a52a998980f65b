package middleware

import (
	"vidtube/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDHeader echoes the server span's trace id back to the client.
const TraceIDHeader = "X-Trace-ID"

func requestAttributes(c *fiber.Ctx) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", c.Method()),
		attribute.String("http.target", c.OriginalURL()),
		attribute.String("net.peer.ip", c.IP()),
		attribute.String("http.user_agent", c.Get(fiber.HeaderUserAgent)),
	}
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		attrs = append(attrs, attribute.String("request.id", rid))
	}
	return attrs
}

func finishSpan(c *fiber.Ctx, span trace.Span, err error) {
	// Route is only resolved once the router has run.
	span.SetName(c.Method() + " " + c.Route().Path)
	status := c.Response().StatusCode()
	span.SetAttributes(
		attribute.String("http.route", c.Route().Path),
		attribute.Int("http.status_code", status),
	)
	if uid, ok := c.Locals("userID").(uint); ok {
		span.SetAttributes(attribute.Int64("user.id", int64(uid)))
	}
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case status >= fiber.StatusInternalServerError:
		span.SetStatus(codes.Error, "")
	}
	span.End()
}

// TracingMiddleware continues any incoming trace context, opens a server span
// for the request and exposes its trace id as the "traceID" local.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := observability.Tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(requestAttributes(c)...),
		)

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Set(TraceIDHeader, traceID)
		c.SetUserContext(ctx)

		err := c.Next()
		finishSpan(c, span, err)
		return err
	}
}
