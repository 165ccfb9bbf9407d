package events

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestMessageCarrier(t *testing.T) {
	var msg kafka.Message
	c := NewMessageCarrier(&msg)

	c.Set("traceparent", "a")
	c.Set("baggage", "b")
	c.Set("traceparent", "c")

	if got := c.Get("traceparent"); got != "c" {
		t.Fatalf("expected overwritten header, got %q", got)
	}
	if got := c.Get("missing"); got != "" {
		t.Fatalf("expected empty value, got %q", got)
	}
	if diff := cmp.Diff([]string{"traceparent", "baggage"}, c.Keys()); diff != "" {
		t.Fatalf("unexpected keys (-want +got):\n%s", diff)
	}
}

func TestMessageCarrierPropagatesTrace(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	var msg kafka.Message
	prop := propagation.TraceContext{}
	prop.Inject(ctx, NewMessageCarrier(&msg))

	got := trace.SpanContextFromContext(prop.Extract(context.Background(), NewMessageCarrier(&msg)))
	if got.TraceID() != traceID || got.SpanID() != spanID {
		t.Fatalf("trace context lost: %s/%s", got.TraceID(), got.SpanID())
	}
}
