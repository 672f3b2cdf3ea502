package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingTracer() (Tracer, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return NewTracer(tp.Tracer("test")), recorder
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestOpMeta_SpanName(t *testing.T) {
	tests := []struct {
		meta OpMeta
		want string
	}{
		{OpMeta{Component: "memo", Op: "get_or_compute", Scope: "doc-1"}, "textops.memo.get_or_compute"},
		{OpMeta{Component: "diff", Op: "diff"}, "textops.diff.diff"},
		{OpMeta{Component: "server", Op: "render"}, "textops.server.render"},
	}

	for _, tt := range tests {
		if got := tt.meta.SpanName(); got != tt.want {
			t.Errorf("SpanName() = %q, want %q", got, tt.want)
		}
	}
}

func TestTracer_SpanAttributes(t *testing.T) {
	tr, recorder := newRecordingTracer()

	_, span := tr.StartSpan(context.Background(), OpMeta{Component: "memo", Op: "render", Scope: "doc-42"})
	tr.EndSpan(span, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}

	got := spans[0]
	if got.Name() != "textops.memo.render" {
		t.Errorf("span name = %q", got.Name())
	}
	attrs := spanAttrs(got)
	if attrs["textops.component"].AsString() != "memo" {
		t.Errorf("textops.component = %v", attrs["textops.component"])
	}
	if attrs["textops.op"].AsString() != "render" {
		t.Errorf("textops.op = %v", attrs["textops.op"])
	}
	if attrs["textops.scope"].AsString() != "doc-42" {
		t.Errorf("textops.scope = %v", attrs["textops.scope"])
	}
	if attrs["textops.error"].AsBool() {
		t.Error("textops.error should be false")
	}
	if got.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", got.Status().Code)
	}
}

func TestTracer_ScopeOmittedWhenEmpty(t *testing.T) {
	tr, recorder := newRecordingTracer()

	_, span := tr.StartSpan(context.Background(), OpMeta{Component: "diff", Op: "diff"})
	tr.EndSpan(span, nil)

	if _, ok := spanAttrs(recorder.Ended()[0])["textops.scope"]; ok {
		t.Error("textops.scope should not be set for an empty scope")
	}
}

func TestTracer_ErrorStatus(t *testing.T) {
	tr, recorder := newRecordingTracer()

	_, span := tr.StartSpan(context.Background(), OpMeta{Component: "memo", Op: "get_or_compute"})
	tr.EndSpan(span, errors.New("transform exploded"))

	got := recorder.Ended()[0]
	if got.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", got.Status().Code)
	}
	if got.Status().Description != "transform exploded" {
		t.Errorf("status description = %q", got.Status().Description)
	}
	if !spanAttrs(got)["textops.error"].AsBool() {
		t.Error("textops.error should be true")
	}
	if len(got.Events()) == 0 {
		t.Error("expected an exception event")
	}
}

func TestTracer_ChildSpan(t *testing.T) {
	tr, recorder := newRecordingTracer()

	ctx, parent := tr.StartSpan(context.Background(), OpMeta{Component: "server", Op: "revisions_diff"})
	_, child := tr.StartSpan(ctx, OpMeta{Component: "diff", Op: "diff"})
	tr.EndSpan(child, nil)
	tr.EndSpan(parent, nil)

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Parent().SpanID() != spans[1].SpanContext().SpanID() {
		t.Error("child span is not parented to the outer span")
	}
}

func TestNoopTracer(t *testing.T) {
	tr := NewNoopTracer()
	ctx, span := tr.StartSpan(context.Background(), OpMeta{Component: "memo", Op: "render"})
	if ctx == nil || span == nil {
		t.Fatal("noop tracer returned nil")
	}
	if span.SpanContext().IsValid() {
		t.Error("noop span should not carry a valid span context")
	}
	tr.EndSpan(span, errors.New("ignored"))
}
