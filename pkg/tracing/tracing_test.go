package tracing

import (
	"context"
	"testing"
)

// TestStartSpan 无全局Provider时也应返回可用的noop Span
func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test", "TestOperation")
	if span == nil {
		t.Fatal("StartSpan返回nil Span")
	}
	defer span.End()

	if ctx == nil {
		t.Fatal("StartSpan返回nil Context")
	}
}

// TestExtractTraceID_EmptyContext 空Context应返回空字符串而非panic
func TestExtractTraceID_EmptyContext(t *testing.T) {
	if got := ExtractTraceID(context.Background()); got != "" {
		t.Errorf("空Context期望空TraceID，实际: %s", got)
	}
	if got := ExtractSpanID(context.Background()); got != "" {
		t.Errorf("空Context期望空SpanID，实际: %s", got)
	}
}
