package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestOTelHooksWithGlobalProvider(t *testing.T) {
	ctx := context.Background()

	p, err := NewOTelPipelineHooks()
	if err != nil {
		t.Fatalf("NewOTelPipelineHooks() error: %v", err)
	}
	p.OnCorrectStart(ctx, 4)
	p.OnCorrectStep(ctx, "contrast", time.Millisecond, errors.New("recovered"))
	p.OnCorrectComplete(ctx, 9, time.Second, nil)
	p.OnCritiqueComplete(ctx, "NEEDS_REVISION", 61, time.Millisecond)

	c, err := NewOTelCacheHooks()
	if err != nil {
		t.Fatalf("NewOTelCacheHooks() error: %v", err)
	}
	c.OnCacheHit(ctx, "analysis")
	c.OnCacheMiss(ctx, "analysis")
	c.OnCacheSet(ctx, "analysis", 512)

	h, err := NewOTelHTTPHooks()
	if err != nil {
		t.Fatalf("NewOTelHTTPHooks() error: %v", err)
	}
	h.OnRequest(ctx, "POST", "analysis.local", "/analyze")
	h.OnResponse(ctx, "POST", "analysis.local", "/analyze", 200, time.Millisecond)
	h.OnError(ctx, "POST", "analysis.local", "/analyze", errors.New("timeout"))
}

func TestStartSpan(t *testing.T) {
	ctx, end := StartSpan(context.Background(), "correct")
	if ctx == nil {
		t.Fatal("StartSpan returned nil context")
	}
	end(errors.New("boom"))

	_, end = StartSpan(context.Background(), "critique")
	end(nil)
}
