package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerRendersMessage(t *testing.T) {
	var out syncBuffer
	s := newSpinner("Analyzing image...")
	s.w = &out
	s.Start()
	time.Sleep(120 * time.Millisecond)
	s.SetMessage("Correcting %d/%d", 2, 5)
	time.Sleep(120 * time.Millisecond)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Analyzing image...") {
		t.Errorf("initial message not rendered: %q", got)
	}
	if !strings.Contains(got, "Correcting 2/5") {
		t.Errorf("updated message not rendered: %q", got)
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Testing with context...")
	s.w = &syncBuffer{}
	s.Start()
	cancel()

	// Give goroutine time to notice cancellation
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Testing idempotent stop...")
	s.w = &syncBuffer{}
	s.Start()

	// Stop multiple times should not panic
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWith(t *testing.T) {
	tests := []struct {
		name string
		stop func(*Spinner, string)
	}{
		{"success", (*Spinner).StopWithSuccess},
		{"error", (*Spinner).StopWithError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out syncBuffer
			s := newSpinner("Testing...")
			s.w = &out
			s.Start()
			time.Sleep(50 * time.Millisecond)
			tt.stop(s, "Done!")
			if !strings.Contains(out.String(), "Done!") {
				t.Errorf("final message not written to spinner output: %q", out.String())
			}
		})
	}
}
