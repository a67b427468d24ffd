package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// AnalysisKey uses md5 of url:width:height
	ak := k.AnalysisKey("https://img.example/a.jpg", 1080, 1080)
	if !strings.HasPrefix(ak, "image_analysis:") || len(ak) != len("image_analysis:")+32 {
		t.Errorf("AnalysisKey unexpected: %s", ak)
	}
	if ak == k.AnalysisKey("https://img.example/a.jpg", 1080, 1920) {
		t.Error("Different dimensions should produce different analysis keys")
	}

	// CorrectionKey should include options in hash
	ck1 := k.CorrectionKey("hash123", CorrectionKeyOpts{Width: 1080, Height: 1080})
	ck2 := k.CorrectionKey("hash123", CorrectionKeyOpts{Width: 1080, Height: 1080, Validate: true})
	if ck1 == ck2 {
		t.Error("Different CorrectionKeyOpts should produce different keys")
	}

	// HistoryKey
	if hk := k.HistoryKey("acme"); hk != "layout_history:brand:acme" {
		t.Errorf("HistoryKey unexpected: %s", hk)
	}
	if hk := k.HistoryKey(""); hk != "layout_history:brand:default" {
		t.Errorf("HistoryKey for empty brand unexpected: %s", hk)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:123:")

	// All keys should be prefixed
	if hk := scoped.HistoryKey("acme"); hk != "user:123:layout_history:brand:acme" {
		t.Errorf("ScopedKeyer HistoryKey unexpected: %s", hk)
	}

	ck := scoped.CorrectionKey("abc", CorrectionKeyOpts{})
	if !strings.HasPrefix(ck, "user:123:correction:") {
		t.Errorf("ScopedKeyer CorrectionKey should be prefixed: %s", ck)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.HistoryKey("b")
	if key != "prefix:layout_history:brand:b" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "value" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	// Expired entries are misses
	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should be a miss")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("deleted entry should be a miss")
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing key should not error: %v", err)
	}
}

func TestFileCacheLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	k := NewDefaultKeyer()

	tests := []struct {
		key  string
		want string
	}{
		{k.CorrectionKey("abc", CorrectionKeyOpts{Width: 1080, Height: 1080}), "correction"},
		{k.AnalysisKey("https://img/1.jpg", 1080, 1080), "image_analysis"},
		{k.HistoryKey("acme"), "layout_history"},
		{"no-namespace", "misc"},
		{"../escape:x", "misc"},
	}
	for _, tt := range tests {
		if err := c.Set(ctx, tt.key, []byte("v"), 0); err != nil {
			t.Fatalf("Set(%q) error: %v", tt.key, err)
		}
		h := Hash([]byte(tt.key))
		path := filepath.Join(dir, tt.want, h[:2], h[2:]+".json")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Set(%q) did not write %s: %v", tt.key, path, err)
		}
		if data, hit, _ := c.Get(ctx, tt.key); !hit || string(data) != "v" {
			t.Errorf("Get(%q) = %q, %v", tt.key, data, hit)
		}
	}
}

func TestFileCachePrune(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "correction:keep", []byte("a"), time.Hour)
	_ = c.Set(ctx, "correction:forever", []byte("b"), 0)
	_ = c.Set(ctx, "image_analysis:old", []byte("c"), time.Minute)

	corrupt := filepath.Join(dir, "correction", "zz", "broken.json")
	if err := os.MkdirAll(filepath.Dir(corrupt), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "correction", "zz", ".entry-123"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)
	removed, err := c.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune error: %v", err)
	}
	if removed != 3 {
		t.Errorf("Prune removed %d files, want 3", removed)
	}
	for _, key := range []string{"correction:keep", "correction:forever"} {
		if _, hit, _ := c.Get(ctx, key); !hit {
			t.Errorf("%s should survive Prune", key)
		}
	}
	if _, hit, _ := c.Get(ctx, "image_analysis:old"); hit {
		t.Error("expired entry should be pruned")
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(2)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), time.Minute)

	data, hit, _ := c.Get(ctx, "a")
	if !hit || string(data) != "1" {
		t.Fatalf("Get(a) = %q, %v", data, hit)
	}

	// Returned slices are copies
	data[0] = 'x'
	data, _, _ = c.Get(ctx, "a")
	if string(data) != "1" {
		t.Error("MemoryCache should return copies")
	}

	// Adding a third entry evicts the least recently used (b)
	_ = c.Set(ctx, "c", []byte("3"), 0)
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("b should have been evicted")
	}

	// TTL expiry
	_ = c.Set(ctx, "d", []byte("4"), time.Minute)
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "d"); hit {
		t.Error("d should have expired")
	}
}

func TestTiered(t *testing.T) {
	ctx := context.Background()
	front, _ := NewMemoryCache(10)
	back, _ := NewFileCache(t.TempDir())
	c := NewTiered(front, back, time.Minute)
	defer c.Close()

	// Entries only in the back tier are promoted
	_ = back.Set(ctx, "k", []byte("v"), time.Hour)
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if _, hit, _ := front.Get(ctx, "k"); !hit {
		t.Error("back-tier hit should be promoted to front")
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := back.Get(ctx, "k"); hit {
		t.Error("Delete should remove from back tier")
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, _ := NewMemoryCache(10)

	type entry struct{ Names []string }
	if err := SetJSON(ctx, c, "h", entry{Names: []string{"hero_left"}}, 0); err != nil {
		t.Fatal(err)
	}
	var got entry
	hit, err := GetJSON(ctx, c, "h", &got)
	if err != nil || !hit || len(got.Names) != 1 || got.Names[0] != "hero_left" {
		t.Errorf("GetJSON = %+v, %v, %v", got, hit, err)
	}

	// Corrupt entries are dropped
	_ = c.Set(ctx, "bad", []byte("{"), 0)
	if hit, _ := GetJSON(ctx, c, "bad", &got); hit {
		t.Error("corrupt entry should be a miss")
	}
	if _, hit, _ := c.Get(ctx, "bad"); hit {
		t.Error("corrupt entry should be deleted")
	}
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1"}); err == nil {
		t.Error("expected error for unreachable redis")
	}
}

func TestRetryableError(t *testing.T) {
	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	// Non-nil error is wrapped
	err := Retryable(ErrNetwork)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}

	// Error message is preserved
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	// Non-wrapped errors are not retryable
	if IsRetryable(ErrNotFound) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return ErrNotFound
	})
	if err != ErrNotFound {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		attempts  int
		failures  int
		wantCalls int
		wantErr   bool
	}{
		{"first try", 3, 0, 1, false},
		{"recovers", 3, 2, 3, false},
		{"gives up", 2, 5, 2, true},
		{"zero attempts runs once", 0, 0, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					return Retryable(ErrNetwork)
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("Retry error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrNetwork) {
				t.Errorf("Retry error = %v, want wrapped ErrNetwork", err)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestHashJSON(t *testing.T) {
	a, err := HashJSON(map[string]int{"w": 1080, "h": 1350})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := HashJSON(map[string]int{"h": 1350, "w": 1080})
	if a != b {
		t.Error("HashJSON should not depend on map order")
	}
	if len(a) != 64 {
		t.Errorf("HashJSON length = %d, want 64", len(a))
	}
	if _, err := HashJSON(func() {}); err == nil {
		t.Error("HashJSON should fail on unencodable values")
	}
}
