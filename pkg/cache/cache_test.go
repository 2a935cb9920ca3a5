package cache

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr bool
	}{
		{"empty backend", Options{}, "cache.NullCache", false},
		{"none", Options{Backend: BackendNone}, "cache.NullCache", false},
		{"file", Options{Backend: BackendFile, Dir: t.TempDir()}, "*cache.FileCache", false},
		{"redis bad url", Options{Backend: BackendRedis, RedisURL: "http://not-redis"}, "", true},
		{"unknown", Options{Backend: "memcached"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(ctx, tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Open(%+v) succeeded", tt.opts)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer c.Close()
			if got := typeName(c); got != tt.want {
				t.Errorf("Open(%+v) = %s, want %s", tt.opts, got, tt.want)
			}
		})
	}
}

func typeName(c Cache) string {
	switch c.(type) {
	case NullCache:
		return "cache.NullCache"
	case *FileCache:
		return "*cache.FileCache"
	case *RedisCache:
		return "*cache.RedisCache"
	}
	return "unknown"
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "layout:dot:abc", []byte("positions"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:dot:abc")
	if err != nil || hit || data != nil {
		t.Errorf("Get after Set = %q, %v, %v; want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "layout:dot:abc"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestGraphHash(t *testing.T) {
	h1 := GraphHash([]byte(`{"nodes":[{"id":"a"}]}`))
	if h1 != GraphHash([]byte(`{"nodes":[{"id":"a"}]}`)) {
		t.Error("GraphHash should be deterministic")
	}
	if h1 == GraphHash([]byte(`{"nodes":[{"id":"b"}]}`)) {
		t.Error("different graphs should hash differently")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	tests := []struct {
		name   string
		opts   LayoutKeyOpts
		prefix string
	}{
		{"neato", LayoutKeyOpts{Engine: "neato"}, "layout:neato:"},
		{"fdp with sep", LayoutKeyOpts{Engine: "fdp", NodeSep: 1.5}, "layout:fdp:"},
		{"no engine", LayoutKeyOpts{}, "layout:default:"},
	}
	seen := map[string]string{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := k.LayoutKey("hash123", tt.opts)
			if !strings.HasPrefix(key, tt.prefix) {
				t.Errorf("LayoutKey = %s, want prefix %s", key, tt.prefix)
			}
			if key != k.LayoutKey("hash123", tt.opts) {
				t.Error("LayoutKey should be deterministic")
			}
			if other, dup := seen[key]; dup {
				t.Errorf("key collides with %s", other)
			}
			seen[key] = tt.name
		})
	}
	if k.LayoutKey("a", LayoutKeyOpts{Engine: "dot"}) == k.LayoutKey("b", LayoutKeyOpts{Engine: "dot"}) {
		t.Error("different graphs share a key")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	want := "graphscope:" + inner.LayoutKey("abc", LayoutKeyOpts{Engine: "dot"})
	tests := []struct {
		name  string
		inner Keyer
		scope string
		want  string
	}{
		{"trailing colon", inner, "graphscope:", want},
		{"bare scope", inner, "graphscope", want},
		{"nil inner", nil, "graphscope", want},
		{"empty scope", inner, "", inner.LayoutKey("abc", LayoutKeyOpts{Engine: "dot"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := NewScopedKeyer(tt.inner, tt.scope)
			if got := k.LayoutKey("abc", LayoutKeyOpts{Engine: "dot"}); got != tt.want {
				t.Errorf("LayoutKey = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("positions"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "positions" {
		t.Fatalf("Get(k) = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpired(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should be a miss")
	}
}

func TestNewRedisCacheCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1"})
	if err == nil {
		t.Fatal("expected error for unreachable redis")
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), RedisConfig{URL: "http://not-redis"})
	if err == nil {
		t.Fatal("expected error for invalid redis url")
	}
}

type dialError struct{}

func (dialError) Error() string { return "dial tcp 127.0.0.1:6379: connection refused" }
func (dialError) Timeout() bool { return false }
func (dialError) Temporary() bool { return true }

var _ net.Error = dialError{}

func TestConnectWithBackoff(t *testing.T) {
	errAuth := errors.New("NOAUTH Authentication required")
	tests := []struct {
		name      string
		failures  int
		failWith  error
		wantCalls int
		wantErr   bool
	}{
		{"first try", 0, nil, 1, false},
		{"recovers after network errors", 2, dialError{}, 3, false},
		{"gives up", 5, dialError{}, 3, true},
		{"auth error fails at once", 5, errAuth, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := connectWithBackoff(context.Background(), 3, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					return tt.failWith
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr && !errors.Is(err, tt.failWith) {
				t.Errorf("err = %v, want it to wrap %v", err, tt.failWith)
			}
		})
	}
}

func TestConnectWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := connectWithBackoff(ctx, 3, time.Hour, func() error {
		calls++
		cancel()
		return dialError{}
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("err = %v after %d calls, want context.Canceled after 1", err, calls)
	}
}
