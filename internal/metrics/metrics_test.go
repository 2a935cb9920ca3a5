package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/graphscope/pkg/observability"
)

func newCollector(t *testing.T) *Collector {
	t.Helper()
	c, err := New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestHooksRecord(t *testing.T) {
	c := newCollector(t)
	ctx := context.Background()

	c.OnIndexBuild("nodes", 42, time.Millisecond)
	c.OnIndexQuery("links", "search", 3)
	c.OnIndexQuery("links", "search", 0)
	c.OnSettle(0.5)
	c.OnElements(10, 4, 83)
	c.OnFocus("node")
	c.OnFrame(2*time.Millisecond, 7)
	c.OnLayoutComplete(ctx, "neato", time.Second, nil)
	c.OnLayoutComplete(ctx, "neato", time.Second, errors.New("boom"))
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "layout")
	c.OnResponse(ctx, http.MethodGet, "/healthz", 200, time.Millisecond)

	tests := []struct {
		name string
		got  prometheus.Collector
		want float64
	}{
		{"index entries", c.IndexEntries.WithLabelValues("nodes"), 42},
		{"index queries", c.IndexQueries.WithLabelValues("links", "search"), 2},
		{"settles", c.Settles, 1},
		{"scale", c.SettleScale, 0.5},
		{"visible nodes", c.VisibleNodes, 10},
		{"radius", c.LODRadius, 83},
		{"focus", c.FocusChanges.WithLabelValues("node"), 1},
		{"moved", c.NodesMoved, 7},
		{"layout ok", c.LayoutRuns.WithLabelValues("neato", "ok"), 1},
		{"layout error", c.LayoutRuns.WithLabelValues("neato", "error"), 1},
		{"cache hit", c.CacheOps.WithLabelValues("layout", "hit"), 1},
		{"cache miss", c.CacheOps.WithLabelValues("layout", "miss"), 1},
		{"http", c.HTTPRequests.WithLabelValues("GET", "/healthz", "200"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.got); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := New(reg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(reg)
	if err != nil {
		t.Fatalf("second New: %v", err)
	}
	a.Settles.Inc()
	if got := testutil.ToFloat64(b.Settles); got != 1 {
		t.Errorf("shared counter = %v, want 1", got)
	}
}

func TestInstall(t *testing.T) {
	t.Cleanup(observability.Reset)
	c := newCollector(t)
	c.Install()

	observability.View().OnFocus("link")
	if got := testutil.ToFloat64(c.FocusChanges.WithLabelValues("link")); got != 1 {
		t.Errorf("focus via hook = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	c := newCollector(t)
	c.SetSessions(3)

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), "graphscope_sessions 3") {
		t.Errorf("sessions gauge missing from output:\n%s", body)
	}
}
