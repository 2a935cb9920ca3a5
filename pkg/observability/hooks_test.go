package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	i := NoopIndexHooks{}
	i.OnIndexBuild("nodes", 100, time.Millisecond)
	i.OnIndexQuery("links", "search", 3)

	v := NoopViewHooks{}
	v.OnSettle(1.5)
	v.OnElements(10, 4, 72)
	v.OnFocus("node")
	v.OnFrame(time.Millisecond, 12)

	l := NoopLayoutHooks{}
	l.OnLayoutStart(ctx, "neato", 100)
	l.OnLayoutComplete(ctx, "neato", time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "layout", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/sessions/{id}/elements")
	h.OnResponse(ctx, "GET", "/sessions/{id}/elements", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Index().(NoopIndexHooks); !ok {
		t.Error("Index() should return NoopIndexHooks by default")
	}
	if _, ok := View().(NoopViewHooks); !ok {
		t.Error("View() should return NoopViewHooks by default")
	}
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should return NoopLayoutHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customIndex := &testIndexHooks{}
	SetIndexHooks(customIndex)
	if Index() != customIndex {
		t.Error("SetIndexHooks should set custom hooks")
	}

	customView := &testViewHooks{}
	SetViewHooks(customView)
	if View() != customView {
		t.Error("SetViewHooks should set custom hooks")
	}

	customLayout := &testLayoutHooks{}
	SetLayoutHooks(customLayout)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := View().(NoopViewHooks); !ok {
		t.Error("Reset() should restore NoopViewHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testViewHooks{}
	SetViewHooks(custom)

	// Setting nil should be ignored
	SetViewHooks(nil)

	if View() != custom {
		t.Error("SetViewHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testIndexHooks struct{ NoopIndexHooks }
type testViewHooks struct{ NoopViewHooks }
type testLayoutHooks struct{ NoopLayoutHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
