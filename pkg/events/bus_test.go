package events

import (
	"reflect"
	"testing"
)

func TestTopicOrder(t *testing.T) {
	var tp Topic[int]
	var got []string
	tp.Subscribe(func(v int) { got = append(got, "a") })
	tp.Subscribe(func(v int) { got = append(got, "b") })
	tp.Subscribe(func(v int) { got = append(got, "c") })

	tp.Publish(1)

	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestTopicUnsubscribeDuringDispatch(t *testing.T) {
	var tp Topic[int]
	var got []string
	var second Subscription
	tp.Subscribe(func(int) {
		got = append(got, "first")
		second.Unsubscribe()
	})
	second = tp.Subscribe(func(int) { got = append(got, "second") })

	tp.Publish(1)
	tp.Publish(2)

	if want := []string{"first", "first"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if tp.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tp.Len())
	}
}

func TestTopicSubscribeDuringDispatch(t *testing.T) {
	var tp Topic[int]
	calls := 0
	tp.Subscribe(func(int) {
		if tp.Len() == 1 {
			tp.Subscribe(func(int) { calls++ })
		}
	})

	tp.Publish(1)
	if calls != 0 {
		t.Fatalf("late subscriber called %d times during the dispatch it joined", calls)
	}
	tp.Publish(2)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestSubscriptionIdempotent(t *testing.T) {
	var tp Topic[string]
	s := tp.Subscribe(func(string) {})
	s.Unsubscribe()
	s.Unsubscribe()
	Subscription{}.Unsubscribe()
	if tp.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tp.Len())
	}
}

func TestGroup(t *testing.T) {
	b := NewBus()
	var g Group
	n := 0
	g.Add(b.NodeCreate.Subscribe(func(Node) { n++ }))
	g.Add(b.LinkCreate.Subscribe(func(Link) { n++ }))

	b.NodeCreate.Publish(Node{ID: "a"})
	g.Unsubscribe()
	b.NodeCreate.Publish(Node{ID: "b"})
	b.LinkCreate.Publish(Link{ID: "a->b"})

	if n != 1 {
		t.Errorf("n = %d, want 1", n)
	}
	if len(g) != 0 {
		t.Errorf("group not emptied")
	}
}

func TestBusNamesAndKinds(t *testing.T) {
	b := NewBus()
	tests := []struct {
		name string
		got  string
	}{
		{"node:over", b.Over(KindNode).Name()},
		{"link:over", b.Over(KindLink).Name()},
		{"node:out", b.Out(KindNode).Name()},
		{"link:out", b.Out(KindLink).Name()},
		{"node:click", b.Click(KindNode).Name()},
		{"link:click", b.Click(KindLink).Name()},
		{"view:elements", b.ViewElements.Name()},
		{"layout:ready", b.LayoutReady.Name()},
	}
	for _, tt := range tests {
		if tt.got != tt.name {
			t.Errorf("topic name = %q, want %q", tt.got, tt.name)
		}
	}
}

func TestBusReset(t *testing.T) {
	b := NewBus()
	n := 0
	b.ViewFrame.Subscribe(func(Frame) { n++ })
	b.NodeOver.Subscribe(func(Target) { n++ })
	b.Reset()
	b.ViewFrame.Publish(Frame{})
	b.NodeOver.Publish(Target{ID: "a", Kind: KindNode})
	if n != 0 {
		t.Errorf("handlers called after Reset: %d", n)
	}
}

func TestKindString(t *testing.T) {
	for k, want := range map[Kind]string{KindNone: "none", KindNode: "node", KindLink: "link"} {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
	if !(Target{}).IsZero() {
		t.Error("zero Target should be IsZero")
	}
}
