package notify

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{KindDone, "done"},
		{KindFailed, "failed"},
		{KindLoaded, "loaded"},
		{Kind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}

func TestTopicMatching(t *testing.T) {
	n := New()
	defer n.Close()

	var got []string
	record := func(prefix string) Observer {
		return func(ev Event) { got = append(got, prefix+":"+ev.Topic) }
	}
	n.Subscribe(record("all"))
	n.SubscribeTopic("tool", record("tool"))
	n.SubscribeTopic("run", record("run"))

	n.Done("run", "")
	n.Notify(Event{Topic: "tool.lint", Kind: KindLoaded})
	n.Done("toolbox", "")

	want := []string{"all:run", "run:run", "all:tool.lint", "tool:tool.lint", "all:toolbox"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("delivered %v, want %v", got, want)
	}
}

func TestUnsubscribe(t *testing.T) {
	n := New()
	defer n.Close()

	count := 0
	sub := n.SubscribeTopic("clean", func(Event) { count++ })
	n.Done("clean", "")
	sub.Unsubscribe()
	sub.Unsubscribe()
	n.Done("clean", "")

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestFailedCarriesError(t *testing.T) {
	n := New()
	defer n.Close()

	boom := errors.New("boom")
	var got Event
	n.Subscribe(func(ev Event) { got = ev })
	n.Failed("save", boom)

	if got.Kind != KindFailed || !errors.Is(got.Err, boom) || got.Detail != "boom" {
		t.Errorf("event = %+v", got)
	}
}

func TestAsyncDeliveryAndClose(t *testing.T) {
	n := New(WithAsync(8))

	var mu sync.Mutex
	var topics []string
	n.Subscribe(func(ev Event) {
		mu.Lock()
		topics = append(topics, ev.Topic)
		mu.Unlock()
	})

	n.Done("run", "")
	n.Done("save", "")

	done := make(chan struct{})
	go func() {
		n.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close() did not return")
	}

	mu.Lock()
	defer mu.Unlock()
	if !reflect.DeepEqual(topics, []string{"run", "save"}) {
		t.Errorf("topics = %v", topics)
	}

	n.Done("late", "")
	n.Close()
}
