package loop

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLoopRunsTasksInOrder(t *testing.T) {
	l := New(8)
	var got []int

	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}

	if n := l.Drain(); n != 5 {
		t.Fatalf("Drain() = %d, want 5", n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task order = %v", got)
		}
	}
}

func TestLoopRunFromOtherGoroutines(t *testing.T) {
	l := New(0)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	count := 0
	finished := make(chan struct{})

	wg.Add(10)
	for i := 0; i < 10; i++ {
		go l.Post(func() {
			count++
			wg.Done()
		})
	}
	go func() {
		wg.Wait()
		l.Post(func() { close(finished) })
	}()

	go func() {
		<-finished
		l.Close()
	}()

	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if count != 10 {
		t.Errorf("count = %d, want 10", count)
	}
}

func TestLoopRecoversPanics(t *testing.T) {
	l := New(4)
	var recovered any
	l.PanicHandler = func(r any) { recovered = r }

	ran := false
	l.Post(func() { panic("boom") })
	l.Post(func() { ran = true })
	l.Drain()

	if recovered != "boom" {
		t.Errorf("recovered = %v, want boom", recovered)
	}
	if !ran {
		t.Error("task after panic did not run")
	}
}

func TestLoopClosed(t *testing.T) {
	l := New(1)
	l.Close()
	l.Close()

	l.Post(func() { t.Error("task ran after close") })
	if err := l.Run(context.Background()); err != ErrClosed {
		t.Errorf("Run() after Close = %v, want ErrClosed", err)
	}
}

func TestImmediate(t *testing.T) {
	ran := false
	Immediate.Post(func() { ran = true })
	if !ran {
		t.Error("Immediate did not run task synchronously")
	}
}
