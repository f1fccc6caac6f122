package asset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/dshills/shellpad/internal/loop"
)

// gatedFetcher blocks every fetch until release is closed.
type gatedFetcher struct {
	release chan struct{}
	calls   atomic.Int32
	err     error
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{release: make(chan struct{})}
}

func (f *gatedFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	f.calls.Add(1)
	select {
	case <-f.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte("-- " + path), nil
}

type recordingInstaller struct {
	installed []ToolID
	err       error
}

func (r *recordingInstaller) Install(id ToolID, _ string, _ []byte) error {
	r.installed = append(r.installed, id)
	return r.err
}

// waitFor drains l until cond holds or the deadline passes.
func waitFor(t *testing.T, l *loop.Loop, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		l.Drain()
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestEnsureLoadsOnceAndFansOut(t *testing.T) {
	ui := loop.New(16)
	fetcher := newGatedFetcher()
	inst := &recordingInstaller{}
	loader := NewLoader(fetcher, inst, WithPoster(ui))

	const n = 5
	var fired []int
	for i := 0; i < n; i++ {
		i := i
		if deferred := loader.Ensure(ToolLint, func() { fired = append(fired, i) }); !deferred {
			t.Fatalf("Ensure() #%d deferred = false while loading", i)
		}
	}

	if got := loader.State(ToolLint); got != StateLoading {
		t.Fatalf("State() = %v, want loading", got)
	}
	ui.Drain()
	if len(fired) != 0 {
		t.Fatalf("callbacks fired before load completed: %v", fired)
	}

	close(fetcher.release)
	waitFor(t, ui, func() bool { return len(fired) == n })

	for i, v := range fired {
		if v != i {
			t.Errorf("callback order = %v", fired)
			break
		}
	}
	if c := fetcher.calls.Load(); c != 1 {
		t.Errorf("fetch calls = %d, want 1", c)
	}
	if loader.Loads(ToolLint) != 1 {
		t.Errorf("Loads() = %d, want 1", loader.Loads(ToolLint))
	}
	if len(inst.installed) != 1 || inst.installed[0] != ToolLint {
		t.Errorf("installed = %v", inst.installed)
	}
}

func TestEnsureLoadedRunsSynchronously(t *testing.T) {
	fetcher := newGatedFetcher()
	close(fetcher.release)
	ui := loop.New(4)
	loader := NewLoader(fetcher, &recordingInstaller{}, WithPoster(ui))

	loader.Ensure(ToolBeautify, nil)
	waitFor(t, ui, func() bool { return loader.Loaded(ToolBeautify) })

	ran := false
	if deferred := loader.Ensure(ToolBeautify, func() { ran = true }); deferred {
		t.Error("Ensure() on loaded tool reported deferred")
	}
	if !ran {
		t.Error("callback did not run synchronously")
	}
	if loader.Loads(ToolBeautify) != 1 {
		t.Errorf("Loads() = %d, want 1", loader.Loads(ToolBeautify))
	}
}

func TestEnsureFailureDropsCallbacks(t *testing.T) {
	fetcher := newGatedFetcher()
	fetcher.err = errors.New("network down")
	close(fetcher.release)
	ui := loop.New(4)
	loader := NewLoader(fetcher, &recordingInstaller{}, WithPoster(ui))

	ran := false
	loader.Ensure(ToolCompile, func() { ran = true })
	waitFor(t, ui, func() bool { return loader.State(ToolCompile) == StateUnloaded })

	ui.Drain()
	if ran {
		t.Error("callback ran after failed load")
	}

	// A later user-triggered request starts a fresh load.
	loader.Ensure(ToolCompile, nil)
	if loader.Loads(ToolCompile) != 2 {
		t.Errorf("Loads() = %d, want 2", loader.Loads(ToolCompile))
	}
}

func TestEnsureInstallFailure(t *testing.T) {
	fetcher := newGatedFetcher()
	close(fetcher.release)
	ui := loop.New(4)
	loader := NewLoader(fetcher, &recordingInstaller{err: errors.New("syntax error")}, WithPoster(ui))

	ran := false
	loader.Ensure(ToolLint, func() { ran = true })
	waitFor(t, ui, func() bool { return loader.State(ToolLint) == StateUnloaded })
	if ran {
		t.Error("callback ran after failed install")
	}
}

func TestEnsureUnknownTool(t *testing.T) {
	loader := NewLoader(FSFetcher{FS: fstest.MapFS{}}, &recordingInstaller{})
	if !loader.Ensure("nope", func() { t.Error("callback ran for unknown tool") }) {
		t.Error("Ensure() for unknown tool should report deferred")
	}
	if loader.State("nope") != StateUnloaded {
		t.Errorf("State() = %v", loader.State("nope"))
	}
}

func TestMarkLoaded(t *testing.T) {
	loader := NewLoader(FSFetcher{FS: fstest.MapFS{}}, nil)
	loader.MarkLoaded(ToolLint)

	ran := false
	if loader.Ensure(ToolLint, func() { ran = true }) || !ran {
		t.Error("MarkLoaded tool should run callbacks synchronously")
	}
}

func TestFSFetcher(t *testing.T) {
	f := FSFetcher{FS: fstest.MapFS{"js/jslint.lua": {Data: []byte("JSLINT = {}")}}}

	data, err := f.Fetch(context.Background(), "/js/jslint.lua")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "JSLINT = {}" {
		t.Errorf("Fetch() = %q", data)
	}

	if _, err := f.Fetch(context.Background(), "missing.lua"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch(missing) error = %v, want ErrNotFound", err)
	}
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/static/js/beautifier.lua" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("Beautifier = {}"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL+"/static/", time.Second)
	data, err := f.Fetch(context.Background(), DefaultPaths[ToolBeautify])
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "Beautifier = {}" {
		t.Errorf("Fetch() = %q", data)
	}

	if _, err := f.Fetch(context.Background(), "js/none.lua"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch(missing) error = %v, want ErrNotFound", err)
	}
}
