package editor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/richinsley/goshaderedit/shader"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	quietLog(t)
	dir := t.TempDir()
	rb := &fakeRebuilder{}
	e := New(rb, &fakeClipboard{}, dir)
	src := "#version 300 es\r\n// ünïcode and trailing space \nvoid main() {}\n\n"
	if err := e.SetSource(shader.Fragment, src); err != nil {
		t.Fatal(err)
	}

	path, err := e.Save(shader.Fragment)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "fragmentShader.glsl" {
		t.Fatalf("unexpected file name %s", path)
	}

	other := New(&fakeRebuilder{}, &fakeClipboard{}, dir)
	if err := other.LoadFile(shader.Fragment, path); err != nil {
		t.Fatal(err)
	}
	if other.Source(shader.Fragment) != src {
		t.Fatalf("round trip changed the source: %q", other.Source(shader.Fragment))
	}

	vpath, err := e.Save(shader.Vertex)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(vpath) != "vertexShader.glsl" {
		t.Fatalf("unexpected file name %s", vpath)
	}
}

func TestLoadFileTouchesOneSlot(t *testing.T) {
	quietLog(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "wave.vert")
	if err := os.WriteFile(path, []byte("vertex text"), 0644); err != nil {
		t.Fatal(err)
	}
	e := New(&fakeRebuilder{}, &fakeClipboard{}, dir)
	e.SetSource(shader.Fragment, "fragment text")

	if err := e.LoadFile(shader.Vertex, path); err != nil {
		t.Fatal(err)
	}
	if e.Source(shader.Vertex) != "vertex text" || e.Source(shader.Fragment) != "fragment text" {
		t.Fatal("vertex load changed the fragment source")
	}
	if e.Path(shader.Vertex) != path || e.Path(shader.Fragment) != "" {
		t.Fatal("paths not tracked per slot")
	}
}

func TestLoadFileFailuresLeaveSource(t *testing.T) {
	logs := quietLog(t)
	dir := t.TempDir()
	binary := filepath.Join(dir, "blob.frag")
	if err := os.WriteFile(binary, []byte{0xff, 0xfe, 0x00, 0x80}, 0644); err != nil {
		t.Fatal(err)
	}
	rb := &fakeRebuilder{}
	e := New(rb, &fakeClipboard{}, dir)

	for _, path := range []string{binary, filepath.Join(dir, "missing.frag")} {
		if err := e.LoadFile(shader.Fragment, path); !errors.Is(err, ErrFileRead) {
			t.Fatalf("expected ErrFileRead for %s, got %v", path, err)
		}
	}
	if e.Source(shader.Fragment) != shader.Default(shader.Fragment) || len(rb.calls) != 0 {
		t.Fatal("failed load changed state")
	}
	if logs.Len() == 0 {
		t.Fatal("failed load was not logged")
	}
}

func TestLoadFileAsync(t *testing.T) {
	quietLog(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "a.frag")
	os.WriteFile(path, []byte("async text"), 0644)
	e := New(&fakeRebuilder{}, &fakeClipboard{}, dir)

	e.LoadFileAsync(shader.Fragment, path)
	waitFor(t, e, func() bool { return e.Source(shader.Fragment) == "async text" })
	if e.Path(shader.Fragment) != path {
		t.Fatalf("expected path %s, got %s", path, e.Path(shader.Fragment))
	}
}

func TestWatchReloadsChangedFile(t *testing.T) {
	quietLog(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "live.frag")
	os.WriteFile(path, []byte("first"), 0644)
	e := New(&fakeRebuilder{}, &fakeClipboard{}, dir)
	if err := e.LoadFile(shader.Fragment, path); err != nil {
		t.Fatal(err)
	}

	ctx := t.Context()
	if err := e.Watch(ctx); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("second"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, e, func() bool { return e.Source(shader.Fragment) == "second" })
	if e.Source(shader.Vertex) != shader.Default(shader.Vertex) {
		t.Fatal("watcher touched the vertex source")
	}
}

func TestWatchWithoutFiles(t *testing.T) {
	e := New(&fakeRebuilder{}, &fakeClipboard{}, t.TempDir())
	if err := e.Watch(t.Context()); err != nil {
		t.Fatal(err)
	}
}

// waitFor drains the editor until cond holds, as the render loop would.
func waitFor(t *testing.T, e *Editor, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		e.Drain()
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestOpenDoesNotRebuild(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "start.frag")
	os.WriteFile(path, []byte("initial"), 0644)
	rb := &fakeRebuilder{}
	e := New(rb, &fakeClipboard{}, dir)

	if err := e.Open(shader.Fragment, path); err != nil {
		t.Fatal(err)
	}
	if len(rb.calls) != 0 {
		t.Fatal("Open triggered a rebuild")
	}
	if err := e.Open(shader.Vertex, filepath.Join(dir, "missing.vert")); !errors.Is(err, ErrFileRead) {
		t.Fatalf("expected ErrFileRead, got %v", err)
	}
	e.Init()
	if len(rb.calls) != 1 || rb.calls[0] != [2]string{shader.Default(shader.Vertex), "initial"} {
		t.Fatalf("unexpected rebuilds %v", rb.calls)
	}
}
