// Package editor owns the two shader sources and rebuilds the program
// whenever either of them changes.
package editor

import (
	"fmt"
	"log"

	"github.com/richinsley/goshaderedit/graphics"
	"github.com/richinsley/goshaderedit/shader"
)

// Rebuilder turns a pair of sources into the current program.
type Rebuilder interface {
	Rebuild(vertexSource, fragmentSource string) error
}

type update struct {
	kind   shader.Kind
	source string
	path   string
}

// Editor holds the vertex and fragment sources. Every method except Post and
// LoadFileAsync must run on the render thread.
type Editor struct {
	sources   [2]string
	paths     [2]string
	target    Rebuilder
	clipboard graphics.Clipboard
	outDir    string
	pending   chan update
	onRebuild func(err error)
}

// New starts with the built-in default sources.
func New(target Rebuilder, clipboard graphics.Clipboard, outDir string) *Editor {
	if outDir == "" {
		outDir = "."
	}
	e := &Editor{
		target:    target,
		clipboard: clipboard,
		outDir:    outDir,
		pending:   make(chan update, 16),
	}
	for _, kind := range shader.Kinds {
		e.sources[kind] = shader.Default(kind)
	}
	return e
}

// Source returns the current source of one stage.
func (e *Editor) Source(kind shader.Kind) string {
	return e.sources[kind]
}

// Path returns the file a stage was last loaded from, if any.
func (e *Editor) Path(kind shader.Kind) string {
	return e.paths[kind]
}

// Init builds the program from the current sources.
func (e *Editor) Init() error {
	return e.rebuild()
}

// SetSource replaces one stage wholesale and rebuilds. A failed rebuild keeps
// the new text; the previous program keeps rendering until the text is fixed.
func (e *Editor) SetSource(kind shader.Kind, source string) error {
	e.sources[kind] = source
	return e.rebuild()
}

// OnRebuild registers fn to run after every rebuild with its result.
func (e *Editor) OnRebuild(fn func(err error)) {
	e.onRebuild = fn
}

func (e *Editor) rebuild() error {
	err := e.target.Rebuild(e.sources[shader.Vertex], e.sources[shader.Fragment])
	if err != nil {
		err = fmt.Errorf("rebuild after %s edit: %w", e.Describe(), err)
	}
	if e.onRebuild != nil {
		e.onRebuild(err)
	}
	return err
}

// Describe names the files the sources came from, or "source" when both are
// built-in or edited in place.
func (e *Editor) Describe() string {
	if e.paths[shader.Vertex] == "" && e.paths[shader.Fragment] == "" {
		return "source"
	}
	return fmt.Sprintf("%q/%q", e.paths[shader.Vertex], e.paths[shader.Fragment])
}

// Post queues a replacement from another goroutine. It is applied by the next
// Drain; until then the current source stays in effect. path records where
// the text came from and may be empty.
func (e *Editor) Post(kind shader.Kind, source, path string) {
	e.pending <- update{kind: kind, source: source, path: path}
}

// Drain applies every queued replacement in arrival order.
func (e *Editor) Drain() {
	for {
		select {
		case u := <-e.pending:
			if u.path != "" {
				e.paths[u.kind] = u.path
			}
			// The rebuilder logs failures; the previous program keeps rendering.
			e.SetSource(u.kind, u.source)
		default:
			return
		}
	}
}

// Copy puts one stage's source on the clipboard. Failures are only logged.
func (e *Editor) Copy(kind shader.Kind) error {
	if err := e.clipboard.SetClipboardString(e.sources[kind]); err != nil {
		log.Printf("Failed to copy %s shader: %v", kind, err)
		return err
	}
	log.Printf("Copied %s shader to clipboard", kind)
	return nil
}

// Paste replaces one stage with the clipboard text. An unreadable or empty
// clipboard leaves the source unchanged.
func (e *Editor) Paste(kind shader.Kind) error {
	text, err := e.clipboard.GetClipboardString()
	if err == nil && text == "" {
		err = fmt.Errorf("%w: clipboard is empty", graphics.ErrClipboard)
	}
	if err != nil {
		log.Printf("Failed to paste %s shader: %v", kind, err)
		return err
	}
	return e.SetSource(kind, text)
}
