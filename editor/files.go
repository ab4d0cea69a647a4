package editor

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/richinsley/goshaderedit/shader"
)

var ErrFileRead = errors.New("shader file unreadable")

// readSource returns the whole file as text. Content that is not valid UTF-8
// is treated as unreadable.
func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFileRead, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not text", ErrFileRead, path)
	}
	return string(data), nil
}

// LoadFile replaces one stage with the contents of path. If the file cannot
// be read the source is left as it was.
func (e *Editor) LoadFile(kind shader.Kind, path string) error {
	source, err := readSource(path)
	if err != nil {
		log.Printf("Failed to load %s shader: %v", kind, err)
		return err
	}
	e.paths[kind] = path
	log.Printf("Loaded %s shader from %s", kind, path)
	return e.SetSource(kind, source)
}

// Open sets the initial source of one stage from path without rebuilding;
// Init builds both stages afterwards.
func (e *Editor) Open(kind shader.Kind, path string) error {
	source, err := readSource(path)
	if err != nil {
		return err
	}
	e.sources[kind] = source
	e.paths[kind] = path
	return nil
}

// LoadFileAsync reads path on a separate goroutine and queues the result for
// the next Drain.
func (e *Editor) LoadFileAsync(kind shader.Kind, path string) {
	go e.loadAndPost(kind, path)
}

func (e *Editor) loadAndPost(kind shader.Kind, path string) {
	source, err := readSource(path)
	if err != nil {
		log.Printf("Failed to load %s shader: %v", kind, err)
		return
	}
	e.Post(kind, source, path)
}

// Reload re-reads every stage that was loaded from a file.
func (e *Editor) Reload() {
	for _, kind := range shader.Kinds {
		if path := e.paths[kind]; path != "" {
			e.LoadFileAsync(kind, path)
		}
	}
}

// Save writes one stage to vertexShader.glsl or fragmentShader.glsl in the
// output directory and returns the path written.
func (e *Editor) Save(kind shader.Kind) (string, error) {
	if err := os.MkdirAll(e.outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(e.outDir, kind.FileName())
	if err := os.WriteFile(path, []byte(e.sources[kind]), 0644); err != nil {
		return "", fmt.Errorf("failed to save %s shader: %w", kind, err)
	}
	log.Printf("Saved %s shader to %s", kind, path)
	return path, nil
}
