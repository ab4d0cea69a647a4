package shader

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind identifies a pipeline stage.
type Kind int

const (
	Vertex Kind = iota
	Fragment
)

// Kinds lists every stage in build order.
var Kinds = []Kind{Vertex, Fragment}

func (k Kind) String() string {
	switch k {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// FileName is the name a source of this kind is saved under.
func (k Kind) FileName() string {
	return k.String() + "Shader.glsl"
}

// Well-known names the editor binds on every build.
const (
	PositionAttribute = "position"
	TimeUniform       = "time"
	ResolutionUniform = "resolution"
)

// ─────────────────────────────── Default sources ───────────────────────────────

//go:embed defaults/default.vert
var defaultVertex string

//go:embed defaults/default.frag
var defaultFragment string

// Default returns the built-in source used before any edit.
func Default(kind Kind) string {
	if kind == Vertex {
		return defaultVertex
	}
	return defaultFragment
}

// KindFromPath guesses the stage from a file extension. .glsl and .txt are
// ambiguous and report ok == false.
func KindFromPath(path string) (kind Kind, ok bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vert", ".vs":
		return Vertex, true
	case ".frag", ".fs":
		return Fragment, true
	}
	return Fragment, false
}
