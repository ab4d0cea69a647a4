package graphics

import (
	"errors"

	"github.com/richinsley/goshaderedit/shader"
)

var (
	ErrShaderCompile      = errors.New("shader compile failed")
	ErrProgramLink        = errors.New("program link failed")
	ErrUnsupportedSurface = errors.New("graphics surface unsupported")
	ErrClipboard          = errors.New("clipboard unavailable")
)

// Driver is the slice of OpenGL the editor needs. Object names are the raw GL
// names; locations are -1 when the name is not active in the program.
type Driver interface {
	// CompileShader compiles one stage. On failure the shader object is
	// already deleted and the error wraps ErrShaderCompile.
	CompileShader(kind shader.Kind, source string) (uint32, error)
	DeleteShader(id uint32)
	// LinkProgram links two compiled stages. On failure the program object is
	// already deleted and the error wraps ErrProgramLink.
	LinkProgram(vertex, fragment uint32) (uint32, error)
	DeleteProgram(id uint32)
	AttribLocation(program uint32, name string) int32
	UniformLocation(program uint32, name string) int32

	// NewQuad uploads vertices (x, y pairs) and wires them to attrib when
	// attrib >= 0.
	NewQuad(attrib int32, vertices []float32) (vao, vbo uint32)
	DeleteQuad(vao, vbo uint32)

	Viewport(width, height int)
	Clear()
	UseProgram(program uint32)
	Uniform1f(loc int32, v float32)
	Uniform2f(loc int32, x, y float32)
	DrawTriangles(vao uint32, count int32)

	// Offscreen targets back recording. Target 0 is the window.
	NewTarget(width, height int) (uint32, error)
	BindTarget(id uint32)
	DeleteTarget(id uint32)
	ReadPixels(width, height int, dst []byte)
}
