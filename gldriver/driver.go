package gldriver

import (
	"fmt"
	"strings"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goshaderedit/graphics"
	"github.com/richinsley/goshaderedit/shader"
)

// gl.Init resolves function pointers for the current context and only needs to run once.
var glInitOnce sync.Once

type target struct {
	fbo     uint32
	texture uint32
}

// Driver implements graphics.Driver on the OpenGL 4.1 core profile.
type Driver struct {
	targets map[uint32]target
}

// New initializes the OpenGL bindings. The context must already be current on
// the calling thread.
func New(ctx graphics.Context) (*Driver, error) {
	ctx.MakeCurrent()

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("%w: failed to initialize OpenGL: %v", graphics.ErrUnsupportedSurface, initErr)
	}
	return &Driver{targets: make(map[uint32]target)}, nil
}

// Version reports the GL version string of the current context.
func (d *Driver) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (d *Driver) CompileShader(kind shader.Kind, source string) (uint32, error) {
	shaderType := uint32(gl.VERTEX_SHADER)
	if kind == shader.Fragment {
		shaderType = gl.FRAGMENT_SHADER
	}

	id := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(id, 1, csources, nil)
	free()
	gl.CompileShader(id)

	var status int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(id, logLength, nil, gl.Str(logText))
		gl.DeleteShader(id)
		return 0, fmt.Errorf("%w: %s shader: %s", graphics.ErrShaderCompile, kind, trimLog(logText))
	}
	return id, nil
}

func (d *Driver) DeleteShader(id uint32) {
	gl.DeleteShader(id)
}

func (d *Driver) LinkProgram(vertex, fragment uint32) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vertex)
	gl.AttachShader(program, fragment)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: %s", graphics.ErrProgramLink, trimLog(logText))
	}

	// Shaders stay alive until the program is deleted.
	gl.DetachShader(program, vertex)
	gl.DetachShader(program, fragment)
	return program, nil
}

func (d *Driver) DeleteProgram(id uint32) {
	gl.DeleteProgram(id)
}

func (d *Driver) AttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (d *Driver) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Driver) NewQuad(attrib int32, vertices []float32) (uint32, uint32) {
	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	if attrib >= 0 {
		gl.EnableVertexAttribArray(uint32(attrib))
		gl.VertexAttribPointer(uint32(attrib), 2, gl.FLOAT, false, 0, gl.PtrOffset(0))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return vao, vbo
}

func (d *Driver) DeleteQuad(vao, vbo uint32) {
	gl.DeleteBuffers(1, &vbo)
	gl.DeleteVertexArrays(1, &vao)
}

func (d *Driver) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *Driver) Clear() {
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Driver) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (d *Driver) Uniform1f(loc int32, v float32) {
	gl.Uniform1f(loc, v)
}

func (d *Driver) Uniform2f(loc int32, x, y float32) {
	gl.Uniform2f(loc, x, y)
}

func (d *Driver) DrawTriangles(vao uint32, count int32) {
	gl.BindVertexArray(vao)
	gl.DrawArrays(gl.TRIANGLES, 0, count)
	gl.BindVertexArray(0)
}

// NewTarget creates an RGBA8 framebuffer of the given size.
func (d *Driver) NewTarget(width, height int) (uint32, error) {
	var t target
	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.GenTextures(1, &t.texture)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.texture, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if gl.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.DeleteTextures(1, &t.texture)
		gl.DeleteFramebuffers(1, &t.fbo)
		return 0, fmt.Errorf("offscreen framebuffer %dx%d is not complete", width, height)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	d.targets[t.fbo] = t
	return t.fbo, nil
}

func (d *Driver) BindTarget(id uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, id)
}

func (d *Driver) DeleteTarget(id uint32) {
	t, ok := d.targets[id]
	if !ok {
		return
	}
	gl.DeleteTextures(1, &t.texture)
	gl.DeleteFramebuffers(1, &t.fbo)
	delete(d.targets, id)
}

// ReadPixels copies the bound framebuffer as tightly packed RGBA, bottom row first.
func (d *Driver) ReadPixels(width, height int, dst []byte) {
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&dst[0]))
}

// trimLog drops the NUL padding the info-log buffer is allocated with.
func trimLog(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}
