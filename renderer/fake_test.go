package renderer

import (
	"fmt"
	"strings"

	"github.com/richinsley/goshaderedit/graphics"
	"github.com/richinsley/goshaderedit/shader"
)

const fakeCompileLog = "0:1(1): error: syntax error, unexpected IDENTIFIER"

// fakeDriver records GL traffic and tracks live objects. Sources containing
// "#error" fail to compile and sources containing "LINKFAIL" fail to link.
type fakeDriver struct {
	next     uint32
	shaders  map[uint32]string
	programs map[uint32][2]string
	quads    map[uint32]int32
	targets  map[uint32]bool

	program    uint32
	target     uint32
	viewport   [2]int
	time       *float32
	resolution [2]float32
	draws      []fakeDraw
	reads      int
	failDraws  int
}

type fakeDraw struct {
	program    uint32
	vao        uint32
	count      int32
	time       *float32
	viewport   [2]int
	target     uint32
	resolution [2]float32
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		shaders:  make(map[uint32]string),
		programs: make(map[uint32][2]string),
		quads:    make(map[uint32]int32),
		targets:  make(map[uint32]bool),
	}
}

func (d *fakeDriver) id() uint32 {
	d.next++
	return d.next
}

func (d *fakeDriver) CompileShader(kind shader.Kind, source string) (uint32, error) {
	if strings.Contains(source, "#error") {
		return 0, fmt.Errorf("%w: %s shader: %s", graphics.ErrShaderCompile, kind, fakeCompileLog)
	}
	id := d.id()
	d.shaders[id] = source
	return id, nil
}

func (d *fakeDriver) DeleteShader(id uint32) {
	delete(d.shaders, id)
}

func (d *fakeDriver) LinkProgram(vertex, fragment uint32) (uint32, error) {
	vs, fs := d.shaders[vertex], d.shaders[fragment]
	if strings.Contains(vs, "LINKFAIL") || strings.Contains(fs, "LINKFAIL") {
		return 0, fmt.Errorf("%w: error: fragment input not written by vertex shader", graphics.ErrProgramLink)
	}
	id := d.id()
	d.programs[id] = [2]string{vs, fs}
	return id, nil
}

func (d *fakeDriver) DeleteProgram(id uint32) {
	delete(d.programs, id)
}

func (d *fakeDriver) AttribLocation(program uint32, name string) int32 {
	if strings.Contains(d.programs[program][0], "in vec2 "+name) {
		return 0
	}
	return -1
}

func (d *fakeDriver) UniformLocation(program uint32, name string) int32 {
	src := d.programs[program]
	switch {
	case strings.Contains(src[1], "uniform float "+name) || strings.Contains(src[0], "uniform float "+name):
		return 1
	case strings.Contains(src[1], "uniform vec2 "+name):
		return 2
	}
	return -1
}

func (d *fakeDriver) NewQuad(attrib int32, vertices []float32) (uint32, uint32) {
	vao := d.id()
	d.quads[vao] = attrib
	return vao, d.id()
}

func (d *fakeDriver) DeleteQuad(vao, vbo uint32) {
	delete(d.quads, vao)
}

func (d *fakeDriver) Viewport(width, height int) {
	d.viewport = [2]int{width, height}
}

func (d *fakeDriver) Clear() {}

func (d *fakeDriver) UseProgram(program uint32) {
	d.program = program
	d.time = nil
}

func (d *fakeDriver) Uniform1f(loc int32, v float32) {
	d.time = &v
}

func (d *fakeDriver) Uniform2f(loc int32, x, y float32) {
	d.resolution = [2]float32{x, y}
}

func (d *fakeDriver) DrawTriangles(vao uint32, count int32) {
	if d.failDraws > 0 {
		d.failDraws--
		panic("driver lost")
	}
	if _, ok := d.programs[d.program]; !ok {
		panic(fmt.Sprintf("draw with released program %d", d.program))
	}
	if _, ok := d.quads[vao]; !ok {
		panic(fmt.Sprintf("draw with released vao %d", vao))
	}
	d.draws = append(d.draws, fakeDraw{
		program:    d.program,
		vao:        vao,
		count:      count,
		time:       d.time,
		viewport:   d.viewport,
		target:     d.target,
		resolution: d.resolution,
	})
}

func (d *fakeDriver) NewTarget(width, height int) (uint32, error) {
	id := d.id()
	d.targets[id] = true
	return id, nil
}

func (d *fakeDriver) BindTarget(id uint32) {
	d.target = id
}

func (d *fakeDriver) DeleteTarget(id uint32) {
	delete(d.targets, id)
}

func (d *fakeDriver) ReadPixels(width, height int, dst []byte) {
	d.reads++
	dst[0] = byte(d.reads)
}

func (d *fakeDriver) lastDraw() fakeDraw {
	return d.draws[len(d.draws)-1]
}

// fakeContext is a surface whose clock and size are set by the test.
type fakeContext struct {
	now        float64
	width      int
	height     int
	closeAfter int
	endFrames  int
	failEnds   int
}

func (c *fakeContext) MakeCurrent() {}
func (c *fakeContext) Shutdown()    {}

func (c *fakeContext) ShouldClose() bool {
	return c.closeAfter > 0 && c.endFrames >= c.closeAfter
}

func (c *fakeContext) EndFrame() {
	c.endFrames++
	c.now += 1.0 / 60.0
	if c.failEnds > 0 {
		c.failEnds--
		panic("key callback failed")
	}
}

func (c *fakeContext) GetFramebufferSize() (int, int) {
	return c.width, c.height
}

func (c *fakeContext) Time() float64 {
	return c.now
}

type sliceSink struct {
	frames [][]byte
	err    error
}

func (s *sliceSink) WriteFrame(pixels []byte) error {
	if s.err != nil {
		return s.err
	}
	s.frames = append(s.frames, append([]byte(nil), pixels...))
	return nil
}
