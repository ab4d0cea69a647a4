package renderer

import (
	"fmt"

	"github.com/richinsley/goshaderedit/graphics"
	"github.com/richinsley/goshaderedit/shader"
	"github.com/richinsley/goshaderedit/translator"
)

// QuadVertices covers the whole drawing area with two triangles.
var QuadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

const quadVertexCount = 6

// Program is one linked generation together with everything bound to it.
// Locations are -1 when the shader does not use the name.
type Program struct {
	Generation    uint64
	ID            uint32
	vao           uint32
	vbo           uint32
	positionLoc   int32
	timeLoc       int32
	resolutionLoc int32
}

// HasTime reports whether the program reads the time uniform.
func (p *Program) HasTime() bool {
	return p.timeLoc >= 0
}

func (p *Program) release(d graphics.Driver) {
	d.DeleteQuad(p.vao, p.vbo)
	d.DeleteProgram(p.ID)
}

// compile translates and compiles one stage.
func compile(d graphics.Driver, tr translator.Translator, kind shader.Kind, source string) (uint32, *translator.Output, error) {
	out, err := tr.Translate(kind, source)
	if err != nil {
		return 0, nil, err
	}
	id, err := d.CompileShader(kind, out.Code)
	if err != nil {
		return 0, nil, err
	}
	return id, out, nil
}

// link consumes both shader objects; they are deleted whether or not linking succeeds.
func link(d graphics.Driver, vertex, fragment uint32) (uint32, error) {
	program, err := d.LinkProgram(vertex, fragment)
	d.DeleteShader(vertex)
	d.DeleteShader(fragment)
	return program, err
}

// bindQuad uploads the quad and wires it to the position attribute if the
// vertex stage declares one.
func bindQuad(d graphics.Driver, p *Program, names *translator.Output) {
	p.positionLoc = d.AttribLocation(p.ID, names.Name(shader.PositionAttribute))
	p.vao, p.vbo = d.NewQuad(p.positionLoc, QuadVertices)
}

func resolveUniforms(d graphics.Driver, p *Program, names *translator.Output) {
	p.timeLoc = d.UniformLocation(p.ID, names.Name(shader.TimeUniform))
	p.resolutionLoc = d.UniformLocation(p.ID, names.Name(shader.ResolutionUniform))
}

// buildProgram runs the whole compile, link and bind sequence. Nothing it
// allocated survives a failure.
func buildProgram(d graphics.Driver, tr translator.Translator, vertexSource, fragmentSource string) (*Program, error) {
	vs, vsNames, err := compile(d, tr, shader.Vertex, vertexSource)
	if err != nil {
		return nil, err
	}
	fs, fsNames, err := compile(d, tr, shader.Fragment, fragmentSource)
	if err != nil {
		d.DeleteShader(vs)
		return nil, err
	}

	id, err := link(d, vs, fs)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, fmt.Errorf("%w: driver returned no program", graphics.ErrProgramLink)
	}

	p := &Program{ID: id}
	bindQuad(d, p, vsNames)
	resolveUniforms(d, p, mergeNames(vsNames, fsNames))
	return p, nil
}

// mergeNames combines the name maps of both stages. Uniforms may be declared
// in either stage; the fragment stage wins on conflicts.
func mergeNames(vertex, fragment *translator.Output) *translator.Output {
	merged := &translator.Output{Names: make(map[string]string, len(vertex.Names)+len(fragment.Names))}
	for k, v := range vertex.Names {
		merged.Names[k] = v
	}
	for k, v := range fragment.Names {
		merged.Names[k] = v
	}
	return merged
}
