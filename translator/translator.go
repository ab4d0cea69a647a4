package translator

import (
	"context"
	"fmt"
	"sync"

	"github.com/richinsley/goshaderedit/graphics"
	"github.com/richinsley/goshaderedit/shader"
	gst "github.com/richinsley/goshadertranslator"
)

// Dialects accepted on the command line.
const (
	DialectWebGL2 = "webgl2"
	DialectNative = "native"
)

// Output is a stage ready for the driver plus the names the translator gave
// to the user's attributes and uniforms.
type Output struct {
	Code  string
	Names map[string]string
}

// Name maps a name from the user's source to the one in Code.
func (o *Output) Name(name string) string {
	if mapped, ok := o.Names[name]; ok && mapped != "" {
		return mapped
	}
	return name
}

// Translator turns editor source into driver source.
type Translator interface {
	Translate(kind shader.Kind, source string) (*Output, error)
}

// New returns the translator for a dialect.
func New(dialect string) (Translator, error) {
	switch dialect {
	case DialectWebGL2, "":
		return &WebGL2{}, nil
	case DialectNative:
		return Passthrough{}, nil
	}
	return nil, fmt.Errorf("unknown shader dialect %q", dialect)
}

// Passthrough hands source to the driver unchanged.
type Passthrough struct{}

func (Passthrough) Translate(kind shader.Kind, source string) (*Output, error) {
	return &Output{Code: source}, nil
}

// WebGL2 accepts GLSL ES 3.00 and emits desktop GLSL 4.10.
type WebGL2 struct {
	once sync.Once
	st   *gst.ShaderTranslator
	err  error
}

func (w *WebGL2) get() (*gst.ShaderTranslator, error) {
	w.once.Do(func() {
		w.st, w.err = gst.NewShaderTranslator(context.Background())
	})
	return w.st, w.err
}

func (w *WebGL2) Translate(kind shader.Kind, source string) (*Output, error) {
	st, err := w.get()
	if err != nil {
		return nil, fmt.Errorf("failed to start shader translator: %w", err)
	}
	translated, err := st.TranslateShader(source, kind.String(), gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return nil, fmt.Errorf("%w: %s shader translation: %v", graphics.ErrShaderCompile, kind, err)
	}

	out := &Output{Code: translated.Code, Names: make(map[string]string, len(translated.Variables))}
	for name, v := range translated.Variables {
		out.Names[name] = v.MappedName
	}
	return out, nil
}
