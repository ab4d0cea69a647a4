package options

type EditorOptions struct {
	VertexFile   *string
	FragmentFile *string
	Width        *int
	Height       *int
	Dialect      *string // "webgl2" (GLSL ES 3.00 translated to GLSL 4.10) or "native"
	OutDir       *string // Where Ctrl+S writes vertexShader.glsl / fragmentShader.glsl
	Watch        *bool
	// Record options
	Duration   *float64
	FPS        *int
	OutputFile *string
	FFMPEGPath *string
}
