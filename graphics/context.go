package graphics

// Context defines the interface for the drawing surface that owns an OpenGL context.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	EndFrame()
	GetFramebufferSize() (int, int)
	Time() float64
}

// Clipboard is the system clipboard as seen by the editor.
type Clipboard interface {
	SetClipboardString(text string) error
	GetClipboardString() (string, error)
}
