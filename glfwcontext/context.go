package glfwcontext

import (
	"fmt"
	"log"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/goshaderedit/graphics"
)

type keyBinding struct {
	key  glfw.Key
	mods glfw.ModifierKey
}

// Context is a GLFW window implementing graphics.Context and graphics.Clipboard.
type Context struct {
	window *glfw.Window
	// A map to store functions to be called on key presses.
	keyCallbacks map[keyBinding]func()
}

// New creates a window with an OpenGL 4.1 core context.
func New(width, height int, title string, visible bool) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create window: %v", graphics.ErrUnsupportedSurface, err)
	}

	c := &Context{
		window:       win,
		keyCallbacks: make(map[keyBinding]func()),
	}

	win.SetKeyCallback(c.glfwKeyCallback)
	win.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		log.Printf("Framebuffer resized to %dx%d", width, height)
	})
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	return c, nil
}

// RegisterKeyCallback registers f to run when key is pressed with exactly mods held.
func (c *Context) RegisterKeyCallback(key glfw.Key, mods glfw.ModifierKey, f func()) {
	c.keyCallbacks[keyBinding{key: key, mods: mods}] = f
}

// glfwKeyCallback runs inside PollEvents, so callbacks execute on the render thread.
func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}

	if action == glfw.Press {
		// Lock keys should not change what a shortcut means.
		mods &^= glfw.ModCapsLock | glfw.ModNumLock
		if callback, ok := c.keyCallbacks[keyBinding{key: key, mods: mods}]; ok {
			callback()
		}
	}
}

// SetTitle updates the window title.
func (c *Context) SetTitle(title string) {
	c.window.SetTitle(title)
}

// SetClipboardString implements graphics.Clipboard.
func (c *Context) SetClipboardString(text string) (err error) {
	defer recoverClipboard(&err)
	c.window.SetClipboardString(text)
	return nil
}

// GetClipboardString implements graphics.Clipboard.
func (c *Context) GetClipboardString() (text string, err error) {
	defer recoverClipboard(&err)
	return c.window.GetClipboardString(), nil
}

// The GLFW bindings panic on platform errors.
func recoverClipboard(err *error) {
	if rec := recover(); rec != nil {
		*err = fmt.Errorf("%w: %v", graphics.ErrClipboard, rec)
	}
}

func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

// InitGraphics initializes GLFW. Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("%w: %v", graphics.ErrUnsupportedSurface, err)
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts down GLFW. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}
