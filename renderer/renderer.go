package renderer

import (
	"context"
	"fmt"
	"log"

	"github.com/richinsley/goshaderedit/graphics"
	"github.com/richinsley/goshaderedit/translator"
)

// State of the render loop.
type State int

const (
	// Idle means no program has been built yet; frames are only cleared.
	Idle State = iota
	// Rendering means a current program is drawn every frame.
	Rendering
)

func (s State) String() string {
	if s == Rendering {
		return "rendering"
	}
	return "idle"
}

// Renderer owns the current program slot and the frame loop. All methods must
// be called from the thread the GL context is current on.
type Renderer struct {
	context     graphics.Context
	driver      graphics.Driver
	translator  translator.Translator
	origin      float64
	lastElapsed float64
	current     *Program
	generation  uint64
	frames      uint64
}

// New captures the clock origin; elapsed time is measured from here for the
// lifetime of the surface.
func New(ctx graphics.Context, driver graphics.Driver, tr translator.Translator) *Renderer {
	return &Renderer{
		context:    ctx,
		driver:     driver,
		translator: tr,
		origin:     ctx.Time(),
	}
}

func (r *Renderer) State() State {
	if r.current == nil {
		return Idle
	}
	return Rendering
}

// Current returns the program the next frame will draw, or nil when idle.
func (r *Renderer) Current() *Program {
	return r.current
}

// Frames counts ticks since the renderer was created.
func (r *Renderer) Frames() uint64 {
	return r.frames
}

// Rebuild compiles and links a new program from both sources and makes it
// current. On failure the previous program stays current and keeps rendering.
func (r *Renderer) Rebuild(vertexSource, fragmentSource string) error {
	p, err := buildProgram(r.driver, r.translator, vertexSource, fragmentSource)
	if err != nil {
		if r.current != nil {
			log.Printf("Rebuild failed, still rendering generation %d: %v", r.current.Generation, err)
		} else {
			log.Printf("Rebuild failed: %v", err)
		}
		return err
	}

	r.generation++
	p.Generation = r.generation
	previous := r.current
	r.current = p
	if previous != nil {
		previous.release(r.driver)
	}
	if !p.HasTime() {
		log.Printf("Program generation %d does not use the time uniform", p.Generation)
	}
	return nil
}

// Elapsed is the animation time in seconds. It never decreases.
func (r *Renderer) Elapsed() float64 {
	elapsed := r.context.Time() - r.origin
	if elapsed < r.lastElapsed {
		elapsed = r.lastElapsed
	}
	r.lastElapsed = elapsed
	return elapsed
}

// Tick renders one frame into the window. A panic inside the frame is logged
// and returned as an error so the loop can carry on.
func (r *Renderer) Tick() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("frame %d: %v", r.frames, rec)
			log.Printf("Recovered from failed frame: %v", err)
		}
		r.frames++
	}()

	width, height := r.context.GetFramebufferSize()
	r.renderFrame(width, height, r.Elapsed())
	return nil
}

func (r *Renderer) renderFrame(width, height int, elapsed float64) {
	r.driver.Viewport(width, height)
	r.driver.Clear()

	p := r.current
	if p == nil {
		return
	}
	r.driver.UseProgram(p.ID)
	if p.timeLoc != -1 {
		r.driver.Uniform1f(p.timeLoc, float32(elapsed))
	}
	if p.resolutionLoc != -1 {
		r.driver.Uniform2f(p.resolutionLoc, float32(width), float32(height))
	}
	r.driver.DrawTriangles(p.vao, quadVertexCount)
}

// Run drives the frame loop until the surface closes or ctx is cancelled.
// poll runs before every frame on the render thread.
func (r *Renderer) Run(ctx context.Context, poll func()) error {
	log.Println("Starting interactive render loop...")
	for !r.context.ShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if poll != nil {
			guard(poll)
		}
		r.Tick()
		// Input callbacks run inside EndFrame and may rebuild.
		guard(r.context.EndFrame)
	}
	return nil
}

// Shutdown releases the current program. The context itself is shut down by its owner.
func (r *Renderer) Shutdown() {
	if r.current != nil {
		r.current.release(r.driver)
		r.current = nil
	}
}

func guard(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Recovered from failed frame hook: %v", rec)
		}
	}()
	fn()
}
