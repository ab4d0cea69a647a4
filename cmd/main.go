package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/goshaderedit/editor"
	"github.com/richinsley/goshaderedit/gldriver"
	"github.com/richinsley/goshaderedit/glfwcontext"
	"github.com/richinsley/goshaderedit/graphics"
	"github.com/richinsley/goshaderedit/options"
	"github.com/richinsley/goshaderedit/renderer"
	"github.com/richinsley/goshaderedit/shader"
	"github.com/richinsley/goshaderedit/translator"
	"github.com/spf13/cobra"
)

var opts = &options.EditorOptions{}

var rootCmd = &cobra.Command{
	Use:   "goshaderedit [shader files...]",
	Short: "Live GLSL vertex/fragment shader editor",
	Long: `Renders a full-screen quad with a vertex and a fragment shader and rebuilds
the program whenever either source changes. Files ending in .vert/.vs load
as the vertex stage and .frag/.fs as the fragment stage.

Keys: Ctrl+S save, Ctrl+C / Ctrl+Shift+C copy fragment / vertex,
Ctrl+V / Ctrl+Shift+V paste fragment / vertex, F5 reload, Esc quit.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := assignFiles(args, opts.VertexFile, opts.FragmentFile); err != nil {
			return err
		}
		return runEditor(opts)
	},
}

func init() {
	runtime.LockOSThread()

	flags := rootCmd.PersistentFlags()
	opts.VertexFile = flags.String("vertex", "", "Vertex shader file (built-in pass-through if empty)")
	opts.FragmentFile = flags.String("fragment", "", "Fragment shader file (built-in color cycle if empty)")
	opts.Width = flags.Int("width", 1280, "Width of the window or recording")
	opts.Height = flags.Int("height", 720, "Height of the window or recording")
	opts.Dialect = flags.String("dialect", translator.DialectWebGL2, "Shader dialect: webgl2 (GLSL ES 3.00) or native (desktop GLSL 4.10)")
	opts.OutDir = rootCmd.Flags().String("outdir", "", "Directory saved shaders are written to (GOSHADEREDIT_OUTDIR env var if not set)")
	opts.Watch = rootCmd.Flags().Bool("watch", true, "Reload shader files when they change on disk")
}

// assignFiles sorts positional files into the vertex and fragment slots by
// extension. Files with an ambiguous extension fill whichever slot is still
// empty, fragment first.
func assignFiles(args []string, vertex, fragment *string) error {
	var ambiguous []string
	for _, path := range args {
		kind, ok := shader.KindFromPath(path)
		if !ok {
			ambiguous = append(ambiguous, path)
			continue
		}
		slot := fragment
		if kind == shader.Vertex {
			slot = vertex
		}
		if *slot != "" {
			return fmt.Errorf("more than one %s shader given: %s and %s", kind, *slot, path)
		}
		*slot = path
	}
	for _, path := range ambiguous {
		switch {
		case *fragment == "":
			*fragment = path
		case *vertex == "":
			*vertex = path
		default:
			return fmt.Errorf("no free shader slot for %s", path)
		}
	}
	return nil
}

// openEditor creates the window-side stack shared by the editor and recorder.
func openEditor(opts *options.EditorOptions, visible bool) (*glfwcontext.Context, *renderer.Renderer, *editor.Editor, error) {
	surface, err := glfwcontext.New(*opts.Width, *opts.Height, "goshaderedit", visible)
	if err != nil {
		return nil, nil, nil, err
	}
	driver, err := gldriver.New(surface)
	if err != nil {
		surface.Shutdown()
		return nil, nil, nil, err
	}
	log.Printf("OpenGL %s", driver.Version())

	tr, err := translator.New(*opts.Dialect)
	if err != nil {
		surface.Shutdown()
		return nil, nil, nil, err
	}

	r := renderer.New(surface, driver, tr)
	outDir := ""
	if opts.OutDir != nil {
		outDir = *opts.OutDir
	}
	if outDir == "" {
		outDir = os.Getenv("GOSHADEREDIT_OUTDIR")
	}
	ed := editor.New(r, surface, outDir)

	files := map[shader.Kind]string{shader.Vertex: *opts.VertexFile, shader.Fragment: *opts.FragmentFile}
	for _, kind := range shader.Kinds {
		if files[kind] == "" {
			continue
		}
		if err := ed.Open(kind, files[kind]); err != nil {
			log.Printf("Using built-in %s shader: %v", kind, err)
		}
	}
	return surface, r, ed, nil
}

func runEditor(opts *options.EditorOptions) error {
	if err := glfwcontext.InitGraphics(); err != nil {
		return err
	}
	defer glfwcontext.TerminateGraphics()

	surface, r, ed, err := openEditor(opts, true)
	if err != nil {
		return err
	}
	defer surface.Shutdown()
	defer r.Shutdown()

	ed.OnRebuild(func(err error) {
		surface.SetTitle(windowTitle(ed.Describe(), err))
	})
	if err := ed.Init(); err != nil {
		log.Printf("Initial build failed, fix the source to start rendering: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *opts.Watch {
		if err := ed.Watch(ctx); err != nil {
			log.Printf("Not watching shader files: %v", err)
		}
	}
	bindKeys(surface, ed)

	if err := r.Run(ctx, ed.Drain); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// windowTitle shows what is being edited and whether the last build failed.
func windowTitle(source string, err error) string {
	title := "goshaderedit - " + source
	if err != nil {
		title += " [build failed, showing last good program]"
	}
	return title
}

func bindKeys(surface *glfwcontext.Context, ed *editor.Editor) {
	// Ctrl on Linux and Windows, Cmd on macOS.
	for _, mod := range []glfw.ModifierKey{glfw.ModControl, glfw.ModSuper} {
		surface.RegisterKeyCallback(glfw.KeyS, mod, func() {
			for _, kind := range shader.Kinds {
				if _, err := ed.Save(kind); err != nil {
					log.Printf("Save failed: %v", err)
				}
			}
		})
		surface.RegisterKeyCallback(glfw.KeyC, mod, func() { ed.Copy(shader.Fragment) })
		surface.RegisterKeyCallback(glfw.KeyC, mod|glfw.ModShift, func() { ed.Copy(shader.Vertex) })
		surface.RegisterKeyCallback(glfw.KeyV, mod, func() { ed.Paste(shader.Fragment) })
		surface.RegisterKeyCallback(glfw.KeyV, mod|glfw.ModShift, func() { ed.Paste(shader.Vertex) })
		surface.RegisterKeyCallback(glfw.KeyR, mod, ed.Reload)
	}
	surface.RegisterKeyCallback(glfw.KeyF5, 0, ed.Reload)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, graphics.ErrUnsupportedSurface) {
			fmt.Fprintf(os.Stderr, "This system cannot display OpenGL 4.1 content: %v\n", err)
			os.Exit(2)
		}
		os.Exit(1)
	}
}
