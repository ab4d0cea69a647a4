package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/richinsley/goshaderedit/glfwcontext"
	"github.com/richinsley/goshaderedit/options"
	"github.com/richinsley/goshaderedit/recorder"
	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record [shader files...]",
	Short: "Render the shaders offscreen to a video file with ffmpeg",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := assignFiles(args, opts.VertexFile, opts.FragmentFile); err != nil {
			return err
		}
		return runRecord(opts)
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)

	opts.Duration = recordCmd.Flags().Float64("duration", 10.0, "Duration to record in seconds")
	opts.FPS = recordCmd.Flags().Int("fps", 60, "Frames per second for recording")
	opts.OutputFile = recordCmd.Flags().String("output", "output.mp4", "Output file name for recording")
	opts.FFMPEGPath = recordCmd.Flags().String("ffmpeg", "", "Path to ffmpeg executable (FFMPEG_PATH env var if not set)")
}

func runRecord(opts *options.EditorOptions) error {
	if *opts.FPS <= 0 || *opts.Duration <= 0 {
		return fmt.Errorf("duration and fps must be positive")
	}
	if err := glfwcontext.InitGraphics(); err != nil {
		return err
	}
	defer glfwcontext.TerminateGraphics()

	// The window is hidden; frames go to an offscreen target.
	surface, r, ed, err := openEditor(opts, false)
	if err != nil {
		return err
	}
	defer surface.Shutdown()
	defer r.Shutdown()

	if err := ed.Init(); err != nil {
		return fmt.Errorf("failed to build shaders: %w", err)
	}

	ffmpegPath := *opts.FFMPEGPath
	if ffmpegPath == "" {
		ffmpegPath = os.Getenv("FFMPEG_PATH")
	}
	width, height, fps := *opts.Width, *opts.Height, *opts.FPS
	frames := int(math.Round(*opts.Duration * float64(fps)))

	rec := recorder.New(width, height, fps, *opts.OutputFile, ffmpegPath)
	if err := rec.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("Starting offscreen render loop...")
	recordErr := r.Record(ctx, frames, fps, width, height, rec)
	if err := rec.Stop(); err != nil && recordErr == nil {
		recordErr = err
	}
	if recordErr != nil {
		return fmt.Errorf("offscreen rendering failed: %w", recordErr)
	}
	return nil
}
