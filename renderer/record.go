package renderer

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// FrameSink receives tightly packed RGBA frames, bottom row first.
type FrameSink interface {
	WriteFrame(pixels []byte) error
}

// Record renders frames offscreen at a fixed time step of 1/fps seconds and
// hands each one to sink. The live clock is not touched.
func (r *Renderer) Record(ctx context.Context, frames, fps, width, height int, sink FrameSink) error {
	if r.current == nil {
		return errors.New("no program to record")
	}
	if fps <= 0 || width <= 0 || height <= 0 {
		return fmt.Errorf("invalid recording format %dx%d@%d", width, height, fps)
	}

	target, err := r.driver.NewTarget(width, height)
	if err != nil {
		return fmt.Errorf("failed to create offscreen target: %w", err)
	}
	defer r.driver.DeleteTarget(target)
	r.driver.BindTarget(target)
	defer r.driver.BindTarget(0)

	pixels := make([]byte, width*height*4)
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.renderFrame(width, height, float64(i)/float64(fps))
		r.driver.ReadPixels(width, height, pixels)
		if err := sink.WriteFrame(pixels); err != nil {
			return fmt.Errorf("failed to write frame %d: %w", i, err)
		}
		if (i+1)%fps == 0 {
			log.Printf("Recorded %d/%d frames", i+1, frames)
		}
	}
	return nil
}
