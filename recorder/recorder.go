package recorder

import (
	"fmt"
	"io"
	"log"
	"os/exec"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Recorder pipes raw RGBA frames into an ffmpeg process that encodes them to a
// video file. It implements renderer.FrameSink.
type Recorder struct {
	width      int
	height     int
	fps        int
	output     string
	ffmpegPath string
	cmd        *exec.Cmd
	pipeWriter io.WriteCloser
	done       chan error
}

// New prepares a recorder; nothing runs until Start.
func New(width, height, fps int, output, ffmpegPath string) *Recorder {
	return &Recorder{
		width:      width,
		height:     height,
		fps:        fps,
		output:     output,
		ffmpegPath: ffmpegPath,
	}
}

// command builds the ffmpeg invocation reading from input.
func (r *Recorder) command(input io.Reader) *exec.Cmd {
	stream := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", r.width, r.height),
		"r":       strconv.Itoa(r.fps),
	}).Output(r.output, ffmpeg.KwArgs{
		// GL rows arrive bottom first.
		"vf":      "vflip",
		"pix_fmt": "yuv420p",
	}).OverWriteOutput().WithInput(input).ErrorToStdOut()

	if r.ffmpegPath != "" {
		stream.SetFfmpegPath(r.ffmpegPath)
	}
	return stream.Compile()
}

// Start launches ffmpeg.
func (r *Recorder) Start() error {
	pipeReader, pipeWriter := io.Pipe()
	r.pipeWriter = pipeWriter
	r.cmd = r.command(pipeReader)
	r.done = make(chan error, 1)
	// Stdin copying can't be interrupted once ffmpeg is gone.
	r.cmd.WaitDelay = time.Second

	if err := r.cmd.Start(); err != nil {
		pipeWriter.Close()
		r.pipeWriter = nil
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	log.Printf("Recording %dx%d@%d to %s", r.width, r.height, r.fps, r.output)

	go func() {
		err := r.cmd.Wait()
		// Unblock a writer if ffmpeg exits early.
		pipeReader.CloseWithError(io.ErrClosedPipe)
		r.done <- err
	}()
	return nil
}

// WriteFrame sends one frame of width*height*4 bytes.
func (r *Recorder) WriteFrame(pixels []byte) error {
	if want := r.width * r.height * 4; len(pixels) != want {
		return fmt.Errorf("frame is %d bytes, want %d", len(pixels), want)
	}
	if r.pipeWriter == nil {
		return fmt.Errorf("recorder not started")
	}
	_, err := r.pipeWriter.Write(pixels)
	return err
}

// Stop closes the input and waits for ffmpeg to finish the file.
func (r *Recorder) Stop() error {
	if r.pipeWriter == nil {
		return nil
	}
	r.pipeWriter.Close()
	r.pipeWriter = nil
	if err := <-r.done; err != nil {
		return fmt.Errorf("ffmpeg finished with error: %w", err)
	}
	log.Printf("Successfully rendered to %s", r.output)
	return nil
}
