package camera

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os/exec"
	"strconv"
	"sync"

	"github.com/cjeanneret/BoothGo/internal/debug"
)

// maxFrameBytes bounds a single MJPEG frame read from the capture process.
const maxFrameBytes = 16 << 20

// RPiCam reads an MJPEG stream from the Raspberry Pi camera stack
// (rpicam-vid / libcamera-vid writing to stdout).
//
// The process is started by Open and keeps running until Close; the most
// recent JPEG frame is kept in memory for both the live preview and stills.
type RPiCam struct {
	command   string
	width     int
	height    int
	framerate int

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	latest []byte
	seq    uint64
	err    error
}

// NewRPiCam creates a camera that runs command (e.g. "rpicam-vid").
func NewRPiCam(command string, width, height, framerate int) *RPiCam {
	return &RPiCam{
		command:   command,
		width:     width,
		height:    height,
		framerate: framerate,
	}
}

func (c *RPiCam) args() []string {
	return []string{
		"-t", "0",
		"-n",
		"--codec", "mjpeg",
		"--width", strconv.Itoa(c.width),
		"--height", strconv.Itoa(c.height),
		"--framerate", strconv.Itoa(c.framerate),
		"-o", "-",
	}
}

func (c *RPiCam) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return nil
	}
	procCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.latest = nil
	c.err = nil
	c.mu.Unlock()

	cmd := exec.CommandContext(procCtx, c.command, c.args()...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		c.reset()
		return fmt.Errorf("camera stdout pipe: %w", err)
	}
	debug.Info("Camera: starting %s %v", c.command, c.args())
	if err := cmd.Start(); err != nil {
		c.reset()
		return fmt.Errorf("start %s: %w", c.command, err)
	}

	first := make(chan struct{})
	go c.readLoop(cmd, stdout, first)

	select {
	case <-first:
		debug.Verbose("Camera: first frame received")
		return nil
	case <-c.done:
		c.mu.Lock()
		err := c.err
		c.mu.Unlock()
		c.reset()
		if err == nil {
			err = errors.New("camera process exited before the first frame")
		}
		return err
	case <-ctx.Done():
		_ = c.Close()
		return ctx.Err()
	}
}

func (c *RPiCam) readLoop(cmd *exec.Cmd, stdout io.Reader, first chan struct{}) {
	done := c.done
	defer close(done)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 1<<20), maxFrameBytes)
	scanner.Split(splitJPEG)

	signalled := false
	for scanner.Scan() {
		frame := append([]byte(nil), scanner.Bytes()...)
		c.mu.Lock()
		c.latest = frame
		c.seq++
		c.mu.Unlock()
		if !signalled {
			close(first)
			signalled = true
		}
	}

	err := scanner.Err()
	if waitErr := cmd.Wait(); err == nil {
		err = waitErr
	}
	if err != nil {
		debug.Error(fmt.Errorf("camera stream ended: %w", err))
	}
	c.mu.Lock()
	c.err = err
	c.latest = nil
	c.mu.Unlock()
}

func (c *RPiCam) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = nil
}

func (c *RPiCam) Frame() (image.Image, error) {
	data, _, ok := c.Latest()
	if !ok {
		return nil, ErrNotOpen
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode camera frame: %w", err)
	}
	return img, nil
}

func (c *RPiCam) Latest() ([]byte, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil || c.latest == nil {
		return nil, 0, false
	}
	return c.latest, c.seq, true
}

func (c *RPiCam) Close() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.mu.Unlock()
	if cancel == nil {
		return nil
	}
	debug.Verbose("Camera: stopping %s", c.command)
	cancel()
	<-done
	return nil
}

var (
	jpegSOI = []byte{0xFF, 0xD8}
	jpegEOI = []byte{0xFF, 0xD9}
)

// splitJPEG is a bufio.SplitFunc yielding one complete JPEG (SOI..EOI) per
// token. Bytes before an SOI marker are discarded.
func splitJPEG(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := bytes.Index(data, jpegSOI)
	if start < 0 {
		if atEOF {
			return len(data), nil, nil
		}
		// Keep a trailing 0xFF that may start the next marker.
		if n := len(data); n > 0 && data[n-1] == 0xFF {
			return n - 1, nil, nil
		}
		return len(data), nil, nil
	}
	end := bytes.Index(data[start+2:], jpegEOI)
	if end < 0 {
		if atEOF {
			return len(data), nil, nil
		}
		return start, nil, nil
	}
	stop := start + 2 + end + 2
	return stop, data[start:stop], nil
}
