package camera

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"sync"

	"github.com/ZuhairGhias/joycam/internal/debug"
)

// StillCommand captures frames by running an external still-capture binary
// (libcamera-still, raspistill, fswebcam...) and reading the encoded image
// from its stdout.
//
// The command is invoked as:
//
//	<command> [args...] --width W --height H -o -
//
// which matches the libcamera-still / raspistill CLI.
type StillCommand struct {
	command string
	args    []string
	width   int
	height  int

	// The handle is shared between the capture service and the live
	// feed; the camera device only supports one still process at a time.
	mu sync.Mutex
}

// NewStillCommand creates a command-backed camera.
func NewStillCommand(command string, args []string, width, height int) (*StillCommand, error) {
	if command == "" {
		return nil, fmt.Errorf("camera.command is required for still_command")
	}
	if _, err := exec.LookPath(command); err != nil {
		return nil, fmt.Errorf("still command not found: %w", err)
	}
	return &StillCommand{
		command: command,
		args:    args,
		width:   width,
		height:  height,
	}, nil
}

func (c *StillCommand) Capture() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	args := append(append([]string{}, c.args...),
		"--width", strconv.Itoa(c.width),
		"--height", strconv.Itoa(c.height),
		"-o", "-",
	)
	debug.Printf("Camera: running %s %v", c.command, args)

	var out, stderr bytes.Buffer
	cmd := exec.Command(c.command, args...)
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("still command failed: %w (%s)", err, bytes.TrimSpace(stderr.Bytes()))
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("still command produced no image data")
	}
	return out.Bytes(), nil
}
