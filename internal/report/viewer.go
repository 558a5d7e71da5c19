package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

// Viewer shows a rendered chart and returns once the user dismisses it.
type Viewer interface {
	View(ctx context.Context, path string) error
}

// SystemViewer opens the chart with the platform's default application and
// blocks until a line is read from In.
type SystemViewer struct {
	In   io.Reader
	Out  io.Writer
	Open func(ctx context.Context, path string) error
}

// NewSystemViewer creates a viewer bound to stdin/stderr.
func NewSystemViewer() *SystemViewer {
	return &SystemViewer{
		In:   os.Stdin,
		Out:  os.Stderr,
		Open: openWithSystem,
	}
}

// View opens path and waits for Enter or context cancellation.
func (v *SystemViewer) View(ctx context.Context, path string) error {
	open := v.Open
	if open == nil {
		open = openWithSystem
	}
	if err := open(ctx, path); err != nil {
		return fmt.Errorf("failed to open chart viewer: %w", err)
	}

	fmt.Fprintf(v.Out, "Showing %s, press Enter to continue...\n", path)

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(v.In).ReadString('\n')
		if err == io.EOF {
			err = nil
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func openWithSystem(ctx context.Context, path string) error {
	name, args := openCommand(runtime.GOOS, path)
	return exec.CommandContext(ctx, name, args...).Run()
}

func openCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}
