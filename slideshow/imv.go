package slideshow

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

const (
	defaultScreenWidth  = 1920
	defaultScreenHeight = 1080
)

// Resolver reports the pixel size of the screen
type Resolver interface {
	Resolution(ctx context.Context) (int, int, error)
}

// ImvDisplay shows frames full screen with imv-wayland. Each frame is written to one of two
// alternating files under dir and handed to the running viewer through imv-msg.
type ImvDisplay struct {
	dir    string
	width  int
	height int

	mu   sync.Mutex
	pid  int
	proc *os.Process
	next int

	// command hooks, replaced in tests
	kill  func(ctx context.Context) error
	start func(args ...string) (*os.Process, error)
	msg   func(ctx context.Context, args ...string) error
}

func NewImvDisplay(ctx context.Context, dir string, screen Resolver) (*ImvDisplay, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create frame directory: %w", err)
	}

	width, height := defaultScreenWidth, defaultScreenHeight
	if screen != nil {
		ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		w, h, err := screen.Resolution(ctx)
		cancel()
		if err != nil {
			slog.Warn("unable to read screen resolution, using default", "width", width, "height", height, "error", err)
		} else {
			width, height = w, h
		}
	}

	return &ImvDisplay{
		dir:    dir,
		width:  width,
		height: height,
		kill:   killImvWayland,
		start:  startImvWayland,
		msg:    imvMsg,
	}, nil
}

func (d *ImvDisplay) Size() (int, int) {
	return d.width, d.height
}

// Show hands the frame to the viewer. The viewer process itself outlives ctx, only the commands
// issued for this frame are bound to it.
func (d *ImvDisplay) Show(ctx context.Context, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	scaled := Scale(img, d.width, d.height)

	d.mu.Lock()
	defer d.mu.Unlock()

	framePath := filepath.Join(d.dir, "frame-"+strconv.Itoa(d.next)+".png")
	d.next = 1 - d.next
	if err := writePNG(framePath, scaled); err != nil {
		return err
	}

	if d.proc == nil {
		// a viewer left behind by a previous run would sit on top of ours
		if err := d.kill(ctx); err != nil {
			slog.Debug("error killing imv-wayland", "error", err)
		}
		proc, err := d.start("-f", "-s", "none", "-b", "000000", framePath)
		if err != nil {
			return fmt.Errorf("failed to start imv-wayland: %w", err)
		}
		d.proc = proc
		d.pid = proc.Pid
		slog.Info("started imv-wayland slideshow", "pid", d.pid)
		return nil
	}

	pid := strconv.Itoa(d.pid)
	if err := d.msg(ctx, pid, "close", "all"); err != nil {
		d.proc = nil
		return fmt.Errorf("failed to clear imv-wayland: %w", err)
	}
	if err := d.msg(ctx, pid, "open", framePath); err != nil {
		d.proc = nil
		return fmt.Errorf("failed to open frame in imv-wayland: %w", err)
	}
	return nil
}

func (d *ImvDisplay) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.proc == nil {
		return nil
	}
	err := d.proc.Kill()
	d.proc = nil
	return err
}

func writePNG(path string, img image.Image) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("unable to create frame file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("unable to encode frame: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to close frame file: %w", err)
	}
	return os.Rename(tmp, path)
}

func killImvWayland(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "pkill", "imv-wayland")
	if err := cmd.Run(); err != nil {
		// pkill returns error if no process found, which is fine
		return fmt.Errorf("imv-wayland not running or already killed, %w", err)
	}
	return nil
}

func startImvWayland(args ...string) (*os.Process, error) {
	cmd := exec.Command("/usr/bin/imv-wayland", args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	// reap the viewer when it exits so it does not linger as a zombie
	go cmd.Wait()
	return cmd.Process, nil
}

func imvMsg(ctx context.Context, args ...string) error {
	return exec.CommandContext(ctx, "imv-msg", args...).Run()
}
