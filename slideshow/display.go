package slideshow

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Display puts a frame on the screen
type Display interface {
	// Size is the pixel area frames are scaled to
	Size() (int, int)
	// Show scales img to Size and displays it
	Show(ctx context.Context, img image.Image) error
	Close() error
}

// TerminalDisplay renders frames as half-block characters: each cell carries two vertically
// stacked pixels, the upper one as foreground and the lower one as background colour. The UI reads
// the rendered frame through Frame.
type TerminalDisplay struct {
	mu    sync.Mutex
	cols  int
	rows  int
	frame string
}

func NewTerminalDisplay() *TerminalDisplay {
	return &TerminalDisplay{cols: 80, rows: 24}
}

// SetSize records the terminal size in cells
func (t *TerminalDisplay) SetSize(cols, rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cols, t.rows = cols, rows
}

func (t *TerminalDisplay) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cols, t.rows * 2
}

func (t *TerminalDisplay) Show(ctx context.Context, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w, h := t.Size()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("terminal has no drawable area")
	}
	scaled := Scale(img, w, h)
	rendered := renderHalfBlocks(scaled)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.frame = lipgloss.Place(t.cols, t.rows, lipgloss.Center, lipgloss.Center, rendered,
		lipgloss.WithWhitespaceBackground(lipgloss.Color("#000000")))
	return nil
}

// Frame returns the last rendered frame
func (t *TerminalDisplay) Frame() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frame
}

// Clear drops the last frame so a stale image is not shown when the slideshow restarts
func (t *TerminalDisplay) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frame = ""
}

func (t *TerminalDisplay) Close() error {
	t.Clear()
	return nil
}

func renderHalfBlocks(img *image.RGBA) string {
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			top := img.RGBAAt(x, y)
			bottom := top
			if y+1 < b.Max.Y {
				bottom = img.RGBAAt(x, y+1)
			}
			// 24-bit colour escapes, one cell per call to keep lipgloss out of the hot loop
			fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				top.R, top.G, top.B, bottom.R, bottom.G, bottom.B)
		}
		sb.WriteString("\x1b[0m")
	}
	return sb.String()
}
