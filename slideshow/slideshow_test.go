package slideshow

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateIndexStaysInBounds(t *testing.T) {
	for n := 1; n <= 7; n++ {
		var s State
		images := make([]string, n)
		for i := range images {
			images[i] = filepath.Join("img", string(rune('a'+i))+".jpg")
		}
		s.Load(images)
		s.Start()
		for step := 0; step < 50; step++ {
			cur, ok := s.Current()
			require.True(t, ok)
			assert.Equal(t, images[s.Index()], cur)
			assert.GreaterOrEqual(t, s.Index(), 0)
			assert.Less(t, s.Index(), n)
			s.Advance()
		}
	}
}

func TestStateWraps(t *testing.T) {
	var s State
	s.Load([]string{"a", "b", "c"})
	s.Start()
	s.Advance()
	s.Advance()
	s.Advance()
	assert.Equal(t, 0, s.Index())
}

func TestStateReloadClampsIndex(t *testing.T) {
	var s State
	s.Load([]string{"a", "b", "c", "d"})
	s.Start()
	s.Advance()
	s.Advance()
	s.Advance()
	require.Equal(t, 3, s.Index())

	s.Load([]string{"x", "y"})
	assert.Equal(t, 0, s.Index())

	s.Advance()
	s.Load([]string{"p", "q", "r"})
	assert.Equal(t, 1, s.Index())
}

func TestStateEmpty(t *testing.T) {
	var s State
	_, ok := s.Current()
	assert.False(t, ok)
	s.Advance()
	assert.Equal(t, 0, s.Index())
}

func TestStateRunning(t *testing.T) {
	var s State
	assert.False(t, s.Running())
	s.Start()
	assert.True(t, s.Running())
	s.Stop()
	assert.False(t, s.Running())
}

func TestFit(t *testing.T) {
	cases := []struct {
		name                   string
		imgW, imgH, scrW, scrH int
		wantW, wantH           int
	}{
		{"portrait on landscape", 600, 800, 1920, 1080, 810, 1080},
		{"panorama on landscape", 4000, 1000, 1920, 1080, 1920, 480},
		{"same ratio", 1280, 720, 1920, 1080, 1920, 1080},
		{"upscale small", 100, 100, 800, 600, 600, 600},
		{"degenerate", 0, 100, 800, 600, 0, 0},
	}
	for _, tc := range cases {
		w, h := Fit(tc.imgW, tc.imgH, tc.scrW, tc.scrH)
		assert.Equal(t, tc.wantW, w, tc.name)
		assert.Equal(t, tc.wantH, h, tc.name)
	}
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestScale(t *testing.T) {
	scaled := Scale(solid(40, 20, color.RGBA{R: 255, A: 255}), 100, 100)
	assert.Equal(t, 100, scaled.Bounds().Dx())
	assert.Equal(t, 50, scaled.Bounds().Dy())
}

func writeTestPNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, solid(8, 8, color.RGBA{G: 255, A: 255})))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	writeTestPNG(t, good)

	img, err := Load(good)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	bad := filepath.Join(dir, "bad.jpg")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.jpg"))
	assert.Error(t, err)
}

func TestTerminalDisplay(t *testing.T) {
	d := NewTerminalDisplay()
	d.SetSize(20, 10)

	w, h := d.Size()
	assert.Equal(t, 20, w)
	assert.Equal(t, 20, h)

	require.NoError(t, d.Show(context.Background(), solid(10, 10, color.RGBA{B: 255, A: 255})))
	frame := d.Frame()
	assert.Contains(t, frame, "▀")
	assert.Contains(t, frame, "\x1b[38;2;")
	assert.Len(t, strings.Split(frame, "\n"), 10)

	d.Clear()
	assert.Empty(t, d.Frame())
}

func TestTerminalDisplayWithoutArea(t *testing.T) {
	d := NewTerminalDisplay()
	d.SetSize(0, 0)
	assert.Error(t, d.Show(context.Background(), solid(2, 2, color.Black)))
}

type fixedResolver struct {
	w, h int
	err  error
}

func (f fixedResolver) Resolution(ctx context.Context) (int, int, error) {
	return f.w, f.h, f.err
}

func TestImvDisplay(t *testing.T) {
	dir := t.TempDir()
	d, err := NewImvDisplay(context.Background(), dir, fixedResolver{w: 64, h: 48})
	require.NoError(t, err)

	var started [][]string
	var msgs [][]string
	d.kill = func(ctx context.Context) error { return nil }
	d.start = func(args ...string) (*os.Process, error) {
		started = append(started, args)
		return &os.Process{Pid: 4242}, nil
	}
	d.msg = func(ctx context.Context, args ...string) error {
		msgs = append(msgs, args)
		return nil
	}

	w, h := d.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)

	require.NoError(t, d.Show(context.Background(), solid(10, 10, color.White)))
	require.NoError(t, d.Show(context.Background(), solid(10, 10, color.Black)))

	require.Len(t, started, 1)
	assert.Equal(t, filepath.Join(dir, "frame-0.png"), started[0][len(started[0])-1])
	assert.Equal(t, [][]string{
		{"4242", "close", "all"},
		{"4242", "open", filepath.Join(dir, "frame-1.png")},
	}, msgs)

	img, err := Load(filepath.Join(dir, "frame-1.png"))
	require.NoError(t, err)
	assert.Equal(t, 48, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())
}

func TestImvDisplayRestartsAfterMsgFailure(t *testing.T) {
	d, err := NewImvDisplay(context.Background(), t.TempDir(), fixedResolver{err: errors.New("no wlr-randr")})
	require.NoError(t, err)

	w, h := d.Size()
	assert.Equal(t, defaultScreenWidth, w)
	assert.Equal(t, defaultScreenHeight, h)

	starts := 0
	d.kill = func(ctx context.Context) error { return nil }
	d.start = func(args ...string) (*os.Process, error) {
		starts++
		return &os.Process{Pid: 1}, nil
	}
	d.msg = func(ctx context.Context, args ...string) error { return errors.New("imv gone") }

	require.NoError(t, d.Show(context.Background(), solid(4, 4, color.White)))
	assert.Error(t, d.Show(context.Background(), solid(4, 4, color.White)))
	require.NoError(t, d.Show(context.Background(), solid(4, 4, color.White)))
	assert.Equal(t, 2, starts)
}

func TestDisplayShowHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	term := NewTerminalDisplay()
	term.SetSize(20, 10)
	assert.ErrorIs(t, term.Show(ctx, solid(4, 4, color.White)), context.Canceled)
	assert.Empty(t, term.Frame())

	d, err := NewImvDisplay(context.Background(), t.TempDir(), fixedResolver{w: 64, h: 48})
	require.NoError(t, err)
	starts := 0
	d.kill = func(ctx context.Context) error { return nil }
	d.start = func(args ...string) (*os.Process, error) {
		starts++
		return &os.Process{Pid: 7}, nil
	}
	var msgCtx context.Context
	d.msg = func(ctx context.Context, args ...string) error {
		msgCtx = ctx
		return nil
	}

	assert.ErrorIs(t, d.Show(ctx, solid(4, 4, color.White)), context.Canceled)
	assert.Equal(t, 0, starts)

	live, stop := context.WithCancel(context.Background())
	defer stop()
	require.NoError(t, d.Show(live, solid(4, 4, color.White)))
	require.NoError(t, d.Show(live, solid(4, 4, color.Black)))
	assert.Equal(t, 1, starts)
	require.NotNil(t, msgCtx)
	stop()
	assert.ErrorIs(t, msgCtx.Err(), context.Canceled)
}
