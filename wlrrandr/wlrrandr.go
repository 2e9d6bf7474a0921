// Package wlrrandr inspects and toggles the frame's screen through wlr-randr
package wlrrandr

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

const OutputName = "HDMI-A-1"

type Output struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Make         string       `json:"make"`
	Model        string       `json:"model"`
	Serial       string       `json:"serial"`
	PhysicalSize PhysicalSize `json:"physical_size"`
	Enabled      bool         `json:"enabled"`
	Modes        []Mode       `json:"modes"`
	Position     Position     `json:"position"`
	Transform    string       `json:"transform"`
	Scale        float64      `json:"scale"`
	AdaptiveSync bool         `json:"adaptive_sync"`
}

type PhysicalSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Mode struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Refresh   float64 `json:"refresh"`
	Preferred bool    `json:"preferred"`
	Current   bool    `json:"current"`
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Screen is one wlr-randr output
type Screen struct {
	Output string

	// run executes wlr-randr, replaced in tests
	run func(ctx context.Context, args ...string) ([]byte, error)
}

func NewScreen(output string) *Screen {
	if output == "" {
		output = OutputName
	}
	return &Screen{Output: output, run: runWlrRandr}
}

func runWlrRandr(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "wlr-randr", args...).Output()
}

func (s *Screen) inspect(ctx context.Context) (*Output, error) {
	out, err := s.run(ctx, "--output", s.Output, "--json")
	if err != nil {
		return nil, fmt.Errorf("failed to run wlr-randr: %w", err)
	}
	return findOutput(out, s.Output)
}

func findOutput(data []byte, name string) (*Output, error) {
	var results []Output
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wlr-randr output: %w", err)
	}

	for i := range results {
		if results[i].Name == name {
			return &results[i], nil
		}
	}
	return nil, fmt.Errorf("output %s not found", name)
}

// Enabled reports whether the output is on
func (s *Screen) Enabled(ctx context.Context) (bool, error) {
	output, err := s.inspect(ctx)
	if err != nil {
		return false, err
	}
	return output.Enabled, nil
}

// SetEnabled turns the output on or off
func (s *Screen) SetEnabled(ctx context.Context, enabled bool) error {
	arg := "--off"
	if enabled {
		arg = "--on"
	}
	if _, err := s.run(ctx, "--output", s.Output, arg); err != nil {
		return fmt.Errorf("failed to run wlr-randr: %w", err)
	}
	return nil
}

// Resolution returns the pixel size of the current mode, taking a 90 or 270 degree transform
// into account
func (s *Screen) Resolution(ctx context.Context) (int, int, error) {
	output, err := s.inspect(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, mode := range output.Modes {
		if !mode.Current {
			continue
		}
		switch output.Transform {
		case "90", "270", "flipped-90", "flipped-270":
			return mode.Height, mode.Width, nil
		}
		return mode.Width, mode.Height, nil
	}
	return 0, 0, fmt.Errorf("output %s has no current mode", s.Output)
}
