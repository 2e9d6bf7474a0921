package ui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
)

func (a *App) loadImages(purpose loadPurpose) tea.Cmd {
	return loadImagesCmd(a.library, purpose, a.settings.ShuffleEnabled, a.rng.Int63())
}

func (a *App) handleImagesLoaded(msg imagesLoadedMsg) tea.Cmd {
	if msg.err != nil {
		slog.Error("unable to load local images", "error", msg.err)
	}

	if msg.purpose == reload {
		a.state.Slideshow.Load(msg.images)
		slog.Info("reloaded local images", "count", len(msg.images))
		return nil
	}

	a.busy = false
	if msg.purpose == startOffline && len(msg.images) == 0 {
		a.showMenu()
		a.setError("No images found locally. Please download images first.")
		return nil
	}
	a.state.Slideshow.Load(msg.images)
	return a.startSlideshow()
}

func (a *App) startSlideshow() tea.Cmd {
	notice := a.notice
	a.notice = ""
	if a.state.Slideshow.Len() == 0 {
		a.showMenu()
		a.setError("No images found. Please add images to the folder.")
		return nil
	}

	a.setView(ViewSlideshow)
	if notice != "" {
		a.setError(notice)
	}

	a.state.Slideshow.Start()
	a.showGen++
	slog.Info("starting slideshow", "images", a.state.Slideshow.Len(), "online", a.state.Online)

	cmds := []tea.Cmd{a.showCurrent()}
	if a.state.Online {
		a.pollGen++
		cmds = append(cmds, pollAfter(a.settings.PollInterval(), a.pollGen))
	}
	return tea.Batch(cmds...)
}

// stopSlideshow invalidates every armed timer and clears the screen
func (a *App) stopSlideshow() tea.Cmd {
	a.state.Slideshow.Stop()
	a.showGen++
	a.pollGen++
	a.state.Shown = ""
	if a.display == nil {
		return nil
	}
	return closeDisplayCmd(a.display)
}

func (a *App) showCurrent() tea.Cmd {
	path, ok := a.state.Slideshow.Current()
	if !ok {
		return nil
	}
	return showFrameCmd(a.ctx, a.display, a.showGen, path)
}

func (a *App) handleFrameShown(msg frameShownMsg) tea.Cmd {
	if msg.gen != a.showGen || !a.state.Slideshow.Running() {
		// the frame landed after the slideshow stopped, take it down again
		if !a.state.Slideshow.Running() && a.display != nil {
			return closeDisplayCmd(a.display)
		}
		return nil
	}

	a.state.Slideshow.Advance()
	if msg.err != nil {
		slog.Warn("error showing image, skipping", "path", msg.path, "error", msg.err)
		return advanceAfter(skipDelay, msg.gen)
	}
	a.state.Shown = msg.path
	return advanceAfter(a.settings.SlideshowDelay(), msg.gen)
}

// polling reports whether the scheduled poll should keep running
func (a *App) polling() bool {
	return a.state.Slideshow.Running() && a.state.Online && a.state.Session != nil
}

func (a *App) pollNow(scheduled bool) tea.Cmd {
	if a.state.Session == nil || a.poller == nil {
		return nil
	}
	return pollCmd(a.ctx, a.poller, a.state.Session.Token, a.pollGen, scheduled, false)
}

func (a *App) handlePolled(msg polledMsg) tea.Cmd {
	a.state.LastPoll = msg.at
	a.state.LastPollErr = msg.err
	if msg.err != nil {
		slog.Warn("error checking for new images", "error", msg.err)
	} else if a.state.View == ViewSlideshow {
		// the service answered, an earlier connection error no longer applies
		a.state.Message = ""
		a.state.IsError = false
	}

	if msg.start {
		// the start load picks up whatever the poll wrote, and arms the regular poll
		if msg.err != nil {
			a.notice = describeError(msg.err)
		}
		return a.loadImages(startOnline)
	}

	var cmds []tea.Cmd
	if len(msg.added) > 0 {
		cmds = append(cmds, a.loadImages(reload))
	}
	if msg.scheduled && msg.gen == a.pollGen && a.polling() {
		cmds = append(cmds, pollAfter(a.settings.PollInterval(), a.pollGen))
	}
	return tea.Batch(cmds...)
}

func (a *App) updateSlideshow(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() != "esc" {
			return nil
		}
	case tea.MouseMsg:
		if !isLeftPress(msg) {
			return nil
		}
	default:
		return nil
	}
	slog.Info("slideshow stopped")
	cmd := a.stopSlideshow()
	a.showMenu()
	return cmd
}
