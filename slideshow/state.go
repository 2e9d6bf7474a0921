// Package slideshow holds the playlist state, frame scaling and the backends that put a frame on
// the screen
package slideshow

// State is the playlist of the running slideshow. When images is non-empty index is always
// within [0, len(images)-1].
type State struct {
	images  []string
	index   int
	running bool
}

// Load replaces the playlist, e.g. after a reshuffle. The position is kept when still in range.
func (s *State) Load(images []string) {
	s.images = images
	if s.index >= len(images) {
		s.index = 0
	}
}

// Start rewinds to the first image and marks the slideshow as running
func (s *State) Start() {
	s.index = 0
	s.running = true
}

func (s *State) Stop() {
	s.running = false
}

func (s *State) Running() bool {
	return s.running
}

func (s *State) Len() int {
	return len(s.images)
}

func (s *State) Index() int {
	return s.index
}

func (s *State) Images() []string {
	return s.images
}

// Current returns the image to show, false when the playlist is empty
func (s *State) Current() (string, bool) {
	if len(s.images) == 0 {
		return "", false
	}
	return s.images[s.index], true
}

// Advance moves to the next image, wrapping at the end
func (s *State) Advance() {
	if len(s.images) == 0 {
		s.index = 0
		return
	}
	s.index = (s.index + 1) % len(s.images)
}
