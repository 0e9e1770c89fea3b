package processing

import (
	"image"
	"sync"

	"petvision/internal/models"
)

// Frame is one redraw: the annotated image and what went into it.
type Frame struct {
	Image  image.Image
	Counts models.Counts
	Drawn  []models.Detection
	// Notice is the "nothing found" message for the active mode, empty when
	// something relevant was found or no result has arrived yet.
	Notice string
	// Pending is set while the current picture has no detection result.
	Pending bool
}

// Session holds the display state: the source picture, the last detection
// result and the active mode. The display image is always recomputed from them.
type Session struct {
	mu sync.RWMutex

	renderer *Renderer

	original   image.Image
	detections []models.Detection
	hasResult  bool
	mode       models.Mode
}

func NewSession(renderer *Renderer) *Session {
	if renderer == nil {
		renderer = NewRenderer()
	}

	return &Session{
		renderer: renderer,
		mode:     models.DefaultMode,
	}
}

// Load replaces the source picture and drops detections made for the previous one.
func (s *Session) Load(img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.original = img
	s.detections = nil
	s.hasResult = false
}

// SetDetections replaces the detection list wholesale.
func (s *Session) SetDetections(dets []models.Detection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.detections = append([]models.Detection(nil), dets...)
	s.hasResult = true
}

func (s *Session) Detections() []models.Detection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Detection(nil), s.detections...)
}

func (s *Session) SetMode(m models.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

func (s *Session) Mode() models.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

func (s *Session) HasImage() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.original != nil
}

// Redraw renders the current state. It reports false when no picture is loaded.
func (s *Session) Redraw() (Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.original == nil {
		return Frame{}, false
	}

	if !s.hasResult {
		return Frame{Image: s.original, Pending: true}, true
	}

	img, drawn := s.renderer.Annotate(s.original, s.detections, s.mode)
	counts := models.Tally(s.detections)

	frame := Frame{
		Image:  img,
		Counts: counts,
		Drawn:  drawn,
	}
	if counts.NoneFor(s.mode) {
		frame.Notice = s.mode.Notice()
	}

	return frame, true
}
