package processing

import (
	"testing"

	"petvision/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_NoImage(t *testing.T) {
	s := NewSession(nil)

	_, ok := s.Redraw()
	assert.False(t, ok)
	assert.False(t, s.HasImage())
	assert.Equal(t, models.ModeBoth, s.Mode())
}

func TestSession_PendingUntilResult(t *testing.T) {
	s := NewSession(nil)
	src := grayImage(50, 50)
	s.Load(src)

	frame, ok := s.Redraw()
	require.True(t, ok)
	assert.True(t, frame.Pending)
	assert.Empty(t, frame.Notice)
	assert.Equal(t, src, frame.Image)
}

func TestSession_CountsIgnoreMode(t *testing.T) {
	s := NewSession(nil)
	s.Load(grayImage(100, 100))
	s.SetDetections([]models.Detection{
		{Label: "cat", Confidence: 0.9, X: 1, Y: 20, W: 10, H: 10},
		{Label: "cat", Confidence: 0.8, X: 30, Y: 20, W: 10, H: 10},
		{Label: "dog", Confidence: 0.7, X: 60, Y: 20, W: 10, H: 10},
	})

	for _, mode := range models.ModesList {
		s.SetMode(mode)
		frame, ok := s.Redraw()
		require.True(t, ok)

		assert.Equal(t, models.Counts{Cats: 2, Dogs: 1}, frame.Counts, mode)
		assert.Empty(t, frame.Notice, mode)
		for _, d := range frame.Drawn {
			assert.True(t, mode.Matches(d.Label))
		}
	}

	s.SetMode(models.ModeCat)
	frame, _ := s.Redraw()
	assert.Len(t, frame.Drawn, 2)

	s.SetMode(models.ModeDog)
	frame, _ = s.Redraw()
	assert.Len(t, frame.Drawn, 1)
}

func TestSession_Notice(t *testing.T) {
	tests := []struct {
		name   string
		dets   []models.Detection
		mode   models.Mode
		notice string
	}{
		{"empty both", nil, models.ModeBoth, "No cats or dogs detected!"},
		{"empty cat", []models.Detection{}, models.ModeCat, "No cats detected!"},
		{"dogs only, cat mode", []models.Detection{{Label: "dog"}}, models.ModeCat, "No cats detected!"},
		{"cats only, dog mode", []models.Detection{{Label: "cat"}}, models.ModeDog, "No dogs detected!"},
		{"other labels, both mode", []models.Detection{{Label: "bird"}}, models.ModeBoth, "No cats or dogs detected!"},
		{"cat found, both mode", []models.Detection{{Label: "cat"}}, models.ModeBoth, ""},
		{"dog found, dog mode", []models.Detection{{Label: "dog"}}, models.ModeDog, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(nil)
			s.Load(grayImage(10, 10))
			s.SetDetections(tt.dets)
			s.SetMode(tt.mode)

			frame, ok := s.Redraw()
			require.True(t, ok)
			assert.False(t, frame.Pending)
			assert.Equal(t, tt.notice, frame.Notice)
		})
	}
}

func TestSession_LoadDropsPreviousDetections(t *testing.T) {
	s := NewSession(nil)
	s.Load(grayImage(10, 10))
	s.SetDetections([]models.Detection{{Label: "cat"}})

	s.Load(grayImage(20, 20))
	assert.Empty(t, s.Detections())

	frame, ok := s.Redraw()
	require.True(t, ok)
	assert.True(t, frame.Pending)
	assert.Equal(t, 20, frame.Image.Bounds().Dx())
}

func TestSession_DetectionsAreCopied(t *testing.T) {
	s := NewSession(nil)
	dets := []models.Detection{{Label: "cat"}}
	s.SetDetections(dets)

	dets[0].Label = "dog"
	assert.Equal(t, "cat", s.Detections()[0].Label)

	got := s.Detections()
	got[0].Label = "bird"
	assert.Equal(t, "cat", s.Detections()[0].Label)
}
