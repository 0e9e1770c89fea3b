package models

import (
	"fmt"
	"image"
	"math"
)

const (
	LabelCat = "cat"
	LabelDog = "dog"
)

// Detection is one labeled box returned by the detection service.
// X and Y are the top-left corner, W and H the size in source pixels.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	W          int     `json:"w"`
	H          int     `json:"h"`
}

// DetectionResponse is the service reply. Error is only set on websocket
// replies, where there is no status code to carry a failure.
type DetectionResponse struct {
	Detections []Detection `json:"detections"`
	Error      string      `json:"error,omitempty"`
}

// Rect returns the box in corner form. Far edges saturate instead of wrapping.
func (d Detection) Rect() image.Rectangle {
	return image.Rect(d.X, d.Y, saturatingAdd(d.X, d.W), saturatingAdd(d.Y, d.H))
}

func saturatingAdd(a, b int) int {
	sum := a + b
	switch {
	case b > 0 && sum < a:
		return math.MaxInt
	case b < 0 && sum > a:
		return math.MinInt
	}
	return sum
}

// Caption renders "cat 97.0%".
func (d Detection) Caption() string {
	return fmt.Sprintf("%s %.1f%%", d.Label, d.Confidence*100)
}

type Counts struct {
	Cats int
	Dogs int
}

// Tally counts cats and dogs over the whole list, ignoring any display filter.
func Tally(dets []Detection) Counts {
	var c Counts
	for _, d := range dets {
		switch d.Label {
		case LabelCat:
			c.Cats++
		case LabelDog:
			c.Dogs++
		}
	}
	return c
}

// NoneFor reports whether nothing relevant to mode was found.
func (c Counts) NoneFor(mode Mode) bool {
	switch mode {
	case ModeCat:
		return c.Cats == 0
	case ModeDog:
		return c.Dogs == 0
	default:
		return c.Cats == 0 && c.Dogs == 0
	}
}
