package inference

import (
	"errors"
	"fmt"
	"image"
)

// ErrDecode is returned when the input bytes are not a readable image.
var ErrDecode = errors.New("failed to decode image")

// Prediction is one raw model output. Box uses corner coordinates in source pixels.
type Prediction struct {
	ClassID    int
	Label      string
	Confidence float32
	Box        image.Rectangle
}

// Model runs object detection over encoded image bytes.
type Model interface {
	Predict(imageBytes []byte) ([]Prediction, error)
	Close() error
}

// cocoLabels maps SSD MobileNet COCO class ids to names.
var cocoLabels = map[int]string{
	1:  "person",
	2:  "bicycle",
	3:  "car",
	4:  "motorcycle",
	5:  "airplane",
	6:  "bus",
	7:  "train",
	8:  "truck",
	9:  "boat",
	16: "bird",
	17: "cat",
	18: "dog",
	19: "horse",
	20: "sheep",
	21: "cow",
}

func LabelFor(classID int) string {
	if label, ok := cocoLabels[classID]; ok {
		return label
	}
	return fmt.Sprintf("class%d", classID)
}
