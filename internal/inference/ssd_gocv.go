//go:build gocv

package inference

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// SSDModel runs an OpenCV DNN SSD MobileNet network trained on COCO.
type SSDModel struct {
	mu  sync.Mutex
	net gocv.Net
}

func NewSSDModel(modelPath, configPath string) (*SSDModel, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", modelPath)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	net := gocv.ReadNet(modelPath, configPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load network")
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set preferable backend or target")
	}

	return &SSDModel{net: net}, nil
}

func (m *SSDModel) Predict(imageBytes []byte) ([]Prediction, error) {
	mat, err := gocv.IMDecode(imageBytes, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, ErrDecode
	}

	blob := gocv.BlobFromImage(mat, 1.0/127.5, image.Pt(300, 300), gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	m.mu.Lock()
	m.net.SetInput(blob, "")
	output := m.net.Forward("")
	m.mu.Unlock()
	defer output.Close()

	cols := float32(mat.Cols())
	rows := float32(mat.Rows())

	// each row: [batch_id, class_id, confidence, x1, y1, x2, y2], coordinates normalized
	reshaped := output.Reshape(1, output.Total()/7)
	defer reshaped.Close()

	var preds []Prediction
	for i := 0; i < reshaped.Rows(); i++ {
		confidence := reshaped.GetFloatAt(i, 2)
		if confidence <= 0 {
			continue
		}

		classID := int(reshaped.GetFloatAt(i, 1))
		x1 := int(reshaped.GetFloatAt(i, 3) * cols)
		y1 := int(reshaped.GetFloatAt(i, 4) * rows)
		x2 := int(reshaped.GetFloatAt(i, 5) * cols)
		y2 := int(reshaped.GetFloatAt(i, 6) * rows)

		preds = append(preds, Prediction{
			ClassID:    classID,
			Label:      LabelFor(classID),
			Confidence: confidence,
			Box:        image.Rect(x1, y1, x2, y2),
		})
	}

	return preds, nil
}

func (m *SSDModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.net.Close()
}
