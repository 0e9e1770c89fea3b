//go:build !gocv

package inference

import "errors"

var ErrNoOpenCV = errors.New("gocv build tag is not enabled")

// SSDModel is unavailable without OpenCV; build with -tags gocv.
type SSDModel struct{}

func NewSSDModel(modelPath, configPath string) (*SSDModel, error) {
	return nil, ErrNoOpenCV
}

func (m *SSDModel) Predict(imageBytes []byte) ([]Prediction, error) {
	return nil, ErrNoOpenCV
}

func (m *SSDModel) Close() error {
	return nil
}
