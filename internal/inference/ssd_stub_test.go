//go:build !gocv

package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSSDModel_WithoutOpenCV(t *testing.T) {
	m, err := NewSSDModel("model.pb", "model.pbtxt")
	assert.ErrorIs(t, err, ErrNoOpenCV)
	assert.Nil(t, m)

	var stub SSDModel
	_, err = stub.Predict([]byte("jpeg"))
	assert.ErrorIs(t, err, ErrNoOpenCV)
	assert.NoError(t, stub.Close())
}
