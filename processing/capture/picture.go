package capture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"
)

// Extensions lists the file types offered by the open dialog.
var Extensions = []string{".jpg", ".png", ".jpeg"}

var ErrUnsupported = errors.New("unsupported image type")

// Picture is a user-selected image: the raw file bytes sent to the detector
// and the decoded bitmap used for display.
type Picture struct {
	Name   string
	Format string
	Data   []byte
	Image  image.Image
}

func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func Load(path string) (*Picture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	return Read(filepath.Base(path), f)
}

func Read(name string, r io.Reader) (*Picture, error) {
	if !Supported(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", name, err)
	}

	return &Picture{
		Name:   name,
		Format: format,
		Data:   data,
		Image:  img,
	}, nil
}
