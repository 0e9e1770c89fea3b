package processing

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"petvision/internal/models"
	"petvision/processing/capture"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPicture() *capture.Picture {
	return &capture.Picture{
		Name:   "kitten.png",
		Format: "png",
		Data:   []byte("\x89PNG fake bytes"),
	}
}

func TestRemoteDetector_Detect(t *testing.T) {
	type upload struct {
		filename    string
		contentType string
		data        []byte
	}
	uploads := make(chan upload, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/detect", r.URL.Path)

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, _ := io.ReadAll(file)
		uploads <- upload{
			filename:    header.Filename,
			contentType: header.Header.Get("Content-Type"),
			data:        data,
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"detections":[{"label":"cat","confidence":0.97,"x":10,"y":20,"w":30,"h":40},`+
			`{"label":"dog","confidence":0.5,"x":1,"y":2,"w":3,"h":4}]}`)
	}))
	defer srv.Close()

	det := NewRemoteDetector(srv.URL+"/detect", srv.Client())
	dets, err := det.Detect(context.Background(), testPicture())
	require.NoError(t, err)

	got := <-uploads
	assert.Equal(t, "kitten.png", got.filename)
	assert.Equal(t, "image/jpeg", got.contentType)
	assert.Equal(t, testPicture().Data, got.data)

	require.Len(t, dets, 2)
	assert.Equal(t, models.Detection{Label: "cat", Confidence: 0.97, X: 10, Y: 20, W: 30, H: 40}, dets[0])
	assert.Equal(t, "dog", dets[1].Label)
}

func TestRemoteDetector_EmptyDetections(t *testing.T) {
	for _, body := range []string{`{"detections":[]}`, `{"detections":null}`, `{}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, body)
		}))

		dets, err := NewRemoteDetector(srv.URL, nil).Detect(context.Background(), testPicture())
		srv.Close()

		require.NoError(t, err, body)
		assert.NotNil(t, dets, body)
		assert.Empty(t, dets, body)
	}
}

func TestRemoteDetector_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}},
		{"redirect status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotModified)
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"detections":[{"label":`)
		}},
		{"empty body", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}},
		{"wrong shape", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"detections":"none"}`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			dets, err := NewRemoteDetector(srv.URL, nil).Detect(context.Background(), testPicture())
			assert.ErrorIs(t, err, ErrRequestFailed)
			assert.Nil(t, dets)
		})
	}
}

func TestRemoteDetector_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	_, err := NewRemoteDetector(endpoint, nil).Detect(context.Background(), testPicture())
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestRemoteDetector_CheckHealth(t *testing.T) {
	paths := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		if r.URL.Path != "/api/health" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	require.NoError(t, NewRemoteDetector(srv.URL+"/api/detect", nil).CheckHealth(context.Background()))
	assert.Equal(t, "/api/health", <-paths)

	assert.Error(t, NewRemoteDetector(srv.URL+"/detect", nil).CheckHealth(context.Background()))
	assert.Equal(t, "/health", <-paths)
}
