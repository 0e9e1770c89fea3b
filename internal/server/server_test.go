package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"petvision/internal/config"
	"petvision/internal/inference"
	"petvision/internal/logger"
	"petvision/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	preds []inference.Prediction
	err   error
}

func (m *fakeModel) Predict(_ []byte) ([]inference.Prediction, error) {
	return m.preds, m.err
}

func (m *fakeModel) Close() error { return nil }

func newTestServer(model inference.Model) *Server {
	gin.SetMode(gin.TestMode)

	cfg := &config.ServerConfig{
		ConfidenceThreshold: 0.25,
		MaxUploadMB:         1,
	}
	return New(cfg, model, logger.Discard())
}

func samplePredictions() []inference.Prediction {
	return []inference.Prediction{
		{ClassID: 17, Label: "cat", Confidence: 0.97, Box: image.Rect(10, 20, 40, 60)},
		{ClassID: 1, Label: "person", Confidence: 0.99, Box: image.Rect(0, 0, 5, 5)},
		{ClassID: 18, Label: "dog", Confidence: 0.10, Box: image.Rect(1, 1, 2, 2)},
		{ClassID: 18, Label: "dog", Confidence: 0.50, Box: image.Rect(50, 50, 80, 70)},
	}
}

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, "pet.jpg")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestDetect_FiltersAndConverts(t *testing.T) {
	s := newTestServer(&fakeModel{preds: samplePredictions()})

	dets, err := s.Detect([]byte("image"))
	require.NoError(t, err)
	require.Len(t, dets, 2)

	assert.Equal(t, "cat", dets[0].Label)
	assert.Equal(t, 10, dets[0].X)
	assert.Equal(t, 20, dets[0].Y)
	assert.Equal(t, 30, dets[0].W)
	assert.Equal(t, 40, dets[0].H)
	assert.InDelta(t, 0.97, dets[0].Confidence, 1e-6)

	assert.Equal(t, models.Detection{Label: "dog", Confidence: 0.5, X: 50, Y: 50, W: 30, H: 20}, dets[1])
}

func TestHandleDetect(t *testing.T) {
	s := newTestServer(&fakeModel{preds: samplePredictions()})
	router := s.Router()

	body, contentType := multipartBody(t, "file", []byte("jpeg bytes"))
	req := httptest.NewRequest(http.MethodPost, "/detect", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.DetectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Detections, 2)
	assert.NotContains(t, rec.Body.String(), `"error"`)
}

func TestHandleDetect_EmptyListIsArray(t *testing.T) {
	s := newTestServer(&fakeModel{})

	body, contentType := multipartBody(t, "file", []byte("jpeg bytes"))
	req := httptest.NewRequest(http.MethodPost, "/detect", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"detections":[]}`, rec.Body.String())
}

func TestHandleDetect_Errors(t *testing.T) {
	tests := []struct {
		name   string
		model  *fakeModel
		field  string
		status int
	}{
		{"missing file", &fakeModel{}, "image", http.StatusBadRequest},
		{"undecodable image", &fakeModel{err: inference.ErrDecode}, "file", http.StatusUnprocessableEntity},
		{"model failure", &fakeModel{err: errors.New("net not loaded")}, "file", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(tt.model)

			body, contentType := multipartBody(t, tt.field, []byte("bytes"))
			req := httptest.NewRequest(http.MethodPost, "/detect", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			s.Router().ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestHandleDetect_TooLarge(t *testing.T) {
	tests := []struct {
		name          string
		declareLength bool
	}{
		{"declared length", true},
		{"streamed body", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{}
			s := newTestServer(model)

			body, contentType := multipartBody(t, "file", bytes.Repeat([]byte("x"), 2<<20))
			req := httptest.NewRequest(http.MethodPost, "/detect", io.NopCloser(body))
			if tt.declareLength {
				req.ContentLength = int64(body.Len())
			} else {
				req.ContentLength = -1
			}
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			s.Router().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp["error"], "upload exceeds")
		})
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&fakeModel{})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleStream(t *testing.T) {
	model := &fakeModel{preds: samplePredictions()}
	srv := httptest.NewServer(newTestServer(model).Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	for i := 0; i < 2; i++ {
		require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("jpeg bytes")))

		var resp models.DetectionResponse
		require.NoError(t, conn.ReadJSON(&resp))
		assert.Len(t, resp.Detections, 2)
		assert.Empty(t, resp.Error)
	}
}

func TestHandleStream_ErrorReply(t *testing.T) {
	srv := httptest.NewServer(newTestServer(&fakeModel{err: inference.ErrDecode}).Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("garbage")))

	var resp models.DetectionResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Empty(t, resp.Detections)
	assert.Contains(t, resp.Error, "decode")
}
