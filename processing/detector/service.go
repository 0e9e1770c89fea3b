package processing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"

	"petvision/internal/models"
	"petvision/processing/capture"
)

// ErrRequestFailed wraps every detection failure: transport errors,
// non-2xx statuses and undecodable bodies alike.
var ErrRequestFailed = errors.New("request failed")

// Detector sends one picture to a detection service and returns its boxes.
type Detector interface {
	Detect(ctx context.Context, pic *capture.Picture) ([]models.Detection, error)
}

// RemoteDetector posts pictures to an HTTP endpoint as multipart/form-data.
type RemoteDetector struct {
	endpoint string
	client   *http.Client
}

func NewRemoteDetector(endpoint string, client *http.Client) *RemoteDetector {
	if client == nil {
		client = &http.Client{}
	}

	return &RemoteDetector{
		endpoint: endpoint,
		client:   client,
	}
}

func (d *RemoteDetector) Endpoint() string {
	return d.endpoint
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Detect uploads the picture bytes unchanged in a part named "file". The part is
// always labeled image/jpeg, which is what the service expects.
func (d *RemoteDetector) Detect(ctx context.Context, pic *capture.Picture) ([]models.Detection, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(pic.Name)))
	header.Set("Content-Type", "image/jpeg")

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("%w: create form file: %w", ErrRequestFailed, err)
	}

	if _, err := part.Write(pic.Data); err != nil {
		return nil, fmt.Errorf("%w: copy image data: %w", ErrRequestFailed, err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: close form: %w", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrRequestFailed, resp.Status)
	}

	var result models.DetectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrRequestFailed, err)
	}

	if result.Detections == nil {
		result.Detections = []models.Detection{}
	}

	return result.Detections, nil
}

// CheckHealth probes the sibling /health route of the detect endpoint.
func (d *RemoteDetector) CheckHealth(ctx context.Context) error {
	u, err := url.Parse(d.endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	u.Path = path.Join(path.Dir(u.Path), "health")
	u.RawQuery = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detection service unhealthy: %d", resp.StatusCode)
	}

	return nil
}
