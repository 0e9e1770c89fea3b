package processing

import (
	"context"
	"encoding/json"
	"fmt"

	"petvision/internal/models"
	"petvision/processing/capture"

	"github.com/gorilla/websocket"
)

// StreamDetector talks to the service's websocket route. Each Detect call opens
// its own connection, writes the picture as one binary message and reads one
// JSON reply.
type StreamDetector struct {
	serverURL string
	dialer    *websocket.Dialer
}

func NewStreamDetector(serverURL string) *StreamDetector {
	return &StreamDetector{
		serverURL: serverURL,
		dialer:    websocket.DefaultDialer,
	}
}

func (d *StreamDetector) Endpoint() string {
	return d.serverURL
}

func (d *StreamDetector) Detect(ctx context.Context, pic *capture.Picture) ([]models.Detection, error) {
	conn, _, err := d.dialer.DialContext(ctx, d.serverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %w", ErrRequestFailed, err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.BinaryMessage, pic.Data); err != nil {
		return nil, fmt.Errorf("%w: send image: %w", ErrRequestFailed, err)
	}

	_, message, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("%w: read reply: %w", ErrRequestFailed, err)
	}

	var result models.DetectionResponse
	if err := json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrRequestFailed, err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrRequestFailed, result.Error)
	}

	// The reply is already in hand; a peer that hung up first only loses the
	// close handshake.
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	if result.Detections == nil {
		result.Detections = []models.Detection{}
	}

	return result.Detections, nil
}
