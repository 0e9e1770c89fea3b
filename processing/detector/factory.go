package processing

import (
	"fmt"
	"net/url"
)

// NewDetector picks the transport from the endpoint scheme.
func NewDetector(endpoint string) (Detector, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid detector url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid detector url: missing host in %q", endpoint)
	}

	switch u.Scheme {
	case "http", "https":
		return NewRemoteDetector(endpoint, nil), nil
	case "ws", "wss":
		return NewStreamDetector(endpoint), nil
	default:
		return nil, fmt.Errorf("unsupported detector scheme: %q", u.Scheme)
	}
}
