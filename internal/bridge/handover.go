package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"time"
)

// OpenPath is the route of the running instance that accepts OpenRequest payloads.
const OpenPath = "/api/open"

// Handover forwards launch candidates to an already running instance at baseURL.
// Relative candidates are made absolute first since the receiver has its own working
// directory. A nil error means the running instance accepted the request.
func Handover(ctx context.Context, baseURL string, candidates []string, timeout time.Duration) error {
	abs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if p, err := filepath.Abs(c); err == nil {
			c = p
		}
		abs = append(abs, c)
	}

	body, err := json.Marshal(OpenRequest{Paths: abs})
	if err != nil {
		return fmt.Errorf("encode handover: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+OpenPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build handover request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("no running instance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("running instance rejected handover: %s", resp.Status)
	}
	return nil
}
