package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vcpc/helpdesk/internal/model"
)

// StaticBridge pulls from an arbitrary JSON document URL. It cannot push;
// the document is maintained out of band.
type StaticBridge struct {
	url    string
	client *http.Client
}

// Kind implements Bridge.
func (b *StaticBridge) Kind() Kind { return KindStatic }

// Pushable implements Bridge.
func (b *StaticBridge) Pushable() bool { return false }

// Push implements Bridge. Always fails: the document is read-only.
func (b *StaticBridge) Push(ctx context.Context, tag model.Collection, snap *model.Snapshot) error {
	return fmt.Errorf("static document bridge does not support push")
}

// Pull implements Bridge. The document must be shaped like the rest
// bridge's pull response, but keys are matched case-insensitively since
// hand-maintained documents are inconsistent about casing.
func (b *StaticBridge) Pull(ctx context.Context) (*model.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build pull request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("static document pull failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("static document pull returned status %d", resp.StatusCode)
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode static document: %w", err)
	}

	return normalizeKeyed(raw)
}
