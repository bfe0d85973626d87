package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vcpc/helpdesk/internal/model"
)

// RestBridge talks to a REST bridge server fronting a SQL database.
//
// Unlike the sheet bridge this transport upserts per record on the remote
// side: pushed rows replace rows with the same identifier but rows absent
// from the push survive. The two contracts are deliberately not unified;
// the narrower upsert behavior is part of this transport's definition.
type RestBridge struct {
	base   string
	client *http.Client
}

// Kind implements Bridge.
func (b *RestBridge) Kind() Kind { return KindRest }

// Pushable implements Bridge.
func (b *RestBridge) Pushable() bool { return true }

// restPushRequest is the POST body for <base>/push. The full dataset
// rides along on every push; type tells the remote which collection
// actually changed.
type restPushRequest struct {
	Type string          `json:"type"`
	Data *model.Snapshot `json:"data"`
}

// Push implements Bridge.
func (b *RestBridge) Push(ctx context.Context, tag model.Collection, snap *model.Snapshot) error {
	body, err := json.Marshal(restPushRequest{Type: string(tag), Data: snap})
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint("push"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("rest push failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("rest push returned status %d", resp.StatusCode)
	}
	return nil
}

// Pull implements Bridge. GET <base>/pull returns the canonical snapshot
// shape; absent keys decode to nil slices.
func (b *RestBridge) Pull(ctx context.Context) (*model.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint("pull"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build pull request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rest pull failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("rest pull returned status %d", resp.StatusCode)
	}

	var snap model.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode rest pull response: %w", err)
	}
	return &snap, nil
}

func (b *RestBridge) endpoint(op string) string {
	return strings.TrimRight(b.base, "/") + "/" + op
}
