package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vcpc/helpdesk/internal/model"
)

// sheetNames maps collection tags to the remote sheet names. The remote
// side keys its pull response by these capitalized names.
var sheetNames = map[model.Collection]string{
	model.Tickets: "Tickets",
	model.Users:   "Users",
	model.Assets:  "Assets",
	model.Logs:    "Logs",
}

// SheetBridge talks to a spreadsheet-backed web endpoint.
//
// Push semantics are mirror-replace: the remote clears the named sheet and
// rewrites it from the payload, so the sheet always equals the last push.
// The response body is ignored.
type SheetBridge struct {
	url    string
	client *http.Client
}

// Kind implements Bridge.
func (b *SheetBridge) Kind() Kind { return KindSheet }

// Pushable implements Bridge.
func (b *SheetBridge) Pushable() bool { return true }

// sheetPushRequest is the POST body understood by the spreadsheet script.
type sheetPushRequest struct {
	Action  string `json:"action"`
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Push implements Bridge. For model.All it pushes tickets, users, and
// assets in turn; logs stay local-only on this transport.
func (b *SheetBridge) Push(ctx context.Context, tag model.Collection, snap *model.Snapshot) error {
	switch tag {
	case model.Tickets:
		return b.pushSheet(ctx, model.Tickets, snap.Tickets)
	case model.Users:
		return b.pushSheet(ctx, model.Users, snap.Users)
	case model.Assets:
		return b.pushSheet(ctx, model.Assets, snap.Assets)
	case model.Logs:
		return nil
	case model.All:
		if err := b.pushSheet(ctx, model.Tickets, snap.Tickets); err != nil {
			return err
		}
		if err := b.pushSheet(ctx, model.Users, snap.Users); err != nil {
			return err
		}
		return b.pushSheet(ctx, model.Assets, snap.Assets)
	default:
		return fmt.Errorf("unknown collection tag %q", tag)
	}
}

func (b *SheetBridge) pushSheet(ctx context.Context, tag model.Collection, payload any) error {
	body, err := json.Marshal(sheetPushRequest{
		Action:  "PUSH",
		Type:    sheetNames[tag],
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("sheet push failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sheet push returned status %d", resp.StatusCode)
	}
	return nil
}

// Pull implements Bridge. The remote responds with one key per populated
// sheet; keys are matched case-insensitively and unknown sheets are
// ignored.
func (b *SheetBridge) Pull(ctx context.Context) (*model.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build pull request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheet pull failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("sheet pull returned status %d", resp.StatusCode)
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode sheet pull response: %w", err)
	}

	return normalizeKeyed(raw)
}
