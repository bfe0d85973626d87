// Package snapshot encodes the full local dataset into a compact URL-safe
// token so it can travel inside a shareable link, and decodes such tokens
// back. A lighter variant encodes just a bridge endpoint URL so a second
// device can auto-configure the same bridge.
//
// Decoding fails closed: a malformed token yields an error and never a
// partially-decoded snapshot.
package snapshot

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/vcpc/helpdesk/internal/model"
)

// Query parameters consumed once at startup and then stripped, so a link
// reload does not reapply the payload.
const (
	// ParamSyncData carries a full dataset token.
	ParamSyncData = "sync_data"
	// ParamConnect carries a bridge endpoint token.
	ParamConnect = "connect"
)

// Encode serializes the snapshot to JSON and wraps it in URL-safe base64.
func Encode(snap *model.Snapshot) (string, error) {
	if snap == nil {
		return "", fmt.Errorf("nil snapshot")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// Decode reverses Encode. Any malformed token fails the whole decode.
func Decode(token string) (*model.Snapshot, error) {
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot token: %w", err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot payload: %w", err)
	}
	return &snap, nil
}

// EncodeBridgeLink wraps a bridge endpoint URL in URL-safe base64.
func EncodeBridgeLink(endpoint string) (string, error) {
	if endpoint == "" {
		return "", fmt.Errorf("empty bridge endpoint")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return "", fmt.Errorf("invalid bridge endpoint: %w", err)
	}
	return base64.URLEncoding.EncodeToString([]byte(endpoint)), nil
}

// DecodeBridgeLink reverses EncodeBridgeLink, validating that the decoded
// bytes form a plausible URL.
func DecodeBridgeLink(token string) (string, error) {
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("invalid bridge token: %w", err)
	}
	endpoint := string(data)
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return "", fmt.Errorf("bridge token does not contain a URL: %w", err)
	}
	return endpoint, nil
}

// BuildShareLink embeds a full snapshot token into base as the sync_data
// query parameter.
func BuildShareLink(base string, snap *model.Snapshot) (string, error) {
	token, err := Encode(snap)
	if err != nil {
		return "", err
	}
	return appendParam(base, ParamSyncData, token)
}

// BuildConnectLink embeds a bridge endpoint token into base as the connect
// query parameter.
func BuildConnectLink(base, endpoint string) (string, error) {
	token, err := EncodeBridgeLink(endpoint)
	if err != nil {
		return "", err
	}
	return appendParam(base, ParamConnect, token)
}

func appendParam(base, key, value string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ShareTokens holds whatever tokens were found in a share link.
type ShareTokens struct {
	// SyncData is the full-snapshot token, or "" if absent.
	SyncData string
	// Connect is the bridge endpoint token, or "" if absent.
	Connect string
}

// ParseShareLink extracts the tokens from a share link and returns the
// link with both parameters stripped.
func ParseShareLink(link string) (ShareTokens, string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return ShareTokens{}, "", fmt.Errorf("invalid share link: %w", err)
	}
	q := u.Query()
	tokens := ShareTokens{
		SyncData: q.Get(ParamSyncData),
		Connect:  q.Get(ParamConnect),
	}
	q.Del(ParamSyncData)
	q.Del(ParamConnect)
	u.RawQuery = q.Encode()
	return tokens, u.String(), nil
}
