package bridge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vcpc/helpdesk/internal/model"
)

// normalizeKeyed converts a loosely-keyed pull response into the canonical
// snapshot. The transports evolved separately and key the same logical
// data as "Tickets" or "tickets" depending on which backend produced it,
// so matching is case-insensitive. Keys that decode to something other
// than the expected record array fail the whole pull; a partial snapshot
// is never returned.
func normalizeKeyed(raw map[string]json.RawMessage) (*model.Snapshot, error) {
	snap := &model.Snapshot{}

	for key, value := range raw {
		switch strings.ToLower(key) {
		case "tickets":
			if err := json.Unmarshal(value, &snap.Tickets); err != nil {
				return nil, fmt.Errorf("malformed tickets in pull response: %w", err)
			}
		case "users":
			if err := json.Unmarshal(value, &snap.Users); err != nil {
				return nil, fmt.Errorf("malformed users in pull response: %w", err)
			}
		case "assets":
			if err := json.Unmarshal(value, &snap.Assets); err != nil {
				return nil, fmt.Errorf("malformed assets in pull response: %w", err)
			}
		case "logs", "systemlogs":
			if err := json.Unmarshal(value, &snap.Logs); err != nil {
				return nil, fmt.Errorf("malformed logs in pull response: %w", err)
			}
		}
	}

	return snap, nil
}
