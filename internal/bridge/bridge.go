// Package bridge implements the remote "cloud bridge" transports that
// mirror local helpdesk state to interchangeable backends.
//
// Three transports share one contract: a spreadsheet-style endpoint that
// replaces whole sheets on push, a REST bridge backed by a SQL database
// that upserts per record, and a read-only static JSON document. Pulled
// payloads are normalized at this boundary into the canonical
// model.Snapshot shape regardless of how the remote keys its collections.
//
// Every transport failure is an ordinary error return; callers are
// expected to log and carry on local-only. There is no retry and no
// backoff anywhere in this package.
package bridge

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vcpc/helpdesk/internal/model"
)

// Kind tags the transport variant of a bridge.
type Kind string

const (
	// KindSheet is the spreadsheet-style bridge (mirror-replace push).
	KindSheet Kind = "sheet"
	// KindRest is the generic REST/SQL bridge (per-record upsert push).
	KindRest Kind = "rest"
	// KindStatic is the read-only static JSON document.
	KindStatic Kind = "static"
)

// Bridge is the uniform push/pull contract over the three transports.
type Bridge interface {
	// Kind identifies the transport variant.
	Kind() Kind

	// Pushable reports whether the transport supports Push at all.
	// The static document bridge does not.
	Pushable() bool

	// Push sends the given collection (or all collections, for
	// model.All) to the remote. Best-effort: the caller treats any
	// error as "skip and stay local".
	Push(ctx context.Context, tag model.Collection, snap *model.Snapshot) error

	// Pull fetches the full remote state. Absent collections come back
	// as nil slices so the caller can distinguish "key missing" from
	// "explicitly empty".
	Pull(ctx context.Context) (*model.Snapshot, error)
}

// New constructs a bridge of the given kind for the endpoint URL.
// A nil client selects http.DefaultClient; per the sync layer's design,
// timeout handling is left entirely to the transport defaults.
func New(kind Kind, url string, client *http.Client) (Bridge, error) {
	if url == "" {
		return nil, fmt.Errorf("bridge endpoint URL is empty")
	}
	if client == nil {
		client = http.DefaultClient
	}
	switch kind {
	case KindSheet:
		return &SheetBridge{url: url, client: client}, nil
	case KindRest:
		return &RestBridge{base: url, client: client}, nil
	case KindStatic:
		return &StaticBridge{url: url, client: client}, nil
	default:
		return nil, fmt.Errorf("unknown bridge kind %q", kind)
	}
}
