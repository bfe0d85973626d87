package bridge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/vcpc/helpdesk/internal/model"
)

func testSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Tickets: []model.Ticket{
			{ID: "T-1", Title: "Printer down", Status: model.TicketOpen, Priority: model.PriorityHigh,
				CreatedAt: "2024-03-20T10:00:00Z", UpdatedAt: "2024-03-20T10:00:00Z"},
		},
		Users: []model.User{
			{ID: "u1", Username: "admin", FullName: "Admin", Role: model.RoleAdmin},
		},
		Assets: []model.Asset{},
		Logs:   []model.SystemLog{},
	}
}

func TestSheetPushWireFormat(t *testing.T) {
	var mu sync.Mutex
	var bodies []map[string]json.RawMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		data, _ := io.ReadAll(r.Body)
		var body map[string]json.RawMessage
		if err := json.Unmarshal(data, &body); err != nil {
			t.Errorf("push body is not JSON: %v", err)
		}
		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	b, err := New(KindSheet, server.URL, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := b.Push(context.Background(), model.Tickets, testSnapshot()); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 1 {
		t.Fatalf("expected 1 push request, got %d", len(bodies))
	}

	var action, typ string
	_ = json.Unmarshal(bodies[0]["action"], &action)
	_ = json.Unmarshal(bodies[0]["type"], &typ)
	if action != "PUSH" {
		t.Errorf("expected action PUSH, got %q", action)
	}
	if typ != "Tickets" {
		t.Errorf("expected type Tickets, got %q", typ)
	}

	var payload []model.Ticket
	if err := json.Unmarshal(bodies[0]["payload"], &payload); err != nil {
		t.Fatalf("payload is not a ticket array: %v", err)
	}
	if len(payload) != 1 || payload[0].ID != "T-1" {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestSheetPushAllSendsThreeSheets(t *testing.T) {
	var mu sync.Mutex
	var types []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Type string `json:"type"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		types = append(types, body.Type)
		mu.Unlock()
	}))
	defer server.Close()

	b, _ := New(KindSheet, server.URL, nil)
	if err := b.Push(context.Background(), model.All, testSnapshot()); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"Tickets", "Users", "Assets"}
	if len(types) != len(want) {
		t.Fatalf("expected %d pushes, got %d: %v", len(want), len(types), types)
	}
	for i, typ := range want {
		if types[i] != typ {
			t.Errorf("push %d: expected %s, got %s", i, typ, types[i])
		}
	}
}

func TestSheetPullNormalizesCapitalizedKeys(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Tickets": []model.Ticket{{ID: "T-1", Title: "From sheet"}},
			"Users":   []model.User{{ID: "u1", Username: "admin"}, {ID: "u2", Username: "john"}},
		})
	}))
	defer server.Close()

	b, _ := New(KindSheet, server.URL, nil)
	snap, err := b.Pull(context.Background())
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}

	if len(snap.Tickets) != 1 || snap.Tickets[0].ID != "T-1" {
		t.Errorf("tickets not normalized: %+v", snap.Tickets)
	}
	if len(snap.Users) != 2 {
		t.Errorf("expected 2 users, got %d", len(snap.Users))
	}
	if snap.Assets != nil {
		t.Error("absent sheet must yield a nil slice")
	}
}

func TestRestPushWireFormat(t *testing.T) {
	var mu sync.Mutex
	var path string
	var body struct {
		Type string          `json:"type"`
		Data *model.Snapshot `json:"data"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "success"})
	}))
	defer server.Close()

	b, _ := New(KindRest, server.URL, nil)
	if err := b.Push(context.Background(), model.Users, testSnapshot()); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if path != "/push" {
		t.Errorf("expected POST to /push, got %s", path)
	}
	if body.Type != "USERS" {
		t.Errorf("expected type USERS, got %q", body.Type)
	}
	if body.Data == nil || len(body.Data.Tickets) != 1 || len(body.Data.Users) != 1 {
		t.Errorf("push must carry the full dataset: %+v", body.Data)
	}
}

func TestRestPullAbsentKeyIsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pull" {
			t.Errorf("expected GET /pull, got %s", r.URL.Path)
		}
		// Assets key deliberately absent; users explicitly empty.
		_, _ = w.Write([]byte(`{"tickets":[{"id":"T-1","title":"a"},{"id":"T-2","title":"b"},{"id":"T-3","title":"c"}],"users":[]}`))
	}))
	defer server.Close()

	b, _ := New(KindRest, server.URL, nil)
	snap, err := b.Pull(context.Background())
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}

	if len(snap.Tickets) != 3 {
		t.Errorf("expected 3 tickets, got %d", len(snap.Tickets))
	}
	if snap.Users == nil || len(snap.Users) != 0 {
		t.Errorf("explicit empty array must decode as non-nil empty: %+v", snap.Users)
	}
	if snap.Assets != nil {
		t.Error("absent assets key must decode as nil")
	}
}

func TestStaticPullOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tickets":[{"id":"T-1","title":"doc"}]}`))
	}))
	defer server.Close()

	b, _ := New(KindStatic, server.URL, nil)
	if b.Pushable() {
		t.Error("static bridge must not be pushable")
	}
	if err := b.Push(context.Background(), model.Tickets, testSnapshot()); err == nil {
		t.Error("static Push should fail")
	}

	snap, err := b.Pull(context.Background())
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	if len(snap.Tickets) != 1 {
		t.Errorf("expected 1 ticket, got %d", len(snap.Tickets))
	}
}

func TestPullErrorsOnServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	for _, kind := range []Kind{KindSheet, KindRest, KindStatic} {
		b, _ := New(kind, server.URL, nil)
		if _, err := b.Pull(context.Background()); err == nil {
			t.Errorf("%s pull should fail on HTTP 500", kind)
		}
	}
}

func TestPullErrorsOnMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	for _, kind := range []Kind{KindSheet, KindRest, KindStatic} {
		b, _ := New(kind, server.URL, nil)
		if _, err := b.Pull(context.Background()); err == nil {
			t.Errorf("%s pull should fail on malformed body", kind)
		}
	}
}

func TestPushErrorsOnNetworkFailure(t *testing.T) {
	// Closed server: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	for _, kind := range []Kind{KindSheet, KindRest} {
		b, _ := New(kind, url, nil)
		if err := b.Push(context.Background(), model.Tickets, testSnapshot()); err == nil {
			t.Errorf("%s push should fail when the endpoint is unreachable", kind)
		}
	}
}

func TestNewRejectsEmptyURLAndUnknownKind(t *testing.T) {
	if _, err := New(KindSheet, "", nil); err == nil {
		t.Error("expected error for empty URL")
	}
	if _, err := New(Kind("carrier-pigeon"), "http://example.com", nil); err == nil {
		t.Error("expected error for unknown kind")
	}
}
