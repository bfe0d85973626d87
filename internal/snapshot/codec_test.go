package snapshot

import (
	"reflect"
	"strings"
	"testing"

	"github.com/vcpc/helpdesk/internal/model"
)

func sampleSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Tickets: []model.Ticket{
			{
				ID:          "T-1001",
				Title:       "Lỗi kết nối máy in",
				Description: "Máy in HP tầng 3 không phản hồi qua mạng.",
				Status:      model.TicketOpen,
				Priority:    model.PriorityMedium,
				CreatedAt:   "2024-03-20T10:00:00Z",
				UpdatedAt:   "2024-03-20T10:00:00Z",
				Comments: []model.Comment{
					{
						ID:         "c1",
						SenderID:   "u1",
						SenderName: "Quản Trị Viên",
						SenderRole: model.SenderSystem,
						Message:    "Status changed to IN_PROGRESS",
						CreatedAt:  "2024-03-20T11:00:00Z",
						IsSystem:   true,
					},
				},
				Attachments: []model.Attachment{
					{ID: "a1", Name: "screenshot.png", Type: "image/png", Data: "iVBORw0KGgoAAAANSUhEUg=="},
				},
			},
		},
		Users: []model.User{
			{ID: "u1", Username: "admin", Password: "123", FullName: "Quản Trị Viên", Role: model.RoleAdmin},
		},
		Assets: []model.Asset{},
		Logs:   []model.SystemLog{},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := sampleSnapshot()

	token, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip mismatch:\noriginal: %+v\ndecoded:  %+v", original, decoded)
	}
}

func TestEncodeEmptySnapshotRoundTrip(t *testing.T) {
	original := &model.Snapshot{
		Tickets: []model.Ticket{},
		Users:   []model.User{},
		Assets:  []model.Asset{},
		Logs:    []model.SystemLog{},
	}

	token, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip mismatch for empty snapshot")
	}
}

func TestTokenIsURLSafe(t *testing.T) {
	token, err := Encode(sampleSnapshot())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if strings.ContainsAny(token, "+/ ") {
		t.Errorf("token contains URL-unsafe characters: %s", token)
	}
}

func TestDecodeFailsClosed(t *testing.T) {
	cases := []string{
		"not base64 at all!!!",
		"aGVsbG8=", // valid base64, not JSON
		"%%%",
	}
	for _, token := range cases {
		if _, err := Decode(token); err == nil {
			t.Errorf("Decode(%q) should have failed", token)
		}
	}
}

func TestDecodeMalformedJSONReturnsNothing(t *testing.T) {
	snap, err := Decode("bm90LWpzb24=") // "not-json"
	if err == nil {
		t.Fatal("expected decode error")
	}
	if snap != nil {
		t.Error("failed decode must not return a partial snapshot")
	}
}

func TestBridgeLinkRoundTrip(t *testing.T) {
	endpoint := "https://script.example.com/macros/s/abc123/exec"

	token, err := EncodeBridgeLink(endpoint)
	if err != nil {
		t.Fatalf("EncodeBridgeLink failed: %v", err)
	}
	decoded, err := DecodeBridgeLink(token)
	if err != nil {
		t.Fatalf("DecodeBridgeLink failed: %v", err)
	}
	if decoded != endpoint {
		t.Errorf("expected %s, got %s", endpoint, decoded)
	}
}

func TestDecodeBridgeLinkRejectsNonURL(t *testing.T) {
	if _, err := DecodeBridgeLink("bm90IGEgdXJs"); err == nil { // "not a url"
		t.Error("expected error for non-URL token")
	}
}

func TestShareLinkCarriesAndStripsToken(t *testing.T) {
	link, err := BuildShareLink("https://helpdesk.local/", sampleSnapshot())
	if err != nil {
		t.Fatalf("BuildShareLink failed: %v", err)
	}

	tokens, stripped, err := ParseShareLink(link)
	if err != nil {
		t.Fatalf("ParseShareLink failed: %v", err)
	}
	if tokens.SyncData == "" {
		t.Fatal("share link did not carry a sync_data token")
	}
	if strings.Contains(stripped, ParamSyncData) {
		t.Errorf("stripped link still contains the token: %s", stripped)
	}

	snap, err := Decode(tokens.SyncData)
	if err != nil {
		t.Fatalf("token from link failed to decode: %v", err)
	}
	if len(snap.Tickets) != 1 || len(snap.Users) != 1 {
		t.Errorf("unexpected decoded snapshot: %d tickets, %d users", len(snap.Tickets), len(snap.Users))
	}
}

func TestConnectLinkRoundTrip(t *testing.T) {
	endpoint := "https://bridge.example.com/api"
	link, err := BuildConnectLink("https://helpdesk.local/", endpoint)
	if err != nil {
		t.Fatalf("BuildConnectLink failed: %v", err)
	}

	tokens, _, err := ParseShareLink(link)
	if err != nil {
		t.Fatalf("ParseShareLink failed: %v", err)
	}
	decoded, err := DecodeBridgeLink(tokens.Connect)
	if err != nil {
		t.Fatalf("DecodeBridgeLink failed: %v", err)
	}
	if decoded != endpoint {
		t.Errorf("expected %s, got %s", endpoint, decoded)
	}
}
