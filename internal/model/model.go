// Package model defines the helpdesk record types shared by the store,
// bridges, and sync service.
//
// JSON field names are part of the bridge wire format and must stay
// camelCase: remote endpoints (sheet bridge, rest bridge, static documents)
// exchange these records verbatim.
package model

import (
	"fmt"
	"strings"
	"time"
)

// UserRole identifies the access level of a user account.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"

	// SenderSystem is the sentinel sender role for system-generated
	// comments (status change notices and the like).
	SenderSystem = "SYSTEM"
)

// TicketStatus is the lifecycle state of a ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "OPEN"
	TicketInProgress TicketStatus = "IN_PROGRESS"
	TicketResolved   TicketStatus = "RESOLVED"
	TicketClosed     TicketStatus = "CLOSED"
)

// TicketPriority is the urgency of a ticket.
type TicketPriority string

const (
	PriorityLow      TicketPriority = "LOW"
	PriorityMedium   TicketPriority = "MEDIUM"
	PriorityHigh     TicketPriority = "HIGH"
	PriorityCritical TicketPriority = "CRITICAL"
)

// AssetStatus is the lifecycle state of a tracked asset.
type AssetStatus string

const (
	AssetInUse     AssetStatus = "IN_USE"
	AssetInStock   AssetStatus = "IN_STOCK"
	AssetRepairing AssetStatus = "REPAIRING"
	AssetBroken    AssetStatus = "BROKEN"
	AssetRetired   AssetStatus = "RETIRED"
)

// LogType is the severity tag on a system log entry.
type LogType string

const (
	LogInfo    LogType = "INFO"
	LogWarning LogType = "WARNING"
	LogDanger  LogType = "DANGER"
	LogSuccess LogType = "SUCCESS"
)

// Attachment is an inline file payload carried on tickets and comments.
// Data holds the base64-encoded content; size limits are enforced by the
// UI before the record reaches the store, not here.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // MIME type
	Data string `json:"data"` // base64
}

// Comment is a single entry in a ticket's conversation. The comments list
// is append-only from the application's perspective.
type Comment struct {
	ID          string       `json:"id"`
	SenderID    string       `json:"senderId"`
	SenderName  string       `json:"senderName"`
	SenderRole  string       `json:"senderRole"` // ADMIN, USER, or SYSTEM
	Message     string       `json:"message"`
	CreatedAt   string       `json:"createdAt"` // RFC 3339
	IsSystem    bool         `json:"isSystem,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Ticket is a helpdesk request record.
type Ticket struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      TicketStatus   `json:"status"`
	Priority    TicketPriority `json:"priority"`
	Category    string         `json:"category"`
	CreatorID   string         `json:"creatorId"`
	CreatorName string         `json:"creatorName"`
	Department  string         `json:"department"`
	Subsidiary  string         `json:"subsidiary"`
	AssignedTo  string         `json:"assignedTo,omitempty"`
	CreatedAt   string         `json:"createdAt"` // RFC 3339
	UpdatedAt   string         `json:"updatedAt"` // RFC 3339
	Location    string         `json:"location"`
	Comments    []Comment      `json:"comments,omitempty"`
	Attachments []Attachment   `json:"attachments,omitempty"`
}

// Validate checks required fields and the updatedAt >= createdAt invariant.
func (t *Ticket) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("id is required")
	}
	if t.Title == "" {
		return fmt.Errorf("title is required")
	}
	created, err1 := time.Parse(time.RFC3339, t.CreatedAt)
	updated, err2 := time.Parse(time.RFC3339, t.UpdatedAt)
	if err1 == nil && err2 == nil && updated.Before(created) {
		return fmt.Errorf("updatedAt %s is before createdAt %s", t.UpdatedAt, t.CreatedAt)
	}
	return nil
}

// User is an account record. Password is stored in the clear; the source
// system works this way and the sync layer replicates records verbatim.
type User struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	Password   string   `json:"password,omitempty"`
	FullName   string   `json:"fullName"`
	Role       UserRole `json:"role"`
	Department string   `json:"department"`
	Subsidiary string   `json:"subsidiary"`
}

// Asset is a tracked piece of equipment.
type Asset struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Type           string      `json:"type"`
	SerialNumber   string      `json:"serialNumber"`
	Status         AssetStatus `json:"status"`
	AssignedToID   string      `json:"assignedToId,omitempty"`
	AssignedToName string      `json:"assignedToName,omitempty"`
	Subsidiary     string      `json:"subsidiary,omitempty"`
	Department     string      `json:"department,omitempty"`
	PurchaseDate   string      `json:"purchaseDate"`
	Value          float64     `json:"value"`
}

// SystemLog is an audit trail entry. The store keeps only the 100 most
// recent entries, newest first.
type SystemLog struct {
	ID        string  `json:"id"`
	Timestamp string  `json:"timestamp"` // RFC 3339
	UserID    string  `json:"userId"`
	UserName  string  `json:"userName"`
	Action    string  `json:"action"`
	Details   string  `json:"details"`
	Type      LogType `json:"type"`
}

// Snapshot bundles all four collections. It is the canonical shape for
// bridge pulls, the snapshot codec, and database export/import.
//
// A nil slice means the collection was absent from the source (leave local
// state untouched); a non-nil empty slice is an explicit "empty" intent.
type Snapshot struct {
	Tickets []Ticket    `json:"tickets"`
	Users   []User      `json:"users"`
	Assets  []Asset     `json:"assets"`
	Logs    []SystemLog `json:"logs"`
}

// Empty reports whether no collection in the snapshot carries any records.
func (s *Snapshot) Empty() bool {
	return len(s.Tickets) == 0 && len(s.Users) == 0 && len(s.Assets) == 0 && len(s.Logs) == 0
}

// Actor identifies who performed a state-changing operation, for audit
// logging. A zero Actor means the change is unattributed.
type Actor struct {
	ID   string
	Name string
}

// ValidateTickets validates every ticket in the list. Like ValidateUsers
// it must run before a save reaches the store, so a failed validation
// leaves persisted state unchanged.
func ValidateTickets(tickets []Ticket) error {
	for i := range tickets {
		if err := tickets[i].Validate(); err != nil {
			return fmt.Errorf("ticket %s: %w", tickets[i].ID, err)
		}
	}
	return nil
}

// ValidateUsers checks the case-insensitive username uniqueness rule.
// It must be called before any user save reaches the store, so a failed
// validation leaves persisted state unchanged.
func ValidateUsers(users []User) error {
	seen := make(map[string]string, len(users))
	for _, u := range users {
		if u.Username == "" {
			return fmt.Errorf("user %s has empty username", u.ID)
		}
		key := strings.ToLower(u.Username)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("duplicate username %q (users %s and %s)", u.Username, prev, u.ID)
		}
		seen[key] = u.ID
	}
	return nil
}
