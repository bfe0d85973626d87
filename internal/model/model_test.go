package model

import (
	"strings"
	"testing"
)

func TestValidateUsersUniqueUsernames(t *testing.T) {
	users := []User{
		{ID: "u1", Username: "admin"},
		{ID: "u2", Username: "john"},
	}
	if err := ValidateUsers(users); err != nil {
		t.Errorf("expected valid users, got: %v", err)
	}
}

func TestValidateUsersDuplicateIsCaseInsensitive(t *testing.T) {
	users := []User{
		{ID: "u1", Username: "Admin"},
		{ID: "u2", Username: "admin"},
	}
	err := ValidateUsers(users)
	if err == nil {
		t.Fatal("expected duplicate username error")
	}
	if !strings.Contains(err.Error(), "duplicate username") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateUsersEmptyUsername(t *testing.T) {
	users := []User{{ID: "u1", Username: ""}}
	if err := ValidateUsers(users); err == nil {
		t.Fatal("expected error for empty username")
	}
}

func TestTicketValidateTimestampOrder(t *testing.T) {
	ticket := Ticket{
		ID:        "T-1",
		Title:     "Printer down",
		CreatedAt: "2024-03-20T10:00:00Z",
		UpdatedAt: "2024-03-19T10:00:00Z",
	}
	if err := ticket.Validate(); err == nil {
		t.Fatal("expected error when updatedAt precedes createdAt")
	}

	ticket.UpdatedAt = "2024-03-20T10:00:00Z"
	if err := ticket.Validate(); err != nil {
		t.Errorf("expected valid ticket, got: %v", err)
	}
}

func TestTicketValidateRequiredFields(t *testing.T) {
	if err := (&Ticket{Title: "no id"}).Validate(); err == nil {
		t.Error("expected error for missing id")
	}
	if err := (&Ticket{ID: "T-1"}).Validate(); err == nil {
		t.Error("expected error for missing title")
	}
}

func TestValidateTicketsFlagsFirstInvalid(t *testing.T) {
	tickets := []Ticket{
		{ID: "T-1", Title: "fine", CreatedAt: "2024-03-20T10:00:00Z", UpdatedAt: "2024-03-20T10:00:00Z"},
		{ID: "T-2", Title: "backwards", CreatedAt: "2024-03-20T10:00:00Z", UpdatedAt: "2024-03-19T10:00:00Z"},
	}
	err := ValidateTickets(tickets)
	if err == nil {
		t.Fatal("expected timestamp order error")
	}
	if !strings.Contains(err.Error(), "T-2") {
		t.Errorf("error should name the offending ticket: %v", err)
	}

	if err := ValidateTickets(tickets[:1]); err != nil {
		t.Errorf("expected valid tickets, got: %v", err)
	}
	if err := ValidateTickets(nil); err != nil {
		t.Errorf("empty list should validate, got: %v", err)
	}
}

func TestSnapshotEmpty(t *testing.T) {
	snap := &Snapshot{}
	if !snap.Empty() {
		t.Error("zero snapshot should be empty")
	}

	snap.Users = []User{{ID: "u1", Username: "admin"}}
	if snap.Empty() {
		t.Error("snapshot with a user should not be empty")
	}
}

func TestCollectionsExcludesAll(t *testing.T) {
	for _, c := range Collections() {
		if c == All {
			t.Fatal("Collections() must not include the ALL tag")
		}
	}
	if len(Collections()) != 4 {
		t.Errorf("expected 4 collections, got %d", len(Collections()))
	}
}
