package model

// Collection tags name the four persisted collections. They appear in
// change notifications and in the bridge push wire format.
type Collection string

const (
	Tickets Collection = "TICKETS"
	Users   Collection = "USERS"
	Assets  Collection = "ASSETS"
	Logs    Collection = "LOGS"

	// All marks a change that touched more than one collection, such as
	// a remote pull or a snapshot import.
	All Collection = "ALL"
)

// Collections lists the four real collections in canonical order.
// All is not included; it is a notification tag, not a stored collection.
func Collections() []Collection {
	return []Collection{Tickets, Users, Assets, Logs}
}
