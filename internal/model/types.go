package model

import "time"

// Priority is the urgency level of a notification. The set is open-ended:
// values the client does not recognize are carried through unchanged and
// rank below "low" for ordering purposes.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// priorityRanks orders the known priorities: low < medium < high < urgent.
var priorityRanks = map[Priority]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
	PriorityUrgent: 4,
}

// Rank returns the ordering rank of the priority. Unknown values rank 0.
func (p Priority) Rank() int {
	return priorityRanks[p]
}

// EntityRef is an opaque reference to another ERP entity (customer, invoice,
// purchase order, ...). The client never dereferences these; they are passed
// through to the UI untouched.
type EntityRef struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
}

// Notification is a single server-originated notification. The server is the
// only producer; the client merges, marks and deletes but never creates one.
type Notification struct {
	ID                string         `json:"id"`
	Type              string         `json:"type"`
	Title             string         `json:"title"`
	Message           string         `json:"message"`
	IsRead            bool           `json:"isRead"`
	Priority          Priority       `json:"priority"`
	Category          string         `json:"category"`
	RelatedEntityRefs []EntityRef    `json:"relatedEntityRefs,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// SystemMessage is a transient server broadcast (maintenance banner, error
// notice). It is delivered to the UI and never enters the store.
type SystemMessage struct {
	Message     string `json:"message"`
	MessageType string `json:"messageType"` // "error", "warning", "success", "info"
}

// Stats is the server-computed notification summary. Display fallback only:
// the store's live unread count is authoritative when the two disagree.
type Stats struct {
	Total      int            `json:"total"`
	Unread     int            `json:"unread"`
	ByCategory map[string]int `json:"byCategory"`
	ByPriority map[string]int `json:"byPriority"`
}
