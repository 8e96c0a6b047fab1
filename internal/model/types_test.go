package model

import (
	"encoding/json"
	"testing"
)

func TestPriority_Rank(t *testing.T) {
	tests := []struct {
		priority Priority
		want     int
	}{
		{PriorityLow, 1},
		{PriorityMedium, 2},
		{PriorityHigh, 3},
		{PriorityUrgent, 4},
		{Priority("critical"), 0}, // unknown values rank below low
		{Priority(""), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			if got := tt.priority.Rank(); got != tt.want {
				t.Errorf("Rank(%q) = %d, want %d", tt.priority, got, tt.want)
			}
		})
	}
}

func TestPriority_Ordering(t *testing.T) {
	order := []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Errorf("%s should rank below %s", order[i-1], order[i])
		}
	}
}

func TestNotification_UnknownFieldsPreserved(t *testing.T) {
	// Server-added types and priorities must survive a decode untouched.
	raw := `{
		"id": "n-42",
		"type": "amc_quote_expiring",
		"title": "AMC quote expiring",
		"message": "Quote Q-1007 expires tomorrow",
		"isRead": false,
		"priority": "severe",
		"category": "amc",
		"relatedEntityRefs": [{"entity": "amc_quote", "id": "Q-1007"}],
		"createdAt": "2026-02-11T08:30:00Z",
		"metadata": {"dueInDays": 1}
	}`

	var n Notification
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if n.Type != "amc_quote_expiring" {
		t.Errorf("Type = %q, want amc_quote_expiring", n.Type)
	}
	if n.Priority != Priority("severe") {
		t.Errorf("Priority = %q, want severe", n.Priority)
	}
	if n.Priority.Rank() != 0 {
		t.Errorf("unknown priority rank = %d, want 0", n.Priority.Rank())
	}
	if len(n.RelatedEntityRefs) != 1 || n.RelatedEntityRefs[0].Entity != "amc_quote" {
		t.Errorf("RelatedEntityRefs = %+v, want one amc_quote ref", n.RelatedEntityRefs)
	}
	if n.Metadata["dueInDays"] != float64(1) {
		t.Errorf("Metadata[dueInDays] = %v, want 1", n.Metadata["dueInDays"])
	}
}
