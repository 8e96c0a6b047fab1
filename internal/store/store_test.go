package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/model"
)

func notif(id string, read bool, createdAt time.Time) model.Notification {
	return model.Notification{
		ID:        id,
		Type:      "invoice_created",
		Title:     "Invoice " + id,
		Message:   "Invoice " + id + " was created",
		IsRead:    read,
		Priority:  model.PriorityMedium,
		Category:  "billing",
		CreatedAt: createdAt,
	}
}

// checkUnread asserts the derived count against a live recomputation over
// List(); the two must agree at every observation point.
func checkUnread(t *testing.T, s *Store) {
	t.Helper()

	live := 0
	for _, n := range s.List() {
		if !n.IsRead {
			live++
		}
	}
	require.Equal(t, live, s.UnreadCount(), "derived unread count diverged from live recomputation")
}

func TestStore_ApplyPushed_Idempotent(t *testing.T) {
	s := New(DefaultConfig(), nil)
	n := notif("n1", false, time.Now())

	require.True(t, s.ApplyPushed(n))
	require.False(t, s.ApplyPushed(n), "duplicate push must not insert")

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.UnreadCount())
	checkUnread(t, s)
}

func TestStore_ApplyPushed_NeverFlipsReadBack(t *testing.T) {
	s := New(DefaultConfig(), nil)
	created := time.Now()

	s.ApplyPushed(notif("n1", false, created))
	require.True(t, s.MarkRead("n1"))

	// Duplicate push after a reconnect-triggered resend still says unread.
	s.ApplyPushed(notif("n1", false, created))

	got, ok := s.Get("n1")
	require.True(t, ok)
	assert.True(t, got.IsRead, "push must not resurrect a read item back to unread")
	assert.Equal(t, 0, s.UnreadCount())
	checkUnread(t, s)
}

func TestStore_ApplyPushed_UpdatesContentFields(t *testing.T) {
	s := New(DefaultConfig(), nil)
	created := time.Now()

	s.ApplyPushed(notif("n1", false, created))
	s.MarkRead("n1")

	updated := notif("n1", false, created)
	updated.Title = "Invoice n1 (amended)"
	updated.Priority = model.PriorityUrgent
	s.ApplyPushed(updated)

	got, _ := s.Get("n1")
	assert.Equal(t, "Invoice n1 (amended)", got.Title)
	assert.Equal(t, model.PriorityUrgent, got.Priority)
	assert.True(t, got.IsRead, "content refresh must keep local read state")
}

func TestStore_NoResurrectionAfterRemove(t *testing.T) {
	s := New(DefaultConfig(), nil)
	created := time.Now()

	s.ApplyPushed(notif("n1", false, created))
	require.True(t, s.Remove("n1"))

	// Late-arriving push within the tombstone window.
	s.ApplyPushed(notif("n1", false, created))
	_, ok := s.Get("n1")
	assert.False(t, ok, "push must not resurrect a deleted id")

	// Late-arriving page merge within the tombstone window.
	s.ApplyPage([]model.Notification{notif("n1", false, created)}, 1)
	_, ok = s.Get("n1")
	assert.False(t, ok, "page merge must not resurrect a deleted id")

	assert.Equal(t, 0, s.Len())
	checkUnread(t, s)
}

func TestStore_RemoveBeforeFetchStillTombstones(t *testing.T) {
	// Deleting an id the store has never held must still suppress a merge
	// that is already in flight.
	s := New(DefaultConfig(), nil)

	require.False(t, s.Remove("n9"), "remove of unknown id reports not held")
	s.ApplyPage([]model.Notification{notif("n9", false, time.Now())}, 2)

	_, ok := s.Get("n9")
	assert.False(t, ok)
}

func TestStore_TombstoneExpires(t *testing.T) {
	s := New(Config{TombstoneTTL: time.Minute}, nil)

	now := time.Now()
	s.now = func() time.Time { return now }

	s.ApplyPushed(notif("n1", false, now))
	s.Remove("n1")

	// Within the window: still suppressed.
	s.ApplyPushed(notif("n1", false, now))
	assert.Equal(t, 0, s.Len())

	// After the window the server legitimately re-announcing the id wins.
	now = now.Add(2 * time.Minute)
	s.ApplyPushed(notif("n1", false, now))
	assert.Equal(t, 1, s.Len())
}

func TestStore_Page1RefreshPreservesPushedItems(t *testing.T) {
	s := New(DefaultConfig(), nil)
	created := time.Now()

	// Pushed but not yet visible in the server's history.
	s.ApplyPushed(notif("x", false, created))

	page1 := []model.Notification{
		notif("a", true, created.Add(-time.Hour)),
		notif("b", false, created.Add(-2*time.Hour)),
	}
	s.ApplyPage(page1, 1)

	_, ok := s.Get("x")
	assert.True(t, ok, "page-1 refresh must not drop pushed-but-unpersisted items")
	assert.Equal(t, 3, s.Len())
	checkUnread(t, s)
}

func TestStore_PageMergeKeepsLocalReadState(t *testing.T) {
	s := New(DefaultConfig(), nil)
	created := time.Now()

	s.ApplyPushed(notif("n1", false, created))

	// The page claims n1 is read; local state wins for existing ids.
	s.ApplyPage([]model.Notification{notif("n1", true, created)}, 1)

	got, _ := s.Get("n1")
	assert.False(t, got.IsRead)
	assert.Equal(t, 1, s.UnreadCount())
}

func TestStore_MarkRead(t *testing.T) {
	s := New(DefaultConfig(), nil)

	s.ApplyPushed(notif("n1", false, time.Now()))

	assert.False(t, s.MarkRead("missing"))
	assert.True(t, s.MarkRead("n1"))
	assert.True(t, s.MarkRead("n1"), "marking read twice is a held-id no-op")
	assert.Equal(t, 0, s.UnreadCount())
	checkUnread(t, s)
}

func TestStore_MarkAllRead(t *testing.T) {
	s := New(DefaultConfig(), nil)
	now := time.Now()

	s.ApplyPushed(notif("n1", false, now))
	s.ApplyPushed(notif("n2", false, now))
	s.ApplyPushed(notif("n3", true, now))

	assert.Equal(t, 2, s.MarkAllRead())
	assert.Equal(t, 0, s.UnreadCount())
	assert.Equal(t, 0, s.MarkAllRead(), "second pass changes nothing")
	checkUnread(t, s)
}

// TestStore_ReconciliationScenario is the end-to-end merge sequence from the
// reference behavior: push, refresh, mark read, remove.
func TestStore_ReconciliationScenario(t *testing.T) {
	s := New(DefaultConfig(), nil)
	now := time.Now()

	s.ApplyPushed(notif("n1", false, now))
	require.Equal(t, 1, s.UnreadCount())

	// Page 1 claims n1 is already read; n1 exists locally so its state is
	// not forced back. n2 is new and inserted as sent.
	s.ApplyPage([]model.Notification{
		notif("n1", true, now),
		notif("n2", false, now.Add(-time.Minute)),
	}, 1)
	require.Equal(t, 2, s.UnreadCount())

	s.MarkRead("n1")
	require.Equal(t, 1, s.UnreadCount())

	s.Remove("n2")
	require.Equal(t, 0, s.UnreadCount())
	require.Equal(t, 1, s.Len())

	_, ok := s.Get("n1")
	assert.True(t, ok)
	checkUnread(t, s)
}

func TestStore_UnreadCountUnderMixedMutations(t *testing.T) {
	s := New(DefaultConfig(), nil)
	now := time.Now()

	for i := 0; i < 10; i++ {
		s.ApplyPushed(notif(fmt.Sprintf("n%d", i), i%2 == 0, now.Add(time.Duration(i)*time.Second)))
		checkUnread(t, s)
	}

	s.ApplyPage([]model.Notification{
		notif("n3", true, now), // existing, read state ignored
		notif("p1", false, now),
		notif("p2", true, now),
	}, 2)
	checkUnread(t, s)

	s.MarkRead("n1")
	checkUnread(t, s)

	s.Remove("n5")
	checkUnread(t, s)

	s.MarkAllRead()
	checkUnread(t, s)
	assert.Equal(t, 0, s.UnreadCount())
}

func TestStore_List_NewestFirst(t *testing.T) {
	s := New(DefaultConfig(), nil)
	now := time.Now()

	s.ApplyPushed(notif("old", false, now.Add(-time.Hour)))
	s.ApplyPushed(notif("new", false, now))
	s.ApplyPushed(notif("mid", false, now.Add(-30*time.Minute)))

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "mid", list[1].ID)
	assert.Equal(t, "old", list[2].ID)
}

func TestStore_EvictionPrefersOldestRead(t *testing.T) {
	s := New(Config{Capacity: 3}, nil)
	now := time.Now()

	s.ApplyPushed(notif("read-old", true, now.Add(-3*time.Hour)))
	s.ApplyPushed(notif("read-new", true, now.Add(-1*time.Hour)))
	s.ApplyPushed(notif("unread-old", false, now.Add(-4*time.Hour)))
	s.ApplyPushed(notif("unread-new", false, now))

	require.Equal(t, 3, s.Len())

	// The oldest read item goes first, even though an unread item is older.
	_, ok := s.Get("read-old")
	assert.False(t, ok, "oldest read item should be evicted")
	for _, id := range []string{"read-new", "unread-old", "unread-new"} {
		_, ok := s.Get(id)
		assert.True(t, ok, "%s should survive eviction", id)
	}
	checkUnread(t, s)
}

func TestStore_EvictionFallsBackToUnreadOnlyWhenNoReadLeft(t *testing.T) {
	s := New(Config{Capacity: 2}, nil)
	now := time.Now()

	s.ApplyPushed(notif("u1", false, now.Add(-3*time.Hour)))
	s.ApplyPushed(notif("u2", false, now.Add(-2*time.Hour)))
	s.ApplyPushed(notif("u3", false, now))

	require.Equal(t, 2, s.Len())
	_, ok := s.Get("u1")
	assert.False(t, ok, "oldest unread evicted only when no read item remains")
	checkUnread(t, s)
}

func TestStore_EvictionDoesNotTombstone(t *testing.T) {
	s := New(Config{Capacity: 2}, nil)
	now := time.Now()

	s.ApplyPushed(notif("a", true, now.Add(-time.Hour)))
	s.ApplyPushed(notif("b", false, now.Add(-30*time.Minute)))
	s.ApplyPushed(notif("c", false, now))

	_, ok := s.Get("a")
	require.False(t, ok, "a should have been evicted")

	// Free a slot via a real delete, then replay both ids from a page:
	// the evicted id returns, the deleted id stays suppressed.
	s.Remove("c")
	s.ApplyPage([]model.Notification{
		notif("a", true, now.Add(-time.Hour)),
		notif("c", false, now),
	}, 3)

	_, ok = s.Get("a")
	assert.True(t, ok, "evicted ids must not be tombstoned")
	_, ok = s.Get("c")
	assert.False(t, ok, "deleted ids stay tombstoned")
}
