package store

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/model"
)

// Default configuration values.
const (
	DefaultTombstoneTTL = 5 * time.Minute
)

// Config holds store configuration.
type Config struct {
	// Capacity bounds the held set; 0 means unbounded. Eviction removes the
	// oldest read items first and touches unread items only when every read
	// item is already gone.
	Capacity int

	// TombstoneTTL is how long a removed id suppresses resurrection by
	// late-arriving merges.
	TombstoneTTL time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Capacity:     0,
		TombstoneTTL: DefaultTombstoneTTL,
	}
}

// Store holds the reconciled notification set. All methods are safe for
// concurrent use; push delivery, REST responses and user intents may resolve
// in any relative order.
type Store struct {
	cfg    Config
	logger *slog.Logger

	mu         sync.RWMutex
	items      map[string]*model.Notification
	tombstones map[string]time.Time // id → deletion time

	now func() time.Time // injectable clock for tombstone tests
}

// New creates an empty store.
func New(cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TombstoneTTL <= 0 {
		cfg.TombstoneTTL = DefaultTombstoneTTL
	}

	return &Store{
		cfg:        cfg,
		logger:     logger,
		items:      make(map[string]*model.Notification),
		tombstones: make(map[string]time.Time),
		now:        time.Now,
	}
}

// ApplyPushed merges one push-delivered notification. Insert-or-merge by id:
// a new id is inserted as sent (including its read state); an existing id
// gets its content fields refreshed but keeps the local read state, so a
// duplicate push after a reconnect-triggered resend can never flip a locally
// read item back to unread. Returns true if the notification was inserted.
func (s *Store) ApplyPushed(n model.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneTombstonesLocked()

	if _, dead := s.tombstones[n.ID]; dead {
		s.logger.Debug("ignoring pushed notification for tombstoned id", "id", n.ID)
		return false
	}

	if existing, ok := s.items[n.ID]; ok {
		mergeContent(existing, n)
		return false
	}

	inserted := n
	s.items[n.ID] = &inserted
	s.evictLocked()
	return true
}

// ApplyPage merges a REST history page. Page 1 is a refresh: entries held
// locally but absent from the page are kept, because a pushed notification
// may not have reached the server's history yet. Pages above 1 are appends.
// Either way the per-id collapse rule is the same as for pushes. Returns the
// number of newly inserted notifications.
func (s *Store) ApplyPage(notifications []model.Notification, pageNumber int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneTombstonesLocked()

	inserted := 0
	for _, n := range notifications {
		if _, dead := s.tombstones[n.ID]; dead {
			continue
		}

		if existing, ok := s.items[n.ID]; ok {
			mergeContent(existing, n)
			continue
		}

		item := n
		s.items[n.ID] = &item
		inserted++
	}

	if inserted > 0 {
		s.evictLocked()
	}

	s.logger.Debug("merged history page",
		"page", pageNumber,
		"received", len(notifications),
		"inserted", inserted,
	)
	return inserted
}

// MarkRead sets the notification read. The update is local and immediate;
// server acknowledgement is the caller's concern. Returns false if the id is
// not held.
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[id]
	if !ok {
		return false
	}
	n.IsRead = true
	return true
}

// MarkAllRead sets every held notification read. Returns the number of
// notifications that changed state.
func (s *Store) MarkAllRead() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, n := range s.items {
		if !n.IsRead {
			n.IsRead = true
			changed++
		}
	}
	return changed
}

// Remove deletes the notification and tombstones its id so that merges still
// in flight cannot bring it back. Returns false if the id was not held.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tombstones[id] = s.now()

	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

// UnreadCount returns the live count of unread notifications. Never cached:
// deriving it removes the counter-drift class of bugs entirely.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.items {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// Len returns the number of held notifications.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Get returns a copy of the notification with the given id.
func (s *Store) Get(id string) (model.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.items[id]
	if !ok {
		return model.Notification{}, false
	}
	return *n, true
}

// List returns copies of all held notifications, newest first. CreatedAt is
// the sole ordering key; id breaks ties for a stable order.
func (s *Store) List() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]model.Notification, 0, len(s.items))
	for _, n := range s.items {
		list = append(list, *n)
	}

	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// mergeContent refreshes content fields from an incoming duplicate while
// preserving the local read state. Pushes and page merges carry no mutation
// ordering, so local state wins for state fields.
func mergeContent(existing *model.Notification, incoming model.Notification) {
	read := existing.IsRead
	*existing = incoming
	existing.IsRead = read
}

// pruneTombstonesLocked drops tombstones older than the TTL. Caller holds mu.
func (s *Store) pruneTombstonesLocked() {
	cutoff := s.now().Add(-s.cfg.TombstoneTTL)
	for id, deletedAt := range s.tombstones {
		if deletedAt.Before(cutoff) {
			delete(s.tombstones, id)
		}
	}
}

// evictLocked enforces the capacity bound. Read items are evicted oldest
// first; unread items go only when no read item is left and the store is
// still over capacity. Evicted ids are not tombstoned: they were not deleted
// by the user and may legitimately return on a later page.
// Caller holds mu.
func (s *Store) evictLocked() {
	if s.cfg.Capacity <= 0 || len(s.items) <= s.cfg.Capacity {
		return
	}

	excess := len(s.items) - s.cfg.Capacity

	var read, unread []*model.Notification
	for _, n := range s.items {
		if n.IsRead {
			read = append(read, n)
		} else {
			unread = append(unread, n)
		}
	}

	oldestFirst := func(list []*model.Notification) {
		sort.Slice(list, func(i, j int) bool {
			if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
				return list[i].CreatedAt.Before(list[j].CreatedAt)
			}
			return list[i].ID < list[j].ID
		})
	}
	oldestFirst(read)
	oldestFirst(unread)

	evicted := 0
	for _, n := range append(read, unread...) {
		if evicted == excess {
			break
		}
		delete(s.items, n.ID)
		evicted++
	}

	if evicted > 0 {
		s.logger.Debug("evicted notifications over capacity",
			"evicted", evicted,
			"capacity", s.cfg.Capacity,
		)
	}
}
