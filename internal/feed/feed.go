package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/api"
	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/connection"
	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/dispatch"
	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/model"
	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/rooms"
	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/store"
)

// Default configuration values.
const (
	DefaultPageSize        = 20
	DefaultPrefetchPages   = 1
	DefaultMutationTimeout = 10 * time.Second
)

// Config holds feed configuration.
type Config struct {
	PageSize        int           // history page size
	PrefetchPages   int           // pages fetched during hydration
	MutationTimeout time.Duration // deadline for fire-and-forget acknowledgements
	Rooms           []string      // rooms joined at start
	Store           store.Config
}

// MutationError reports a REST acknowledgement that failed after the
// optimistic local update was already applied. Local state is intentionally
// not rolled back and the mutation is not retried; the error is a soft
// warning for the UI.
type MutationError struct {
	Op  string // "mark_read", "mark_all_read", "delete"
	ID  string // notification id; empty for mark_all_read
	Err error
}

func (e *MutationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s acknowledgement failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s acknowledgement failed for %s: %v", e.Op, e.ID, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// Feed is the assembled notification feed.
type Feed struct {
	cfg    Config
	logger *slog.Logger

	store      *store.Store
	rest       *api.Client
	conn       *connection.Manager
	rooms      *rooms.Manager
	dispatcher *dispatch.Dispatcher

	// Callbacks; set before Start.
	onNotification  func(model.Notification)
	onSystemMessage func(model.SystemMessage)
	onMutationError func(*MutationError)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Pagination cursor for LoadMore.
	pageMu   sync.Mutex
	nextPage int
	hasMore  bool
}

// New assembles a feed from its collaborators. The store, room manager and
// dispatcher are owned by the feed; the REST client and connection manager
// are injected.
func New(cfg Config, rest *api.Client, conn *connection.Manager, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.PrefetchPages <= 0 {
		cfg.PrefetchPages = DefaultPrefetchPages
	}
	if cfg.MutationTimeout <= 0 {
		cfg.MutationTimeout = DefaultMutationTimeout
	}

	f := &Feed{
		cfg:        cfg,
		logger:     logger,
		store:      store.New(cfg.Store, logger),
		rest:       rest,
		conn:       conn,
		rooms:      rooms.NewManager(conn, logger),
		dispatcher: dispatch.New(logger),
		nextPage:   1,
		hasMore:    true,
	}

	f.dispatcher.Register(connection.FrameNotification, f.handleNotification)
	f.dispatcher.Register(connection.FrameSystemMessage, f.handleSystemMessage)

	conn.OnStateChange(func(s connection.State) {
		if s == connection.StateConnected {
			f.rooms.Rejoin()
		}
	})

	return f
}

// OnNotification registers a callback fired for each newly inserted pushed
// notification. Set before Start.
func (f *Feed) OnNotification(fn func(model.Notification)) { f.onNotification = fn }

// OnSystemMessage registers a callback for server system messages. Set
// before Start.
func (f *Feed) OnSystemMessage(fn func(model.SystemMessage)) { f.onSystemMessage = fn }

// OnMutationError registers a callback for failed mutation
// acknowledgements. Set before Start. Default: a slog warning.
func (f *Feed) OnMutationError(fn func(*MutationError)) { f.onMutationError = fn }

// Start hydrates the store from REST history and opens the push connection.
// A failed hydration is logged and tolerated: the push stream still works
// and the caller can Refresh later.
func (f *Feed) Start(ctx context.Context, creds connection.Credentials) error {
	f.ctx, f.cancel = context.WithCancel(ctx)

	for _, room := range f.cfg.Rooms {
		f.rooms.Join(room)
	}

	if err := f.Refresh(f.ctx); err != nil {
		f.logger.Warn("initial history fetch failed", "error", err)
	} else {
		for page := 2; page <= f.cfg.PrefetchPages; page++ {
			if err := f.LoadMore(f.ctx); err != nil {
				f.logger.Warn("history prefetch stopped", "page", page, "error", err)
				break
			}
		}
	}

	if err := f.conn.Start(f.ctx, creds); err != nil {
		return fmt.Errorf("start connection: %w", err)
	}

	f.wg.Add(1)
	go f.pumpFrames()

	f.logger.Info("notification feed started",
		"rooms", f.rooms.Desired(),
		"hydrated", f.store.Len(),
	)
	return nil
}

// Stop closes the push connection and waits for in-flight work.
func (f *Feed) Stop() {
	f.conn.Stop()
	if f.cancel != nil {
		f.cancel()
	}
	f.wg.Wait()
	f.logger.Info("notification feed stopped")
}

// MarkRead marks a notification read, locally and immediately, then sends
// the acknowledgement fire-and-forget. Returns false if the id is not held.
func (f *Feed) MarkRead(id string) bool {
	if !f.store.MarkRead(id) {
		return false
	}
	f.ack("mark_read", id, func(ctx context.Context) error {
		return f.rest.MarkRead(ctx, id)
	})
	return true
}

// MarkAllRead marks every held notification read, then acknowledges
// fire-and-forget. Returns the number of notifications that changed state.
func (f *Feed) MarkAllRead() int {
	changed := f.store.MarkAllRead()
	f.ack("mark_all_read", "", func(ctx context.Context) error {
		return f.rest.MarkAllRead(ctx)
	})
	return changed
}

// Remove deletes a notification locally (tombstoning the id against late
// merges), then acknowledges fire-and-forget. The server-side delete is sent
// even when the id is not held locally: the server's history may hold pages
// the client never fetched.
func (f *Feed) Remove(id string) bool {
	removed := f.store.Remove(id)
	f.ack("delete", id, func(ctx context.Context) error {
		return f.rest.Delete(ctx, id)
	})
	return removed
}

// Refresh fetches page 1 and merges it as a refresh. Locally held entries
// absent from the page survive; see the store's page-merge contract.
func (f *Feed) Refresh(ctx context.Context) error {
	resp, err := f.rest.ListNotifications(ctx, api.ListOptions{Page: 1, Limit: f.cfg.PageSize})
	if err != nil {
		return err
	}

	f.store.ApplyPage(resp.Notifications, 1)

	f.pageMu.Lock()
	f.nextPage = 2
	f.hasMore = resp.HasMore
	f.pageMu.Unlock()
	return nil
}

// LoadMore fetches the next history page and appends it. No-op once the
// server reports the history exhausted.
func (f *Feed) LoadMore(ctx context.Context) error {
	f.pageMu.Lock()
	if !f.hasMore {
		f.pageMu.Unlock()
		return nil
	}
	page := f.nextPage
	f.pageMu.Unlock()

	resp, err := f.rest.ListNotifications(ctx, api.ListOptions{Page: page, Limit: f.cfg.PageSize})
	if err != nil {
		return err
	}

	f.store.ApplyPage(resp.Notifications, page)

	f.pageMu.Lock()
	f.nextPage = page + 1
	f.hasMore = resp.HasMore
	f.pageMu.Unlock()
	return nil
}

// Stats fetches the server-side summary. Display fallback only; UnreadCount
// is authoritative when they disagree.
func (f *Feed) Stats(ctx context.Context) (*model.Stats, error) {
	return f.rest.GetStats(ctx)
}

// UnreadCount returns the live derived unread count.
func (f *Feed) UnreadCount() int { return f.store.UnreadCount() }

// Notifications returns the held notifications, newest first.
func (f *Feed) Notifications() []model.Notification { return f.store.List() }

// State returns the connection state.
func (f *Feed) State() connection.State { return f.conn.State() }

// LastError returns the connection's last error, or "".
func (f *Feed) LastError() string { return f.conn.LastError() }

// JoinRoom adds a room to the desired set.
func (f *Feed) JoinRoom(room string) { f.rooms.Join(room) }

// LeaveRoom removes a room from the desired set, connected or not.
func (f *Feed) LeaveRoom(room string) { f.rooms.Leave(room) }

// pumpFrames feeds inbound frames to the dispatcher in arrival order.
func (f *Feed) pumpFrames() {
	defer f.wg.Done()

	for {
		select {
		case <-f.ctx.Done():
			return
		case frame := <-f.conn.Frames():
			f.dispatcher.Dispatch(frame)
		}
	}
}

// handleNotification merges one pushed notification into the store.
func (f *Feed) handleNotification(frame connection.Frame) {
	var n model.Notification
	if err := json.Unmarshal(frame.Data, &n); err != nil {
		f.logger.Warn("dropping malformed notification payload", "error", err)
		return
	}
	if n.ID == "" {
		f.logger.Warn("dropping notification without id")
		return
	}

	inserted := f.store.ApplyPushed(n)
	if inserted && f.onNotification != nil {
		f.onNotification(n)
	}
}

// handleSystemMessage forwards a server broadcast to the UI callback.
func (f *Feed) handleSystemMessage(frame connection.Frame) {
	var msg model.SystemMessage
	if err := json.Unmarshal(frame.Data, &msg); err != nil {
		f.logger.Warn("dropping malformed system message", "error", err)
		return
	}

	if f.onSystemMessage != nil {
		f.onSystemMessage(msg)
	}
}

// ack sends a mutation acknowledgement in the background. Failures surface
// through OnMutationError; local state is never rolled back.
func (f *Feed) ack(op, id string, fn func(context.Context) error) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), f.cfg.MutationTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			mutErr := &MutationError{Op: op, ID: id, Err: err}
			if f.onMutationError != nil {
				f.onMutationError(mutErr)
				return
			}
			f.logger.Warn("mutation acknowledgement failed",
				"op", op,
				"id", id,
				"error", err,
			)
		}
	}()
}
