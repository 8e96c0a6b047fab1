// Package rooms tracks which logical channels the client wants to be joined
// to on the notification service.
//
// The desired set is distinct from what the server has actually joined:
// during reconnects the two drift, and the manager resolves the drift by
// re-issuing joins for the whole desired set on every connected transition.
// Duplicate joins are expected traffic; duplicate delivery is absorbed by the
// store's id dedupe, never by this layer.
package rooms

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/connection"
)

// Sender writes frames on the live connection. Returns
// connection.ErrNotConnected when there is none; that is not an error here,
// the desired set is replayed on the next connect.
type Sender interface {
	Send(frame connection.Frame) error
}

// Manager tracks desired rooms and replays joins after reconnect.
type Manager struct {
	sender Sender
	logger *slog.Logger

	mu      sync.Mutex
	desired map[string]struct{}
}

// NewManager creates a room subscription manager.
func NewManager(sender Sender, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sender:  sender,
		logger:  logger,
		desired: make(map[string]struct{}),
	}
}

// Join adds room to the desired set and issues a join if connected. Failure
// to send is not fatal: the room stays desired and is joined on reconnect.
func (m *Manager) Join(room string) {
	m.mu.Lock()
	m.desired[room] = struct{}{}
	m.mu.Unlock()

	m.send(connection.FrameJoinRoom, room)
}

// Leave removes room from the desired set and issues a leave if connected.
// Called while disconnected it still removes the room, so a later reconnect
// does not resurrect it.
func (m *Manager) Leave(room string) {
	m.mu.Lock()
	delete(m.desired, room)
	m.mu.Unlock()

	m.send(connection.FrameLeaveRoom, room)
}

// Rejoin issues a join for every desired room. The connection manager calls
// this on each connected transition; no subscription is assumed to survive a
// reconnect.
func (m *Manager) Rejoin() {
	for _, room := range m.Desired() {
		m.send(connection.FrameJoinRoom, room)
	}
}

// Desired returns the desired rooms in sorted order.
func (m *Manager) Desired() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	rooms := make([]string, 0, len(m.desired))
	for room := range m.desired {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)
	return rooms
}

func (m *Manager) send(frameType, room string) {
	frame, err := connection.NewFrame(frameType, map[string]string{"room": room})
	if err != nil {
		m.logger.Warn("failed to build room frame", "type", frameType, "room", room, "error", err)
		return
	}

	if err := m.sender.Send(frame); err != nil {
		if err == connection.ErrNotConnected {
			m.logger.Debug("room change deferred until reconnect", "type", frameType, "room", room)
			return
		}
		m.logger.Warn("failed to send room frame", "type", frameType, "room", room, "error", err)
	}
}
