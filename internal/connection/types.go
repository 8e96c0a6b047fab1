package connection

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyStarted  = errors.New("already started")
	ErrAlreadyClosed   = errors.New("already closed")
	ErrAuthTimeout     = errors.New("authentication timed out")
)

// AuthError is a server authentication rejection. It is terminal: the
// manager transitions to StateFailed and does not retry until the caller
// supplies fresh credentials via Start.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected: %s", e.Reason)
}

// State is the connection lifecycle state. Exactly one value at a time.
type State string

const (
	StateDisconnected   State = "disconnected"
	StateConnecting     State = "connecting"
	StateAuthenticating State = "authenticating"
	StateConnected      State = "connected"
	StateReconnecting   State = "reconnecting"
	StateFailed         State = "failed"
)

// Frame is the wire envelope for every message in either direction.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewFrame marshals payload into a frame of the given type.
func NewFrame(frameType string, payload any) (Frame, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, fmt.Errorf("marshal %s payload: %w", frameType, err)
	}
	return Frame{Type: frameType, Data: data}, nil
}

// Frame types exchanged with the server.
const (
	FrameAuthenticate  = "authenticate"
	FrameAuthenticated = "authenticated"
	FrameAuthError     = "auth_error"
	FrameJoinRoom      = "join_room"
	FrameLeaveRoom     = "leave_room"
	FrameNotification  = "notification"
	FrameSystemMessage = "system_message"
)

// Credentials authenticate the client after transport connect.
type Credentials struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// authPayload is the handshake body. SessionID identifies this connection
// instance in server logs across reconnects.
type authPayload struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
}

// authErrorPayload is the body of an auth_error frame.
type authErrorPayload struct {
	Message string `json:"message"`
}

// ClientConfig configures a single WebSocket client.
type ClientConfig struct {
	URL          string        // WebSocket URL (e.g., wss://erp.example.com/ws/notifications)
	PingInterval time.Duration // Keepalive ping cadence
	PingTimeout  time.Duration // Max time without ping/pong before the connection is stale
	WriteTimeout time.Duration // Write deadline for sends
	BufferSize   int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingInterval: 15 * time.Second,
		PingTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   256,
	}
}

// ManagerConfig configures the Connection Manager.
type ManagerConfig struct {
	WSURL           string        // WebSocket URL
	AuthTimeout     time.Duration // Max wait for the authentication acknowledgement
	BaseDelay       time.Duration // Linear backoff unit between reconnect attempts
	MaxAttempts     int           // Consecutive failed attempts before StateFailed
	FrameBufferSize int           // Buffer size for the outbound Frames channel
	PingInterval    time.Duration // Passed through to the client
	PingTimeout     time.Duration // Passed through to the client
	WriteTimeout    time.Duration // Passed through to the client
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		AuthTimeout:     10 * time.Second,
		BaseDelay:       1 * time.Second,
		MaxAttempts:     5,
		FrameBufferSize: 256,
		PingInterval:    15 * time.Second,
		PingTimeout:     60 * time.Second,
		WriteTimeout:    5 * time.Second,
	}
}
