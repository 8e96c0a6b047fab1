package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/backoff"
)

// Manager owns the lifecycle of the push connection: connect, authenticate,
// reconnect with backoff, disconnect. It exposes the current State and the
// last error for the UI's connection banner, and delivers authenticated
// inbound frames on Frames() in strict arrival order.
//
// State transitions:
//
//	disconnected → connecting           Start()
//	connecting → authenticating         transport connect success
//	authenticating → connected          server auth acknowledgement
//	authenticating → failed             auth rejection (terminal)
//	connected → reconnecting            transport drop not caused by Stop()
//	reconnecting → connecting           after linear backoff, attempt <= cap
//	reconnecting → failed               attempt cap exhausted
//	any → disconnected                  Stop()
type Manager struct {
	cfg    ManagerConfig
	policy backoff.Policy
	logger *slog.Logger

	// newClient is the client factory, swappable in tests.
	newClient func(ClientConfig, *slog.Logger) Client

	frames chan Frame

	mu      sync.RWMutex
	state   State
	lastErr string
	epoch   uint64 // incremented on every Start/Stop; stale goroutines check it
	client  Client
	creds   Credentials
	session string
	cancel  context.CancelFunc
	hooks   []func(State)
	wg      sync.WaitGroup
}

// NewManager creates a new Connection Manager.
func NewManager(cfg ManagerConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FrameBufferSize <= 0 {
		cfg.FrameBufferSize = DefaultManagerConfig().FrameBufferSize
	}

	return &Manager{
		cfg: cfg,
		policy: backoff.Policy{
			BaseDelay:   cfg.BaseDelay,
			MaxAttempts: cfg.MaxAttempts,
		},
		logger:    logger,
		newClient: NewClient,
		frames:    make(chan Frame, cfg.FrameBufferSize),
		state:     StateDisconnected,
	}
}

// Start begins connecting with the given credentials. It returns immediately;
// progress is observable via State. Calling Start while the manager is
// already running returns ErrAlreadyStarted. Restarting after StateFailed is
// how the caller recovers from an authentication rejection.
func (m *Manager) Start(ctx context.Context, creds Credentials) error {
	m.mu.Lock()
	if m.state != StateDisconnected && m.state != StateFailed {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}

	m.creds = creds
	m.session = uuid.NewString()
	m.epoch++
	epoch := m.epoch
	m.lastErr = ""

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()

	m.transition(epoch, StateConnecting, nil)

	m.wg.Add(1)
	go m.run(runCtx, epoch)

	return nil
}

// Stop disconnects and cancels any pending backoff timer. Frames from the
// now-stale connection are discarded: a reconnect attempt racing Stop cannot
// resurrect the connection.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.state == StateDisconnected {
		m.mu.Unlock()
		return
	}

	m.epoch++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	client := m.client
	m.client = nil
	m.state = StateDisconnected
	m.lastErr = ""
	hooks := append([]func(State){}, m.hooks...)
	m.mu.Unlock()

	if client != nil {
		client.Close()
	}
	for _, hook := range hooks {
		hook(StateDisconnected)
	}

	m.wg.Wait()
	m.logger.Info("connection manager stopped")
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// LastError returns the most recent transport or authentication error, or ""
// when there is none. It is cleared on every successful connect.
func (m *Manager) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Frames returns the channel of authenticated inbound frames. The channel is
// never closed; it survives reconnects and Start/Stop cycles.
func (m *Manager) Frames() <-chan Frame {
	return m.frames
}

// OnStateChange registers a hook invoked on every state transition. Hooks
// must not call Stop.
func (m *Manager) OnStateChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, fn)
}

// Send marshals and writes a frame on the current connection. Returns
// ErrNotConnected outside StateConnected.
func (m *Manager) Send(frame Frame) error {
	m.mu.RLock()
	client, state := m.client, m.state
	m.mu.RUnlock()

	if state != StateConnected || client == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	return client.Send(data)
}

// run is the connection lifecycle loop for one Start call.
func (m *Manager) run(ctx context.Context, epoch uint64) {
	defer m.wg.Done()

	attempt := 0

	for {
		if ctx.Err() != nil {
			return
		}

		client := m.newClient(ClientConfig{
			URL:          m.cfg.WSURL,
			PingInterval: m.cfg.PingInterval,
			PingTimeout:  m.cfg.PingTimeout,
			WriteTimeout: m.cfg.WriteTimeout,
			BufferSize:   m.cfg.FrameBufferSize,
		}, m.logger)

		err := client.Connect(ctx)
		if err == nil {
			if !m.transition(epoch, StateAuthenticating, nil) {
				client.Close()
				return
			}

			err = m.authenticate(ctx, client)
			if err != nil {
				client.Close()

				var authErr *AuthError
				if errors.As(err, &authErr) {
					// Bad credentials are not a transient condition; retrying
					// silently would spam the server and mask the real problem.
					m.transition(epoch, StateFailed, err)
					return
				}
			} else {
				if !m.setConnected(epoch, client) {
					client.Close()
					return
				}
				attempt = 0

				err = m.pump(ctx, epoch, client)
				client.Close()
				m.clearClient(epoch)

				if !m.isCurrent(epoch) {
					return
				}
			}
		}

		if ctx.Err() != nil {
			return
		}

		attempt++
		if m.policy.Exhausted(attempt) {
			m.logger.Warn("reconnect attempts exhausted",
				"attempts", attempt-1,
				"error", err,
			)
			m.transition(epoch, StateFailed, err)
			return
		}

		if !m.transition(epoch, StateReconnecting, err) {
			return
		}

		delay := m.policy.Delay(attempt)
		m.logger.Info("reconnecting",
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		if !m.transition(epoch, StateConnecting, nil) {
			return
		}
	}
}

// authenticate sends the handshake and waits for the server's verdict.
// Anything the server sends before acknowledging authentication is dropped:
// the dispatcher must not see pre-auth frames.
func (m *Manager) authenticate(ctx context.Context, client Client) error {
	m.mu.RLock()
	payload := authPayload{
		Token:     m.creds.Token,
		UserID:    m.creds.UserID,
		SessionID: m.session,
	}
	m.mu.RUnlock()

	frame, err := NewFrame(FrameAuthenticate, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal auth frame: %w", err)
	}
	if err := client.Send(data); err != nil {
		return err
	}

	timer := time.NewTimer(m.cfg.AuthTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return ErrAuthTimeout
		case err := <-client.Errors():
			return err
		case data, ok := <-client.Messages():
			if !ok {
				return ErrNotConnected
			}

			var f Frame
			if err := json.Unmarshal(data, &f); err != nil {
				m.logger.Warn("dropping malformed frame during auth", "error", err)
				continue
			}

			switch f.Type {
			case FrameAuthenticated:
				m.logger.Debug("authenticated", "user", payload.UserID)
				return nil
			case FrameAuthError:
				var p authErrorPayload
				json.Unmarshal(f.Data, &p)
				if p.Message == "" {
					p.Message = "credentials rejected"
				}
				return &AuthError{Reason: p.Message}
			default:
				m.logger.Debug("dropping pre-auth frame", "type", f.Type)
			}
		}
	}
}

// pump forwards inbound frames until the connection drops or the epoch goes
// stale. Malformed frames are dropped with a diagnostic, never fatal.
func (m *Manager) pump(ctx context.Context, epoch uint64, client Client) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-client.Errors():
			return err
		case data, ok := <-client.Messages():
			if !ok {
				return ErrNotConnected
			}

			var f Frame
			if err := json.Unmarshal(data, &f); err != nil {
				m.logger.Warn("dropping malformed frame", "error", err)
				continue
			}

			if !m.isCurrent(epoch) {
				return nil
			}

			select {
			case m.frames <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// transition moves to the given state if epoch is still current, records the
// error for LastError, and fires state-change hooks. Returns false when the
// epoch is stale (Stop or a newer Start won the race).
func (m *Manager) transition(epoch uint64, state State, err error) bool {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return false
	}

	m.state = state
	if err != nil {
		m.lastErr = err.Error()
	}
	hooks := append([]func(State){}, m.hooks...)
	m.mu.Unlock()

	for _, hook := range hooks {
		hook(state)
	}
	return true
}

// setConnected publishes the client and enters StateConnected, clearing the
// last error and firing hooks (which rejoin desired rooms).
func (m *Manager) setConnected(epoch uint64, client Client) bool {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return false
	}

	m.client = client
	m.state = StateConnected
	m.lastErr = ""
	hooks := append([]func(State){}, m.hooks...)
	m.mu.Unlock()

	m.logger.Info("connected", "url", m.cfg.WSURL)
	for _, hook := range hooks {
		hook(StateConnected)
	}
	return true
}

// clearClient removes the published client after a session ends.
func (m *Manager) clearClient(epoch uint64) {
	m.mu.Lock()
	if m.epoch == epoch {
		m.client = nil
	}
	m.mu.Unlock()
}

// isCurrent reports whether epoch is still the live Start generation.
func (m *Manager) isCurrent(epoch uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch == epoch
}
