package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAPITimeout           = 30 * time.Second
	DefaultMaxRetries           = 3
	DefaultReconnectBaseDelay   = 1 * time.Second
	DefaultReconnectMaxAttempts = 5
	DefaultAuthTimeout          = 10 * time.Second
	DefaultPingInterval         = 15 * time.Second
	DefaultPingTimeout          = 60 * time.Second
	DefaultWriteTimeout         = 5 * time.Second
	DefaultFrameBufferSize      = 256
	DefaultPageSize             = 20
	DefaultPrefetchPages        = 1
	DefaultTombstoneTTL         = 5 * time.Minute
)

func (c *ClientConfig) applyDefaults() {
	// API defaults
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	// Connection defaults
	if c.Connection.ReconnectBaseDelay == 0 {
		c.Connection.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Connection.ReconnectMaxAttempts == 0 {
		c.Connection.ReconnectMaxAttempts = DefaultReconnectMaxAttempts
	}
	if c.Connection.AuthTimeout == 0 {
		c.Connection.AuthTimeout = DefaultAuthTimeout
	}
	if c.Connection.PingInterval == 0 {
		c.Connection.PingInterval = DefaultPingInterval
	}
	if c.Connection.PingTimeout == 0 {
		c.Connection.PingTimeout = DefaultPingTimeout
	}
	if c.Connection.WriteTimeout == 0 {
		c.Connection.WriteTimeout = DefaultWriteTimeout
	}
	if c.Connection.FrameBufferSize == 0 {
		c.Connection.FrameBufferSize = DefaultFrameBufferSize
	}

	// Feed defaults
	if c.Feed.PageSize == 0 {
		c.Feed.PageSize = DefaultPageSize
	}
	if c.Feed.PrefetchPages == 0 {
		c.Feed.PrefetchPages = DefaultPrefetchPages
	}
	if c.Feed.TombstoneTTL == 0 {
		c.Feed.TombstoneTTL = DefaultTombstoneTTL
	}
}
