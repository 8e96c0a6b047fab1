package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *ClientConfig) Validate() error {
	if c.API.RestURL == "" {
		return errors.New("api.rest_url is required")
	}
	if c.API.WSURL == "" {
		return errors.New("api.ws_url is required")
	}
	if !strings.HasPrefix(c.API.WSURL, "ws://") && !strings.HasPrefix(c.API.WSURL, "wss://") {
		return fmt.Errorf("api.ws_url must use ws:// or wss://, got %q", c.API.WSURL)
	}
	if c.API.Token == "" {
		return errors.New("api.token is required")
	}
	if c.API.UserID == "" {
		return errors.New("api.user_id is required")
	}

	if c.Connection.ReconnectMaxAttempts < 1 {
		return errors.New("connection.reconnect_max_attempts must be >= 1")
	}
	if c.Connection.FrameBufferSize < 1 {
		return errors.New("connection.frame_buffer_size must be >= 1")
	}

	if c.Feed.PageSize < 1 {
		return errors.New("feed.page_size must be >= 1")
	}
	if c.Feed.StoreCapacity < 0 {
		return errors.New("feed.store_capacity must be >= 0")
	}

	return nil
}
