package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/model"
)

// ListOptions filter a notification history fetch.
type ListOptions struct {
	Page       int    // 1-indexed; 0 means page 1
	Limit      int    // page size; 0 uses the server default
	Category   string // optional category filter
	Type       string // optional type filter
	UnreadOnly bool   // only unread notifications
}

// ListResponse is one page of notification history.
type ListResponse struct {
	Notifications []model.Notification `json:"notifications"`
	HasMore       bool                 `json:"hasMore"`
}

// ListNotifications fetches one page of notification history.
func (c *Client) ListNotifications(ctx context.Context, opts ListOptions) (*ListResponse, error) {
	query := url.Values{}

	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Category != "" {
		query.Set("category", opts.Category)
	}
	if opts.Type != "" {
		query.Set("type", opts.Type)
	}
	if opts.UnreadOnly {
		query.Set("unreadOnly", "true")
	}

	var resp ListResponse
	if err := c.get(ctx, "/notifications", query, &resp); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return &resp, nil
}

// GetStats fetches the server-side notification summary. Display fallback
// only: the store's derived unread count takes precedence when they
// disagree.
func (c *Client) GetStats(ctx context.Context) (*model.Stats, error) {
	var stats model.Stats
	if err := c.get(ctx, "/notifications/stats", nil, &stats); err != nil {
		return nil, fmt.Errorf("get notification stats: %w", err)
	}
	return &stats, nil
}

// MarkRead acknowledges a single notification as read.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	if err := c.mutate(ctx, http.MethodPatch, "/notifications/"+url.PathEscape(id)+"/read"); err != nil {
		return fmt.Errorf("mark notification %s read: %w", id, err)
	}
	return nil
}

// MarkAllRead acknowledges every notification as read.
func (c *Client) MarkAllRead(ctx context.Context) error {
	if err := c.mutate(ctx, http.MethodPatch, "/notifications/read-all"); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// Delete removes a notification server-side.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.mutate(ctx, http.MethodDelete, "/notifications/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("delete notification %s: %w", id, err)
	}
	return nil
}
