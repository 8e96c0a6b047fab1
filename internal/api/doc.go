// Package api implements the REST client for the notification history and
// mutation endpoints.
//
// The History Fetcher:
//   - Hydrates and backfills the reconciliation store via paginated fetches
//   - Exposes the stats endpoint as a display fallback only; the store's
//     derived unread count stays authoritative
//   - Retries reads with jittered backoff; mutations are single-attempt
//     because the store applies them optimistically and the documented
//     policy is to neither retry nor roll back a failed acknowledgement
package api
