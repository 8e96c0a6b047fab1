// Package store implements the Notification Reconciliation Store, the
// canonical client-side notification state.
//
// The store merges two independently-timed sources, the push stream and the
// paginated REST history, that can race arbitrarily. Correctness is defined
// by idempotence and the tombstone rule, not by network timing:
//   - an id appears at most once no matter how many times it arrives
//   - once an id exists locally, merges update content fields but never the
//     local read state
//   - a removed id cannot be resurrected by a late merge within the
//     tombstone window
//   - the unread count is always recomputed live, never cached
package store
