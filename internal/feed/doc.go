// Package feed wires the push connection, room subscriptions, frame
// dispatcher, REST history fetcher and reconciliation store into the
// notification feed the UI consumes.
//
// The feed:
//   - Hydrates the store from REST history on start, then merges pushed
//     notifications as they arrive
//   - Applies mark-read / mark-all-read / delete optimistically and sends
//     the REST acknowledgement fire-and-forget; a failed acknowledgement is
//     surfaced as a MutationError, never rolled back
//   - Rejoins desired rooms on every reconnect
//
// The UI only ever reads derived state (List, UnreadCount, State) and issues
// imperative intents; all reconciliation lives in the store.
package feed
