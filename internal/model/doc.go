// Package model defines shared data types used across the notification client.
//
// Conventions:
//   - Notification IDs: opaque strings assigned by the server
//   - Timestamps: time.Time, serialized as RFC 3339; createdAt is the sole
//     ordering key
//   - Enums: open-ended strings; unrecognized values are preserved as-is
package model
