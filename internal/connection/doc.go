// Package connection implements the persistent push transport to the
// notification service.
//
// The Connection Manager:
//   - Owns a single WebSocket connection (connect, authenticate, disconnect,
//     reconnect) and exposes its state as an explicit state machine
//   - Authenticates with {token, userId} immediately after transport connect;
//     no frames reach the dispatcher before authentication succeeds
//   - Retries transport failures with linear backoff up to an attempt cap;
//     authentication rejections are terminal until Start is called again
//   - Emits inbound frames in strict arrival order on Frames()
package connection
