// Package session binds one client to one active room. A controller
// subscribes the client to room snapshots and exposes the intents the
// client may perform, gated by role and room state.
package session
