// Package storage defines the persistence interfaces for the game core.
//
// It provides a high-level abstraction for storing room aggregates, the
// invite-code index, session pointers, and telemetry events. Implementations
// of these interfaces (bbolt for game state, sqlite for telemetry) live in
// subpackages.
//
// # Error Types
//
//   - ErrNotFound: Indicates a requested record is missing.
package storage
