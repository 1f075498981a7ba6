// Package room defines the Room aggregate for lateral-thinking puzzle games,
// including membership, rules, the append-only message log, per-user notes,
// and the room lifecycle states (Waiting, Active, Ended).
//
// Mutation of persisted rooms happens through the service subpackage; this
// package holds the pure domain types and invariants.
package room
