// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Entity repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [RowStore] : Generic table lookups (point and set) used by the user-type resolver
//   - [UserRepository] : User account persistence with email-based lookups
//   - [PlanRepository] : Plan tier history; exactly one active row per user
//   - [RoleRepository] : Role grants and revocations
//   - [TrackRepository] : Uploaded track metadata
//   - [PlaylistRepository] : Playlists, track membership and atomic position reordering
//
// Sequence numbers provide stable, human-readable ordering (e.g., user #42, playlist #15) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
