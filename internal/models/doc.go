// Package models defines domain entities and persistence interfaces for the soundshelf media library.
//
// The package contains three categories of types:
//
// 1. Persistent Entities: Database-backed models with full lifecycle management
//   - [User] : User accounts
//   - [Track] : Uploaded audio tracks
//   - [Playlist] : User playlists
//   - [PlaylistTrack] : Junction rows linking playlists to tracks with 1-based positions
//
// 2. User Types: The subscription and capability attributes resolved per user
//   - [PlanTier] : Closed set of subscription levels, defaulting to [PlanFree]
//   - [Role] / [RoleSet] : Capability grants independent of the plan tier
//
// 3. Store Primitives: [Row] and [Filter], the shape of generic table lookups.
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
