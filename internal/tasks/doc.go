// Package tasks runs long-running, multi-user operations with real-time progress reporting.
//
// # Core Operations
//
// [Engine] provides two operations:
//
//  1. [Engine.BulkResolve] : Resolve user types for many users
//     - Fans out across a fixed pool of workers
//     - Paces store access with a token bucket rate limiter
//     - Records per-user success or failure with the error code
//     - Optionally writes a report and manifest via the formatter package
//
//  2. [Engine.LibraryStats] : Aggregate a user's library
//     - Counts playlists and distinct tracks, sums durations
//     - Resolves the plan tier alongside
//     - Runs every query concurrently and fails on the first error
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
