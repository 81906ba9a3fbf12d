// package usertypes resolves a user's plan tier and role set.
//
// Lookups go through a short-lived per-user [Cache] and are retried with exponential
// backoff via [Retry], failing fast on unauthorized and not-found errors. [Resolver.All]
// fetches both kinds concurrently and fails as soon as either does.
package usertypes
