// Package sources defines the capability every metadata provider implements
// and the decorators shared by all of them.
//
// An Adapter answers one Query with at most one RawFact. Failures are
// classified with the package sentinels: ErrNotFound is terminal for that
// source and track, ErrUnavailable is retried by WithRetry with bounded
// exponential backoff (honoring Retry-After), and ErrInsufficientQuery marks
// sources that can only search by hints earlier sources supplied.
// WithRateLimit shares one request budget per source across concurrent
// lookups. Concrete providers live in subpackages.
package sources
