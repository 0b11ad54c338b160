// Package repositories implements SQLite persistence for catalog resolutions.
//
// The resolution cache stores accepted track matches keyed by their normalized
// search query, so repeat seeds and recurring AI suggestions resolve without a
// catalog round-trip.
//
// Key Implementations:
//   - [ResolutionRepository] : Cached catalog resolutions with query-key lookups
//   - [Migrate] : Applies the embedded schema, safe to run repeatedly
//
// Writes are at-most-once per query key: a duplicate insert hits the UNIQUE
// constraint and is silently dropped, so the first accepted resolution wins.
package repositories
