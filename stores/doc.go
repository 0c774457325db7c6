// Package stores provides user-store implementations for the authenticator:
// an in-memory map store for tests and examples, and a Redis-backed store
// for deployments that keep the identity directory in Redis.
//
// # Architecture boundaries
//
// This package owns identity persistence and its concurrency discipline.
// It does NOT verify tokens or classify failures — lookups report
// authgate.ErrUserNotFound or a transport error and leave classification to
// the authenticator.
//
// # What this package must NOT do
//
//   - Make authentication decisions.
//   - Distinguish "user missing" from "token forged" in any externally
//     visible way (both surface as lookup errors to the authenticator).
package stores
