// Package mocks provides centralized mock implementations of the store
// interfaces for testing. Each mock offers per-method function overrides
// plus a simple in-memory default, so test files share one implementation
// instead of redefining inline fakes.
package mocks
