// Package store provides abstractions for data persistence: one interface
// per entity kind, the transaction helpers that bind them together, and
// the shared error taxonomy. Implementations live under internal/platform.
package store
