// Package repository provides a generic repository abstraction built on Bun:
// CRUD, deferred query filters, pagination, transaction-scoped variants, and
// an audit-aware decorator adding soft deletion and optimistic concurrency.
package repository
