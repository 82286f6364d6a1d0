// Package database provides connection management, table migrations,
// configuration loading, query-log hooks, driver error classification,
// health checks, and related utilities built on top of Bun.
package database
