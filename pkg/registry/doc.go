// Package registry reads and writes OpenXR Toolkit settings in the system
// registry.
//
// An Accessor maps (scope, module, value name) onto registry keys using a
// Layout and delegates the physical operations to a Backend:
//
//   - WindowsBackend talks to the real registry (windows builds only).
//   - SQLiteBackend keeps an emulated registry in a SQLite database with
//     WAL mode and embedded migrations. It is used on other platforms,
//     for dry runs against a copy of a profile, and in tests.
//
// Every call is a fresh read or write. Nothing is cached and nothing is
// locked: the toolkit itself may read the same keys concurrently.
package registry
