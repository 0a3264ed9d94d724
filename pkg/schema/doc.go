// Package schema defines the configuration attributes understood by the
// OpenXR Toolkit API layer: their registry value names, value types, legal
// values and defaults.
//
// # Scopes
//
// Attributes live in one of two scopes:
//
//   - Application: machine-wide settings stored under the local-machine hive
//     (key bindings, safe mode).
//   - Module: per-user, per-game settings stored under the current-user hive,
//     one child key per game.
//
// # Upstream contract
//
// Enumerated attributes are stored as raw integers which the toolkit reads
// back through its own compiled enums. The ordinal tables in enums.go mirror
// those enums exactly and are pinned to UpstreamVersion. When the toolkit
// changes an enum, enums.go is the only file that changes.
//
// # Usage
//
//	s := schema.Default()
//	def, err := s.Lookup(schema.ScopeModule, "turbo")
//	if errors.Is(err, schema.ErrUnknownAttribute) {
//		// not a toolkit setting
//	}
//
// Schemas are immutable once built and safe to share.
package schema
