// Package config loads the xrtkcfg tool configuration.
//
// The configuration is a YAML file (default: <user config dir>/xrtkcfg/config.yaml)
// merged over built-in defaults, then overridden from the environment:
//
//	XRTKCFG_CONFIG       configuration file to read
//	XRTKCFG_BACKEND      registry backend (windows, sqlite)
//	XRTKCFG_REGISTRY_DB  emulated registry database
//	LOG_LEVEL            log level
//	XRTKCFG_LOG_FORMAT   log format (console, json)
//
// Example:
//
//	registry:
//	  backend: sqlite
//	  database: ${HOME}/.config/xrtkcfg/registry.db
//	  read_only_hives: [HKLM]
//	logging:
//	  level: debug
//	  format: json
//	metrics:
//	  enabled: true
//	  textfile: /var/lib/node_exporter/xrtkcfg.prom
//
// Unknown keys are rejected, and the result is validated with struct tags
// before use.
package config
