// Package config loads, normalizes, and validates the TOML configuration
// for creatorpack. Policy values are checked here, at parse time, so the
// planners never see malformed policies.
package config
