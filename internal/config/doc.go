// Package config loads, validates, and normalizes the TOML configuration
// shared by the daemon and CLI.
//
// Load resolves the config path (explicit flag, ~/.config/podforge, or a
// project-local podforge.toml), overlays the file onto Default(), expands
// paths, and validates the result. Absent a config file the defaults keep
// the daemon fully runnable: text stages fall back to heuristic output and
// voice synthesis runs in simulated mode, so no API keys are required.
package config
