// Package config provides user configuration management for tourguide.
//
// Two kinds of YAML file live here:
//
//   - The registry (config.yaml under the user config directory) stores
//     application preferences, the bridges seen on the LAN and, per tour
//     storage key, whether the user has finished or dismissed that tour.
//     *Registry implements tour.Store.
//   - Tour files describe one tour: its steps, optional timing overrides and
//     an optional simulated page used by the terminal preview.
//
// # Configuration File Location
//
// The registry is config.yaml in $TOURGUIDE_CONFIG_DIR, or in "tourguide"
// under the platform config directory:
//   - Linux: $XDG_CONFIG_HOME/tourguide or $HOME/.config/tourguide
//   - macOS: $HOME/Library/Application Support/tourguide
//   - Windows: %AppData%\tourguide
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	file, err := config.LoadTourFile("onboarding.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	opts := tour.Options{Definition: file.Definition, Host: page, Store: registry}
//	file.Timing.Apply(&opts)
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// Registry methods take the registry's own lock, and file operations are
// protected by a mutex to ensure atomic writes.
package config
