// Package ui provides terminal output components for the tourguide CLI.
//
// This package uses Lipgloss to render polished "run once and exit" output
// for the one-shot commands (place, status, reset, scan). The interactive
// terminal preview lives in the preview package.
//
// # Components
//
//   - Header: Command banner showing operation name and parameters
//   - Result: Success/failure/warning boxes with styled details
//   - PlacementBox: Computed panel placement with a scaled viewport sketch
//   - StatusTable: Completion records from the store
//   - Confirm: Typed confirmation for destructive commands
//
// Example:
//
//	fmt.Println(ui.NewHeader("Placement", "tourguide place", []ui.Param{
//	    {Key: "Viewport", Value: "1280x800"},
//	}).Render())
//	fmt.Println(ui.NewPlacementBox(result, snap, target).Render())
//
// # Logging Integration
//
// This package expects logging to be controlled via the TOURGUIDE_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly.
package ui
