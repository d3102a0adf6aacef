package ui

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100
)

// Log display limits.
const (
	// LogBufferLimit is the maximum number of log lines kept for display.
	// The commander keeps the full history; filter changes replay from it.
	LogBufferLimit = 20000
)
