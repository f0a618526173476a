// Package tui provides the Bubble Tea explorer for analysis results.
package tui

import "github.com/OFFIS-RIT/rhetorik/pkg/interaction"

// AnalysisFinished is sent when a submitted analysis returns.
// Applied is false when a newer analysis was started in the meantime.
type AnalysisFinished struct {
	Text    string
	Applied bool
	Err     error
}

// SessionUpdated carries a fresh snapshot of the session.
type SessionUpdated struct {
	Snapshot interaction.Snapshot
}

// SimulationTick is sent by the force simulation after every step.
type SimulationTick struct{}
