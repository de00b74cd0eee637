package analyzer

import (
	"context"

	"github.com/ccollicutt/chatstat/pkg/table"
)

// Engine computes one analysis over the message table.
// Each analysis (stats, words, replies...) implements this interface.
type Engine interface {
	// Name returns the analysis name used in config and reports.
	Name() string

	// Scope tells the analyzer whether a user filter applies to this engine.
	Scope() Scope

	// Process handles a single row, updating internal state.
	// Rows arrive in table order.
	Process(ctx context.Context, m *table.Message) error

	// Finalize writes the engine's record into results.
	// Called after all rows have been processed.
	Finalize(ctx context.Context, results *Results) error

	// Reset clears internal state for reuse.
	Reset()
}
