// Package oracle defines the advisory language-model collaborator consulted
// for low-confidence reference candidates, and an OpenAI-backed client.
//
// The oracle is advisory only: verdicts adjust confidence and review flags,
// they never delete a reference (deletion is a persistence-layer decision).
package oracle

import (
	"context"
	"errors"

	"github.com/s-hayashi/lawgraph/internal/law"
)

// Request carries one candidate to the oracle.
type Request struct {
	SourceText    string       `json:"source_text"`
	ContextWindow string       `json:"context_window"`
	Position      law.Position `json:"position"`
	GuessLawID    string       `json:"guess_law_id,omitempty"`
	GuessTarget   law.Position `json:"guess_target"`
	Kind          string       `json:"kind"`
}

// Verdict is the structured oracle response.
type Verdict struct {
	Valid           bool          `json:"valid"`
	CorrectedTarget *law.Position `json:"corrected_target,omitempty"`
	Confidence      float64       `json:"confidence"`
}

// Client is implemented by oracle transports. Review must respect ctx
// cancellation; callers impose a hard timeout and fall back to the
// pre-oracle confidence on error.
type Client interface {
	Review(ctx context.Context, req Request) (Verdict, error)
}

// ErrTimeout and ErrProtocol classify recoverable oracle failures. Both are
// treated as "invalid verdict, no confidence change" by the pipeline.
var (
	ErrTimeout  = errors.New("oracle: timed out")
	ErrProtocol = errors.New("oracle: malformed response")
)
