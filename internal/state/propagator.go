// Package state owns the run state lifecycle: the initial snapshot, the
// closed set of per-stage patches, and the merge that folds patches into
// fresh copies. Stages receive snapshots and return patches; nothing else
// writes the state.
package state

import (
	"strings"

	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
)

// Patch is one stage's proposed contribution. The patch set is closed: each
// stage writes only the fields its patch type covers, so two stages cannot
// contend for a field by construction.
type Patch interface {
	apply(s *models.AgentState)
}

// NewInitial returns the starting state for one (ticker, date) run.
func NewInitial(ticker, tradeDate string) *models.AgentState {
	return &models.AgentState{
		Ticker:    strings.ToUpper(strings.TrimSpace(ticker)),
		TradeDate: tradeDate,
	}
}

// Apply clones prev, merges the patch, and records the stage as executed.
// The input state is never mutated; callers holding it keep their snapshot.
// A nil patch still records the stage; an empty stage name merges without
// recording (used for engine-produced patches that are not stages).
func Apply(prev *models.AgentState, stage string, p Patch) *models.AgentState {
	next := prev.Clone()
	if p != nil {
		p.apply(next)
	}
	if stage != "" {
		next.ExecutedStages = append(next.ExecutedStages, stage)
	}
	return next
}

// ApplyAll folds a sequence of (stage, patch) pairs left to right.
func ApplyAll(prev *models.AgentState, merges ...StagePatch) *models.AgentState {
	next := prev
	for _, m := range merges {
		next = Apply(next, m.Stage, m.Patch)
	}
	return next
}

// StagePatch pairs a patch with the stage that produced it.
type StagePatch struct {
	Stage string
	Patch Patch
}
