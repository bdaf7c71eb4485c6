// Package workflow runs stages against the shared state: a stage executor
// that settles every outcome to a value, a phase scheduler that fans stages
// out and merges what succeeded, and a router that drives bounded debates.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/state"
)

// StageFunc is a stage body. It gets a state snapshot it must not mutate and
// returns the patch to merge. Bodies call external collaborators (chat
// models, data providers) and may fail or panic.
type StageFunc func(ctx context.Context, snapshot *models.AgentState) (state.Patch, error)

// Stage pairs a canonical stage name with its body.
type Stage struct {
	Name string
	Run  StageFunc
}

// StageResult is the settled outcome of one stage execution. A failure is
// data here, not an error return: the scheduler merges OK results and skips
// the rest.
type StageResult struct {
	StageName string
	Patch     state.Patch
	Err       error
	Duration  time.Duration
}

// OK reports whether the stage produced a mergeable patch.
func (r StageResult) OK() bool { return r.Err == nil }

// Execute runs one stage. Errors and panics from the body come back inside
// the result; Execute itself never fails and never lets a panic escape.
func Execute(ctx context.Context, stage Stage, snapshot *models.AgentState) (res StageResult) {
	start := time.Now()
	res = StageResult{StageName: stage.Name}
	defer func() {
		if r := recover(); r != nil {
			res.Patch = nil
			res.Err = fmt.Errorf("stage %s panicked: %v", stage.Name, r)
		}
		res.Duration = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		res.Err = fmt.Errorf("stage %s: %w", stage.Name, err)
		return res
	}
	if stage.Run == nil {
		res.Err = fmt.Errorf("stage %s: no body registered", stage.Name)
		return res
	}

	patch, err := stage.Run(ctx, snapshot)
	if err != nil {
		res.Err = fmt.Errorf("stage %s: %w", stage.Name, err)
		return res
	}
	res.Patch = patch
	return res
}
