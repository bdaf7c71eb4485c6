package workflow

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/state"
)

// Phase is a named group of stages. Declaration order fixes the merge order
// of successful patches; completion order never matters.
type Phase struct {
	Name   string
	Stages []Stage
}

// Scheduler runs phases. Within a phase stages run concurrently against the
// same snapshot; a new phase only starts once every stage of the previous
// one has settled and merged.
type Scheduler struct {
	log *zap.Logger
}

func NewScheduler(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{log: log}
}

// RunParallel launches every stage of the phase against the same snapshot,
// waits for all of them to settle, then merges the successful patches in
// declaration order. Failed stages are logged and skipped; they make no
// merge and are not recorded as executed.
func (s *Scheduler) RunParallel(ctx context.Context, phase Phase, snapshot *models.AgentState) (*models.AgentState, []StageResult) {
	results := make([]StageResult, len(phase.Stages))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, st := range phase.Stages {
		i, st := i, st
		eg.Go(func() error {
			// Every task settles into its own slot; failures stay values so
			// one bad stage never cancels its siblings.
			results[i] = Execute(egCtx, st, snapshot)
			return nil
		})
	}
	_ = eg.Wait()

	return s.merge(phase, snapshot, results), results
}

// RunSequential runs the phase's stages one at a time, each seeing the
// merges of the stages before it.
func (s *Scheduler) RunSequential(ctx context.Context, phase Phase, snapshot *models.AgentState) (*models.AgentState, []StageResult) {
	results := make([]StageResult, 0, len(phase.Stages))
	next := snapshot
	for _, st := range phase.Stages {
		res := Execute(ctx, st, next)
		results = append(results, res)
		next = s.mergeOne(phase, next, res)
	}
	return next, results
}

func (s *Scheduler) merge(phase Phase, snapshot *models.AgentState, results []StageResult) *models.AgentState {
	next := snapshot
	for _, res := range results {
		next = s.mergeOne(phase, next, res)
	}
	return next
}

func (s *Scheduler) mergeOne(phase Phase, prev *models.AgentState, res StageResult) *models.AgentState {
	if !res.OK() {
		s.log.Warn("stage failed, skipping merge",
			zap.String("phase", phase.Name),
			zap.String("stage", res.StageName),
			zap.Duration("duration", res.Duration),
			zap.Error(res.Err),
		)
		return prev
	}
	s.log.Debug("stage completed",
		zap.String("phase", phase.Name),
		zap.String("stage", res.StageName),
		zap.Duration("duration", res.Duration),
	)
	return state.Apply(prev, res.StageName, res.Patch)
}
