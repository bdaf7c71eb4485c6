package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
)

// DebatePhase tracks where a debate stands.
type DebatePhase uint8

const (
	DebateDebating DebatePhase = iota
	DebateJudging
	DebateDone
)

func (p DebatePhase) String() string {
	switch p {
	case DebateDebating:
		return "DEBATING"
	case DebateJudging:
		return "JUDGING"
	case DebateDone:
		return "DONE"
	}
	return "UNKNOWN"
}

// DebateSpec describes one bounded debate: speakers rotating in order, the
// judge that closes it, and how many full rotations to run. Terminal, when
// set, lets the debate end before the bound (an earlier verdict already on
// the state, for example).
type DebateSpec struct {
	Name     string
	Speakers []Stage
	Judge    Stage
	Rounds   int
	Terminal func(*models.AgentState) bool
}

// exchanges is the total number of speaker turns the debate is allowed.
func (d DebateSpec) exchanges() int {
	if d.Rounds < 1 {
		return len(d.Speakers)
	}
	return len(d.Speakers) * d.Rounds
}

// Router drives debates to completion. It counts its own turns rather than
// trusting the state's exchange counter, so a speaker whose patch never
// merges still burns a turn and the debate always terminates.
type Router struct {
	sched *Scheduler
	log   *zap.Logger
}

func NewRouter(sched *Scheduler, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{sched: sched, log: log}
}

// RunDebate rotates through the speakers for the allowed exchanges, then
// hands the floor to the judge, then stops. Speaker and judge failures are
// settled like any stage failure: logged, skipped, never fatal.
func (r *Router) RunDebate(ctx context.Context, spec DebateSpec, snapshot *models.AgentState) (*models.AgentState, []StageResult) {
	phase := Phase{Name: spec.Name}
	results := make([]StageResult, 0, spec.exchanges()+1)
	next := snapshot

	st := DebateDebating
	total := spec.exchanges()
	for turn := 0; turn < total; turn++ {
		if len(spec.Speakers) == 0 {
			break
		}
		if spec.Terminal != nil && spec.Terminal(next) {
			r.log.Debug("debate reached terminal verdict early",
				zap.String("debate", spec.Name), zap.Int("turn", turn))
			break
		}
		speaker := spec.Speakers[turn%len(spec.Speakers)]
		res := Execute(ctx, speaker, next)
		results = append(results, res)
		next = r.sched.mergeOne(phase, next, res)
	}

	st = r.advance(spec.Name, st, DebateJudging)
	if spec.Judge.Name != "" {
		res := Execute(ctx, spec.Judge, next)
		results = append(results, res)
		next = r.sched.mergeOne(phase, next, res)
	}

	r.advance(spec.Name, st, DebateDone)
	return next, results
}

// advance moves the debate machine one step. Only the forward edges
// DEBATING->JUDGING and JUDGING->DONE exist.
func (r *Router) advance(name string, from, to DebatePhase) DebatePhase {
	if to != from+1 {
		r.log.Error("illegal debate transition",
			zap.String("debate", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		return from
	}
	r.log.Debug("debate transition",
		zap.String("debate", name),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)
	return to
}
