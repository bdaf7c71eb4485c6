// Package graph wires the workflow together: the four analyst stages fan
// out, the two debates run to their bounds, the risk engine aggregates, and
// the synthesizer closes the run with a decision. Execute is the one
// entrypoint; after input validation nothing in the run can fail it.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/southerncoder/my-Trading-Agents-sub007/config"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/dataflows"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/decision"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/processing"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/risk"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/state"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/storage"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/workflow"
)

// RunRecorder appends one execution record per completed run.
// *storage.Store satisfies it; tests inject fakes.
type RunRecorder interface {
	RecordRun(ctx context.Context, rec storage.ExecutionRecord) (string, error)
}

// ReportWriter persists the per-stage markdown reports of a finished run.
// *storage.Reports satisfies it.
type ReportWriter interface {
	WriteReports(ticker, tradeDate string, s *models.AgentState) error
}

// RunResult is what Execute hands back for one (ticker, date) run.
type RunResult struct {
	RunID           string                `json:"run_id"`
	FinalState      *models.AgentState    `json:"final_state"`
	Decision        *models.TradeDecision `json:"decision"`
	ProcessedSignal string                `json:"processed_signal"`
	AgentsExecuted  []string              `json:"agents_executed"`
	ExecutionTimeMs int64                 `json:"execution_time_ms"`
}

// TradingGraph is the workflow facade. It owns the phase plan and the
// post-debate decision pipeline; the stage bodies arrive from outside so the
// graph itself stays free of provider and model concerns.
type TradingGraph struct {
	cfg    *config.Config
	log    *zap.Logger
	sched  *workflow.Scheduler
	router *workflow.Router
	risk   *risk.Engine
	synth  *decision.Synthesizer
	signal *processing.SignalProcessor
	stages Stages

	runs    RunRecorder
	reports ReportWriter
}

// New builds the facade. runs and reports may be nil; persistence is then
// skipped entirely.
func New(cfg *config.Config, stages Stages, runs RunRecorder, reports ReportWriter, log *zap.Logger) *TradingGraph {
	if log == nil {
		log = zap.NewNop()
	}
	sched := workflow.NewScheduler(log)
	return &TradingGraph{
		cfg:     cfg,
		log:     log,
		sched:   sched,
		router:  workflow.NewRouter(sched, log),
		risk:    risk.NewEngine(log),
		synth:   decision.NewSynthesizer(log),
		signal:  processing.NewSignalProcessor(),
		stages:  stages,
		runs:    runs,
		reports: reports,
	}
}

// Execute runs the full workflow for one ticker and trade date. The only
// error path is invalid input; every failure past that point degrades the
// run instead of aborting it, so a started run always yields a result with
// a decision and a processed signal.
func (g *TradingGraph) Execute(ctx context.Context, ticker, tradeDate string) (*RunResult, error) {
	if err := dataflows.ValidateSymbol(ticker); err != nil {
		return nil, fmt.Errorf("invalid ticker: %w", err)
	}
	if _, err := time.Parse("2006-01-02", tradeDate); err != nil {
		return nil, fmt.Errorf("invalid trade date %q: %w", tradeDate, err)
	}

	start := time.Now()
	cur := state.NewInitial(ticker, tradeDate)
	g.log.Info("run started",
		zap.String("ticker", cur.Ticker),
		zap.String("trade_date", cur.TradeDate),
	)

	// Phase 1: the four analysts fan out against the initial snapshot.
	cur = g.runPhase(cur, func(s *models.AgentState) (*models.AgentState, []workflow.StageResult) {
		return g.sched.RunParallel(ctx, workflow.Phase{
			Name: "analysis",
			Stages: []workflow.Stage{
				g.stages.Market, g.stages.Social, g.stages.News, g.stages.Fundamentals,
			},
		}, s)
	})

	// Phase 2: bull and bear alternate, the research manager judges.
	cur = g.runPhase(cur, func(s *models.AgentState) (*models.AgentState, []workflow.StageResult) {
		return g.router.RunDebate(ctx, workflow.DebateSpec{
			Name:     "investment_debate",
			Speakers: []workflow.Stage{g.stages.Bull, g.stages.Bear},
			Judge:    g.stages.ResearchManager,
			Rounds:   g.cfg.MaxDebateRounds,
			Terminal: func(s *models.AgentState) bool {
				return s.InvestmentDebate.JudgeDecision != ""
			},
		}, s)
	})

	// Phase 3: the trader turns the plan into a trading proposal.
	cur = g.runPhase(cur, func(s *models.AgentState) (*models.AgentState, []workflow.StageResult) {
		return g.sched.RunSequential(ctx, workflow.Phase{
			Name:   "trading",
			Stages: []workflow.Stage{g.stages.Trader},
		}, s)
	})

	// Phase 4: the risk stances rotate, the risk judge closes.
	cur = g.runPhase(cur, func(s *models.AgentState) (*models.AgentState, []workflow.StageResult) {
		return g.router.RunDebate(ctx, workflow.DebateSpec{
			Name:     "risk_discussion",
			Speakers: []workflow.Stage{g.stages.Risky, g.stages.Safe, g.stages.Neutral},
			Judge:    g.stages.RiskJudge,
			Rounds:   g.cfg.MaxRiskDiscussRounds,
			Terminal: func(s *models.AgentState) bool {
				return s.RiskDebate.JudgeDecision != ""
			},
		}, s)
	})

	// Aggregate risk, synthesize the decision, extract the signal. None of
	// these can fail: the engine and synthesizer degrade internally.
	assessment := g.risk.Assess(ctx, cur)
	cur = state.Apply(cur, "", state.AssessmentPatch{Assessment: assessment})

	dec := g.synth.Decide(cur, assessment)
	cur = state.Apply(cur, "", state.DecisionPatch{Decision: dec, Summary: decision.Summary(dec)})

	res := &RunResult{
		FinalState:      cur,
		Decision:        cur.Decision,
		ProcessedSignal: g.signal.Extract(cur.FinalDecision),
		AgentsExecuted:  append([]string(nil), cur.ExecutedStages...),
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}
	res.RunID = g.persist(ctx, res)

	g.log.Info("run completed",
		zap.String("ticker", cur.Ticker),
		zap.String("trade_date", cur.TradeDate),
		zap.String("action", dec.Action),
		zap.String("signal", res.ProcessedSignal),
		zap.Int("agents_executed", len(res.AgentsExecuted)),
		zap.Int64("execution_time_ms", res.ExecutionTimeMs),
	)
	return res, nil
}

// runPhase executes one phase and reports its settled outcomes. Failures are
// already values at this point; the run only ever moves forward.
func (g *TradingGraph) runPhase(cur *models.AgentState, run func(*models.AgentState) (*models.AgentState, []workflow.StageResult)) *models.AgentState {
	next, results := run(cur)
	for _, r := range results {
		if !r.OK() {
			g.log.Warn("stage degraded this run",
				zap.String("ticker", cur.Ticker),
				zap.String("stage", r.StageName),
				zap.Error(r.Err),
			)
		}
	}
	return next
}

// persist writes the run log row and the markdown reports. Both writes are
// best-effort: a failed write is logged and the run result stands.
func (g *TradingGraph) persist(ctx context.Context, res *RunResult) string {
	s := res.FinalState

	var runID string
	if g.runs != nil {
		loggable, err := json.Marshal(state.ToLoggable(s))
		if err != nil {
			g.log.Warn("run log projection failed", zap.Error(err))
			loggable = []byte("{}")
		}
		rec := storage.ExecutionRecord{
			Ticker:          s.Ticker,
			TradeDate:       s.TradeDate,
			Action:          res.Decision.Action,
			Signal:          res.ProcessedSignal,
			RiskLevel:       res.Decision.RiskLevel,
			RiskScore:       res.Decision.RiskScore,
			Confidence:      res.Decision.Confidence,
			AgentsExecuted:  len(res.AgentsExecuted),
			ExecutionTimeMs: res.ExecutionTimeMs,
			StateJSON:       string(loggable),
		}
		id, err := g.runs.RecordRun(ctx, rec)
		if err != nil {
			g.log.Warn("run log write failed",
				zap.String("ticker", s.Ticker),
				zap.String("trade_date", s.TradeDate),
				zap.Error(err),
			)
		} else {
			runID = id
		}
	}

	if g.reports != nil {
		if err := g.reports.WriteReports(s.Ticker, s.TradeDate, s); err != nil {
			g.log.Warn("report write failed",
				zap.String("ticker", s.Ticker),
				zap.String("trade_date", s.TradeDate),
				zap.Error(err),
			)
		}
	}
	return runID
}
