// Package policy composes the layered decision pipeline invoked on every
// proposed command: static allow/block, secrets guard, path sandbox, risk
// threshold, then the store-backed loop, anomaly, and rate checks.
//
// The engine returns the full ordered violation list; callers that only
// need a decision use the first entry. Store failures never become
// violations — the store-backed layers fail open.
package policy

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bashbros/bashbros/internal/anomaly"
	"github.com/bashbros/bashbros/internal/cmdfilter"
	"github.com/bashbros/bashbros/internal/config"
	"github.com/bashbros/bashbros/internal/loop"
	"github.com/bashbros/bashbros/internal/model"
	"github.com/bashbros/bashbros/internal/ratelimit"
	"github.com/bashbros/bashbros/internal/risk"
	"github.com/bashbros/bashbros/internal/sandbox"
	"github.com/bashbros/bashbros/internal/secrets"
)

// Store is the slice of the shared store the pipeline's cross-process
// checks need.
type Store interface {
	ratelimit.CommandCounter
	loop.History
	anomaly.History
}

// Engine is the assembled decision pipeline. Build once per process.
type Engine struct {
	cfg     *config.Config
	filter  *cmdfilter.Filter
	guard   *secrets.Guard
	sandbox *sandbox.Sandbox
	scorer  *risk.Scorer
	anomaly *anomaly.Detector
}

// NewEngine assembles the pipeline from config. All pattern compilation
// happens here; invalid patterns are dropped, never fatal.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		cfg:     cfg,
		filter:  cmdfilter.New(cfg.Commands.Allow, cfg.Commands.Block),
		guard:   secrets.NewGuard(cfg.Secrets.Enabled, cfg.Secrets.Patterns),
		sandbox: sandbox.New(cfg.Paths.Allow, cfg.Paths.Block),
		scorer:  risk.New(cfg.RiskScoring.Patterns),
		anomaly: anomaly.New(cfg.AnomalyDetection),
	}
}

// Score exposes the risk assessment for a command.
func (e *Engine) Score(command string) risk.Assessment {
	return e.scorer.Score(command)
}

// Validate runs the static pipeline layers (filter, secrets, sandbox, risk
// threshold) and returns every violation found, in pipeline order.
func (e *Engine) Validate(command string) []model.Violation {
	var violations []model.Violation

	if v := e.filter.Check(command); v != nil {
		violations = append(violations, *v)
	}

	paths := ExtractPaths(command)
	if v := e.guard.Check(command, paths); v != nil {
		violations = append(violations, *v)
	}

	for _, p := range paths {
		if v := e.sandbox.Check(p); v != nil {
			violations = append(violations, *v)
			break
		}
	}

	if e.cfg.RiskScoring.Enabled {
		assessment := e.scorer.Score(command)
		if assessment.Score >= e.cfg.RiskScoring.BlockThreshold {
			violations = append(violations, model.Violation{
				Type:     model.ViolationRisk,
				Rule:     "risk_threshold",
				Message:  fmt.Sprintf("risk score %d meets block threshold %d: %v", assessment.Score, e.cfg.RiskScoring.BlockThreshold, assessment.Factors),
				Severity: model.SeverityCritical,
			})
		} else if assessment.Score >= e.cfg.RiskScoring.WarnThreshold {
			// A warning, not a violation: one hint line on stderr.
			fmt.Fprintf(os.Stderr, "bashbros: risky command (score %d): %v\n", assessment.Score, assessment.Factors)
		}
	}

	return violations
}

// ValidateWithStore runs the full pipeline: the static layers plus the
// store-backed loop, anomaly, and rate checks. A nil store skips the backed
// layers; a store error is logged and the layer is skipped (fail-open).
func (e *Engine) ValidateWithStore(command, sessionID string, now time.Time, st Store) []model.Violation {
	violations := e.Validate(command)

	if st == nil {
		return violations
	}

	loopResult, err := loop.Check(command, sessionID, e.cfg.LoopDetection, st)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("loop detection skipped")
	case loopResult.Violation != nil:
		violations = append(violations, *loopResult.Violation)
	case loopResult.Warning != "":
		log.Warn().Str("command", command).Msg("loop warning: " + loopResult.Warning)
	}

	anomalyResult, err := e.anomaly.Check(command, now, st)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("anomaly detection skipped")
	case anomalyResult.Violation != nil:
		violations = append(violations, *anomalyResult.Violation)
	case anomalyResult.Warning != "":
		log.Warn().Str("command", command).Msg("anomaly warning: " + anomalyResult.Warning)
	}

	rateViolation, err := ratelimit.Check(now, e.cfg.RateLimit, st)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("rate limit skipped")
	case rateViolation != nil:
		violations = append(violations, *rateViolation)
	}

	return violations
}
