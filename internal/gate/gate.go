// Package gate is the per-hook entry point: load config, assemble the
// policy engine, run the pipeline, record the outcome, and return an
// allow/deny decision. The gate is fail-closed on policy violations and
// fail-open on its own internal errors — a broken supervisor must never
// block a benign command.
package gate

import (
	"regexp"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bashbros/bashbros/internal/auditlog"
	"github.com/bashbros/bashbros/internal/config"
	"github.com/bashbros/bashbros/internal/model"
	"github.com/bashbros/bashbros/internal/notify"
	"github.com/bashbros/bashbros/internal/policy"
	"github.com/bashbros/bashbros/internal/session"
	"github.com/bashbros/bashbros/internal/statedir"
	"github.com/bashbros/bashbros/internal/store"
)

// Decision is the gate outcome surfaced to the host hook.
type Decision struct {
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason,omitempty"`
	RiskScore int    `json:"risk_score"`
}

// networkHeadRe marks commands whose denial is also an egress block.
var networkHeadRe = regexp.MustCompile(`(?i)^\s*(curl|wget|nc|netcat|ssh|scp|rsync|ftp)\b`)

// Run evaluates one proposed command. cfgPath may be empty to use the
// config search order.
func Run(command, cfgPath string) Decision {
	start := time.Now()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Warn().Err(err).Msg("config load failed, using defaults")
		cfg = config.Default()
	}

	layout, err := statedir.Default()
	if err != nil {
		// No home directory: run the static pipeline only.
		return decide(command, cfg, nil, nil, "", start)
	}
	if err := layout.Ensure(); err != nil {
		log.Warn().Err(err).Msg("state dir unavailable")
		return decide(command, cfg, nil, nil, "", start)
	}

	// Session-local allowlist short-circuits the pipeline for commands the
	// user has explicitly pinned.
	if allowedBySession(layout.SessionAllowPath(), command) {
		return Decision{Allowed: true, RiskScore: 1}
	}

	st, err := store.Open(layout.DBPath())
	if err != nil {
		log.Warn().Err(err).Msg("store unavailable, cross-process checks skipped")
		return decide(command, cfg, nil, &layout, "", start)
	}
	defer st.Close()

	mgr := session.NewManager(st, layout.SessionStatePath())
	return decide(command, cfg, st, &layout, mgr.CurrentID(), start)
}

// decide runs the pipeline with whatever shared resources are available and
// records the outcome. A nil store skips the store-backed layers and the
// command record; a nil layout skips the audit log.
func decide(command string, cfg *config.Config, st *store.Store, layout *statedir.Layout, sessionID string, start time.Time) Decision {
	engine := policy.NewEngine(cfg)
	assessment := engine.Score(command)

	var violations []model.Violation
	if st != nil {
		violations = engine.ValidateWithStore(command, sessionID, start, st)
	} else {
		violations = engine.Validate(command)
	}

	decision := Decision{Allowed: len(violations) == 0, RiskScore: assessment.Score}
	if !decision.Allowed {
		decision.Reason = violations[0].Message
	}

	durationMs := time.Since(start).Milliseconds()

	if st != nil {
		messages := make([]string, 0, len(violations))
		for _, v := range violations {
			messages = append(messages, v.Message)
		}
		mgr := session.NewManager(st, layout.SessionStatePath())
		err := mgr.Record(model.CommandRecord{
			SessionID:   sessionID,
			Timestamp:   start.UTC(),
			Command:     command,
			Allowed:     decision.Allowed,
			RiskScore:   assessment.Score,
			RiskLevel:   assessment.Level,
			RiskFactors: assessment.Factors,
			DurationMs:  durationMs,
			Violations:  messages,
		})
		if err != nil {
			log.Warn().Err(err).Msg("command record failed")
		}

		if !decision.Allowed && networkHeadRe.MatchString(command) {
			_, _ = st.InsertEgressBlock(sessionID, command, violations[0].Rule)
		}
	}

	if !decision.Allowed {
		// One attempt per webhook: the hook process must not outlive the
		// decision by a retry schedule.
		if dispatcher := notify.NewDispatcher(cfg.Notifications).SingleAttempt(); dispatcher != nil {
			dispatcher.Dispatch(notify.Event{
				Timestamp: start.UTC().Format(time.RFC3339),
				SessionID: sessionID,
				Command:   auditlog.Sanitize(command),
				Rule:      violations[0].Rule,
				Reason:    violations[0].Message,
				Types:     model.Types(violations),
				RiskScore: assessment.Score,
				RiskLevel: string(assessment.Level),
			})
			dispatcher.Close()
		}
	}

	if layout != nil && cfg.Audit.Enabled {
		logger := auditlog.New(cfg.Audit, layout.AuditLogPath(), layout.AuditLockPath(), cfg.Agent)
		logger.Log(auditlog.Entry{
			Timestamp:  start.UTC(),
			Command:    command,
			Allowed:    decision.Allowed,
			Types:      model.Types(violations),
			DurationMs: durationMs,
			Agent:      cfg.Agent,
		}, violations)
		logger.Close()
	}

	return decision
}
