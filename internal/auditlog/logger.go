package auditlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/bashbros/bashbros/internal/config"
	"github.com/bashbros/bashbros/internal/model"
)

// Logger writes audit entries to the local log, the remote endpoint, or
// both, per config. Local failures are reported on stderr; remote failures
// are silent. Neither affects the gate decision.
type Logger struct {
	cfg      config.AuditConfig
	logPath  string
	lockPath string
	agent    string
	remote   *remoteSender
	wg       sync.WaitGroup
}

// New creates a logger for the given paths. Remote delivery is only armed
// for an https:// URL; anything else is rejected locally with a warning.
func New(cfg config.AuditConfig, logPath, lockPath, agent string) *Logger {
	l := &Logger{cfg: cfg, logPath: logPath, lockPath: lockPath, agent: agent}

	if cfg.Destination == "remote" || cfg.Destination == "both" {
		sender, err := newRemoteSender(cfg.RemoteURL)
		if err != nil {
			log.Warn().Err(err).Msg("remote audit disabled")
		} else {
			l.remote = sender
		}
	}

	return l
}

// Log records an entry. The local write happens before return; the remote
// POST is dispatched without being awaited and is bounded by its own
// deadline. Call Close before process exit to let in-flight posts finish.
func (l *Logger) Log(entry Entry, violations []model.Violation) {
	if !l.cfg.Enabled {
		return
	}

	if l.cfg.Destination != "remote" {
		if err := l.writeLocal(entry); err != nil {
			fmt.Fprintf(os.Stderr, "bashbros: audit write failed: %v\n", err)
		}
	}

	if l.remote != nil {
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			l.remote.send(entry, violations, l.agent)
		}()
	}
}

// Close waits for in-flight remote posts. Each is bounded by a 5 s
// deadline, so Close is bounded too.
func (l *Logger) Close() {
	l.wg.Wait()
}

func (l *Logger) writeLocal(entry Entry) error {
	if err := os.MkdirAll(filepath.Dir(l.logPath), 0700); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}

	locked := acquireLock(l.lockPath)
	if locked {
		defer releaseLock(l.lockPath)
	} else {
		log.Warn().Msg("audit lock unavailable, writing unlocked")
	}

	if err := rotateIfNeeded(l.logPath); err != nil {
		log.Warn().Err(err).Msg("audit rotation failed")
	}

	f, err := os.OpenFile(l.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(entry)); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}
