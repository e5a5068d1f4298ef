// Package cmdfilter implements the allow/block list check over a command
// string. Block patterns always win over allow matches.
package cmdfilter

import (
	"github.com/bashbros/bashbros/internal/model"
	"github.com/bashbros/bashbros/internal/pattern"
)

// Filter matches commands against compiled allow and block lists.
type Filter struct {
	allow    []pattern.Compiled
	block    []pattern.Compiled
	allowAll bool
}

// New compiles the allow and block glob lists. An empty allow list or one
// containing "*" disables the allow check; the block list is always enforced.
func New(allow, block []string) *Filter {
	allowAll := len(allow) == 0
	for _, a := range allow {
		if a == "*" {
			allowAll = true
		}
	}
	return &Filter{
		allow:    pattern.CompileGlobs(allow),
		block:    pattern.CompileGlobs(block),
		allowAll: allowAll,
	}
}

// Check returns a violation when the command hits a block pattern, or when an
// allow list is in force and no allow pattern matches. Nil means pass.
func (f *Filter) Check(command string) *model.Violation {
	if hit := pattern.MatchAny(f.block, command); hit != nil {
		return &model.Violation{
			Type:     model.ViolationCommand,
			Rule:     "block:" + hit.Source,
			Message:  "command blocked: " + command,
			Severity: model.SeverityHigh,
		}
	}

	if f.allowAll {
		return nil
	}

	if pattern.MatchAny(f.allow, command) == nil {
		return &model.Violation{
			Type:     model.ViolationCommand,
			Rule:     "not-allowed",
			Message:  "command not in allow list: " + command,
			Severity: model.SeverityMedium,
		}
	}

	return nil
}
