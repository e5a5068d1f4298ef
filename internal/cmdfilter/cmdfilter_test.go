package cmdfilter

import (
	"strings"
	"testing"

	"github.com/bashbros/bashbros/internal/model"
)

func TestBlockWinsOverAllow(t *testing.T) {
	f := New([]string{"*"}, []string{"rm -rf *"})

	v := f.Check("rm -rf /tmp/build")
	if v == nil {
		t.Fatal("expected a violation for blocked command")
	}
	if v.Type != model.ViolationCommand {
		t.Errorf("expected command violation, got %s", v.Type)
	}
	if v.Rule != "block:rm -rf *" {
		t.Errorf("expected block rule with source pattern, got %q", v.Rule)
	}
	if v.Severity != model.SeverityHigh {
		t.Errorf("expected high severity, got %s", v.Severity)
	}
}

func TestEmptyAllowListDisablesAllowCheck(t *testing.T) {
	for _, allow := range [][]string{nil, {}} {
		f := New(allow, nil)
		if v := f.Check("anything at all"); v != nil {
			t.Errorf("allow=%v: expected pass with no allow patterns, got %v", allow, v)
		}
	}
}

func TestEmptyAllowListStillEnforcesBlocks(t *testing.T) {
	f := New([]string{}, []string{"rm -rf *"})
	if v := f.Check("rm -rf /"); v == nil {
		t.Error("expected block list enforced with empty allow list")
	}
}

func TestAllowListEnforced(t *testing.T) {
	f := New([]string{"git *", "ls*"}, nil)

	if v := f.Check("git status"); v != nil {
		t.Errorf("expected git status allowed, got %v", v)
	}
	if v := f.Check("ls -la"); v != nil {
		t.Errorf("expected ls -la allowed, got %v", v)
	}

	v := f.Check("docker run --privileged x")
	if v == nil {
		t.Fatal("expected violation for command off the allow list")
	}
	if v.Rule != "not-allowed" {
		t.Errorf("expected not-allowed rule, got %q", v.Rule)
	}
	if v.Severity != model.SeverityMedium {
		t.Errorf("expected medium severity, got %s", v.Severity)
	}
}

func TestStarInAllowDisablesAllowCheck(t *testing.T) {
	f := New([]string{"git *", "*"}, []string{"shutdown*"})

	if v := f.Check("make test"); v != nil {
		t.Errorf("expected pass with * in allow list, got %v", v)
	}
	if v := f.Check("shutdown -h now"); v == nil {
		t.Error("expected block list still enforced with * allow")
	}
}

func TestViolationMessageNamesCommand(t *testing.T) {
	f := New(nil, []string{"mkfs*"})
	v := f.Check("mkfs.ext4 /dev/sda1")
	if v == nil {
		t.Fatal("expected violation")
	}
	if !strings.Contains(v.Message, "mkfs.ext4 /dev/sda1") {
		t.Errorf("message should include the command, got %q", v.Message)
	}
}
