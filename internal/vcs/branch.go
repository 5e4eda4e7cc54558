// Package vcs resolves the active git branch for a working directory.
// Resolution never fails hard: every strategy reports (branch, ok) and
// logs its own diagnostics, so callers degrade to "no branch".
package vcs

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/tliron/kutil/logging"
)

// Strategy selects how the branch is determined.
type Strategy string

const (
	// StrategyGit shells out to the git executable.
	StrategyGit Strategy = "git"

	// StrategyDotGit reads .git/HEAD directly, no external tool needed.
	StrategyDotGit Strategy = "dotgit"

	// StrategyNone disables branch resolution.
	StrategyNone Strategy = "none"
)

// ErrUnknownStrategy is returned by NewResolver for strategies outside
// the closed set.
var ErrUnknownStrategy = errors.New("unknown branch strategy")

// Resolver reports the branch for a working directory. ok is false when
// no branch could be determined (missing repo, detached HEAD, tool not
// installed); that outcome is logged, never raised.
type Resolver interface {
	Resolve(dir string) (branch string, ok bool)
}

// NewResolver builds the resolver for a strategy.
func NewResolver(strategy Strategy, log logging.Logger) (Resolver, error) {
	if log == nil {
		log = logging.GetLogger("godotime.vcs")
	}
	switch strategy {
	case StrategyGit:
		return &CLIResolver{Log: log, Timeout: DefaultCLITimeout}, nil
	case StrategyDotGit:
		return &HeadResolver{Log: log}, nil
	case StrategyNone:
		return disabled{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// DefaultCLITimeout bounds one git invocation.
const DefaultCLITimeout = 5 * time.Second

// CLIResolver asks the git executable for the abbreviated branch name.
// Simple, and git already handles worktrees and submodules, but it only
// works where git is installed and on PATH.
type CLIResolver struct {
	Log     logging.Logger
	Timeout time.Duration
}

// Resolve runs `git rev-parse --abbrev-ref HEAD` in dir and returns the
// first line of output, trimmed.
func (r *CLIResolver) Resolve(dir string) (string, bool) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultCLITimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = dir

	out, err := cmd.Output()
	if err != nil {
		r.Log.Warningf("git branch lookup failed in %s (is git installed?): %s", dir, err.Error())
		return "", false
	}

	branch := firstLine(string(out))
	if branch == "" {
		r.Log.Warningf("git returned no branch for %s", dir)
		return "", false
	}
	return branch, true
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// disabled always reports no branch and performs no I/O.
type disabled struct{}

func (disabled) Resolve(string) (string, bool) { return "", false }
