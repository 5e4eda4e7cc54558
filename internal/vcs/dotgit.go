package vcs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/kutil/logging"
)

const (
	refPrefix  = "ref: "
	refsPrefix = "ref: refs"
)

// HeadResolver reads .git/HEAD without invoking git. It ascends from the
// working directory until it finds a HEAD file and extracts the branch
// from the symbolic ref. Anything outside the common ref format yields
// no branch rather than a guess.
type HeadResolver struct {
	Log logging.Logger
}

// Resolve walks up from dir looking for .git/HEAD and parses it.
func (r *HeadResolver) Resolve(dir string) (string, bool) {
	head, found := findHead(dir)
	if !found {
		r.Log.Warningf("no git repository found above %s", dir)
		return "", false
	}

	data, err := os.ReadFile(head)
	if err != nil {
		r.Log.Warningf("cannot read %s: %s", head, err.Error())
		return "", false
	}

	return r.parseHead(strings.TrimSpace(string(data)))
}

// findHead ascends one directory at a time until a .git/HEAD file exists
// or the filesystem root is reached.
func findHead(dir string) (string, bool) {
	for {
		head := filepath.Join(dir, ".git", "HEAD")
		if info, err := os.Stat(head); err == nil && !info.IsDir() {
			return head, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// parseHead extracts the branch name from HEAD content. A symbolic ref
// has the shape "ref: refs/<kind>/<name>"; the name is everything after
// the second slash, which keeps namespaced branches like feature/x
// intact.
func (r *HeadResolver) parseHead(content string) (string, bool) {
	switch {
	case strings.HasPrefix(content, refsPrefix):
		ref := strings.TrimPrefix(content, refPrefix)
		parts := strings.SplitN(ref, "/", 3)
		if len(parts) < 3 || parts[2] == "" {
			r.Log.Warningf("unrecognized HEAD ref format: %q", content)
			return "", false
		}
		return parts[2], true
	case strings.HasPrefix(content, refPrefix):
		r.Log.Warningf("unrecognized HEAD reference: %q", content)
		return "", false
	default:
		// Raw commit id: detached HEAD, there is no branch name.
		r.Log.Warningf("repository is in detached HEAD state")
		return "", false
	}
}
