package interfaces

import "time"

// CommitVersion records one point in a path's history: the commit that
// touched it, when, and by whom. Hosting links are derived by callers that
// know the remote layout; the repository layer only reports commit facts.
type CommitVersion struct {
	Hash      string
	ShortHash string
	Author    string
	When      time.Time
	Subject   string
}

// RepoContext is the version-control capability consumed by provenance
// tracking. Implementations wrap a concrete VCS library; the weave core only
// ever reads through this interface and never mutates repository state.
//
// A handle may be held open across many sequential document builds. Every
// method is expected to be safe to call repeatedly with unchanged results
// while the underlying repository does not change.
type RepoContext interface {
	// Root returns the absolute path of the repository worktree root.
	Root() string

	// Head returns the currently checked out commit.
	Head() (CommitVersion, error)

	// IsClean reports whether the worktree has no uncommitted changes.
	IsClean() (bool, error)

	// RemoteURL returns the fetch URL of the named remote, or an error when
	// the remote is not configured.
	RemoteURL(name string) (string, error)

	// Log returns the commits that touched the given worktree-relative path,
	// newest first. A path with no history yields an empty slice, not an
	// error.
	Log(relPath string) ([]CommitVersion, error)
}
