package gitrepo

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/goliatone/go-weave/pkg/interfaces"
)

// shortHashLen matches the abbreviated commit identifiers git prints.
const shortHashLen = 7

// Repo adapts a go-git repository to the interfaces.RepoContext capability.
// It is read-only with respect to the repository: only history, status, and
// remote configuration are ever queried.
type Repo struct {
	repo *git.Repository
	root string
}

var _ interfaces.RepoContext = (*Repo)(nil)

// Open opens the repository containing path, searching parent directories
// for the repository root the same way the git CLI does.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}

	return &Repo{repo: repo, root: wt.Filesystem.Root()}, nil
}

// Discover opens the repository containing path, reporting false instead of
// an error when the path is not inside a worktree. Provenance is optional, so
// callers treat a missing repository as "no history", never as a failure.
func Discover(path string) (interfaces.RepoContext, bool) {
	repo, err := Open(path)
	if err != nil {
		return nil, false
	}
	return repo, true
}

// Root returns the absolute path of the worktree root.
func (r *Repo) Root() string {
	return r.root
}

// Head returns the currently checked out commit.
func (r *Repo) Head() (interfaces.CommitVersion, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return interfaces.CommitVersion{}, err
	}
	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return interfaces.CommitVersion{}, err
	}
	return toVersion(commit.Hash.String(), commit.Author.Name, commit.Author.When, commit.Message), nil
}

// IsClean reports whether the worktree has no uncommitted changes.
func (r *Repo) IsClean() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, err
	}
	status, err := wt.Status()
	if err != nil {
		return false, err
	}
	return status.IsClean(), nil
}

// RemoteURL returns the first fetch URL configured for the named remote.
func (r *Repo) RemoteURL(name string) (string, error) {
	remote, err := r.repo.Remote(name)
	if err != nil {
		return "", err
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", errors.New("gitrepo: remote " + name + " has no URLs")
	}
	return urls[0], nil
}

// Log returns the commits that touched relPath, newest first. A path with no
// history yields an empty slice.
func (r *Repo) Log(relPath string) ([]interfaces.CommitVersion, error) {
	rel := filepath.ToSlash(relPath)
	iter, err := r.repo.Log(&git.LogOptions{
		FileName: &rel,
		Order:    git.LogOrderCommitterTime,
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var versions []interfaces.CommitVersion
	for {
		commit, err := iter.Next()
		if err != nil {
			// Iteration ends with io.EOF; any partial history already
			// collected is still valid.
			break
		}
		versions = append(versions,
			toVersion(commit.Hash.String(), commit.Author.Name, commit.Author.When, commit.Message))
	}
	return versions, nil
}

func toVersion(hash, author string, when time.Time, message string) interfaces.CommitVersion {
	short := hash
	if len(short) > shortHashLen {
		short = short[:shortHashLen]
	}
	subject := message
	if idx := strings.IndexByte(subject, '\n'); idx >= 0 {
		subject = subject[:idx]
	}
	return interfaces.CommitVersion{
		Hash:      hash,
		ShortHash: short,
		Author:    author,
		When:      when,
		Subject:   strings.TrimSpace(subject),
	}
}
