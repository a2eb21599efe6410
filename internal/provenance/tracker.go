package provenance

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-weave/internal/logging"
	"github.com/goliatone/go-weave/pkg/interfaces"
)

// Tracker maps generated artifacts back through repository history and
// renders their prior committed versions as markdown. Every repository
// failure is absorbed: a figure without history is a valid, expected result,
// never an error.
type Tracker struct {
	repo      interfaces.RepoContext
	remoteURL string
	outputDir string
	logger    interfaces.Logger
}

// TrackerConfig wires the collaborators a Tracker needs. Repo may be nil when
// the build runs outside any repository; every lookup then yields an empty
// report.
type TrackerConfig struct {
	Repo interfaces.RepoContext
	// RemoteURL is the browsable hosting base used to link each version.
	// Empty renders plain commit identifiers instead of links.
	RemoteURL string
	// OutputDir is the published-output tree, relative to the repository
	// root, where rendered documents and their figures are committed.
	OutputDir string
	Logger    interfaces.Logger
}

// NewTracker builds a Tracker from the supplied configuration.
func NewTracker(cfg TrackerConfig) *Tracker {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Tracker{
		repo:      cfg.Repo,
		remoteURL: strings.TrimRight(cfg.RemoteURL, "/"),
		outputDir: cfg.OutputDir,
		logger:    logger,
	}
}

// FigureHook returns the per-artifact callback the rendering engine invokes
// for each figure it produces. The hook closes over the document path only;
// all other context lives on the Tracker, so repeated calls with unchanged
// repository state yield identical output.
func (t *Tracker) FigureHook(documentPath string) interfaces.FigureHook {
	return func(artifactPath string) (string, error) {
		return t.VersionsFor(artifactPath, documentPath), nil
	}
}

// VersionsFor renders the committed history of one artifact as a markdown
// fragment, newest first. It returns the empty string when the build runs
// outside a repository, the path cannot be related to the worktree, or the
// path has no history.
func (t *Tracker) VersionsFor(artifactPath, documentPath string) string {
	if t.repo == nil {
		return ""
	}
	logger := logging.WithArtifactContext(t.logger, artifactPath)

	relPath, ok := t.publishedPath(artifactPath, documentPath)
	if !ok {
		logger.Debug("provenance.path_outside_worktree")
		return ""
	}

	versions, err := t.repo.Log(relPath)
	if err != nil {
		logger.Debug("provenance.history_unavailable", "error", err)
		return ""
	}
	if len(versions) == 0 {
		logger.Debug("provenance.no_history", "rel_path", relPath)
		return ""
	}

	var b strings.Builder
	b.WriteString("**Figure versions:**\n")
	for _, version := range versions {
		b.WriteString(t.versionLine(version, relPath))
		b.WriteString("\n")
	}
	return b.String()
}

// publishedPath resolves an artifact to the repository-relative path where
// its history lives. Artifacts already inside the worktree map directly;
// artifacts produced in an ephemeral build directory map into the published
// output tree at `<outputDir>/figure/<document basename>/<artifact basename>`.
func (t *Tracker) publishedPath(artifactPath, documentPath string) (string, bool) {
	abs, err := filepath.Abs(artifactPath)
	if err != nil {
		return "", false
	}

	root := t.repo.Root()
	if rel, err := filepath.Rel(root, abs); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel), true
	}

	if t.outputDir == "" {
		return "", false
	}
	out := t.outputDir
	if filepath.IsAbs(out) {
		rel, err := filepath.Rel(root, out)
		if err != nil || strings.HasPrefix(rel, "..") {
			return "", false
		}
		out = rel
	}
	rel := filepath.Join(out, "figure", filepath.Base(documentPath), filepath.Base(abs))
	return filepath.ToSlash(rel), true
}

func (t *Tracker) versionLine(version interfaces.CommitVersion, relPath string) string {
	date := version.When.Format("2006-01-02")
	if t.remoteURL == "" {
		return fmt.Sprintf("- %s %s (%s)", version.ShortHash, version.Author, date)
	}
	url := fmt.Sprintf("%s/blob/%s/%s", t.remoteURL, version.Hash, relPath)
	return fmt.Sprintf("- [%s](%s) %s (%s)", version.ShortHash, url, version.Author, date)
}
