package provenance

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-weave/internal/logging"
	"github.com/goliatone/go-weave/pkg/interfaces"
)

// ReportBuilder assembles the provenance summary block inserted after a
// document's metadata: the commit that last touched the rendered output, a
// staleness warning when the worktree is dirty, and the remote link when one
// is configured. It never writes files and never fails; missing repository
// state simply omits lines.
type ReportBuilder struct {
	repo   interfaces.RepoContext
	logger interfaces.Logger
}

// ReportBuilderConfig wires the collaborators a ReportBuilder needs.
type ReportBuilderConfig struct {
	Repo   interfaces.RepoContext
	Logger interfaces.Logger
}

// NewReportBuilder builds a ReportBuilder from the supplied configuration.
func NewReportBuilder(cfg ReportBuilderConfig) *ReportBuilder {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &ReportBuilder{repo: cfg.Repo, logger: logger}
}

// ReportRequest carries the inputs for one document report.
type ReportRequest struct {
	// DocumentPath locates the literate source document.
	DocumentPath string
	// OutputDir is the published-output tree, relative to the repository
	// root, holding the rendered document. Empty means the rendered output
	// lives alongside the source.
	OutputDir string
	// HasCode reports whether the document executes chunks; prose-only
	// documents skip the seed note.
	HasCode bool
	// Config is the effective configuration for this build.
	Config interfaces.WorkflowConfig
}

// Build returns the report block lines. Outside a repository the block is
// empty and the document still augments successfully.
func (b *ReportBuilder) Build(req ReportRequest) []string {
	if b.repo == nil {
		return nil
	}
	logger := logging.WithDocumentContext(b.logger, req.DocumentPath, req.Config.KnitRootDir)

	version, ok := b.codeVersion(req, logger)
	if !ok {
		return nil
	}

	lines := []string{b.versionLine(version, req.Config.GithubURL)}

	clean, err := b.repo.IsClean()
	if err != nil {
		logger.Debug("report.status_unavailable", "error", err)
	} else if !clean {
		lines = append(lines,
			"",
			"> Warning: the working tree has uncommitted changes; the rendered"+
				" output may not match the committed version above.")
	}
	return lines
}

// codeVersion finds the commit that most recently modified the document's
// rendered output, falling back to the source file's history and finally to
// the checked out commit.
func (b *ReportBuilder) codeVersion(req ReportRequest, logger interfaces.Logger) (interfaces.CommitVersion, bool) {
	for _, rel := range b.candidatePaths(req) {
		versions, err := b.repo.Log(rel)
		if err != nil {
			logger.Debug("report.history_unavailable", "rel_path", rel, "error", err)
			continue
		}
		if len(versions) > 0 {
			return versions[0], true
		}
	}

	head, err := b.repo.Head()
	if err != nil {
		logger.Debug("report.head_unavailable", "error", err)
		return interfaces.CommitVersion{}, false
	}
	return head, true
}

func (b *ReportBuilder) candidatePaths(req ReportRequest) []string {
	var candidates []string

	base := filepath.Base(req.DocumentPath)
	if out := b.relativeOutputDir(req.OutputDir); out != "" {
		rendered := strings.TrimSuffix(base, filepath.Ext(base)) + ".html"
		candidates = append(candidates, filepath.ToSlash(filepath.Join(out, rendered)))
	}

	if abs, err := filepath.Abs(req.DocumentPath); err == nil {
		if rel, err := filepath.Rel(b.repo.Root(), abs); err == nil && !strings.HasPrefix(rel, "..") {
			candidates = append(candidates, filepath.ToSlash(rel))
		}
	}
	return candidates
}

// relativeOutputDir maps the output directory to a repository-relative path.
// Directories outside the worktree yield "" so no output candidate is tried.
func (b *ReportBuilder) relativeOutputDir(outputDir string) string {
	if outputDir == "" {
		return ""
	}
	if !filepath.IsAbs(outputDir) {
		return outputDir
	}
	rel, err := filepath.Rel(b.repo.Root(), outputDir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return rel
}

func (b *ReportBuilder) versionLine(version interfaces.CommitVersion, remoteURL string) string {
	if remoteURL == "" {
		return fmt.Sprintf("**Code version:** %s", version.ShortHash)
	}
	url := fmt.Sprintf("%s/tree/%s", strings.TrimRight(remoteURL, "/"), version.Hash)
	return fmt.Sprintf("**Code version:** [%s](%s)", version.ShortHash, url)
}
