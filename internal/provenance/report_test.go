package provenance

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-weave/pkg/interfaces"
)

func TestBuildReport_NoRepositoryIsEmpty(t *testing.T) {
	builder := NewReportBuilder(ReportBuilderConfig{})
	if got := builder.Build(ReportRequest{DocumentPath: "report.Rmd"}); len(got) != 0 {
		t.Fatalf("expected empty report without a repository, got %#v", got)
	}
}

func TestBuildReport_PrefersRenderedOutputHistory(t *testing.T) {
	root := t.TempDir()
	outputCommit := commitAt("ddddddd0123456789abcdef0123456789abcdef0", "Ada", time.Now())
	sourceCommit := commitAt("eeeeeee0123456789abcdef0123456789abcdef0", "Ada", time.Now())

	repo := &stubRepo{
		root:  root,
		clean: true,
		logs: map[string][]interfaces.CommitVersion{
			"docs/report.html": {outputCommit},
			"report.Rmd":       {sourceCommit},
		},
	}

	lines := NewReportBuilder(ReportBuilderConfig{Repo: repo}).Build(ReportRequest{
		DocumentPath: filepath.Join(root, "report.Rmd"),
		OutputDir:    "docs",
	})

	if len(lines) == 0 || !strings.Contains(lines[0], "ddddddd") {
		t.Fatalf("expected rendered-output commit first, got %#v", lines)
	}
}

func TestBuildReport_FallsBackToSourceHistory(t *testing.T) {
	root := t.TempDir()
	sourceCommit := commitAt("eeeeeee0123456789abcdef0123456789abcdef0", "Ada", time.Now())

	repo := &stubRepo{
		root:  root,
		clean: true,
		logs: map[string][]interfaces.CommitVersion{
			"report.Rmd": {sourceCommit},
		},
	}

	lines := NewReportBuilder(ReportBuilderConfig{Repo: repo}).Build(ReportRequest{
		DocumentPath: filepath.Join(root, "report.Rmd"),
		OutputDir:    "docs",
	})

	if len(lines) == 0 || !strings.Contains(lines[0], "eeeeeee") {
		t.Fatalf("expected source commit fallback, got %#v", lines)
	}
}

func TestBuildReport_DirtyWorktreeWarns(t *testing.T) {
	root := t.TempDir()
	repo := &stubRepo{
		root:  root,
		clean: false,
		logs: map[string][]interfaces.CommitVersion{
			"report.Rmd": {commitAt("eeeeeee0123456789abcdef0123456789abcdef0", "Ada", time.Now())},
		},
	}

	lines := NewReportBuilder(ReportBuilderConfig{Repo: repo}).Build(ReportRequest{
		DocumentPath: filepath.Join(root, "report.Rmd"),
	})

	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "> Warning:") {
		t.Fatalf("expected a staleness warning for a dirty worktree, got %q", joined)
	}
}

func TestBuildReport_CleanWorktreeDoesNotWarn(t *testing.T) {
	root := t.TempDir()
	repo := &stubRepo{
		root:  root,
		clean: true,
		logs: map[string][]interfaces.CommitVersion{
			"report.Rmd": {commitAt("eeeeeee0123456789abcdef0123456789abcdef0", "Ada", time.Now())},
		},
	}

	lines := NewReportBuilder(ReportBuilderConfig{Repo: repo}).Build(ReportRequest{
		DocumentPath: filepath.Join(root, "report.Rmd"),
	})

	if strings.Contains(strings.Join(lines, "\n"), "Warning") {
		t.Fatalf("unexpected warning for a clean worktree: %#v", lines)
	}
}

func TestBuildReport_LinksRemoteWhenConfigured(t *testing.T) {
	root := t.TempDir()
	repo := &stubRepo{
		root:  root,
		clean: true,
		logs: map[string][]interfaces.CommitVersion{
			"report.Rmd": {commitAt("eeeeeee0123456789abcdef0123456789abcdef0", "Ada", time.Now())},
		},
	}

	lines := NewReportBuilder(ReportBuilderConfig{Repo: repo}).Build(ReportRequest{
		DocumentPath: filepath.Join(root, "report.Rmd"),
		Config:       interfaces.WorkflowConfig{GithubURL: "https://github.com/acme/reports"},
	})

	if len(lines) == 0 ||
		!strings.Contains(lines[0], "https://github.com/acme/reports/tree/eeeeeee0123456789abcdef0123456789abcdef0") {
		t.Fatalf("expected a remote tree link, got %#v", lines)
	}
}
