package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-weave/internal/provenance"
	"github.com/goliatone/go-weave/internal/workflowconfig"
	"github.com/goliatone/go-weave/pkg/interfaces"
)

type stubRepo struct {
	root   string
	head   interfaces.CommitVersion
	clean  bool
	remote string
	logs   map[string][]interfaces.CommitVersion
}

func (s *stubRepo) Root() string                            { return s.root }
func (s *stubRepo) Head() (interfaces.CommitVersion, error) { return s.head, nil }
func (s *stubRepo) IsClean() (bool, error)                  { return s.clean, nil }

func (s *stubRepo) RemoteURL(string) (string, error) {
	if s.remote == "" {
		return "", errors.New("no remote configured")
	}
	return s.remote, nil
}

func (s *stubRepo) Log(rel string) ([]interfaces.CommitVersion, error) {
	return s.logs[rel], nil
}

var buildTime = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func writeDoc(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func codeDocLines() []string {
	return []string{
		"---",
		"title: Test Report",
		"---",
		"",
		"Some prose before the chunk.",
		"",
		"```{r chunk-one}",
		"plot(1)",
		"```",
		"",
		"Closing prose.",
	}
}

func newAugmenter(t *testing.T, repo interfaces.RepoContext, tempDir string) *Augmenter {
	t.Helper()
	return NewAugmenter(AugmenterConfig{
		Resolver: workflowconfig.NewResolver(workflowconfig.WithRepo(repo)),
		Reports:  provenance.NewReportBuilder(provenance.ReportBuilderConfig{Repo: repo}),
		TempDir:  tempDir,
		Now:      func() time.Time { return buildTime },
	})
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func indexOf(lines []string, want string) int {
	for i, line := range lines {
		if line == want {
			return i
		}
	}
	return -1
}

func TestAugment_InsideRepository(t *testing.T) {
	dir := t.TempDir()
	tempDir := t.TempDir()
	docPath := writeDoc(t, dir, "report.Rmd", codeDocLines())

	repo := &stubRepo{
		root:  dir,
		clean: true,
		logs: map[string][]interfaces.CommitVersion{
			"report.Rmd": {{
				Hash:      "abcdef0123456789abcdef0123456789abcdef01",
				ShortHash: "abcdef0",
				Author:    "Ada",
				When:      buildTime,
			}},
		},
	}

	result, err := newAugmenter(t, repo, tempDir).Augment(context.Background(), AugmentRequest{SourcePath: docPath})
	if err != nil {
		t.Fatalf("Augment: %v", err)
	}

	if result.Config.KnitRootDir != dir {
		t.Fatalf("expected knit root %q, got %q", dir, result.Config.KnitRootDir)
	}
	if !strings.HasPrefix(filepath.Base(result.AugmentedPath), "weave-") {
		t.Fatalf("expected ephemeral file name, got %q", result.AugmentedPath)
	}
	if result.AugmentedPath == docPath {
		t.Fatalf("augmented output must not be the source file")
	}

	lines := readLines(t, result.AugmentedPath)

	markerIdx := indexOf(lines, "**Last updated:** 2026-03-14")
	reportIdx := indexOf(lines, "**Code version:** abcdef0")
	seedIdx := indexOf(lines, "set.seed(12345)")
	bodyIdx := indexOf(lines, "Some prose before the chunk.")
	sessionIdx := indexOf(lines, "```{r session-info-by-weave, echo=FALSE}")

	for name, idx := range map[string]int{
		"marker": markerIdx, "report": reportIdx, "seed": seedIdx,
		"body": bodyIdx, "session": sessionIdx,
	} {
		if idx < 0 {
			t.Fatalf("augmented output missing %s block:\n%s", name, strings.Join(lines, "\n"))
		}
	}

	sepIdx := -1
	for i := reportIdx; i < seedIdx; i++ {
		if lines[i] == "---" {
			sepIdx = i
			break
		}
	}
	if sepIdx < 0 {
		t.Fatalf("expected a separator between report and seed block")
	}

	if !(markerIdx < reportIdx && reportIdx < sepIdx && sepIdx < seedIdx && seedIdx < bodyIdx && bodyIdx < sessionIdx) {
		t.Fatalf("blocks out of order: marker=%d report=%d sep=%d seed=%d body=%d session=%d",
			markerIdx, reportIdx, sepIdx, seedIdx, bodyIdx, sessionIdx)
	}

	// Header is verbatim at the top.
	if lines[0] != "---" || lines[1] != "title: Test Report" || lines[2] != "---" {
		t.Fatalf("header not preserved verbatim: %#v", lines[:3])
	}
}

func TestAugment_PreservesBodyLines(t *testing.T) {
	dir := t.TempDir()
	docPath := writeDoc(t, dir, "report.Rmd", codeDocLines())

	result, err := newAugmenter(t, nil, t.TempDir()).Augment(context.Background(), AugmentRequest{SourcePath: docPath})
	if err != nil {
		t.Fatalf("Augment: %v", err)
	}

	lines := readLines(t, result.AugmentedPath)
	body := codeDocLines()[3:]

	// The body opens with a blank line; anchor on its first prose line and
	// step back one to find where the original body resumes.
	anchor := indexOf(lines, "Some prose before the chunk.")
	if anchor < 1 {
		t.Fatalf("body anchor not found in output")
	}
	start := anchor - 1
	if !slices.Equal(lines[start:start+len(body)], body) {
		t.Fatalf("body lines not preserved contiguously in order:\n%s",
			strings.Join(lines[start:start+len(body)], "\n"))
	}
}

func TestAugment_OutsideRepository(t *testing.T) {
	dir := t.TempDir()
	docPath := writeDoc(t, dir, "report.Rmd", codeDocLines())

	result, err := newAugmenter(t, nil, t.TempDir()).Augment(context.Background(), AugmentRequest{SourcePath: docPath})
	if err != nil {
		t.Fatalf("Augment outside a repository must succeed: %v", err)
	}

	lines := readLines(t, result.AugmentedPath)
	if indexOf(lines, "**Last updated:** 2026-03-14") < 0 {
		t.Fatalf("expected last-updated marker even without a repo")
	}
	for _, line := range lines {
		if strings.HasPrefix(line, "**Code version:**") {
			t.Fatalf("expected no code version line outside a repo, got %q", line)
		}
	}
	if indexOf(lines, "set.seed(12345)") < 0 {
		t.Fatalf("expected seed block outside a repo")
	}
	if indexOf(lines, "```{r session-info-by-weave, echo=FALSE}") < 0 {
		t.Fatalf("expected session-info block outside a repo")
	}
}

func TestAugment_ProseOnlySkipsExecutableBlocks(t *testing.T) {
	dir := t.TempDir()
	docPath := writeDoc(t, dir, "prose.Rmd", []string{
		"---",
		"title: Prose",
		"---",
		"",
		"No chunks here.",
	})

	result, err := newAugmenter(t, nil, t.TempDir()).Augment(context.Background(), AugmentRequest{SourcePath: docPath})
	if err != nil {
		t.Fatalf("Augment: %v", err)
	}

	content := strings.Join(readLines(t, result.AugmentedPath), "\n")
	if strings.Contains(content, SeedChunkLabel) {
		t.Fatalf("prose-only document must not receive a seed block")
	}
	if strings.Contains(content, SessionInfoChunkLabel) {
		t.Fatalf("prose-only document must not receive a session-info block")
	}
}

func TestAugment_EmptySessionInfoDisablesBlock(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, workflowconfig.ProjectFileName), []byte("sessioninfo: \"\"\n"), 0o644); err != nil {
		t.Fatalf("write project file: %v", err)
	}
	docPath := writeDoc(t, dir, "report.Rmd", codeDocLines())

	result, err := newAugmenter(t, nil, t.TempDir()).Augment(context.Background(), AugmentRequest{SourcePath: docPath})
	if err != nil {
		t.Fatalf("Augment: %v", err)
	}

	content := strings.Join(readLines(t, result.AugmentedPath), "\n")
	if strings.Contains(content, SessionInfoChunkLabel) {
		t.Fatalf("empty sessioninfo must disable the block even with code present")
	}
	if !strings.Contains(content, SeedChunkLabel) {
		t.Fatalf("seed block should still be present")
	}
}

func TestAugment_NonNumericSeedSkipsSeedBlock(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, workflowconfig.ProjectFileName), []byte("seed: not-a-number\n"), 0o644); err != nil {
		t.Fatalf("write project file: %v", err)
	}
	docPath := writeDoc(t, dir, "report.Rmd", codeDocLines())

	result, err := newAugmenter(t, nil, t.TempDir()).Augment(context.Background(), AugmentRequest{SourcePath: docPath})
	if err != nil {
		t.Fatalf("Augment: %v", err)
	}

	content := strings.Join(readLines(t, result.AugmentedPath), "\n")
	if strings.Contains(content, SeedChunkLabel) {
		t.Fatalf("non-numeric seed must not produce a seed block")
	}
}

func TestAugment_MalformedDocumentWritesNothing(t *testing.T) {
	dir := t.TempDir()
	tempDir := t.TempDir()
	docPath := writeDoc(t, dir, "broken.Rmd", []string{
		"---",
		"title: Broken",
		"",
		"No closing delimiter.",
	})

	_, err := newAugmenter(t, nil, tempDir).Augment(context.Background(), AugmentRequest{SourcePath: docPath})
	if err == nil {
		t.Fatalf("expected a malformed document error")
	}
	if !IsMalformed(err) {
		t.Fatalf("expected malformed classification, got %v", err)
	}

	entries, readErr := os.ReadDir(tempDir)
	if readErr != nil {
		t.Fatalf("read temp dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("no ephemeral file may be produced for a malformed document, found %d", len(entries))
	}
}
