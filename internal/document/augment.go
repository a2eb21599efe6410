package document

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-weave/internal/logging"
	"github.com/goliatone/go-weave/internal/provenance"
	"github.com/goliatone/go-weave/internal/workflowconfig"
	"github.com/goliatone/go-weave/pkg/interfaces"
)

// AugmenterConfig encapsulates the collaborators an Augmenter needs.
type AugmenterConfig struct {
	Resolver *workflowconfig.Resolver
	Reports  *provenance.ReportBuilder
	Logger   interfaces.Logger
	// TempDir overrides where augmented documents are written. Defaults to
	// the system temp directory.
	TempDir string
	// OutputDir is the published-output tree forwarded to the report builder.
	OutputDir string
	// Now supplies the build timestamp; tests pin it for stable output.
	Now func() time.Time
}

// Augmenter orchestrates one document build: it locates the structural
// insertion points in the source, resolves the effective configuration, and
// writes the augmented body to an ephemeral location. The original source
// file is never modified.
type Augmenter struct {
	resolver  *workflowconfig.Resolver
	reports   *provenance.ReportBuilder
	logger    interfaces.Logger
	tempDir   string
	outputDir string
	now       func() time.Time
}

// NewAugmenter builds an Augmenter from the supplied configuration.
func NewAugmenter(cfg AugmenterConfig) *Augmenter {
	a := &Augmenter{
		resolver:  cfg.Resolver,
		reports:   cfg.Reports,
		logger:    cfg.Logger,
		tempDir:   cfg.TempDir,
		outputDir: cfg.OutputDir,
		now:       cfg.Now,
	}
	if a.resolver == nil {
		a.resolver = workflowconfig.NewResolver()
	}
	if a.reports == nil {
		a.reports = provenance.NewReportBuilder(provenance.ReportBuilderConfig{})
	}
	if a.logger == nil {
		a.logger = logging.NoOp()
	}
	if a.tempDir == "" {
		a.tempDir = os.TempDir()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// AugmentRequest carries the inputs for one augmentation.
type AugmentRequest struct {
	// SourcePath locates the literate document to augment.
	SourcePath string
	// KnitRootDir, when non-empty, overrides every configured knit root and
	// is recorded into the returned configuration.
	KnitRootDir string
}

// Augment produces the augmented document and the effective configuration.
// All original lines appear in the output unmodified, contiguous, and in
// their original order; only insertions are added around them.
func (a *Augmenter) Augment(ctx context.Context, req AugmentRequest) (interfaces.AugmentResult, error) {
	select {
	case <-ctx.Done():
		return interfaces.AugmentResult{}, ctx.Err()
	default:
	}

	doc, err := Load(req.SourcePath)
	if err != nil {
		return interfaces.AugmentResult{}, err
	}

	cfg, err := a.resolver.Resolve(workflowconfig.Request{
		DocumentPath:     req.SourcePath,
		ExplicitKnitRoot: req.KnitRootDir,
	})
	if err != nil {
		return interfaces.AugmentResult{}, err
	}

	logger := logging.WithDocumentContext(a.logger, req.SourcePath, cfg.KnitRootDir)

	hasCode := doc.HasCode()
	lines := a.assemble(doc, cfg, hasCode)

	path, err := a.writeEphemeral(req.SourcePath, lines)
	if err != nil {
		return interfaces.AugmentResult{}, err
	}

	logger.Debug("augment.complete", "augmented_path", path, "has_code", hasCode)
	return interfaces.AugmentResult{AugmentedPath: path, Config: cfg}, nil
}

// assemble builds the final line sequence: metadata block, last-updated
// marker, report block, separator, seed block, original body, session-info
// block.
func (a *Augmenter) assemble(doc *SourceDocument, cfg interfaces.WorkflowConfig, hasCode bool) []string {
	report := a.reports.Build(provenance.ReportRequest{
		DocumentPath: doc.Path,
		OutputDir:    a.outputDir,
		HasCode:      hasCode,
		Config:       cfg,
	})

	out := make([]string, 0, len(doc.Lines)+len(report)+24)
	out = append(out, doc.Header()...)
	out = append(out, "", LastUpdatedLine(a.now()))
	if len(report) > 0 {
		out = append(out, "")
		out = append(out, report...)
	}
	out = append(out, "", separatorLine, "")

	if hasCode && cfg.Seed != nil {
		out = append(out, SeedBlock(*cfg.Seed)...)
		out = append(out, "")
	}

	out = append(out, doc.Body()...)

	if hasCode && cfg.SessionInfo != "" {
		out = append(out, SessionInfoBlock(cfg.SessionInfo)...)
	}
	return out
}

// writeEphemeral writes the augmented lines to a fresh file in the temp
// directory, named after the source so render logs stay readable.
func (a *Augmenter) writeEphemeral(sourcePath string, lines []string) (string, error) {
	name := "weave-" + uuid.NewString() + "-" + filepath.Base(sourcePath)
	path := filepath.Join(a.tempDir, name)

	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
