// Package weave augments literate markdown documents with reproducibility
// metadata before rendering and annotates generated figures with links to
// their prior committed versions.
package weave

import (
	"time"

	"github.com/goliatone/go-weave/internal/document"
	"github.com/goliatone/go-weave/internal/gitrepo"
	"github.com/goliatone/go-weave/internal/logging"
	"github.com/goliatone/go-weave/internal/provenance"
	"github.com/goliatone/go-weave/internal/render"
	"github.com/goliatone/go-weave/internal/workflowconfig"
	"github.com/goliatone/go-weave/pkg/interfaces"
)

// Version is stamped into rendered output footers.
const Version = "0.1.0"

// ProjectFileName exports the project configuration file name looked up in
// ancestor directories of a document.
const ProjectFileName = workflowconfig.ProjectFileName

type (
	// WorkflowConfig exports the effective per-build configuration.
	WorkflowConfig = interfaces.WorkflowConfig
	// AugmentResult exports the augmentation result DTO.
	AugmentResult = interfaces.AugmentResult
	// CommitVersion exports one historical record for a tracked path.
	CommitVersion = interfaces.CommitVersion
	// RepoContext exports the version-control capability boundary.
	RepoContext = interfaces.RepoContext
	// FigureHook exports the per-artifact provenance callback signature.
	FigureHook = interfaces.FigureHook
	// Logger exports the leveled logging contract.
	Logger = interfaces.Logger
	// LoggerProvider exports the named logger factory contract.
	LoggerProvider = interfaces.LoggerProvider

	// Augmenter exports the document augmentation orchestrator.
	Augmenter = document.Augmenter
	// AugmentRequest exports the augmentation inputs.
	AugmentRequest = document.AugmentRequest
	// Tracker exports the figure provenance tracker.
	Tracker = provenance.Tracker
	// ReportBuilder exports the document report builder.
	ReportBuilder = provenance.ReportBuilder
	// Renderer exports the HTML render adapter.
	Renderer = render.Renderer
	// Resolver exports the layered configuration resolver.
	Resolver = workflowconfig.Resolver
)

// ErrMalformedDocument exports the structural failure raised for documents
// missing their metadata delimiters.
var ErrMalformedDocument = document.ErrMalformedDocument

// IsConfigParseError reports whether err came from an unparsable
// configuration source.
func IsConfigParseError(err error) bool { return workflowconfig.IsConfigParseError(err) }

// IsMalformedDocument reports whether err came from a document missing its
// metadata delimiters.
func IsMalformedDocument(err error) bool { return document.IsMalformed(err) }

// OpenRepo opens the repository containing path, reporting false when the
// path is not inside a worktree.
func OpenRepo(path string) (RepoContext, bool) { return gitrepo.Discover(path) }

// Config captures the knobs for assembling a build pipeline.
type Config struct {
	// OutputDir is the published-output tree receiving rendered documents,
	// relative to the repository root when one exists.
	OutputDir string
	// TempDir overrides where augmented documents are written.
	TempDir string
	// Now supplies the build timestamp; tests pin it for stable output.
	Now func() time.Time
	// LoggerProvider supplies module loggers; nil disables logging.
	LoggerProvider LoggerProvider
}

// Pipeline bundles the components for building documents under one project.
// A pipeline may be reused across many sequential builds; each build
// constructs its own configuration and report values.
type Pipeline struct {
	Repo      RepoContext
	Resolver  *Resolver
	Augmenter *Augmenter
	Tracker   *Tracker
	Renderer  *Renderer
}

// New assembles a Pipeline rooted at projectPath. The repository is optional:
// outside a worktree every provenance lookup yields empty results and builds
// still succeed.
func New(projectPath string, cfg Config) *Pipeline {
	repo, _ := gitrepo.Discover(projectPath)

	resolver := workflowconfig.NewResolver(
		workflowconfig.WithRepo(repo),
		workflowconfig.WithLogger(logging.ConfigLogger(cfg.LoggerProvider)),
	)

	reports := provenance.NewReportBuilder(provenance.ReportBuilderConfig{
		Repo:   repo,
		Logger: logging.ProvenanceLogger(cfg.LoggerProvider),
	})

	augmenter := document.NewAugmenter(document.AugmenterConfig{
		Resolver:  resolver,
		Reports:   reports,
		Logger:    logging.AugmentLogger(cfg.LoggerProvider),
		TempDir:   cfg.TempDir,
		OutputDir: cfg.OutputDir,
		Now:       cfg.Now,
	})

	var remoteURL string
	if repo != nil {
		if remote, err := repo.RemoteURL("origin"); err == nil {
			remoteURL = workflowconfig.NormalizeRemoteURL(remote)
		}
	}

	tracker := provenance.NewTracker(provenance.TrackerConfig{
		Repo:      repo,
		RemoteURL: remoteURL,
		OutputDir: cfg.OutputDir,
		Logger:    logging.ProvenanceLogger(cfg.LoggerProvider),
	})

	renderer := render.New(render.Config{
		OutputDir: cfg.OutputDir,
		Version:   Version,
		Logger:    logging.RenderLogger(cfg.LoggerProvider),
	})

	return &Pipeline{
		Repo:      repo,
		Resolver:  resolver,
		Augmenter: augmenter,
		Tracker:   tracker,
		Renderer:  renderer,
	}
}
