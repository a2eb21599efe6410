package weavecmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-weave/internal/commands"
	"github.com/goliatone/go-weave/internal/document"
	"github.com/goliatone/go-weave/internal/logging"
	"github.com/goliatone/go-weave/internal/provenance"
	"github.com/goliatone/go-weave/internal/render"
	"github.com/goliatone/go-weave/pkg/interfaces"
)

const buildOperation = "weave.build_document"

// ErrAugmenterRequired is returned when the handler is constructed without an
// augmenter.
var ErrAugmenterRequired = errors.New("weave command: augmenter is required")

// ErrRendererRequired is returned when a render pass is requested but no
// renderer was configured.
var ErrRendererRequired = errors.New("weave command: renderer is required for render pass")

var _ command.Commander[BuildDocumentCommand] = (*BuildDocumentHandler)(nil)

// BuildDocumentHandler orchestrates a document build via the shared command
// handler foundation.
type BuildDocumentHandler struct {
	inner *commands.Handler[BuildDocumentCommand]
}

// BuildDocumentDeps wires the pipeline pieces a build needs. Tracker is
// optional; without it figures render without provenance fragments.
type BuildDocumentDeps struct {
	Augmenter *document.Augmenter
	Renderer  *render.Renderer
	Tracker   *provenance.Tracker
	Logger    interfaces.Logger
}

// NewBuildDocumentHandler creates a handler bound to the supplied pipeline.
func NewBuildDocumentHandler(deps BuildDocumentDeps, opts ...commands.HandlerOption[BuildDocumentCommand]) *BuildDocumentHandler {
	baseLogger := deps.Logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg BuildDocumentCommand) error {
		if deps.Augmenter == nil {
			return ErrAugmenterRequired
		}

		result, err := deps.Augmenter.Augment(ctx, document.AugmentRequest{
			SourcePath:  msg.Source,
			KnitRootDir: msg.KnitRoot,
		})
		if err != nil {
			return err
		}

		logger := logging.WithDocumentContext(baseLogger, msg.Source, result.Config.KnitRootDir)
		logger.Info("build.augmented", "augmented_path", result.AugmentedPath)

		if !msg.Render {
			return nil
		}
		if deps.Renderer == nil {
			return ErrRendererRequired
		}

		var hook interfaces.FigureHook
		if deps.Tracker != nil {
			hook = deps.Tracker.FigureHook(msg.Source)
		}

		outPath, err := deps.Renderer.Render(ctx, render.Request{
			AugmentedPath: result.AugmentedPath,
			DocumentPath:  msg.Source,
			Hook:          hook,
		})
		if err != nil {
			return err
		}
		logger.Info("build.rendered", "output_path", outPath)
		return nil
	}

	defaults := []commands.HandlerOption[BuildDocumentCommand]{
		commands.WithOperation[BuildDocumentCommand](buildOperation),
		commands.WithLogger[BuildDocumentCommand](baseLogger),
	}
	return &BuildDocumentHandler{
		inner: commands.NewHandler(exec, append(defaults, opts...)...),
	}
}

// Execute satisfies command.Commander.
func (h *BuildDocumentHandler) Execute(ctx context.Context, msg BuildDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}
