package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-slug"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-weave/internal/logging"
	"github.com/goliatone/go-weave/pkg/interfaces"
)

// Config captures the options for the HTML render adapter.
type Config struct {
	// OutputDir receives the rendered HTML files.
	OutputDir string
	// Version is stamped into the footer naming this tool.
	Version string
	Logger  interfaces.Logger
}

// Renderer converts an augmented literate document into HTML. Before
// conversion it walks the document for figure references and calls the
// registered per-artifact hook, splicing any returned provenance fragment
// after the figure. It is the thin default implementation of the external
// rendering collaborator; the augmentation core never depends on it.
type Renderer struct {
	engine    goldmark.Markdown
	outputDir string
	version   string
	logger    interfaces.Logger
}

// New builds a Renderer from the supplied configuration.
func New(cfg Config) *Renderer {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Renderer{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		outputDir: cfg.OutputDir,
		version:   cfg.Version,
		logger:    logger,
	}
}

// Request carries the inputs for one render.
type Request struct {
	// AugmentedPath locates the augmented markdown produced by the augmenter.
	AugmentedPath string
	// DocumentPath locates the original source, used to name the output.
	DocumentPath string
	// Hook, when non-nil, is invoked once per figure reference and its
	// returned markdown fragment is spliced in after the figure.
	Hook interfaces.FigureHook
}

// Render converts the augmented document to HTML and writes it under the
// output directory. It returns the written file path.
func (r *Renderer) Render(ctx context.Context, req Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	source, err := os.ReadFile(req.AugmentedPath)
	if err != nil {
		return "", err
	}

	if req.Hook != nil {
		source = r.annotateFigures(source, req.Hook)
	}

	var buf bytes.Buffer
	if err := r.engine.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("render: convert %s: %w", req.AugmentedPath, err)
	}
	buf.WriteString(r.footer())

	outPath := filepath.Join(r.outputDir, outputName(req.DocumentPath))
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return "", err
	}

	r.logger.Debug("render.complete", "output_path", outPath)
	return outPath, nil
}

// insertion records a markdown fragment to splice into the source at a byte
// offset. Offsets are applied back to front so earlier ones stay valid.
type insertion struct {
	offset   int
	fragment string
}

// annotateFigures parses the markdown, finds every image reference, and asks
// the hook for a provenance fragment to append after the enclosing block.
// Hook failures are recovered: the figure simply renders without history.
func (r *Renderer) annotateFigures(source []byte, hook interfaces.FigureHook) []byte {
	doc := r.engine.Parser().Parse(text.NewReader(source))

	var insertions []insertion
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		image, ok := node.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}

		offset, ok := blockEnd(image)
		if !ok {
			return ast.WalkContinue, nil
		}

		artifact := string(image.Destination)
		fragment, err := hook(artifact)
		if err != nil {
			r.logger.Debug("render.figure_hook_failed", "artifact", artifact, "error", err)
			return ast.WalkContinue, nil
		}
		if fragment != "" {
			insertions = append(insertions, insertion{offset: offset, fragment: fragment})
		}
		return ast.WalkContinue, nil
	})

	if len(insertions) == 0 {
		return source
	}

	sort.Slice(insertions, func(i, j int) bool { return insertions[i].offset > insertions[j].offset })

	out := source
	for _, ins := range insertions {
		var b bytes.Buffer
		b.Write(out[:ins.offset])
		b.WriteString("\n\n")
		b.WriteString(strings.TrimRight(ins.fragment, "\n"))
		b.WriteString("\n")
		b.Write(out[ins.offset:])
		out = b.Bytes()
	}
	return out
}

// blockEnd returns the source offset just past the block containing an inline
// node.
func blockEnd(node ast.Node) (int, bool) {
	block := node.Parent()
	for block != nil && block.Type() != ast.TypeBlock {
		block = block.Parent()
	}
	if block == nil {
		return 0, false
	}
	lines := block.Lines()
	if lines == nil || lines.Len() == 0 {
		return 0, false
	}
	return lines.At(lines.Len() - 1).Stop, true
}

// outputName derives the slugged HTML file name for a document.
func outputName(documentPath string) string {
	base := filepath.Base(documentPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if normalized, err := slug.Normalize(base); err == nil && normalized != "" {
		base = normalized
	}
	return base + ".html"
}

func (r *Renderer) footer() string {
	version := r.version
	if version == "" {
		version = "dev"
	}
	return fmt.Sprintf("\n<hr />\n<p class=\"weave-footer\">Built with go-weave %s</p>\n", version)
}
