package workflowconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-weave/internal/logging"
	"github.com/goliatone/go-weave/pkg/interfaces"
)

// dotsClosedFormat recognizes metadata blocks that open with `---` and close
// with `...`, which the document layer accepts but the default front matter
// formats do not.
var dotsClosedFormat = frontmatter.NewFormat("---", "...", yaml.Unmarshal)

// Resolver merges built-in defaults, the project file, and per-document front
// matter into one effective configuration. Resolution is a pure function of
// its inputs and filesystem state; the resolver itself holds only optional
// collaborators.
type Resolver struct {
	repo   interfaces.RepoContext
	logger interfaces.Logger
}

// Option configures a Resolver instance.
type Option func(*Resolver)

// WithRepo supplies the repository handle used to auto-derive the remote URL
// when no configuration source declares one.
func WithRepo(repo interfaces.RepoContext) Option {
	return func(r *Resolver) { r.repo = repo }
}

// WithLogger attaches a logger to the resolver.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver builds a Resolver from the supplied options.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{logger: logging.NoOp()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Request carries the inputs for one resolution.
type Request struct {
	// DocumentPath locates the literate document being built.
	DocumentPath string
	// ExplicitKnitRoot, when non-empty, wins over every configuration source
	// and is recorded into the effective configuration.
	ExplicitKnitRoot string
}

// Resolve produces the effective configuration for one document build.
// Precedence, lowest to highest: built-in defaults, project file, document
// front matter, explicit caller override.
func (r *Resolver) Resolve(req Request) (interfaces.WorkflowConfig, error) {
	docPath, err := filepath.Abs(req.DocumentPath)
	if err != nil {
		return interfaces.WorkflowConfig{}, err
	}
	docDir := filepath.Dir(docPath)

	state := merged{
		seed:        defaultSeed(),
		sessionInfo: DefaultSessionInfo,
		github:      r.remoteURL(),
	}

	project, found, err := DiscoverProject(docDir)
	if err != nil {
		return interfaces.WorkflowConfig{}, err
	}
	if found {
		state.apply(project.Overrides, knitRootFromProject)
		r.logger.Debug("config.project_file", "path", project.ConfigPath)
	}

	docOverrides, err := r.documentOverrides(docPath)
	if err != nil {
		return interfaces.WorkflowConfig{}, err
	}
	if docOverrides != nil {
		state.apply(*docOverrides, knitRootFromDocument)
	}

	if req.ExplicitKnitRoot != "" {
		state.knitRootDir = req.ExplicitKnitRoot
		state.knitSource = knitRootExplicit
	}

	state.knitRootDir, err = resolveKnitRoot(state.knitRootDir, state.knitSource, docDir, project.Root)
	if err != nil {
		return interfaces.WorkflowConfig{}, err
	}

	return state.freeze(), nil
}

// documentOverrides parses the document front matter and returns the nested
// `weave` mapping, or nil when the document declares none.
func (r *Resolver) documentOverrides(docPath string) (*Overrides, error) {
	data, err := os.ReadFile(docPath)
	if err != nil {
		return nil, parseError(err, docPath)
	}

	var envelope struct {
		Weave *Overrides `yaml:"weave"`
	}
	if closingDelimiter(data) == "..." {
		_, err = frontmatter.Parse(bytes.NewReader(data), &envelope, dotsClosedFormat)
	} else {
		_, err = frontmatter.Parse(bytes.NewReader(data), &envelope)
	}
	if err != nil {
		return nil, parseError(err, docPath)
	}
	return envelope.Weave, nil
}

// closingDelimiter returns the line closing the metadata block: the second of
// the first two delimiter lines, `---` or `...`. Documents without two
// delimiter lines yield "". The scan must agree with the document layer's
// delimiter rules so both read the same header.
func closingDelimiter(data []byte) string {
	count := 0
	for _, line := range strings.Split(string(data), "\n") {
		if line == "---" || line == "..." {
			count++
			if count == 2 {
				return line
			}
		}
	}
	return ""
}

// resolveKnitRoot makes the knit root absolute. Relative values resolve
// against the directory of the source that declared them: the project root
// for project-file values, the document's directory for front matter values.
// Absolute inputs pass through unchanged.
func resolveKnitRoot(value string, source knitRootSource, docDir, projectRoot string) (string, error) {
	if value == "" {
		return docDir, nil
	}
	if filepath.IsAbs(value) {
		return filepath.Clean(value), nil
	}

	switch source {
	case knitRootFromProject:
		if projectRoot != "" {
			return filepath.Join(projectRoot, value), nil
		}
		return filepath.Join(docDir, value), nil
	case knitRootExplicit:
		return filepath.Abs(value)
	default:
		return filepath.Join(docDir, value), nil
	}
}

func (r *Resolver) remoteURL() string {
	if r.repo == nil {
		return ""
	}
	remote, err := r.repo.RemoteURL("origin")
	if err != nil {
		r.logger.Debug("config.remote_unavailable", "error", err)
		return ""
	}
	return NormalizeRemoteURL(remote)
}

// NormalizeRemoteURL rewrites common git remote forms into a browsable https
// base: scp-like `git@host:user/repo.git` and `ssh://git@host/user/repo`
// become `https://host/user/repo`.
func NormalizeRemoteURL(remote string) string {
	remote = strings.TrimSpace(remote)
	if remote == "" {
		return ""
	}
	remote = strings.TrimSuffix(remote, ".git")

	if after, ok := strings.CutPrefix(remote, "ssh://"); ok {
		remote = after
		if at := strings.Index(remote, "@"); at >= 0 {
			remote = remote[at+1:]
		}
		return "https://" + remote
	}
	if strings.HasPrefix(remote, "http://") || strings.HasPrefix(remote, "https://") {
		return remote
	}
	if at := strings.Index(remote, "@"); at >= 0 && strings.Contains(remote[at:], ":") {
		host, path, _ := strings.Cut(remote[at+1:], ":")
		return "https://" + host + "/" + path
	}
	return remote
}

func defaultSeed() *int {
	seed := DefaultSeed
	return &seed
}
