package workflowconfig

import (
	"math"
	"strings"

	"github.com/goliatone/go-weave/pkg/interfaces"
)

// ProjectFileName is the project-level configuration file discovered by
// walking the ancestor directories of a document.
const ProjectFileName = "_weave.yml"

// DefaultSeed seeds chunk execution when no configuration source declares one.
const DefaultSeed = 12345

// DefaultSessionInfo is the expression evaluated at the end of a document to
// record the execution environment. An empty override disables the block.
const DefaultSessionInfo = "sessionInfo()"

// Overrides mirrors the recognized configuration keys. The same shape is
// accepted from the project file and from the document front matter under the
// nested `weave` mapping. Pointer fields distinguish "absent" from "set to
// the zero value" so overlays merge per key.
type Overrides struct {
	KnitRootDir *string `yaml:"knit_root_dir"`
	Seed        any     `yaml:"seed"`
	Github      *string `yaml:"github"`
	SessionInfo *string `yaml:"sessioninfo"`
}

// knitRootSource records which layer declared the knit root so relative
// values resolve against the right base directory.
type knitRootSource int

const (
	knitRootUnset knitRootSource = iota
	knitRootFromProject
	knitRootFromDocument
	knitRootExplicit
)

// merged is the working state of a resolution before it is frozen into an
// interfaces.WorkflowConfig.
type merged struct {
	knitRootDir string
	knitSource  knitRootSource
	seed        *int
	github      string
	sessionInfo string
}

func (m *merged) apply(ov Overrides, source knitRootSource) {
	if ov.KnitRootDir != nil {
		m.knitRootDir = *ov.KnitRootDir
		m.knitSource = source
	}
	if ov.Seed != nil {
		m.seed = normalizeSeed(ov.Seed)
	}
	if ov.Github != nil {
		m.github = strings.TrimSpace(*ov.Github)
	}
	if ov.SessionInfo != nil {
		m.sessionInfo = *ov.SessionInfo
	}
}

func (m *merged) freeze() interfaces.WorkflowConfig {
	return interfaces.WorkflowConfig{
		KnitRootDir: m.knitRootDir,
		Seed:        m.seed,
		GithubURL:   m.github,
		SessionInfo: m.sessionInfo,
	}
}

// normalizeSeed accepts the YAML value declared for `seed` and reduces it to
// a single integer. Lists, maps, strings, and fractional numbers yield nil,
// which suppresses the seed block without failing the merge.
func normalizeSeed(value any) *int {
	switch v := value.(type) {
	case int:
		return &v
	case int64:
		if v > math.MaxInt || v < math.MinInt {
			return nil
		}
		out := int(v)
		return &out
	case uint64:
		if v > math.MaxInt {
			return nil
		}
		out := int(v)
		return &out
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt || v < math.MinInt {
			return nil
		}
		out := int(v)
		return &out
	default:
		return nil
	}
}
