package interfaces

// WorkflowConfig is the effective, merged configuration for one document
// build. It is constructed fresh per build, immutable once resolution
// completes, and discarded afterwards.
type WorkflowConfig struct {
	// KnitRootDir is the absolute directory used as the working directory
	// while the document's code chunks execute.
	KnitRootDir string
	// Seed is the global random seed declared for the build. A nil value
	// means no usable single numeric seed was configured.
	Seed *int
	// GithubURL is the remote hosting base used to link committed versions.
	GithubURL string
	// SessionInfo is the expression evaluated at the end of the document to
	// record the execution environment. Empty disables the block.
	SessionInfo string
}

// AugmentResult reports where the augmented document was written and the
// configuration that produced it.
type AugmentResult struct {
	// AugmentedPath is the ephemeral file holding the augmented document.
	// The original source file is never modified.
	AugmentedPath string
	// Config is the effective configuration used for the build. Callers use
	// Config.KnitRootDir as the working directory for the render pass.
	Config WorkflowConfig
}

// FigureHook is invoked once per generated artifact after it is written to
// disk and before final document assembly. It returns a markdown fragment to
// include alongside the artifact reference, or an empty string when no
// provenance is available. Implementations must be idempotent and must not
// write files.
type FigureHook func(artifactPath string) (string, error)
