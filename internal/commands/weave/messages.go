package weavecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const buildDocumentMessageType = "weave.build_document"

// BuildDocumentCommand augments one literate document and optionally renders
// the augmented output to HTML. Source mirrors document.AugmentRequest
// semantics; KnitRoot, when set, overrides every configured knit root.
type BuildDocumentCommand struct {
	// Source selects the literate document to build.
	Source string `json:"source"`
	// KnitRoot overrides the working directory used during chunk execution.
	KnitRoot string `json:"knit_root,omitempty"`
	// Render toggles the HTML render pass after augmentation.
	Render bool `json:"render,omitempty"`
}

// Type implements command.Message.
func (BuildDocumentCommand) Type() string { return buildDocumentMessageType }

// Validate ensures a source document is present before handlers execute.
func (cmd BuildDocumentCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Source, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("weave.build_document.source_required", "source is required")
			}
			return nil
		})),
	)
}
