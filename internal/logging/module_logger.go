package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-weave/pkg/interfaces"
)

const (
	rootModule       = "weave"
	configModule     = "weave.config"
	augmentModule    = "weave.augment"
	provenanceModule = "weave.provenance"
	renderModule     = "weave.render"
)

const (
	fieldDocumentPath = "document_path"
	fieldArtifactPath = "artifact_path"
	fieldKnitRoot     = "knit_root"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ConfigLogger returns the logger namespace reserved for config resolution.
func ConfigLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, configModule)
}

// AugmentLogger returns the logger namespace reserved for document augmentation.
func AugmentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, augmentModule)
}

// ProvenanceLogger returns the logger namespace reserved for provenance lookups.
func ProvenanceLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, provenanceModule)
}

// RenderLogger returns the logger namespace reserved for the render adapter.
func RenderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, renderModule)
}

// WithDocumentContext enriches the provided logger with common build fields
// such as the document path and knit root. Empty values are ignored.
func WithDocumentContext(logger interfaces.Logger, documentPath, knitRoot string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(documentPath); trimmed != "" {
		fields[fieldDocumentPath] = trimmed
	}
	if trimmed := strings.TrimSpace(knitRoot); trimmed != "" {
		fields[fieldKnitRoot] = trimmed
	}
	return WithFields(logger, fields)
}

// WithArtifactContext tags the logger with the artifact path a provenance
// lookup is operating on.
func WithArtifactContext(logger interfaces.Logger, artifactPath string) interfaces.Logger {
	if strings.TrimSpace(artifactPath) == "" {
		return logger
	}
	return WithFields(logger, map[string]any{
		fieldArtifactPath: artifactPath,
	})
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithContext(context.Context) interfaces.Logger { return n }

func (n noopLogger) WithFields(map[string]any) interfaces.Logger { return n }
