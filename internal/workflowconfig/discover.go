package workflowconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

const configParseCode = "CONFIG_PARSE_FAILED"

// ErrConfigParse indicates a configuration source existed but could not be
// read or parsed. These failures are fatal; a half-read configuration must
// never silently degrade to defaults.
var ErrConfigParse = errors.New("workflow config: unparsable source")

// Project describes a discovered project configuration: the directory that
// holds the project file and the parsed overrides it declares.
type Project struct {
	Root       string
	ConfigPath string
	Overrides  Overrides
}

// DiscoverProject walks from startDir towards the filesystem root looking for
// ProjectFileName. The boolean result makes "no project file" an explicit,
// testable branch rather than a swallowed error: (zero, false, nil) means the
// document is not part of a configured project.
func DiscoverProject(startDir string) (Project, bool, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return Project{}, false, err
	}

	for {
		candidate := filepath.Join(dir, ProjectFileName)
		info, statErr := os.Stat(candidate)
		if statErr == nil && !info.IsDir() {
			project, parseErr := loadProject(dir, candidate)
			if parseErr != nil {
				return Project{}, false, parseErr
			}
			return project, true, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Project{}, false, nil
		}
		dir = parent
	}
}

func loadProject(root, configPath string) (Project, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return Project{}, parseError(err, configPath)
	}

	var ov Overrides
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return Project{}, parseError(err, configPath)
	}

	if err := validateOverrides(ov); err != nil {
		return Project{}, parseError(err, configPath)
	}

	return Project{Root: root, ConfigPath: configPath, Overrides: ov}, nil
}

func validateOverrides(ov Overrides) error {
	if ov.Github == nil || *ov.Github == "" {
		return nil
	}
	return validation.Validate(*ov.Github, is.URL)
}

// parseError tags any failure to read or parse a configuration source as a
// fatal parse error naming the offending file.
func parseError(err error, path string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(fmt.Errorf("%w: %w", ErrConfigParse, err), goerrors.CategoryValidation,
		"workflow config: cannot parse "+path).
		WithTextCode(configParseCode)
}

// IsConfigParseError reports whether err was raised while reading or parsing
// a configuration source.
func IsConfigParseError(err error) bool {
	return errors.Is(err, ErrConfigParse)
}
