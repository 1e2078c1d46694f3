// Package config decodes the dynamically-typed LSP initializationOptions
// map into a closed configuration record, and layers an optional on-disk
// project settings file underneath it.
package config

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/glog"
)

// CompilationMode selects whether the engine compiles the whole workspace
// up front or lazily compiles files as they are opened.
type CompilationMode string

const (
	ModeWorkspace   CompilationMode = "workspace"
	ModeSingleFile  CompilationMode = "single-file"
)

// Options is the closed set of fields recognized from
// initializationOptions, per spec §6 and §9's guidance to validate dynamic
// init options at the boundary.
type Options struct {
	CompilationMode CompilationMode `yaml:"compilationMode" json:"compilationMode"`
	REPLEnabled     bool            `yaml:"replEnabled" json:"replEnabled"`
	JenkinsPipeline bool            `yaml:"jenkinsPipeline" json:"jenkinsPipeline"`
	DSLCatalogPaths []string        `yaml:"dslCatalogPaths" json:"dslCatalogPaths"`
}

// Default returns the configuration used when no options are supplied.
func Default() Options {
	return Options{CompilationMode: ModeWorkspace}
}

// FromMap validates a dynamically-typed initializationOptions map into an
// Options record, logging and ignoring any key it does not recognize.
func FromMap(log glog.Logger, raw map[string]interface{}) Options {
	opts := Default()
	for k, v := range raw {
		switch k {
		case "compilationMode":
			if s, ok := v.(string); ok {
				opts.CompilationMode = CompilationMode(s)
			}
		case "replEnabled":
			if b, ok := v.(bool); ok {
				opts.REPLEnabled = b
			}
		case "jenkinsPipeline":
			if b, ok := v.(bool); ok {
				opts.JenkinsPipeline = b
			}
		case "dslCatalogPaths":
			if list, ok := v.([]interface{}); ok {
				for _, e := range list {
					if s, ok := e.(string); ok {
						opts.DSLCatalogPaths = append(opts.DSLCatalogPaths, s)
					}
				}
			}
		default:
			if log != nil {
				log.Debug("ignoring unknown initialization option", "key", k)
			}
		}
	}
	return opts
}

// LoadProjectFile layers a `.groovyls.yml` file found at workspaceRoot under
// opts: any field already set on opts (non-zero) takes precedence, since the
// editor-supplied initializationOptions are more specific than the
// workspace-wide file. A missing file is not an error.
func LoadProjectFile(log glog.Logger, workspaceRoot string, opts Options) Options {
	path := filepath.Join(workspaceRoot, ".groovyls.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		return opts
	}
	var fromFile Options
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		if log != nil {
			log.Warn("failed to parse project settings file", "path", path, "error", err)
		}
		return opts
	}
	merged := opts
	if merged.CompilationMode == "" {
		merged.CompilationMode = fromFile.CompilationMode
	}
	if !merged.REPLEnabled {
		merged.REPLEnabled = fromFile.REPLEnabled
	}
	if !merged.JenkinsPipeline {
		merged.JenkinsPipeline = fromFile.JenkinsPipeline
	}
	if len(merged.DSLCatalogPaths) == 0 {
		merged.DSLCatalogPaths = fromFile.DSLCatalogPaths
	}
	return merged
}
