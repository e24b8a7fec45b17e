// Package scaffold materializes a project template into a new service directory.
package scaffold

import (
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/NielsdaWheelz/mkservice/internal/config"
	"github.com/NielsdaWheelz/mkservice/internal/errors"
	"github.com/NielsdaWheelz/mkservice/internal/fs"
	"github.com/NielsdaWheelz/mkservice/internal/paths"
	"github.com/NielsdaWheelz/mkservice/internal/templates"
)

// Template is a read-only template tree with its parsed manifest.
type Template struct {
	// Source identifies where the template came from, for display.
	Source   string
	FS       iofs.FS
	Manifest config.Manifest
}

// OpenTemplate loads the manifest of src.
// Returns E_TEMPLATE_INVALID if the manifest is malformed.
func OpenTemplate(source string, src iofs.FS) (Template, error) {
	m, err := config.LoadManifest(src)
	if err != nil {
		return Template{}, err
	}
	return Template{Source: source, FS: src, Manifest: m}, nil
}

// ResolveTemplate picks the template to generate from:
//  1. templateDir, when set (must be a directory)
//  2. <configDir>/templates/<default>, when it is a directory
//  3. the built-in template
func ResolveTemplate(fsys fs.FS, templateDir, configDir string) (Template, error) {
	if templateDir != "" {
		abs, err := filepath.Abs(templateDir)
		if err != nil {
			return Template{}, errors.Wrap(errors.ETemplateInvalid, "failed to resolve template directory", err)
		}
		info, err := fsys.Stat(abs)
		if err != nil || !info.IsDir() {
			return Template{}, errors.NewWithDetails(errors.ETemplateInvalid, "template directory "+abs+" does not exist",
				map[string]string{"path": abs})
		}
		return OpenTemplate(abs, os.DirFS(abs))
	}

	if configDir != "" {
		user := paths.UserTemplateDir(configDir, templates.Default)
		if info, err := fsys.Stat(user); err == nil && info.IsDir() {
			return OpenTemplate(user, os.DirFS(user))
		}
	}

	src, err := templates.Embedded(templates.Default)
	if err != nil {
		return Template{}, errors.Wrap(errors.EInternal, "built-in template missing", err)
	}
	return OpenTemplate("embedded:"+templates.Default, src)
}
