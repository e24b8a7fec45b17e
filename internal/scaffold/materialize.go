package scaffold

import (
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/NielsdaWheelz/mkservice/internal/errors"
	"github.com/NielsdaWheelz/mkservice/internal/fs"
)

// Result describes a materialized project.
type Result struct {
	TargetPath  string
	FilesCopied int
	Substituted []string // relative paths rewritten by token substitution
	Env         map[string]string
	Gitignore   GitignoreResult
}

// Materialize copies tmpl into targetPath, then substitutes tokens in the
// manifest's files. A .env (manifest env overlaid with env) and a
// .gitignore are written only when the template does not ship its own, so
// every template file keeps its content apart from substituted tokens.
// targetPath must have been cleared with ClearTarget.
func Materialize(fsys fs.FS, tmpl Template, targetPath string, tokens TokenMap, env map[string]string) (Result, error) {
	res := Result{TargetPath: targetPath}

	n, err := CopyTemplate(fsys, tmpl.FS, targetPath)
	res.FilesCopied = n
	if err != nil {
		return res, err
	}

	res.Substituted, err = SubstitutePlaceholders(fsys, targetPath, tmpl.Manifest.Substitute, tokens)
	if err != nil {
		return res, err
	}

	values := make(map[string]string, len(tmpl.Manifest.Env)+len(env))
	for k, v := range tmpl.Manifest.Env {
		values[k] = v
	}
	for k, v := range env {
		values[k] = v
	}
	res.Env, err = WriteEnvFile(fsys, targetPath, values)
	if err != nil {
		return res, err
	}

	var missing []string
	res.Gitignore, missing, err = EnsureGitignore(fsys, filepath.Join(targetPath, ".gitignore"), DefaultIgnoreEntries)
	if err != nil {
		return res, errors.Wrap(errors.ECopyFailed, "failed to write .gitignore", err)
	}
	if len(missing) > 0 {
		logrus.WithFields(logrus.Fields{
			"template": tmpl.Source,
			"missing":  missing,
		}).Warn("template .gitignore does not ignore generated files")
	}

	logrus.WithFields(logrus.Fields{
		"template":    tmpl.Source,
		"target":      targetPath,
		"files":       res.FilesCopied,
		"substituted": len(res.Substituted),
		"gitignore":   res.Gitignore,
	}).Debug("project materialized")
	return res, nil
}
