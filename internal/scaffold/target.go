package scaffold

import (
	"context"
	stderrors "errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/NielsdaWheelz/mkservice/internal/core"
	"github.com/NielsdaWheelz/mkservice/internal/errors"
	"github.com/NielsdaWheelz/mkservice/internal/fs"
	"github.com/NielsdaWheelz/mkservice/internal/prompt"
)

// ResolveTarget returns the directory a service named serviceName is
// generated into: a direct child of cwd.
// Returns E_INVALID_NAME for names that are empty or could escape cwd.
func ResolveTarget(cwd, serviceName string) (string, error) {
	if err := core.ValidateServiceName(serviceName); err != nil {
		return "", err
	}
	target := filepath.Join(cwd, serviceName)
	if filepath.Dir(target) != filepath.Clean(cwd) {
		return "", errors.NewWithDetails(errors.EInvalidName, "service name must name a single directory",
			map[string]string{"name": serviceName})
	}
	return target, nil
}

// Preparing a target is two steps so callers can act in between:
// ConfirmOverwrite asks, then ClearTarget removes. A declined overwrite
// leaves the filesystem untouched.

// ConfirmOverwrite reports whether generation into targetPath may go ahead.
// If targetPath exists and force is false, the user is asked whether to
// overwrite it (default: no). Nothing on disk is changed.
//
// Returns E_INTERRUPTED if ctx is done while waiting for the answer.
func ConfirmOverwrite(ctx context.Context, fsys fs.FS, targetPath string, force bool, p prompt.Prompter) (bool, error) {
	exists, err := targetExists(fsys, targetPath)
	if err != nil || !exists || force {
		return err == nil, err
	}

	question := fmt.Sprintf("The folder %q already exists, would you like to overwrite it?", filepath.Base(targetPath))
	ok, err := p.Confirm(ctx, question, false)
	if err != nil {
		if ctx.Err() != nil {
			return false, errors.Wrap(errors.EInterrupted, "interrupted", err)
		}
		return false, errors.Wrap(errors.EPrepareFailed, "failed to read overwrite confirmation", err)
	}
	return ok, nil
}

// ClearTarget removes whatever exists at targetPath and reports whether
// anything was there.
//
// The existing tree is first renamed to a hidden sibling, so it disappears
// from targetPath in one step, and then removed. Failing to remove the
// renamed tree is logged but does not stop generation.
func ClearTarget(fsys fs.FS, targetPath string) (bool, error) {
	exists, err := targetExists(fsys, targetPath)
	if err != nil || !exists {
		return false, err
	}

	aside := filepath.Join(filepath.Dir(targetPath), "."+filepath.Base(targetPath)+".mkservice-old-"+uuid.NewString())
	if err := fsys.Rename(targetPath, aside); err != nil {
		return false, errors.WrapWithDetails(errors.EPrepareFailed, "failed to move existing "+targetPath+" aside", err,
			map[string]string{"path": targetPath})
	}
	if err := fsys.RemoveAll(aside); err != nil {
		logrus.WithFields(logrus.Fields{
			"path":  aside,
			"error": err,
		}).Warn("could not remove previous project tree")
	}
	return true, nil
}

func targetExists(fsys fs.FS, targetPath string) (bool, error) {
	_, err := fsys.Lstat(targetPath)
	if err == nil {
		return true, nil
	}
	if stderrors.Is(err, iofs.ErrNotExist) {
		return false, nil
	}
	return false, errors.Wrap(errors.EPrepareFailed, "failed to check "+targetPath, err)
}
