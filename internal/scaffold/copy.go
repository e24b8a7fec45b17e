package scaffold

import (
	iofs "io/fs"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/NielsdaWheelz/mkservice/internal/config"
	"github.com/NielsdaWheelz/mkservice/internal/errors"
	"github.com/NielsdaWheelz/mkservice/internal/fs"
)

// CopyTemplate recreates every directory and file of src under targetPath,
// keeping relative paths. File permission bits are kept with owner read and
// write added; directories always get owner rwx. The template manifest
// at the root of src is skipped.
//
// On error the partially written target is left in place and E_COPY_FAILED
// is returned. Returns the number of files copied.
func CopyTemplate(fsys fs.FS, src iofs.FS, targetPath string) (int, error) {
	if err := fsys.MkdirAll(targetPath, 0755); err != nil {
		return 0, copyErr(".", err)
	}

	copied := 0
	err := iofs.WalkDir(src, ".", func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return copyErr(p, err)
		}
		if p == "." || p == config.ManifestFile {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return copyErr(p, err)
		}
		dst := filepath.Join(targetPath, filepath.FromSlash(p))

		if d.IsDir() {
			perm := info.Mode().Perm() | 0700
			if err := fsys.MkdirAll(dst, perm); err != nil {
				return copyErr(p, err)
			}
			if err := fsys.Chmod(dst, perm); err != nil {
				return copyErr(p, err)
			}
			return nil
		}

		data, err := iofs.ReadFile(src, p)
		if err != nil {
			return copyErr(p, err)
		}
		perm := info.Mode().Perm() | 0600
		if err := fsys.WriteFile(dst, data, perm); err != nil {
			return copyErr(p, err)
		}
		// WriteFile is subject to umask
		if err := fsys.Chmod(dst, perm); err != nil {
			return copyErr(p, err)
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, err
	}

	logrus.WithFields(logrus.Fields{
		"target": targetPath,
		"files":  copied,
	}).Debug("template copied")
	return copied, nil
}

func copyErr(p string, err error) error {
	if _, ok := errors.AsScaffoldError(err); ok {
		return err
	}
	return errors.WrapWithDetails(errors.ECopyFailed, "failed to copy template file "+p, err,
		map[string]string{"path": p})
}
