package scaffold

import (
	"context"
	iofs "io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NielsdaWheelz/mkservice/internal/fs"
	"github.com/NielsdaWheelz/mkservice/internal/prompt"
)

// snapshot returns relative path -> content ("<dir>" for directories) for
// everything under root.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, p)
		if d.IsDir() {
			out[filepath.ToSlash(rel)] = "<dir>"
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// recordingFS logs mutating operations in order.
type recordingFS struct {
	fs.FS
	ops []string
}

func newRecordingFS() *recordingFS {
	return &recordingFS{FS: fs.NewRealFS()}
}

func (r *recordingFS) MkdirAll(path string, perm os.FileMode) error {
	r.ops = append(r.ops, "mkdir "+path)
	return r.FS.MkdirAll(path, perm)
}

func (r *recordingFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	r.ops = append(r.ops, "write "+path)
	return r.FS.WriteFile(path, data, perm)
}

func (r *recordingFS) Rename(oldpath, newpath string) error {
	r.ops = append(r.ops, "rename "+oldpath)
	return r.FS.Rename(oldpath, newpath)
}

func (r *recordingFS) RemoveAll(path string) error {
	r.ops = append(r.ops, "removeall "+path)
	return r.FS.RemoveAll(path)
}

// prepareTarget runs ConfirmOverwrite and, when it proceeds, ClearTarget.
func prepareTarget(t *testing.T, fsys fs.FS, target string, force bool, p prompt.Prompter) (bool, error) {
	t.Helper()
	ok, err := ConfirmOverwrite(context.Background(), fsys, target, force, p)
	if err != nil || !ok {
		return false, err
	}
	if _, err := ClearTarget(fsys, target); err != nil {
		return false, err
	}
	return true, nil
}
