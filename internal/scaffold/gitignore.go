package scaffold

import (
	stderrors "errors"
	iofs "io/fs"
	"strings"

	"github.com/NielsdaWheelz/mkservice/internal/fs"
)

// GitignoreResult indicates what happened to .gitignore.
type GitignoreResult string

const (
	GitignoreCreated GitignoreResult = "created"
	GitignoreKept    GitignoreResult = "kept"
)

// DefaultIgnoreEntries are written to generated projects whose template
// has no .gitignore of its own.
var DefaultIgnoreEntries = []string{"node_modules/", ".env"}

// EnsureGitignore creates the .gitignore at path with entries if it does not
// exist. An existing file belongs to the template and is never rewritten;
// the entries it lacks are returned so callers can report them. "dir/" and
// "dir" are treated as the same entry.
func EnsureGitignore(fsys fs.FS, path string, entries []string) (GitignoreResult, []string, error) {
	content, err := fsys.ReadFile(path)
	if err != nil {
		if !stderrors.Is(err, iofs.ErrNotExist) {
			return "", nil, err
		}
		newContent := strings.Join(entries, "\n") + "\n"
		if err := fsys.WriteFile(path, []byte(newContent), 0644); err != nil {
			return "", nil, err
		}
		return GitignoreCreated, nil, nil
	}

	var missing []string
	for _, entry := range entries {
		if !hasEntry(string(content), entry) {
			missing = append(missing, entry)
		}
	}
	return GitignoreKept, missing, nil
}

func hasEntry(content, entry string) bool {
	want := strings.TrimSuffix(entry, "/")
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSuffix(strings.TrimSpace(line), "/") == want {
			return true
		}
	}
	return false
}
