package scaffold

import (
	stderrors "errors"
	iofs "io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/NielsdaWheelz/mkservice/internal/core"
	"github.com/NielsdaWheelz/mkservice/internal/errors"
	"github.com/NielsdaWheelz/mkservice/internal/fs"
)

// Placeholder tokens understood in template text files.
const (
	TokenServiceName  = "{{SERVICE_NAME}}"
	TokenServiceTitle = "{{SERVICE_TITLE}}"
	TokenImageTag     = "{{IMAGE_TAG}}"
	TokenPort         = "{{PORT}}"
)

// TokenMap maps literal tokens to their replacement.
type TokenMap map[string]string

// Tokens builds the standard token map for a service.
func Tokens(serviceName string, port int) TokenMap {
	return TokenMap{
		TokenServiceName:  serviceName,
		TokenServiceTitle: core.Title(serviceName),
		TokenImageTag:     core.ImageTag(serviceName),
		TokenPort:         strconv.Itoa(port),
	}
}

// replacer replaces every token in a single pass. Keys are sorted so the
// result does not depend on map order.
func (m TokenMap) replacer() *strings.Replacer {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return strings.NewReplacer(pairs...)
}

// SubstitutePlaceholders replaces tokens in each file listed in relPaths
// (slash-separated, relative to targetPath) and rewrites it atomically,
// keeping its permissions. Files that do not exist are skipped; files with
// no tokens are left untouched.
//
// Returns the relative paths that were rewritten.
func SubstitutePlaceholders(fsys fs.FS, targetPath string, relPaths []string, tokens TokenMap) ([]string, error) {
	r := tokens.replacer()

	var rewritten []string
	for _, rel := range relPaths {
		path := filepath.Join(targetPath, filepath.FromSlash(rel))

		data, err := fsys.ReadFile(path)
		if err != nil {
			if stderrors.Is(err, iofs.ErrNotExist) {
				continue
			}
			return rewritten, substituteErr(rel, err)
		}

		out := r.Replace(string(data))
		if out == string(data) {
			continue
		}

		info, err := fsys.Stat(path)
		if err != nil {
			return rewritten, substituteErr(rel, err)
		}
		if err := fs.WriteFileAtomic(fsys, path, []byte(out), info.Mode().Perm()); err != nil {
			return rewritten, substituteErr(rel, err)
		}
		rewritten = append(rewritten, rel)
	}
	return rewritten, nil
}

func substituteErr(rel string, err error) error {
	return errors.WrapWithDetails(errors.ESubstituteFail, "failed to substitute placeholders in "+rel, err,
		map[string]string{"path": rel})
}
