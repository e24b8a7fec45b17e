package scaffold

import (
	stderrors "errors"
	iofs "io/fs"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/NielsdaWheelz/mkservice/internal/errors"
	"github.com/NielsdaWheelz/mkservice/internal/fs"
)

// EnvFile is the dotenv file written into generated projects.
const EnvFile = ".env"

// WriteEnvFile writes values to <targetPath>/.env and returns the variables
// the file ends up defining.
//
// A .env supplied by the template is kept byte for byte: it is only parsed,
// so a malformed file fails with E_TEMPLATE_INVALID, and its variables are
// returned. values are not merged into it.
func WriteEnvFile(fsys fs.FS, targetPath string, values map[string]string) (map[string]string, error) {
	path := filepath.Join(targetPath, EnvFile)

	data, err := fsys.ReadFile(path)
	switch {
	case err == nil:
		existing, err := godotenv.Unmarshal(string(data))
		if err != nil {
			return nil, errors.Wrap(errors.ETemplateInvalid, "template "+EnvFile+" is not valid dotenv", err)
		}
		return existing, nil
	case !stderrors.Is(err, iofs.ErrNotExist):
		return nil, errors.Wrap(errors.ECopyFailed, "failed to read "+EnvFile, err)
	}

	out, err := godotenv.Marshal(values)
	if err != nil {
		return nil, errors.Wrap(errors.EInternal, "failed to encode "+EnvFile, err)
	}
	if err := fs.WriteFileAtomic(fsys, path, []byte(out+"\n"), 0644); err != nil {
		return nil, errors.Wrap(errors.ECopyFailed, "failed to write "+EnvFile, err)
	}
	return values, nil
}
