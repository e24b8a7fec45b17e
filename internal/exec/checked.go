package exec

import (
	"context"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/NielsdaWheelz/mkservice/internal/core"
	scerrors "github.com/NielsdaWheelz/mkservice/internal/errors"
)

// RunChecked runs a command and treats a non-zero exit as an error.
//
// Returns E_COMMAND_FAILED with "command" (and "exit_code", when the process
// ran) in details. Captured stderr, if any, is appended to the message.
func RunChecked(ctx context.Context, cr CommandRunner, name string, args []string, opts RunOpts) error {
	line := core.ShellCommand(name, args...)
	log := logrus.WithFields(logrus.Fields{"command": line, "dir": opts.Dir})
	log.Debug("running command")

	result, err := cr.Run(ctx, name, args, opts)
	if err != nil {
		return scerrors.WrapWithDetails(scerrors.ECommandFailed, "failed to run "+line, err,
			map[string]string{"command": line})
	}

	log.WithField("exit_code", result.ExitCode).Debug("command finished")
	if result.ExitCode != 0 {
		msg := line + " exited with code " + strconv.Itoa(result.ExitCode)
		if stderr := strings.TrimSpace(result.Stderr); stderr != "" {
			msg += ": " + stderr
		}
		return scerrors.NewWithDetails(scerrors.ECommandFailed, msg, map[string]string{
			"command":   line,
			"exit_code": strconv.Itoa(result.ExitCode),
		})
	}
	return nil
}
