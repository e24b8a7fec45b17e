// Package git initializes the version-control history of a generated project
// via CommandRunner.
package git

import (
	"context"
	"strings"

	"github.com/NielsdaWheelz/mkservice/internal/errors"
	"github.com/NielsdaWheelz/mkservice/internal/exec"
)

// InitialCommitMessage is the message of the first commit in a generated project.
const InitialCommitMessage = "Initial commit"

// Init creates an empty repository in dir with `git init`.
// opts.Dir is overridden with dir; opts streams are passed through.
func Init(ctx context.Context, cr exec.CommandRunner, dir string, opts exec.RunOpts) error {
	opts.Dir = dir
	return exec.RunChecked(ctx, cr, "git", []string{"init"}, opts)
}

// AddAll stages every file in dir with `git add -A`.
func AddAll(ctx context.Context, cr exec.CommandRunner, dir string, opts exec.RunOpts) error {
	opts.Dir = dir
	return exec.RunChecked(ctx, cr, "git", []string{"add", "-A"}, opts)
}

// Commit records the staged files with `git commit -m <msg>`.
// Returns E_COMMAND_FAILED if git exits non-zero (for example when
// user.name/user.email are not configured).
func Commit(ctx context.Context, cr exec.CommandRunner, dir, msg string, opts exec.RunOpts) error {
	if strings.TrimSpace(msg) == "" {
		return errors.New(errors.EInternal, "commit message is empty")
	}
	opts.Dir = dir
	return exec.RunChecked(ctx, cr, "git", []string{"commit", "-m", msg}, opts)
}

// InitWithCommit runs Init, AddAll and Commit in order, stopping at the
// first failure.
func InitWithCommit(ctx context.Context, cr exec.CommandRunner, dir string, opts exec.RunOpts) error {
	if err := Init(ctx, cr, dir, opts); err != nil {
		return err
	}
	if err := AddAll(ctx, cr, dir, opts); err != nil {
		return err
	}
	return Commit(ctx, cr, dir, InitialCommitMessage, opts)
}
