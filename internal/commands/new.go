// Package commands implements mkservice CLI commands.
package commands

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NielsdaWheelz/mkservice/internal/config"
	"github.com/NielsdaWheelz/mkservice/internal/core"
	"github.com/NielsdaWheelz/mkservice/internal/errors"
	"github.com/NielsdaWheelz/mkservice/internal/exec"
	"github.com/NielsdaWheelz/mkservice/internal/fs"
	"github.com/NielsdaWheelz/mkservice/internal/lock"
	"github.com/NielsdaWheelz/mkservice/internal/pipeline"
	"github.com/NielsdaWheelz/mkservice/internal/prompt"
	"github.com/NielsdaWheelz/mkservice/internal/scaffold"
	"github.com/NielsdaWheelz/mkservice/internal/setupservice"
)

// Prompt texts.
const (
	NameQuestion       = "Project name:"
	AutomationQuestion = "Would you like to install dependencies, initialise git, build and run the container, and run tests now?"
)

// NewOpts holds options for the new command.
type NewOpts struct {
	Name  string // service name; prompted for when empty
	Force bool   // overwrite an existing target without asking
	Auto  bool   // run the automation pipeline without asking
}

// Deps holds the collaborators of the new command.
// Stdout is written from the container watcher goroutine as well and must
// be safe for concurrent use.
type Deps struct {
	CR        exec.CommandRunner
	FS        fs.FS
	Prompter  prompt.Prompter
	Settings  config.Settings
	ConfigDir string
	Cwd       string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Service overrides the pipeline steps. Defaults to setupservice over CR.
	Service pipeline.SetupService

	// AfterFunc overrides the browser timer. Defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, f func())
}

// New implements the default mkservice command.
// Generates a project from the resolved template into <cwd>/<name>, then
// optionally runs the automation pipeline and waits for the started
// container to exit.
//
// A declined overwrite prints "Operation cancelled." and returns nil.
// Cancelling ctx while a question is pending returns E_INTERRUPTED.
// Pipeline step failures are reported as warnings and never returned.
func New(ctx context.Context, d Deps, opts NewOpts) error {
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		answer, err := d.Prompter.Input(ctx, NameQuestion, d.Settings.DefaultName)
		if err != nil {
			return promptError(ctx, "failed to read project name", err)
		}
		name = strings.TrimSpace(answer)
	}

	target, err := scaffold.ResolveTarget(d.Cwd, name)
	if err != nil {
		return err
	}

	// Template errors must leave an existing target untouched.
	tmpl, err := scaffold.ResolveTemplate(d.FS, d.Settings.TemplateDir, d.ConfigDir)
	if err != nil {
		return err
	}

	proceed, err := scaffold.ConfirmOverwrite(ctx, d.FS, target, opts.Force, d.Prompter)
	if err != nil {
		return err
	}
	if !proceed {
		fmt.Fprintln(d.Stdout, "Operation cancelled.")
		return nil
	}

	unlock, err := lockTarget(d.ConfigDir, target)
	if err != nil {
		return err
	}
	res, err := generate(d, tmpl, name, target)
	if uerr := unlock(); uerr != nil {
		logrus.WithFields(logrus.Fields{"target": target, "error": uerr}).Warn("could not release target lock")
	}
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"template": tmpl.Source,
		"files":    res.FilesCopied,
	}).Info("project scaffolded")
	fmt.Fprintln(d.Stdout, "Project scaffolded!")

	auto := opts.Auto
	if !auto {
		auto, err = d.Prompter.Confirm(ctx, AutomationQuestion, true)
		if err != nil {
			return promptError(ctx, "failed to read automation confirmation", err)
		}
	}
	if !auto {
		writeNextSteps(d.Stdout, name, d.Settings)
		return nil
	}

	return runAutomation(ctx, d, pipeline.Project{
		Dir:      target,
		Name:     name,
		ImageTag: core.ImageTag(name),
		Port:     d.Settings.Port,
	})
}

// promptError maps a failed question to E_INTERRUPTED when ctx was
// cancelled while waiting, and to E_INTERNAL otherwise.
func promptError(ctx context.Context, msg string, err error) error {
	if ctx.Err() != nil {
		return errors.Wrap(errors.EInterrupted, "interrupted", err)
	}
	return errors.Wrap(errors.EInternal, msg, err)
}

// lockTarget takes the per-target lock under <configDir>/locks, or the
// system temp directory when configDir is empty.
// Returns E_TARGET_LOCKED if another process holds it.
func lockTarget(configDir, target string) (func() error, error) {
	dir := filepath.Join(configDir, "locks")
	if configDir == "" {
		dir = filepath.Join(os.TempDir(), "mkservice-locks")
	}
	l := lock.NewTargetLock(dir)
	unlock, err := l.Lock(target)
	if err != nil {
		var locked *lock.ErrLocked
		if stderrors.As(err, &locked) {
			return nil, errors.WrapWithDetails(errors.ETargetLocked, "another mkservice is generating "+target, err,
				map[string]string{"lock_file": locked.Path})
		}
		return nil, errors.Wrap(errors.EInternal, "failed to lock "+target, err)
	}
	return unlock, nil
}

// generate clears the target and materializes the template into it.
// The overwrite must already have been confirmed.
func generate(d Deps, tmpl scaffold.Template, name, target string) (*scaffold.Result, error) {
	removed, err := scaffold.ClearTarget(d.FS, target)
	if err != nil {
		return nil, err
	}
	if removed {
		fmt.Fprintln(d.Stdout, "Existing folder removed.")
	}

	fmt.Fprintf(d.Stdout, "Creating microservice at %s...\n", target)

	port := d.Settings.Port
	res, err := scaffold.Materialize(d.FS, tmpl, target, scaffold.Tokens(name, port), map[string]string{
		"SERVICE_NAME": name,
		"PORT":         strconv.Itoa(port),
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func runAutomation(ctx context.Context, d Deps, proj pipeline.Project) error {
	svc := d.Service
	if svc == nil {
		svc = setupservice.NewWithDeps(d.CR, setupservice.Options{
			PackageManager: d.Settings.PackageManager,
			ContainerTool:  d.Settings.ContainerTool,
			Stdin:          d.Stdin,
			Stdout:         d.Stdout,
			Stderr:         d.Stderr,
		})
	}

	p := pipeline.NewPipeline(svc, d.Settings.BrowserDelay)
	if d.AfterFunc != nil {
		p.SetAfterFunc(d.AfterFunc)
	}

	// The exit is reported as soon as it happens, even mid-pipeline.
	var watched <-chan struct{}
	p.OnContainer(func(proc *exec.Process) {
		watched = watchContainer(proc, d.Stdout)
	})

	report, err := p.Run(ctx, proj)
	if err != nil {
		return err
	}

	switch {
	case report.Err != nil:
		fmt.Fprintf(d.Stderr, "warning: automation failed at %s: %s\n", report.FailedStep, errors.Message(report.Err))
		writeNextSteps(d.Stdout, proj.Name, d.Settings)
	case running(report.Container):
		fmt.Fprintf(d.Stdout, "Service running at %s (press Ctrl+C to stop)\n", proj.URL())
	}

	if watched != nil {
		<-watched
	}
	return nil
}

func running(proc *exec.Process) bool {
	if proc == nil {
		return false
	}
	select {
	case <-proc.Done():
		return false
	default:
		return true
	}
}

// watchContainer reports the container's exit status on w once it
// terminates. The returned channel is closed after reporting.
func watchContainer(proc *exec.Process, w io.Writer) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		code, err := proc.Wait()
		if err != nil {
			fmt.Fprintf(w, "container stopped: %v\n", err)
			return
		}
		fmt.Fprintf(w, "container exited with code %d\n", code)
	}()
	return done
}

// writeNextSteps prints the manual commands that finish the setup.
func writeNextSteps(w io.Writer, name string, s config.Settings) {
	fmt.Fprintln(w, "Next steps:")
	for _, line := range NextSteps(name, s) {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

// NextSteps returns the copy-pasteable commands that set up a generated
// project by hand.
func NextSteps(name string, s config.Settings) []string {
	return []string{
		core.ShellCommand("cd", name),
		core.ShellCommand(s.PackageManager, "install"),
		core.ShellCommand("node", "app.js"),
		core.ShellCommand(s.ContainerTool, "build", "-t", core.ImageTag(name), "."),
		core.ShellCommand(s.PackageManager, "test"),
	}
}
