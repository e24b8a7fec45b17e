// Package pipeline runs the post-scaffold automation of a generated project.
// Steps execute in a fixed order, stop at the first failure and never undo
// completed work.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NielsdaWheelz/mkservice/internal/errors"
	"github.com/NielsdaWheelz/mkservice/internal/exec"
)

// Project describes the generated project the pipeline operates on.
type Project struct {
	Dir      string // absolute project directory
	Name     string // service name
	ImageTag string // container image tag
	Port     int    // published container port
}

// URL returns the address the running service is reachable at.
func (p Project) URL() string {
	return fmt.Sprintf("http://localhost:%d", p.Port)
}

// SetupService defines the step implementations for the pipeline.
// Implementations are injected to allow testing without real tools.
type SetupService interface {
	// InstallDeps installs the project's dependencies.
	InstallDeps(ctx context.Context, p Project) error

	// InitVCS initializes a repository and records an initial commit.
	InitVCS(ctx context.Context, p Project) error

	// BuildImage builds the container image tagged p.ImageTag.
	BuildImage(ctx context.Context, p Project) error

	// RunContainer starts the container without waiting for it.
	RunContainer(ctx context.Context, p Project) (*exec.Process, error)

	// RunTests runs the project's test suite.
	RunTests(ctx context.Context, p Project) error

	// OpenBrowser opens url in the user's browser.
	OpenBrowser(ctx context.Context, url string) error
}

// Report is the outcome of a pipeline run.
type Report struct {
	// State is StateDone or StateAborted once Run returns.
	State State

	// FailedStep is the step name (Step* constant) that aborted the run.
	FailedStep string

	// Err is the E_PIPELINE_STEP error of the failed step.
	Err error

	// Container is the started container, or nil if the run aborted
	// before it was started.
	Container *exec.Process

	// BrowserScheduled reports whether the browser was scheduled to open.
	BrowserScheduled bool
}

// Pipeline orchestrates the execution of setup steps in a fixed order.
type Pipeline struct {
	svc          SetupService
	browserDelay time.Duration
	afterFunc    func(d time.Duration, f func())
	onContainer  func(proc *exec.Process)
}

// NewPipeline creates a pipeline with the given service implementation.
// The browser is opened browserDelay after the tests pass.
func NewPipeline(svc SetupService, browserDelay time.Duration) *Pipeline {
	return &Pipeline{
		svc:          svc,
		browserDelay: browserDelay,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// OnContainer registers fn to be called as soon as the container has been
// started, before the remaining steps run. Use it to watch the container's
// exit independently of pipeline completion.
func (p *Pipeline) OnContainer(fn func(proc *exec.Process)) {
	p.onContainer = fn
}

// SetAfterFunc overrides the timer used to schedule the browser, for testing.
func (p *Pipeline) SetAfterFunc(fn func(d time.Duration, f func())) {
	p.afterFunc = fn
}

type step struct {
	state State
	name  string
	run   func(ctx context.Context, proj Project, r *Report) error
}

func (p *Pipeline) steps() []step {
	return []step{
		{StateInstallDeps, StepInstallDeps, func(ctx context.Context, proj Project, _ *Report) error {
			return p.svc.InstallDeps(ctx, proj)
		}},
		{StateInitVCS, StepInitVCS, func(ctx context.Context, proj Project, _ *Report) error {
			return p.svc.InitVCS(ctx, proj)
		}},
		{StateBuildImage, StepBuildImage, func(ctx context.Context, proj Project, _ *Report) error {
			return p.svc.BuildImage(ctx, proj)
		}},
		{StateRunContainer, StepRunContainer, func(ctx context.Context, proj Project, r *Report) error {
			proc, err := p.svc.RunContainer(ctx, proj)
			r.Container = proc
			if err == nil && proc != nil && p.onContainer != nil {
				p.onContainer(proc)
			}
			return err
		}},
		{StateRunTests, StepRunTests, func(ctx context.Context, proj Project, _ *Report) error {
			return p.svc.RunTests(ctx, proj)
		}},
	}
}

// Run executes the pipeline steps in fixed order:
//  1. InstallDeps
//  2. InitVCS
//  3. BuildImage
//  4. RunContainer
//  5. RunTests
//
// Behavior:
//   - Short-circuits on the first failing step; nothing is undone and a
//     started container keeps running
//   - A failed step yields Report{State: StateAborted, FailedStep, Err},
//     where Err is E_PIPELINE_STEP with the step name in details
//   - After RunTests succeeds, OpenBrowser is scheduled after the browser
//     delay; its errors are logged and otherwise ignored
//
// The returned error is non-nil only for internal invariant violations;
// step failures are reported through the Report.
func (p *Pipeline) Run(ctx context.Context, proj Project) (*Report, error) {
	r := &Report{State: StateIdle}

	for _, s := range p.steps() {
		if err := Transition(&r.State, r.State, s.state); err != nil {
			return r, errors.Wrap(errors.EInternal, "pipeline state error", err)
		}

		log := logrus.WithFields(logrus.Fields{"step": s.name, "dir": proj.Dir})
		log.Debug("step started")

		if err := s.run(ctx, proj, r); err != nil {
			r.FailedStep = s.name
			r.Err = wrapStepError(err, s.name)
			log.WithField("error", err).Debug("step failed")
			if terr := Transition(&r.State, s.state, StateAborted); terr != nil {
				return r, errors.Wrap(errors.EInternal, "pipeline state error", terr)
			}
			return r, nil
		}
		log.Debug("step finished")
	}

	if err := Transition(&r.State, StateRunTests, StateDone); err != nil {
		return r, errors.Wrap(errors.EInternal, "pipeline state error", err)
	}

	url := proj.URL()
	p.afterFunc(p.browserDelay, func() {
		if ctx.Err() != nil {
			return
		}
		if err := p.svc.OpenBrowser(ctx, url); err != nil {
			logrus.WithFields(logrus.Fields{"url": url, "error": err}).Debug("could not open browser")
		}
	})
	r.BrowserScheduled = true

	return r, nil
}

// wrapStepError converts err into an E_PIPELINE_STEP error carrying the
// step name in details. Details of an existing ScaffoldError are kept.
func wrapStepError(err error, stepName string) error {
	if err == nil {
		return nil
	}

	details := map[string]string{}
	msg := stepName + " failed"
	cause := err

	if se, ok := errors.AsScaffoldError(err); ok {
		for k, v := range se.Details {
			details[k] = v
		}
		msg = se.Msg
		cause = se.Cause
	}
	details["step"] = stepName

	if cause == nil {
		return errors.NewWithDetails(errors.EPipelineStep, msg, details)
	}
	return errors.WrapWithDetails(errors.EPipelineStep, msg, cause, details)
}

// Step name constants.
const (
	StepInstallDeps  = "install-deps"
	StepInitVCS      = "init-vcs"
	StepBuildImage   = "build-image"
	StepRunContainer = "run-container"
	StepRunTests     = "run-tests"
)
