// Package setupservice provides the concrete implementation of
// pipeline.SetupService. It runs the package manager, git and the container
// tool against a generated project.
package setupservice

import (
	"context"
	"io"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/NielsdaWheelz/mkservice/internal/errors"
	"github.com/NielsdaWheelz/mkservice/internal/exec"
	"github.com/NielsdaWheelz/mkservice/internal/git"
	"github.com/NielsdaWheelz/mkservice/internal/pipeline"
)

// Options configures the tools and terminal streams used by the service.
type Options struct {
	PackageManager string // e.g. npm
	ContainerTool  string // e.g. docker

	// Child processes inherit these streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Service is the production implementation of pipeline.SetupService.
type Service struct {
	cr   exec.CommandRunner
	opts Options
	goos string
}

var _ pipeline.SetupService = (*Service)(nil)

// New creates a new Service with production dependencies.
func New(opts Options) *Service {
	return NewWithDeps(exec.NewRealRunner(), opts)
}

// NewWithDeps creates a new Service with an injected runner for testing.
func NewWithDeps(cr exec.CommandRunner, opts Options) *Service {
	return &Service{cr: cr, opts: opts, goos: runtime.GOOS}
}

// SetGOOS overrides the operating system used to pick the browser opener.
func (s *Service) SetGOOS(goos string) {
	s.goos = goos
}

func (s *Service) streams(dir string) exec.RunOpts {
	return exec.RunOpts{
		Dir:    dir,
		Stdin:  s.opts.Stdin,
		Stdout: s.opts.Stdout,
		Stderr: s.opts.Stderr,
	}
}

// InstallDeps runs `<pm> install` in the project directory.
func (s *Service) InstallDeps(ctx context.Context, p pipeline.Project) error {
	return exec.RunChecked(ctx, s.cr, s.opts.PackageManager, []string{"install"}, s.streams(p.Dir))
}

// InitVCS runs git init, git add -A and the initial commit.
func (s *Service) InitVCS(ctx context.Context, p pipeline.Project) error {
	return git.InitWithCommit(ctx, s.cr, p.Dir, s.streams(p.Dir))
}

// BuildImage runs `<tool> build -t <tag> .` in the project directory.
func (s *Service) BuildImage(ctx context.Context, p pipeline.Project) error {
	return exec.RunChecked(ctx, s.cr, s.opts.ContainerTool, BuildArgs(p), s.streams(p.Dir))
}

// RunContainer starts `<tool> run -p <port>:<port> <tag>` and returns
// without waiting. The container is stopped when ctx is cancelled.
func (s *Service) RunContainer(ctx context.Context, p pipeline.Project) (*exec.Process, error) {
	args := RunArgs(p)
	opts := s.streams(p.Dir)
	opts.Stdin = nil

	proc, err := s.cr.Start(ctx, s.opts.ContainerTool, args, opts)
	if err != nil {
		return nil, errors.WrapWithDetails(errors.ECommandFailed, "failed to start "+s.opts.ContainerTool, err,
			map[string]string{"command": s.opts.ContainerTool + " run"})
	}
	logrus.WithFields(logrus.Fields{
		"pid":   proc.Pid,
		"image": p.ImageTag,
		"port":  p.Port,
	}).Debug("container started")
	return proc, nil
}

// RunTests runs `<pm> test` in the project directory.
func (s *Service) RunTests(ctx context.Context, p pipeline.Project) error {
	return exec.RunChecked(ctx, s.cr, s.opts.PackageManager, []string{"test"}, s.streams(p.Dir))
}

// OpenBrowser launches the platform URL opener and does not wait for it.
func (s *Service) OpenBrowser(ctx context.Context, url string) error {
	name, args := BrowserCommand(s.goos, url)
	_, err := s.cr.Start(ctx, name, args, exec.RunOpts{})
	return err
}

// BuildArgs returns the container tool arguments that build the image.
func BuildArgs(p pipeline.Project) []string {
	return []string{"build", "-t", p.ImageTag, "."}
}

// RunArgs returns the container tool arguments that run the image.
func RunArgs(p pipeline.Project) []string {
	port := strconv.Itoa(p.Port)
	return []string{"run", "-p", port + ":" + port, p.ImageTag}
}

// BrowserCommand returns the command that opens url on goos.
func BrowserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}
