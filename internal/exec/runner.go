// Package exec provides a stub-friendly interface for running external commands.
package exec

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"sync"
)

// CmdResult holds the result of a command execution.
type CmdResult struct {
	Stdout   string // empty when RunOpts.Stdout is set
	Stderr   string // empty when RunOpts.Stderr is set
	ExitCode int
}

// RunOpts holds optional parameters for command execution.
type RunOpts struct {
	Dir string            // working directory (optional)
	Env map[string]string // extra environment variables (overlay)

	// Stdin, Stdout and Stderr attach the child to the given streams.
	// A nil Stdout or Stderr means the stream is captured into CmdResult.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// CommandRunner is the interface for running external commands.
// Implementations must be safe for stubbing in tests.
type CommandRunner interface {
	// Run executes a command and waits for it to exit.
	// Returns CmdResult with ExitCode set if the process exits (even non-zero).
	// Returns error only for execution failures (binary not found, ctx canceled, io failure).
	Run(ctx context.Context, name string, args []string, opts RunOpts) (CmdResult, error)

	// Start launches a command without waiting for it.
	// The returned Process reports termination through Done.
	// Returns error only if the process could not be started.
	Start(ctx context.Context, name string, args []string, opts RunOpts) (*Process, error)
}

// RealRunner is the production implementation of CommandRunner using os/exec.
type RealRunner struct{}

// NewRealRunner creates a new RealRunner.
func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// Run executes the command, streaming or capturing stdout/stderr per opts.
func (r *RealRunner) Run(ctx context.Context, name string, args []string, opts RunOpts) (CmdResult, error) {
	cmd := buildCmd(ctx, name, args, opts)

	var stdout, stderr bytes.Buffer
	if opts.Stdout == nil {
		cmd.Stdout = &stdout
	}
	if opts.Stderr == nil {
		cmd.Stderr = &stderr
	}

	err := cmd.Run()

	result := CmdResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	result.ExitCode, err = exitStatus(err)
	return result, err
}

// Start launches the command and returns immediately.
// Output not attached through opts is discarded.
func (r *RealRunner) Start(ctx context.Context, name string, args []string, opts RunOpts) (*Process, error) {
	cmd := buildCmd(ctx, name, args, opts)
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := newProcess(cmd.Process.Pid)
	go func() {
		p.finish(exitStatus(cmd.Wait()))
	}()
	return p, nil
}

func buildCmd(ctx context.Context, name string, args []string, opts RunOpts) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)

	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	if len(opts.Env) > 0 {
		cmd.Env = cmd.Environ()
		for k, v := range opts.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	return cmd
}

// exitStatus splits a Run/Wait error into an exit code and an execution error.
// A process that ran and exited non-zero is not an execution error.
func exitStatus(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// Process is a handle to a command started with CommandRunner.Start.
type Process struct {
	Pid int

	done     chan struct{}
	once     sync.Once
	exitCode int
	err      error
}

func newProcess(pid int) *Process {
	return &Process{Pid: pid, done: make(chan struct{})}
}

// NewStubProcess returns a Process that terminates when finish is called.
// Intended for CommandRunner stubs.
func NewStubProcess() (p *Process, finish func(exitCode int, err error)) {
	p = newProcess(0)
	return p, p.finish
}

func (p *Process) finish(exitCode int, err error) {
	p.once.Do(func() {
		p.exitCode = exitCode
		p.err = err
		close(p.done)
	})
}

// Done returns a channel that is closed when the process has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the process exits and returns its exit code.
// The error is non-nil only if waiting itself failed; an exit code of -1
// means the process was killed or never reported a status.
func (p *Process) Wait() (int, error) {
	<-p.done
	return p.exitCode, p.err
}
