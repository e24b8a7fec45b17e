package commands

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/NielsdaWheelz/mkservice/internal/exec"
)

// stubRunner implements exec.CommandRunner for testing.
// Commands exit 0 unless listed in exitCodes; started processes exit
// immediately with containerExit unless keepRunning is set, in which case
// they run until stopContainer is called.
type stubRunner struct {
	exitCodes     map[string]int
	errors        map[string]error
	stdout        map[string]string
	containerExit int
	keepRunning   bool
	calls         []string

	mu     sync.Mutex
	finish func(exitCode int, err error)
}

func newStubRunner() *stubRunner {
	return &stubRunner{
		exitCodes: make(map[string]int),
		errors:    make(map[string]error),
		stdout:    make(map[string]string),
	}
}

func (s *stubRunner) key(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

func (s *stubRunner) Run(_ context.Context, name string, args []string, _ exec.RunOpts) (exec.CmdResult, error) {
	key := s.key(name, args)
	s.calls = append(s.calls, key)
	if err, ok := s.errors[key]; ok {
		return exec.CmdResult{ExitCode: -1}, err
	}
	return exec.CmdResult{ExitCode: s.exitCodes[key], Stdout: s.stdout[key]}, nil
}

func (s *stubRunner) Start(_ context.Context, name string, args []string, _ exec.RunOpts) (*exec.Process, error) {
	key := s.key(name, args)
	s.calls = append(s.calls, key)
	if err, ok := s.errors[key]; ok {
		return nil, err
	}
	p, finish := exec.NewStubProcess()
	if !s.keepRunning {
		finish(s.containerExit, nil)
		return p, nil
	}
	s.mu.Lock()
	s.finish = finish
	s.mu.Unlock()
	return p, nil
}

// stopContainer finishes the process started with keepRunning.
func (s *stubRunner) stopContainer(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finish != nil {
		s.finish(code, nil)
	}
}

// syncBuffer is a bytes.Buffer safe for the container watcher goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func notFound(name string) error {
	return fmt.Errorf("exec: %q: executable file not found in $PATH", name)
}
