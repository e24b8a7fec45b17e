package setupservice

import (
	"bytes"
	"context"
	stderrors "errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NielsdaWheelz/mkservice/internal/errors"
	"github.com/NielsdaWheelz/mkservice/internal/exec"
	"github.com/NielsdaWheelz/mkservice/internal/pipeline"
)

type call struct {
	Line  string
	Dir   string
	Start bool
	Opts  exec.RunOpts
}

// stubRunner records calls and fails the commands listed in exitCodes.
type stubRunner struct {
	exitCodes map[string]int
	startErr  error
	calls     []call
	finishers []func(int, error)
}

func (s *stubRunner) Run(_ context.Context, name string, args []string, opts exec.RunOpts) (exec.CmdResult, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	s.calls = append(s.calls, call{Line: line, Dir: opts.Dir, Opts: opts})
	return exec.CmdResult{ExitCode: s.exitCodes[line]}, nil
}

func (s *stubRunner) Start(_ context.Context, name string, args []string, opts exec.RunOpts) (*exec.Process, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	s.calls = append(s.calls, call{Line: line, Dir: opts.Dir, Start: true, Opts: opts})
	if s.startErr != nil {
		return nil, s.startErr
	}
	p, finish := exec.NewStubProcess()
	s.finishers = append(s.finishers, finish)
	return p, nil
}

func (s *stubRunner) lines() []string {
	var out []string
	for _, c := range s.calls {
		out = append(out, c.Line)
	}
	return out
}

func project() pipeline.Project {
	return pipeline.Project{Dir: "/work/orders", Name: "orders", ImageTag: "orders", Port: 8080}
}

func newService(cr exec.CommandRunner, stdout *bytes.Buffer) *Service {
	return NewWithDeps(cr, Options{
		PackageManager: "npm",
		ContainerTool:  "docker",
		Stdin:          strings.NewReader(""),
		Stdout:         stdout,
		Stderr:         stdout,
	})
}

func TestService_FullPipeline(t *testing.T) {
	cr := &stubRunner{}
	var out bytes.Buffer
	svc := newService(cr, &out)
	svc.SetGOOS("linux")

	p := pipeline.NewPipeline(svc, 0)
	p.SetAfterFunc(func(_ time.Duration, f func()) { f() })

	report, err := p.Run(context.Background(), project())
	require.NoError(t, err)
	require.Equal(t, pipeline.StateDone, report.State)
	require.NotNil(t, report.Container)

	assert.Equal(t, []string{
		"npm install",
		"git init",
		"git add -A",
		"git commit -m Initial commit",
		"docker build -t orders .",
		"docker run -p 8080:8080 orders",
		"npm test",
		"xdg-open http://localhost:8080",
	}, cr.lines())

	for _, c := range cr.calls[:7] {
		assert.Equal(t, "/work/orders", c.Dir, c.Line)
		assert.Same(t, &out, c.Opts.Stdout, "%s inherits stdout", c.Line)
	}
	assert.Nil(t, cr.calls[5].Opts.Stdin, "container does not read the terminal")
}

func TestService_InstallFailureStopsPipeline(t *testing.T) {
	cr := &stubRunner{exitCodes: map[string]int{"npm install": 1}}
	var out bytes.Buffer

	report, err := pipeline.NewPipeline(newService(cr, &out), 0).Run(context.Background(), project())
	require.NoError(t, err)

	assert.Equal(t, pipeline.StateAborted, report.State)
	assert.Equal(t, pipeline.StepInstallDeps, report.FailedStep)
	assert.Nil(t, report.Container)
	assert.Equal(t, []string{"npm install"}, cr.lines(), "container and tests never run")

	se, ok := errors.AsScaffoldError(report.Err)
	require.True(t, ok)
	assert.Equal(t, errors.EPipelineStep, se.Code)
	assert.Equal(t, "npm install", se.Details["command"])
	assert.Equal(t, "1", se.Details["exit_code"])
}

func TestService_CommitFailureAbortsVCS(t *testing.T) {
	cr := &stubRunner{exitCodes: map[string]int{"git commit -m Initial commit": 128}}
	var out bytes.Buffer

	report, err := pipeline.NewPipeline(newService(cr, &out), 0).Run(context.Background(), project())
	require.NoError(t, err)

	assert.Equal(t, pipeline.StepInitVCS, report.FailedStep)
	assert.NotContains(t, cr.lines(), "docker build -t orders .")
}

func TestService_RunContainerStartError(t *testing.T) {
	cr := &stubRunner{startErr: stderrors.New("exec: \"podman\": executable file not found in $PATH")}
	svc := NewWithDeps(cr, Options{PackageManager: "npm", ContainerTool: "podman"})

	proc, err := svc.RunContainer(context.Background(), project())
	require.Error(t, err)
	assert.Nil(t, proc)
	assert.Equal(t, errors.ECommandFailed, errors.GetCode(err))
}

func TestService_CustomTools(t *testing.T) {
	cr := &stubRunner{}
	svc := NewWithDeps(cr, Options{PackageManager: "pnpm", ContainerTool: "podman"})
	ctx := context.Background()

	require.NoError(t, svc.InstallDeps(ctx, project()))
	require.NoError(t, svc.BuildImage(ctx, project()))
	require.NoError(t, svc.RunTests(ctx, project()))

	assert.Equal(t, []string{"pnpm install", "podman build -t orders .", "pnpm test"}, cr.lines())
}

func TestBrowserCommand(t *testing.T) {
	url := "http://localhost:3000"
	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"darwin", "open", []string{url}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", url}},
		{"linux", "xdg-open", []string{url}},
		{"freebsd", "xdg-open", []string{url}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := BrowserCommand(tt.goos, url)
			if name != tt.wantName || !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("BrowserCommand(%q) = %s %v, want %s %v", tt.goos, name, args, tt.wantName, tt.wantArgs)
			}
		})
	}
}

func TestOpenBrowser_DoesNotWait(t *testing.T) {
	cr := &stubRunner{}
	svc := NewWithDeps(cr, Options{})
	svc.SetGOOS("darwin")

	require.NoError(t, svc.OpenBrowser(context.Background(), "http://localhost:1"))
	require.Len(t, cr.calls, 1)
	assert.True(t, cr.calls[0].Start)
	assert.Equal(t, "open http://localhost:1", cr.calls[0].Line)
}
