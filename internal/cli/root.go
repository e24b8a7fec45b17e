// Package cli handles command-line parsing for mkservice.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/mkservice/internal/commands"
	"github.com/NielsdaWheelz/mkservice/internal/config"
	"github.com/NielsdaWheelz/mkservice/internal/errors"
	"github.com/NielsdaWheelz/mkservice/internal/exec"
	"github.com/NielsdaWheelz/mkservice/internal/fs"
	"github.com/NielsdaWheelz/mkservice/internal/paths"
	"github.com/NielsdaWheelz/mkservice/internal/prompt"
	"github.com/NielsdaWheelz/mkservice/internal/version"
)

const usageText = `mkservice - scaffold a containerized Node.js microservice

usage: mkservice [options] [name]

creates ./<name> from the service template, then optionally installs
dependencies, initialises git, builds and runs the container, and runs tests.

arguments:
  name          service name (default: prompt, suggesting my-service)

options:
  --force       overwrite an existing folder without asking
  --auto        run the setup automation without asking
  --doctor      check prerequisites and show resolved paths
  -h, --help    show this help
  -v, --version show version

environment:
  MKSERVICE_TEMPLATE_DIR     template directory override
  MKSERVICE_DEFAULT_NAME     suggested service name (default: my-service)
  MKSERVICE_PORT             service port (default: 3000)
  MKSERVICE_BROWSER_DELAY    delay before opening the browser (default: 3s)
  MKSERVICE_PACKAGE_MANAGER  dependency and test tool (default: npm)
  MKSERVICE_CONTAINER_TOOL   image build and run tool (default: docker)
  MKSERVICE_LOG_LEVEL        log level (default: warn)
  MKSERVICE_CONFIG_DIR       configuration directory

examples:
  mkservice
  mkservice orders --auto
  mkservice orders --force
`

// knownLongFlags are the long options accepted by the root command.
var knownLongFlags = map[string]bool{
	"force":   true,
	"auto":    true,
	"doctor":  true,
	"help":    true,
	"version": true,
}

// Run parses arguments and runs mkservice.
// Returns an error if the command fails; the caller should print the error and exit.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if unknown := unknownOptions(args); len(unknown) > 0 {
		fmt.Fprintf(stdout, "unknown option(s): %s\n", strings.Join(unknown, ", "))
		fmt.Fprint(stdout, usageText)
		return nil
	}

	// The first interrupt cancels ctx, which fails pending prompts with
	// E_INTERRUPTED and kills started tools. A second one terminates.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		stop()
	}()

	cmd := newRootCmd(ctx, stdin, stdout, stderr)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// unknownOptions returns the `--name` arguments that are not known flags,
// in order and without duplicates. Arguments after "--" are positional.
func unknownOptions(args []string) []string {
	var unknown []string
	seen := map[string]bool{}
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		name, _, _ := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if knownLongFlags[name] || seen[name] {
			continue
		}
		seen[name] = true
		unknown = append(unknown, "--"+name)
	}
	return unknown
}

type rootFlags struct {
	force  bool
	auto   bool
	doctor bool
}

func newRootCmd(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "mkservice [options] [name]",
		Short:         "scaffold a containerized Node.js microservice",
		Version:       version.Version,
		Args:          maxOneName,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			return run(ctx, flags, name, stdin, stdout, stderr)
		},
	}

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetHelpTemplate(usageText)
	cmd.SetUsageTemplate(usageText)
	cmd.SetVersionTemplate("mkservice {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Wrap(errors.EUsage, "invalid flags", err)
	})

	f := cmd.Flags()
	f.SortFlags = false
	f.BoolVar(&flags.force, "force", false, "overwrite an existing folder without asking")
	f.BoolVar(&flags.auto, "auto", false, "run the setup automation without asking")
	f.BoolVar(&flags.doctor, "doctor", false, "check prerequisites and show resolved paths")

	return cmd
}

func maxOneName(_ *cobra.Command, args []string) error {
	if len(args) > 1 {
		return errors.NewWithDetails(errors.EUsage, "expected at most one service name, got "+fmt.Sprint(len(args)),
			map[string]string{"args": strings.Join(args, " ")})
	}
	return nil
}

// run loads configuration, sets up logging and dispatches to the command.
func run(ctx context.Context, flags rootFlags, name string, stdin io.Reader, stdout, stderr io.Writer) error {
	settings, err := config.LoadSettings(nil)
	if err != nil {
		return err
	}
	setupLogging(stderr, settings.LogLevel)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return errors.Wrap(errors.EInternal, "failed to get home directory", err)
	}
	configDir := paths.ConfigDir(paths.OSEnv{}, homeDir)

	cwd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(errors.EInternal, "failed to get working directory", err)
	}

	// Create real implementations
	cr := exec.NewRealRunner()
	fsys := fs.NewRealFS()

	logrus.WithFields(logrus.Fields{
		"cwd":             cwd,
		"config_dir":      configDir,
		"template_dir":    settings.TemplateDir,
		"port":            settings.Port,
		"package_manager": settings.PackageManager,
		"container_tool":  settings.ContainerTool,
	}).Debug("starting")

	if flags.doctor {
		return commands.Doctor(ctx, cr, fsys, settings, configDir, stdout)
	}

	deps := commands.Deps{
		CR:        cr,
		FS:        fsys,
		Prompter:  prompt.NewTerminalPrompter(stdin, stdout),
		Settings:  settings,
		ConfigDir: configDir,
		Cwd:       cwd,
		Stdin:     stdin,
		Stdout:    stdout,
		Stderr:    stderr,
	}
	return commands.New(ctx, deps, commands.NewOpts{
		Name:  name,
		Force: flags.force,
		Auto:  flags.auto,
	})
}

// setupLogging configures the global logrus logger. level has been
// validated by config.Settings.
func setupLogging(w io.Writer, level string) {
	logrus.SetOutput(w)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logrus.SetLevel(logrus.WarnLevel)
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logrus.SetLevel(lvl)
	}
}
