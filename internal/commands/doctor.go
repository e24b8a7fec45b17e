package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/NielsdaWheelz/mkservice/internal/config"
	"github.com/NielsdaWheelz/mkservice/internal/errors"
	"github.com/NielsdaWheelz/mkservice/internal/exec"
	"github.com/NielsdaWheelz/mkservice/internal/fs"
	"github.com/NielsdaWheelz/mkservice/internal/scaffold"
	"github.com/NielsdaWheelz/mkservice/internal/templates"
)

// DoctorReport holds all the data for doctor output.
type DoctorReport struct {
	// Directories and template resolution
	ConfigDir        string
	TemplateSource   string
	BuiltinTemplates []string

	// Settings
	DefaultName    string
	Port           int
	PackageManager string
	ContainerTool  string

	// Tooling; empty when the tool is missing
	NodeVersion           string
	PackageManagerVersion string
	GitVersion            string
	ContainerToolVersion  string
}

// Doctor implements `mkservice --doctor`.
// Shows resolved paths and settings and checks that the tools used by the
// automation pipeline are installed. Returns E_TOOL_MISSING, after printing
// the report, if any tool is missing.
func Doctor(ctx context.Context, cr exec.CommandRunner, fsys fs.FS, s config.Settings, configDir string, stdout io.Writer) error {
	tmpl, err := scaffold.ResolveTemplate(fsys, s.TemplateDir, configDir)
	if err != nil {
		return err
	}

	report := DoctorReport{
		ConfigDir:        configDir,
		TemplateSource:   tmpl.Source,
		BuiltinTemplates: templates.Names(),
		DefaultName:      s.DefaultName,
		Port:             s.Port,
		PackageManager:   s.PackageManager,
		ContainerTool:    s.ContainerTool,
	}

	var missing []string
	check := func(name string, dst *string) {
		v, ok := toolVersion(ctx, cr, name)
		if !ok {
			missing = append(missing, name)
			return
		}
		*dst = v
	}
	check("node", &report.NodeVersion)
	check(s.PackageManager, &report.PackageManagerVersion)
	check("git", &report.GitVersion)
	check(s.ContainerTool, &report.ContainerToolVersion)

	writeDoctorOutput(stdout, report, len(missing) == 0)

	if len(missing) > 0 {
		return errors.NewWithDetails(errors.EToolMissing,
			"not installed or not on PATH: "+strings.Join(missing, ", "),
			map[string]string{"tools": strings.Join(missing, ",")})
	}
	return nil
}

// toolVersion runs `<name> --version` and returns the first line of output.
func toolVersion(ctx context.Context, cr exec.CommandRunner, name string) (string, bool) {
	result, err := cr.Run(ctx, name, []string{"--version"}, exec.RunOpts{})
	if err != nil || result.ExitCode != 0 {
		return "", false
	}
	// some tools print several lines; take the first
	line, _, _ := strings.Cut(strings.TrimSpace(result.Stdout), "\n")
	return strings.TrimSpace(line), true
}

// writeDoctorOutput writes the stable key: value output.
func writeDoctorOutput(w io.Writer, r DoctorReport, ok bool) {
	fmt.Fprintf(w, "config_dir: %s\n", r.ConfigDir)
	fmt.Fprintf(w, "template: %s\n", r.TemplateSource)
	fmt.Fprintf(w, "builtin_templates: %s\n", strings.Join(r.BuiltinTemplates, ","))

	fmt.Fprintf(w, "default_name: %s\n", r.DefaultName)
	fmt.Fprintf(w, "port: %d\n", r.Port)
	fmt.Fprintf(w, "package_manager: %s\n", r.PackageManager)
	fmt.Fprintf(w, "container_tool: %s\n", r.ContainerTool)

	fmt.Fprintf(w, "node_version: %s\n", orMissing(r.NodeVersion))
	fmt.Fprintf(w, "package_manager_version: %s\n", orMissing(r.PackageManagerVersion))
	fmt.Fprintf(w, "git_version: %s\n", orMissing(r.GitVersion))
	fmt.Fprintf(w, "container_tool_version: %s\n", orMissing(r.ContainerToolVersion))

	if ok {
		fmt.Fprintln(w, "status: ok")
	} else {
		fmt.Fprintln(w, "status: missing tools")
	}
}

func orMissing(v string) string {
	if v == "" {
		return "missing"
	}
	return v
}
