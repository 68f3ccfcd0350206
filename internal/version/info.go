// Package version reports build information and provides the version command.
package version

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"

	goversion "github.com/caarlos0/go-version"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Set at build time:
//
//	-X github.com/b-harvest/node-harness/internal/version.Version={{.Version}}
//	-X github.com/b-harvest/node-harness/internal/version.GitCommit={{.FullCommit}}
//	-X github.com/b-harvest/node-harness/internal/version.BuildDate={{.Date}}
var (
	Version   = ""
	GitCommit = ""
	BuildDate = ""
)

const (
	appName        = "node-harness"
	appDescription = "Integration test driver for relay and forger nodes"
	appURL         = "https://github.com/b-harvest/node-harness"
)

// Info contains all version and build information.
type Info struct {
	Name      string   `json:"name" yaml:"name"`
	Version   string   `json:"version" yaml:"version"`
	GitCommit string   `json:"commit" yaml:"commit"`
	TreeState string   `json:"tree_state,omitempty" yaml:"tree_state,omitempty"`
	BuildDate string   `json:"build_date,omitempty" yaml:"build_date,omitempty"`
	GoVersion string   `json:"go" yaml:"go"`
	Platform  string   `json:"platform" yaml:"platform"`
	BuildTags string   `json:"build_tags,omitempty" yaml:"build_tags,omitempty"`
	BuildDeps []string `json:"build_deps,omitempty" yaml:"build_deps,omitempty"`
}

// NewInfo collects build information. Values set through ldflags win over
// what the Go toolchain embedded in the binary.
func NewInfo() Info {
	vi := goversion.GetVersionInfo(
		goversion.WithAppDetails(appName, appDescription, appURL),
		func(i *goversion.Info) {
			if Version != "" {
				i.GitVersion = Version
			}
			if GitCommit != "" {
				i.GitCommit = GitCommit
			}
			if BuildDate != "" {
				i.BuildDate = BuildDate
			}
		},
	)

	return Info{
		Name:      vi.Name,
		Version:   vi.GitVersion,
		GitCommit: vi.GitCommit,
		TreeState: vi.GitTreeState,
		BuildDate: vi.BuildDate,
		GoVersion: vi.GoVersion,
		Platform:  vi.Platform,
	}
}

// WithBuildDeps adds build tags and module dependencies from the binary.
func (i Info) WithBuildDeps() Info {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return i
	}

	var buildTags []string
	for _, setting := range buildInfo.Settings {
		if setting.Key == "-tags" && setting.Value != "" {
			buildTags = append(buildTags, setting.Value)
		}
	}
	if len(buildTags) > 0 {
		i.BuildTags = strings.Join(buildTags, ",")
	}

	deps := make([]string, 0, len(buildInfo.Deps))
	for _, dep := range buildInfo.Deps {
		depStr := fmt.Sprintf("%s@%s", dep.Path, dep.Version)
		if dep.Replace != nil {
			depStr = fmt.Sprintf("%s@%s => %s@%s", dep.Path, dep.Version, dep.Replace.Path, dep.Replace.Version)
		}
		deps = append(deps, depStr)
	}
	sort.Strings(deps)
	i.BuildDeps = deps

	return i
}

// String returns the short human-readable form.
func (i Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s version %s\n", i.Name, i.Version)
	fmt.Fprintf(&sb, "  commit:     %s\n", i.GitCommit)
	fmt.Fprintf(&sb, "  build date: %s\n", i.BuildDate)
	fmt.Fprintf(&sb, "  go:         %s %s\n", i.GoVersion, i.Platform)
	return sb.String()
}

// LongString returns the YAML form including dependencies.
func (i Info) LongString() string {
	data, err := yaml.Marshal(i)
	if err != nil {
		return i.String()
	}
	return string(data)
}

// JSON returns the indented JSON form.
func (i Info) JSON() (string, error) {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NewCmd creates the version command. --long adds build dependencies and
// --json switches to JSON output.
func NewCmd() *cobra.Command {
	var (
		long       bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := NewInfo()
			if long {
				info = info.WithBuildDeps()
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				s, err := info.JSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
				return nil
			}
			if long {
				fmt.Fprint(out, info.LongString())
			} else {
				fmt.Fprint(out, info.String())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&long, "long", false, "Show detailed version info including build dependencies")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info in JSON format")

	return cmd
}
