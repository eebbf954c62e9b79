package main

import (
	"os"
	"runtime/debug"
	"strings"

	"github.com/speakeasy-api/csdl/cmd/csdl/commands/cmdutil"
	csdlCmd "github.com/speakeasy-api/csdl/cmd/csdl/commands/csdl"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// getVersionInfo returns version information, prioritizing ldflags values over build info
func getVersionInfo() (string, string, string) {
	if version != "dev" || commit != "none" || date != "unknown" {
		return version, commit, date
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return version, commit, date
	}

	moduleVersion := version
	if buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
		moduleVersion = buildInfo.Main.Version
	}

	vcsCommit := commit
	vcsTime := date

	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			if len(setting.Value) >= 7 {
				vcsCommit = setting.Value[:7]
			} else {
				vcsCommit = setting.Value
			}
		case "vcs.time":
			vcsTime = setting.Value
		}
	}

	return moduleVersion, vcsCommit, vcsTime
}

var rootCmd = &cobra.Command{
	Use:   "csdl",
	Short: "Resolve, check and validate OData CSDL documents",
	Long: `A toolkit for working with OData CSDL (XML) schemas spread across many files.

- resolve: follow edmx:Reference elements from a root document, detect circular
  references, merge schema fragments per namespace and validate the result
- check: find elements defined by more than one document in a directory
- validate: validate a document against a saved knowledge base of accepted types`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	currentVersion, currentCommit, currentDate := getVersionInfo()

	rootCmd.Version = currentVersion

	var versionTemplate strings.Builder
	versionTemplate.WriteString(`{{printf "%s" .Version}}`)

	if currentCommit != "none" && currentCommit != "" {
		versionTemplate.WriteString("\nBuild: " + currentCommit)
	}

	if currentDate != "unknown" && currentDate != "" {
		versionTemplate.WriteString("\nBuilt: " + currentDate)
	}

	rootCmd.SetVersionTemplate(versionTemplate.String())

	csdlCmd.Apply(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !csdlCmd.IsNotCompliant(err) {
			cmdutil.Errorf(rootCmd, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
