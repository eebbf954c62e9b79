package csdl

import (
	"fmt"
	"os"

	"github.com/speakeasy-api/csdl/cmd/csdl/commands/cmdutil"
	"github.com/speakeasy-api/csdl/crossfile"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <dir | file...>",
		Short: "Check independent CSDL documents for conflicting definitions",
		Long: `Check a directory or a list of CSDL documents for elements defined more than once.

References between the documents are not followed. Several documents may
contribute to the same namespace as long as no element is defined twice.`,
		Args: cmdutil.RangeArgsWithHint(1, -1, "pass a directory or the documents to check"),
		RunE: runCheck,
	}

	cmd.Flags().Int("concurrency", 0, "number of documents parsed in parallel (default GOMAXPROCS)")
	cmd.Flags().Bool("report-identical-containers", false, "report entity containers repeated verbatim in several files")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	out, err := outputFlags(cmd, cmdutil.FormatText, cmdutil.FormatYAML)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := cfg.CheckerOptions()
	if cmd.Flags().Changed("concurrency") {
		n, _ := cmd.Flags().GetInt("concurrency")
		opts = append(opts, crossfile.WithConcurrency(n))
	}
	if cmd.Flags().Changed("report-identical-containers") {
		v, _ := cmd.Flags().GetBool("report-identical-containers")
		opts = append(opts, crossfile.WithReportIdenticalContainers(v))
	}
	checker := crossfile.NewChecker(opts...)

	var report *crossfile.Report
	if len(args) == 1 && isDir(args[0]) {
		report, err = checker.CheckDir(cmd.Context(), args[0])
	} else {
		report, err = checker.Check(cmd.Context(), args)
	}
	if err != nil {
		return err
	}

	if out.format == cmdutil.FormatYAML {
		if err := out.yaml(cmd, report); err != nil {
			return err
		}
	} else {
		printReport(cmd, report)
	}

	if !report.Compliant {
		return errNotCompliant
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func printReport(cmd *cobra.Command, report *crossfile.Report) {
	cmdutil.Printf(cmd, "Checked %d documents\n", len(report.Files))

	if report.Namespaces.Len() > 0 {
		cmdutil.Printf(cmd, "\n%s\n", cmdutil.HeadingStyle.Render("Namespaces"))
		for ns, files := range report.Namespaces.All() {
			cmdutil.Printf(cmd, "  %s %s\n", ns, cmdutil.DimStyle.Render(fmt.Sprintf("%v", files)))
		}
	}

	if len(report.Conflicts) > 0 {
		cmdutil.Printf(cmd, "\n%s\n", cmdutil.HeadingStyle.Render("Conflicts"))
		for _, c := range report.Conflicts {
			cmdutil.Printf(cmd, "  %s\n", cmdutil.FailureStyle.Render(c.Message))
		}
	}

	if len(report.FileErrors) > 0 {
		cmdutil.Printf(cmd, "\n%s\n", cmdutil.HeadingStyle.Render("Unreadable documents"))
		for _, fe := range report.FileErrors {
			cmdutil.Printf(cmd, "  %s\n", cmdutil.FailureStyle.Render(fe.Error()))
		}
	}

	cmdutil.Printf(cmd, "\n%s\n", cmdutil.Verdict(report.Compliant,
		"No conflicting definitions",
		fmt.Sprintf("%d conflicts, %d unreadable documents", len(report.Conflicts), len(report.FileErrors))))
}
