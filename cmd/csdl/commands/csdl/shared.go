package csdl

import (
	"errors"
	"fmt"
	"os"

	"github.com/speakeasy-api/csdl/cmd/csdl/commands/cmdutil"
	"github.com/speakeasy-api/csdl/config"
	"github.com/speakeasy-api/csdl/knowledge"
	"github.com/speakeasy-api/csdl/validation"
	"github.com/spf13/cobra"
)

// errNotCompliant is returned when a command ran but its subject failed the checks,
// so the process exits non-zero without repeating the report.
var errNotCompliant = errors.New("not compliant")

// IsNotCompliant reports whether err only signals a failed check.
func IsNotCompliant(err error) bool {
	return errors.Is(err, errNotCompliant)
}

type output struct {
	format cmdutil.Format
	query  cmdutil.Query
}

func outputFlags(cmd *cobra.Command, supported ...cmdutil.Format) (*output, error) {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := cmdutil.ParseFormat(formatFlag, supported...)
	if err != nil {
		return nil, err
	}

	out := &output{format: format}

	expr, _ := cmd.Flags().GetString("query")
	if expr == "" {
		return out, nil
	}
	if format != cmdutil.FormatYAML {
		return nil, fmt.Errorf("--query requires --format yaml")
	}
	engine, _ := cmd.Flags().GetString("query-engine")
	out.query, err = cmdutil.NewQuery(expr, cmdutil.QueryEngine(engine))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (o *output) yaml(cmd *cobra.Command, v any) error {
	return cmdutil.WriteYAML(cmd.OutOrStdout(), v, o.query)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return &config.Config{}, nil
	}
	return config.Load(path)
}

func loadKnowledgeBase(path string) (*knowledge.KnowledgeBase, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge base: %w", err)
	}
	defer f.Close()

	return knowledge.Load(f)
}

func saveKnowledgeBase(path string, kb *knowledge.KnowledgeBase) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create knowledge base: %w", err)
	}
	if err := knowledge.Save(f, kb); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// baselinePath prefers the --baseline flag over the configured knowledge base.
func baselinePath(cmd *cobra.Command, cfg *config.Config) string {
	if cmd.Flags().Changed("baseline") {
		path, _ := cmd.Flags().GetString("baseline")
		return path
	}
	return cfg.KnowledgeBase
}

func printFindings(cmd *cobra.Command, findings []error) {
	if len(findings) == 0 {
		return
	}
	cmdutil.Printf(cmd, "\n%s\n", cmdutil.HeadingStyle.Render("Findings"))
	cmdutil.Printf(cmd, "%s", validation.FormatText(findings))

	seen := make(map[string]bool)
	for _, finding := range findings {
		var vErr *validation.Error
		if !errors.As(finding, &vErr) || seen[vErr.Rule] {
			continue
		}
		seen[vErr.Rule] = true
		if summary := validation.RuleSummary(vErr.Rule); summary != "" {
			cmdutil.Printf(cmd, "  %s %s\n", vErr.Rule, cmdutil.DimStyle.Render(summary))
		}
	}
}
