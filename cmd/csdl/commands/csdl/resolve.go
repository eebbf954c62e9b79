package csdl

import (
	"fmt"
	"slices"

	"github.com/speakeasy-api/csdl/cmd/csdl/commands/cmdutil"
	"github.com/speakeasy-api/csdl/graph"
	"github.com/speakeasy-api/csdl/merge"
	"github.com/speakeasy-api/csdl/resolver"
	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <root>",
		Short: "Resolve a CSDL document and every document it references",
		Long: `Resolve a CSDL document and everything it references into merged namespaces.

The command follows edmx:Reference elements from the root document, checks the
reference graph for cycles, loads documents in dependency order, merges schema
fragments that share a namespace and validates every type reference of the result.

Use --format yaml for the full report and --format mermaid for the reference graph.`,
		Args: cmdutil.RangeArgsWithHint(1, 1, "pass the root document"),
		RunE: runResolve,
	}

	cmd.Flags().Bool("allow-cycles", false, "report circular references as conflicts instead of failing")
	cmd.Flags().Bool("no-cycle-detection", false, "skip circular reference detection")
	cmd.Flags().Int("max-depth", graph.DefaultMaxDepth, "maximum reference depth below the root")
	cmd.Flags().String("policy", merge.ThrowError.String(), "conflict resolution policy (ThrowError, KeepFirst, KeepLast, SkipConflicts, AutoMerge)")
	cmd.Flags().Bool("no-cache", false, "do not share parsed documents between runs")
	cmd.Flags().Bool("no-validate", false, "skip type validation of the merged namespaces")
	cmd.Flags().String("baseline", "", "knowledge base to validate against")

	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	out, err := outputFlags(cmd, cmdutil.FormatText, cmdutil.FormatYAML, cmdutil.FormatMermaid)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := cfg.ResolverOptions()
	flagOpts, err := resolveFlagOptions(cmd)
	if err != nil {
		return err
	}
	opts = append(opts, flagOpts...)

	baseline, err := loadKnowledgeBase(baselinePath(cmd, cfg))
	if err != nil {
		return err
	}
	if baseline != nil {
		opts = append(opts, resolver.WithBaseline(baseline))
	}

	root := cmdutil.ArgAt(args, 0, "")
	result, resolveErr := resolver.New(opts...).Resolve(cmd.Context(), root)

	switch out.format {
	case cmdutil.FormatYAML:
		if err := out.yaml(cmd, result); err != nil {
			return err
		}
	case cmdutil.FormatMermaid:
		if result.Graph == nil {
			return resolveErr
		}
		cmdutil.Printf(cmd, "%s", graph.Mermaid(result.Graph))
	default:
		printResult(cmd, root, result)
	}

	if !result.Compliant {
		return errNotCompliant
	}
	return nil
}

// resolveFlagOptions returns options for the flags set on the command line, so that
// they override the configuration file.
func resolveFlagOptions(cmd *cobra.Command) ([]resolver.Option, error) {
	flags := cmd.Flags()
	var opts []resolver.Option

	if flags.Changed("allow-cycles") {
		v, _ := flags.GetBool("allow-cycles")
		opts = append(opts, resolver.WithAllowCircularDependencies(v))
	}
	if flags.Changed("no-cycle-detection") {
		v, _ := flags.GetBool("no-cycle-detection")
		opts = append(opts, resolver.WithCircularDependencyDetection(!v))
	}
	if flags.Changed("max-depth") {
		v, _ := flags.GetInt("max-depth")
		if v < 1 {
			return nil, fmt.Errorf("--max-depth must be at least 1")
		}
		opts = append(opts, resolver.WithMaxDependencyDepth(v))
	}
	if flags.Changed("policy") {
		v, _ := flags.GetString("policy")
		policy, err := merge.ParsePolicy(v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, resolver.WithConflictResolution(policy))
	}
	if flags.Changed("no-cache") {
		v, _ := flags.GetBool("no-cache")
		opts = append(opts, resolver.WithCaching(!v))
	}
	if flags.Changed("no-validate") {
		v, _ := flags.GetBool("no-validate")
		opts = append(opts, resolver.WithTypeValidation(!v))
	}

	return opts, nil
}

func printResult(cmd *cobra.Command, root string, result *resolver.Result) {
	cmdutil.Printf(cmd, "Resolving CSDL document: %s\n", root)

	if len(result.LoadOrder) > 0 {
		cmdutil.Printf(cmd, "\n%s\n", cmdutil.HeadingStyle.Render("Load order"))
		for i, id := range result.LoadOrder {
			line := fmt.Sprintf("%d. %s", i+1, id)
			if outcome, ok := result.Documents.Get(id); ok && len(outcome.Namespaces) > 0 {
				line += cmdutil.DimStyle.Render(fmt.Sprintf(" %v", outcome.Namespaces))
			}
			cmdutil.Printf(cmd, "  %s\n", line)
		}
	}

	if len(result.Conflicts) > 0 {
		cmdutil.Printf(cmd, "\n%s\n", cmdutil.HeadingStyle.Render("Conflicts"))
		for _, c := range result.Conflicts {
			style := cmdutil.FailureStyle
			if c.Kind == merge.ConflictCircularDependency || c.Resolution == merge.ResolutionMerged {
				style = cmdutil.WarningStyle
			}
			cmdutil.Printf(cmd, "  %s\n", style.Render(c.String()))
		}
	}

	if result.Validation != nil {
		printFindings(cmd, slices.Concat(result.Validation.Errors, result.Validation.Warnings))
	}

	if result.Error != "" {
		cmdutil.Printf(cmd, "\n%s\n", cmdutil.FailureStyle.Render("Error: "+result.Error))
	}

	cmdutil.Printf(cmd, "\n%s\n", cmdutil.Verdict(result.Compliant,
		fmt.Sprintf("Resolved %d namespaces from %d documents", len(result.Namespaces()), len(result.LoadOrder)),
		"Resolution is not compliant"))
}
