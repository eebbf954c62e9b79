package csdl

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/speakeasy-api/csdl/cmd/csdl/commands/cmdutil"
	"github.com/speakeasy-api/csdl/csdl"
	"github.com/speakeasy-api/csdl/knowledge"
	"github.com/speakeasy-api/csdl/references"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a CSDL document against a knowledge base",
		Long: `Validate a single CSDL document against a knowledge base of accepted types.

Namespaces the document includes through edmx:Reference must already be known
to the baseline. With --save, a valid document is added to the baseline and the
resulting knowledge base is written to the given path.`,
		Args: cmdutil.RangeArgsWithHint(1, 1, "pass the document to validate"),
		RunE: runValidate,
	}

	cmd.Flags().String("baseline", "", "knowledge base to validate against")
	cmd.Flags().String("save", "", "write the knowledge base including the document here when it is valid")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	out, err := outputFlags(cmd, cmdutil.FormatText, cmdutil.FormatYAML)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	baseline, err := loadKnowledgeBase(baselinePath(cmd, cfg))
	if err != nil {
		return err
	}

	file := filepath.Clean(args[0])
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	doc, err := csdl.Parser{}.ParseDocument(cmd.Context(), references.DocumentID(filepath.ToSlash(file)), data)
	if err != nil {
		return err
	}

	savePath, _ := cmd.Flags().GetString("save")
	validator := knowledge.NewValidator(baseline,
		knowledge.WithCommit(savePath != ""),
		knowledge.WithValidationOptions(cfg.ValidationOptions()...),
	)

	report, err := validator.ValidateDocument(cmd.Context(), doc)
	if err != nil {
		return err
	}

	if report.Committed != nil {
		if err := saveKnowledgeBase(savePath, report.Committed); err != nil {
			return err
		}
	}

	if out.format == cmdutil.FormatYAML {
		if err := out.yaml(cmd, report); err != nil {
			return err
		}
	} else {
		cmdutil.Printf(cmd, "Validating CSDL document: %s\n", file)
		printFindings(cmd, slices.Concat(report.Errors, report.Warnings))
		cmdutil.Printf(cmd, "\n%s\n", cmdutil.Verdict(report.Valid,
			fmt.Sprintf("CSDL document is valid - %d warnings", len(report.Warnings)),
			fmt.Sprintf("CSDL document is invalid - %d errors", len(report.Errors))))
		if report.Committed != nil {
			cmdutil.Printf(cmd, "Knowledge base saved to %s\n", savePath)
		}
	}

	if !report.Valid {
		return errNotCompliant
	}
	return nil
}
