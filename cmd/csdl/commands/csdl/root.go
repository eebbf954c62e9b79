// Package csdl wires the resolve, check and validate commands.
package csdl

import (
	"github.com/spf13/cobra"
)

// Apply adds the csdl commands and their shared flags to rootCmd.
func Apply(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().String("config", "", "path to a csdl configuration file")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format (text, yaml)")
	rootCmd.PersistentFlags().StringP("query", "q", "", "JSONPath expression selecting part of the YAML output")
	rootCmd.PersistentFlags().String("query-engine", "rfc9535", "JSONPath implementation used by --query (rfc9535, legacy)")

	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newValidateCmd())
}
