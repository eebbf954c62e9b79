// Package cmdutil provides shared CLI utilities for the csdl commands.
package cmdutil

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ArgAt returns the argument at index, or defaultVal when it is out of range.
func ArgAt(args []string, index int, defaultVal string) string {
	if index < 0 || index >= len(args) {
		return defaultVal
	}
	return args[index]
}

// RangeArgsWithHint is cobra.RangeArgs with a usage hint appended to the error.
func RangeArgsWithHint(minArgs, maxArgs int, hint string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < minArgs {
			return fmt.Errorf("requires at least %d arg(s), only received %d: %s", minArgs, len(args), hint)
		}
		if maxArgs >= 0 && len(args) > maxArgs {
			return fmt.Errorf("accepts at most %d arg(s), received %d", maxArgs, len(args))
		}
		return nil
	}
}

// Printf writes to the command's output stream.
func Printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

// Errorf writes to the command's error stream.
func Errorf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
}
