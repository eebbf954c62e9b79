package validation

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// SortValidationErrors sorts the provided validation errors by document, element, severity and rule.
// It pre-partitions errors by type to avoid O(n log n) errors.As() calls in the sort comparator.
func SortValidationErrors(allErrors []error) {
	if len(allErrors) == 0 {
		return
	}

	// Single-pass partition: separate *Error (direct or wrapped) from non-validation errors.
	var validErrs []*Error
	var otherIdxs []int // indices of non-validation errors in the original slice
	for i, err := range allErrors {
		var vErr *Error
		if errors.As(err, &vErr) {
			validErrs = append(validErrs, vErr)
		} else {
			otherIdxs = append(otherIdxs, i)
		}
	}

	slices.SortStableFunc(validErrs, compareValidationErrors)

	// Save non-validation errors before reconstruction (origIdx slots may be overwritten).
	otherErrs := make([]error, len(otherIdxs))
	for i, origIdx := range otherIdxs {
		otherErrs[i] = allErrors[origIdx]
	}

	// Reconstruct: validation errors first (sorted), then non-validation errors (original order).
	idx := 0
	for _, vErr := range validErrs {
		allErrors[idx] = vErr
		idx++
	}
	for _, err := range otherErrs {
		allErrors[idx] = err
		idx++
	}
}

func compareValidationErrors(a, b *Error) int {
	if c := strings.Compare(a.DocumentLocation, b.DocumentLocation); c != 0 {
		return c
	}
	if c := strings.Compare(a.Element, b.Element); c != 0 {
		return c
	}
	if a.Severity != b.Severity {
		return a.Severity.rank() - b.Severity.rank()
	}
	if c := strings.Compare(a.Rule, b.Rule); c != 0 {
		return c
	}
	return strings.Compare(a.UnderlyingError.Error(), b.UnderlyingError.Error())
}

// FormatText renders findings one per line followed by a summary line.
func FormatText(results []error) string {
	var sb strings.Builder

	errorCount := 0
	warningCount := 0
	hintCount := 0

	for _, err := range results {
		var vErr *Error
		if errors.As(err, &vErr) {
			location := vErr.DocumentLocation
			if location == "" {
				location = "-"
			}
			element := vErr.Element
			if element == "" {
				element = "-"
			}

			fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\t%s\n", location, element, vErr.Severity, vErr.Rule, vErr.UnderlyingError.Error())

			switch vErr.Severity {
			case SeverityError:
				errorCount++
			case SeverityWarning:
				warningCount++
			case SeverityHint:
				hintCount++
			}
		} else {
			// Non-validation error
			fmt.Fprintf(&sb, "-\t-\terror\tinternal\t%s\n", err.Error())
			errorCount++
		}
	}

	if len(results) > 0 {
		fmt.Fprintf(&sb, "\n%d problems (%d errors, %d warnings, %d hints)\n", len(results), errorCount, warningCount, hintCount)
	}

	return sb.String()
}
