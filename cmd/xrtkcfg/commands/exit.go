package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xrtkcfg/xrtkcfg/pkg/resolver"
)

// ExitUsage is returned for malformed command lines.
const ExitUsage = resolver.ExitUsage

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageErrorf(format string, args ...any) error {
	return &ExitError{Code: ExitUsage, Err: fmt.Errorf(format, args...)}
}

// ExitCode maps err onto the process exit status. Resolver failures get one
// status per error kind.
func ExitCode(err error) int {
	if err == nil {
		return resolver.ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return resolver.ExitCode(err)
}

// PrintError writes err to w, prefixed with its kind when it has one.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	label := "error"
	if kind := resolver.KindOf(err); kind != "" {
		label = string(kind)
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render(label+":"), err.Error())
}

// rangeArgs is cobra.RangeArgs with a usage exit status.
func rangeArgs(minArgs, maxArgs int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < minArgs || len(args) > maxArgs {
			if minArgs == maxArgs {
				return usageErrorf("%s accepts %d arg(s), received %d", cmd.CommandPath(), minArgs, len(args))
			}
			return usageErrorf("%s accepts between %d and %d arg(s), received %d", cmd.CommandPath(), minArgs, maxArgs, len(args))
		}
		return nil
	}
}
