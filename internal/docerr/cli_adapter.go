package docerr

import (
	"fmt"
	"log/slog"
	"os"
)

// CLIAdapter handles error presentation and exit code determination for the
// docsite CLI.
type CLIAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIAdapter creates a new CLI error adapter.
func NewCLIAdapter(verbose bool, logger *slog.Logger) *CLIAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIAdapter{verbose: verbose, logger: logger}
}

// ExitCodeFor maps an error's category to a process exit code.
func (a *CLIAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	switch CategoryOf(err) {
	case CategoryValidation:
		return 2
	case CategoryConfig:
		return 7
	case CategoryNetwork:
		return 8
	case CategoryContent:
		return 11
	case CategoryInternal:
		return 10
	default:
		return 1
	}
}

// FormatError formats an error for user-facing display.
func (a *CLIAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	if a.verbose {
		return fmt.Sprintf("%s: %v", CategoryOf(err), err)
	}
	return err.Error()
}

// HandleError logs and prints err, then exits with its mapped code.
// A nil error is a no-op.
func (a *CLIAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	if a.verbose || CategoryOf(err) == CategoryInternal {
		a.logger.Error("command failed", "category", string(CategoryOf(err)), "error", err)
	}
	fmt.Fprintf(os.Stderr, "%s\n", a.FormatError(err))
	os.Exit(a.ExitCodeFor(err))
}
