package shared

import (
	"os"

	"github.com/charmbracelet/log"
)

// SetupLogger configures the standard CLI logger: warnings only by
// default, debug detail with --verbose.
func SetupLogger(verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: verbose,
	})
}
