package probe

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/salaryexplorer/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging sends probe logs to stdout and, when logFile is set, to that
// file as well.
func SetupLogging(logFile string, verbose bool) error {
	var w io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
	}
	if err := logger.InitWithOptions(logger.FormatText, w); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the probe.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Salary Explorer Probe
=====================

Sends concurrent estimate and dashboard requests to a running server and
checks every response for consistency.

Usage:
  probe [options]

Options:
  -url string        Base URL of the service (default "http://localhost:9080")
  -requests int      Number of estimate requests (default 500)
  -dashboards int    Number of dashboard requests (default 50)
  -workers int       Number of concurrent workers (default CPU cores * 2)
  -timeout duration  HTTP request timeout (default 30s)
  -seed uint         Input generation seed; 0 picks one
  -output string     Write a JSON report to this file
  -log string        Also write logs to this file
  -verbose           Enable verbose logging
  -help              Show this help message

Exit status is non-zero when the service is not ready or any response
breaks an invariant.
`)
}
