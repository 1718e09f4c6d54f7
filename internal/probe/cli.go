package probe

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/tsuri/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file and returns the
// file so the caller can close it. If logFile is empty, a timestamped
// filename is generated.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if logFile == "" {
		logFile = "probe_log_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file, nil
}

// ShowHelp prints usage information for the probe tool.
func ShowHelp() {
	os.Stdout.WriteString(`tsuri probe
===========

Drives a running tsuri service with randomized ranking and search traffic
and checks every response against the service invariants.

Usage:
  go run ./cmd/probe [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -requests int
        Number of rank/search requests to generate (default 2000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -search-ratio float
        Share of requests that are searches (default 0.4)
  -debounce duration
        Quiet period of the simulated search session (default 300ms)
  -max-radius float
        Near-me radius every distance is checked against (default 100)
  -log string
        Log file for probe output (default: probe_log_TIMESTAMP.log)
  -verbose
        Log every violation
  -help
        Show this help message

Examples:
  # Probe a local service
  go run ./cmd/probe

  # Heavier run against another address
  go run ./cmd/probe -requests 20000 -workers 32 -url http://localhost:8080
`)
}
