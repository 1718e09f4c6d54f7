package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/tsuri/internal/probe"
)

// Default configuration constants.
const (
	defaultRequests     = 2000
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 10 * time.Second
	defaultProbeTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		requests    = flag.Int("requests", defaultRequests, "Number of rank/search requests to generate")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		searchRatio = flag.Float64("search-ratio", probe.DefaultSearchRatio, "Share of requests that are searches")
		debounce    = flag.Duration("debounce", probe.DefaultDebounce, "Quiet period of the simulated search session")
		maxRadius   = flag.Float64("max-radius", probe.DefaultMaxRadiusKm, "Near-me radius every distance is checked against")
		logFile     = flag.String("log", "", "Log file for probe output (default: probe_log_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Log every violation")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp()
		return
	}

	// Setup logging
	closer, err := probe.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Bound the whole run and stop early on SIGINT/SIGTERM
	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)

	limits := probe.DefaultLimits()
	limits.MaxRadiusKm = *maxRadius

	config := &probe.Config{
		BaseURL:     *baseURL,
		Requests:    *requests,
		Workers:     *workers,
		Timeout:     *timeout,
		SearchRatio: *searchRatio,
		Debounce:    *debounce,
		Limits:      limits,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	_, err = probe.Run(ctx, config)
	stop()
	cancel()
	_ = closer.Close()
	if err != nil {
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
