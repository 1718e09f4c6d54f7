package probe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/tsuri/pkg/logger"
)

// ErrViolations is returned when any response broke an invariant.
var ErrViolations = errors.New("probe: invariant violations")

// outcome of one submitted request.
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeRejected
	outcomeFailed
)

// Run executes a complete probe: health check, concurrent randomized
// traffic, one search session per phrase, one near-me session, and final
// statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("probe")

	log.Info(ctx, "starting tsuri probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Bool("verbose", cfg.Verbose))

	client := NewHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	log.Info(ctx, "service is healthy")

	// Step 2: Generate requests
	reqs, err := Generate(ctx, cfg, cfg.Requests)
	if err != nil {
		return stats, fmt.Errorf("request generation failed: %w", err)
	}
	stats.Generated = len(reqs)

	// Step 3: Submit concurrently
	submit(ctx, cfg, client, reqs, stats)

	// Step 4: Overlay search sessions
	for _, phrase := range SessionPhrases {
		res := RunSearchSession(ctx, client, cfg, phrase)
		stats.SessionQueries += len(res.Queries)
		stats.Violations += report(ctx, cfg, res.Violations)
	}

	// Step 5: Near-me session
	nm := RunNearMeSession(ctx, client, cfg)
	stats.Violations += report(ctx, cfg, nm.Violations)

	// Step 6: Service-side statistics
	if st, err := client.Stats(ctx); err == nil {
		log.Info(ctx, "service statistics",
			logger.Any("catalog", st.Catalog),
			logger.Int("indexedItems", st.IndexedItems),
			logger.Any("rankRequests", st.RankRequests),
			logger.Any("searchRequests", st.SearchRequests))
	} else {
		log.Warn(ctx, "failed to read service stats", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.Violations > 0 {
		return stats, fmt.Errorf("%w: %d", ErrViolations, stats.Violations)
	}
	log.Info(ctx, "probe completed successfully")
	return stats, nil
}

// submit runs reqs through a worker pool and folds the outcomes into stats.
func submit(ctx context.Context, cfg *Config, client *HTTPClient, reqs []Request, stats *Stats) {
	var (
		submitted, successful, rejected, failed atomic.Int64
		violations, nearMe, empty               atomic.Int64
		ranks, searches                         atomic.Int64
	)

	workers := max(1, cfg.Workers)
	ch := make(chan Request, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range ch {
				if ctx.Err() != nil {
					return
				}
				submitted.Add(1)
				var (
					out  outcome
					errs []error
				)
				switch r.Kind {
				case KindSearch:
					searches.Add(1)
					res, err := client.Search(ctx, r.Query, r.ID)
					out, errs = classify(r, err)
					if out == outcomeSuccess {
						errs = append(errs, VerifySearch(res, cfg.Limits)...)
						if res.Total == 0 {
							empty.Add(1)
						}
					}
				default:
					ranks.Add(1)
					res, err := client.Rank(ctx, r)
					out, errs = classify(r, err)
					if out == outcomeSuccess {
						errs = append(errs, VerifyRank(res, cfg.Limits)...)
						if res.Mode == "near_me" {
							nearMe.Add(1)
						}
						if res.Empty {
							empty.Add(1)
						}
					}
				}
				switch out {
				case outcomeSuccess:
					successful.Add(1)
				case outcomeRejected:
					rejected.Add(1)
				default:
					failed.Add(1)
				}
				violations.Add(int64(report(ctx, cfg, errs)))
			}
		}()
	}

	go func() {
		defer close(ch)
		for _, r := range reqs {
			select {
			case <-ctx.Done():
				return
			case ch <- r:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Successful = int(successful.Load())
	stats.Rejected = int(rejected.Load())
	stats.Failed = int(failed.Load())
	stats.Violations += int(violations.Load())
	stats.RankRequests = int(ranks.Load())
	stats.SearchRequests = int(searches.Load())
	stats.NearMeResults = int(nearMe.Load())
	stats.EmptyResults = int(empty.Load())
}

// classify maps a request error to an outcome. Unknown tabs must be
// rejected with 400; any other error or a missing rejection is a violation.
func classify(r Request, err error) (outcome, []error) {
	wantReject := r.Kind == KindRank && r.Tab == "deep-sea"
	var se *StatusError
	switch {
	case err == nil && wantReject:
		return outcomeSuccess, []error{fmt.Errorf("rank %s: unknown tab %q accepted", r.ID, r.Tab)}
	case err == nil:
		return outcomeSuccess, nil
	case errors.As(err, &se) && se.Status == StatusBadRequest && wantReject:
		return outcomeRejected, nil
	default:
		return outcomeFailed, []error{fmt.Errorf("%s %s: %w", r.Kind, r.ID, err)}
	}
}

// report logs violations when verbose and returns how many there were.
func report(ctx context.Context, cfg *Config, errs []error) int {
	if cfg.Verbose {
		for _, err := range errs {
			logger.Get().Warn(ctx, "violation", logger.Error(err))
		}
	}
	return len(errs)
}

// displayFinalStats logs the final probe statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, requestsPerSecond float64

	if stats.Submitted > 0 {
		successRate = float64(stats.Successful+stats.Rejected) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("violations", stats.Violations),
		logger.Int("rankRequests", stats.RankRequests),
		logger.Int("searchRequests", stats.SearchRequests),
		logger.Int("nearMeResults", stats.NearMeResults),
		logger.Int("emptyResults", stats.EmptyResults),
		logger.Int("sessionQueries", stats.SessionQueries),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
