package smoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/okian/prepdeck/pkg/logger"
)

// Run plays cfg.Sessions sessions on cfg.Workers goroutines. The first
// verification failure is returned after all sessions have finished.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now(), Reasons: make(map[string]int)}
	log := logger.Named("smoke")

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Healthy(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	log.Info(ctx, "starting smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("workers", workers),
		logger.Int("perTier", cfg.PerTier),
		logger.Float64("accuracy", cfg.Accuracy),
		logger.Any("seed", seed),
	)

	var (
		mu       sync.Mutex
		firstErr error
		wg       sync.WaitGroup
		jobs     = make(chan struct{})
	)
	for w := 0; w < workers; w++ {
		rng := rand.New(rand.NewSource(seed + int64(w)))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				rep, err := RunSession(ctx, client, cfg, rng)

				mu.Lock()
				stats.SessionsStarted++
				stats.Answers += rep.Answers
				stats.Correct += rep.Correct
				if err != nil {
					stats.SessionsFailed++
					if firstErr == nil {
						firstErr = err
					}
				} else {
					stats.SessionsFinished++
					stats.Reasons[rep.Reason]++
				}
				mu.Unlock()

				if err != nil {
					log.Error(ctx, "session failed", logger.String("sessionID", rep.ID), logger.Error(err))
				}
			}
		}()
	}

feed:
	for i := 0; i < cfg.Sessions; i++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- struct{}{}:
		}
	}
	close(jobs)
	wg.Wait()

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	if firstErr == nil {
		firstErr = ctx.Err()
	}
	return stats, firstErr
}

// Report writes a human readable summary of stats.
func Report(w io.Writer, stats *Stats) {
	fmt.Fprintf(w, "sessions: %d started, %d finished, %d failed\n",
		stats.SessionsStarted, stats.SessionsFinished, stats.SessionsFailed)
	if stats.Answers > 0 {
		fmt.Fprintf(w, "answers:  %d (%.1f%% correct)\n",
			stats.Answers, 100*float64(stats.Correct)/float64(stats.Answers))
	}
	reasons := make([]string, 0, len(stats.Reasons))
	for r := range stats.Reasons {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		fmt.Fprintf(w, "  %-10s %d\n", r, stats.Reasons[r])
	}
	fmt.Fprintf(w, "duration: %s\n", stats.Duration.Round(time.Millisecond))
}

// IsVerification reports whether err is a failed check rather than a transport problem.
func IsVerification(err error) bool {
	return errors.Is(err, ErrVerification)
}
