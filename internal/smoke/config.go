// Package smoke drives a running prepdeck server through complete adaptive
// sessions and resume analyses and checks the answers it gets back.
package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Sessions int           // Number of sessions to run
	PerTier  int           // Generated questions per difficulty
	Total    int           // Questions per session, 0 for the server default
	Accuracy float64       // Probability of answering correctly
	Skip     float64       // Probability of leaving a question unanswered
	Workers  int           // Number of concurrent sessions
	Timeout  time.Duration // HTTP request timeout
	Seed     int64         // Seed for answer simulation, 0 for time based
	Resume   string        // Resume text for the analysis check
	Verbose  bool          // Log every answer
}

// Stats holds run statistics.
type Stats struct {
	SessionsStarted  int
	SessionsFinished int
	SessionsFailed   int
	Answers          int
	Correct          int
	Reasons          map[string]int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
