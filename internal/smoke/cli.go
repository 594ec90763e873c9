package smoke

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/prepdeck/pkg/logger"
)

// Default configuration constants.
const (
	defaultBaseURL  = "http://localhost:9080"
	defaultSessions = 20
	defaultPerTier  = 4
	defaultAccuracy = 0.6
	defaultTimeout  = 10 * time.Second
)

// NewCommand builds the smoke CLI with its session and analyze subcommands.
func NewCommand() *cobra.Command {
	cfg := &Config{}

	root := &cobra.Command{
		Use:   "smoke",
		Short: "Exercise a running prepdeck server",
		Long: `smoke drives a running prepdeck server through simulated adaptive test
sessions and resume analyses, and verifies every response against the
difficulty staircase and ranking rules.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			if cfg.Verbose {
				return logger.SetLevelString("debug")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfg.BaseURL, "url", defaultBaseURL, "Base URL of the service")
	root.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	root.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log every answer")

	root.AddCommand(newSessionCommand(cfg), newAnalyzeCommand(cfg))
	return root
}

func newSessionCommand(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Run simulated adaptive sessions",
		Args:  cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			switch {
			case cfg.PerTier < 1:
				return fmt.Errorf("--per-tier must be positive")
			case cfg.Accuracy < 0 || cfg.Skip < 0 || cfg.Accuracy+cfg.Skip > 1:
				return fmt.Errorf("--accuracy and --skip must be probabilities that sum to at most 1")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := Run(cmd.Context(), cfg)
			Report(cmd.OutOrStdout(), stats)
			if IsVerification(err) {
				return fmt.Errorf("server broke an invariant: %w", err)
			}
			return err
		},
	}
	f := cmd.Flags()
	f.IntVarP(&cfg.Sessions, "sessions", "n", defaultSessions, "Number of sessions to run")
	f.IntVar(&cfg.PerTier, "per-tier", defaultPerTier, "Generated questions per difficulty")
	f.IntVar(&cfg.Total, "total", 0, "Questions per session (0 uses the server default)")
	f.Float64Var(&cfg.Accuracy, "accuracy", defaultAccuracy, "Probability of answering correctly")
	f.Float64Var(&cfg.Skip, "skip", 0, "Probability of leaving a question unanswered")
	f.IntVarP(&cfg.Workers, "workers", "w", runtime.NumCPU(), "Number of concurrent sessions")
	f.Int64Var(&cfg.Seed, "seed", 0, "Seed for answer simulation (0 is time based)")
	return cmd
}

func newAnalyzeCommand(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a resume and verify the ranking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := RunAnalysis(cmd.Context(), NewClient(cfg.BaseURL, cfg.Timeout), cfg.Resume)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "catalog %s, %s\n", out.CatalogVersion, out.Algorithm)
			for i, rec := range out.Recommendations {
				fmt.Fprintf(w, "%d. %-28s %3d  %v\n", i+1, rec.Title, rec.MatchScore, rec.MatchedKeywords)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.Resume, "resume", DefaultResume, "Resume text to analyze")
	return cmd
}
