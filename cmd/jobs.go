package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dynamic-campus/leadgen-cli/internal/dedupe"
	"github.com/dynamic-campus/leadgen-cli/internal/fetcher"
	"github.com/dynamic-campus/leadgen-cli/pkg/serpapi"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage scraped job postings",
}

var jobsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch current higher-ed IT postings and store them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Jobs.SerpAPIKey == "" {
			return eris.New("jobs.serpapi_key not configured (LEADGEN_JOBS_SERPAPI_KEY)")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		scoring, err := loadScoring()
		if err != nil {
			return err
		}

		client := serpapi.NewClient(cfg.Jobs.SerpAPIKey, serpapi.WithRateLimit(cfg.Jobs.RatePerSec))
		jobs, err := fetcher.NewJobFetcher(client, cfg.Jobs, scoring).FetchJobs(ctx)
		if err != nil {
			return eris.Wrap(err, "fetch jobs")
		}
		if err := st.UpsertJobPostings(ctx, jobs); err != nil {
			return eris.Wrap(err, "store job postings")
		}

		zap.L().Info("job postings refreshed", zap.Int("fetched", len(jobs)))
		return nil
	},
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print stored postings still inside the freshness window",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		stored, err := st.LoadJobPostings(ctx)
		if err != nil {
			return eris.Wrap(err, "load job postings")
		}
		fresh := dedupe.RetireStaleJobPostings(stored, cfg.Jobs.MaxAgeDays, time.Now())

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(fresh)
	},
}

func init() {
	jobsCmd.AddCommand(jobsRefreshCmd)
	jobsCmd.AddCommand(jobsListCmd)
	rootCmd.AddCommand(jobsCmd)
}
