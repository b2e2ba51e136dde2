package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dynamic-campus/leadgen-cli/internal/dedupe"
	"github.com/dynamic-campus/leadgen-cli/internal/fetcher"
	"github.com/dynamic-campus/leadgen-cli/internal/model"
	"github.com/dynamic-campus/leadgen-cli/internal/notify"
	"github.com/dynamic-campus/leadgen-cli/internal/pipeline"
	"github.com/dynamic-campus/leadgen-cli/internal/scorer"
	"github.com/dynamic-campus/leadgen-cli/internal/store"
	"github.com/dynamic-campus/leadgen-cli/pkg/serpapi"
)

var runDryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one daily lead generation pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		scoring, err := loadScoring()
		if err != nil {
			return err
		}
		classifier, err := newOracle()
		if err != nil {
			return err
		}

		evidence, jobs, err := collectEvidence(ctx, st, scoring)
		if err != nil {
			return err
		}

		target := st
		if runDryRun {
			target, err = snapshotStore(ctx, st)
			if err != nil {
				return err
			}
			zap.L().Info("dry run: results will not be persisted or mailed")
		}

		assembler := pipeline.NewAssembler(target, classifier, scoring, cfg.Dedupe.WindowDays)
		result, err := assembler.Run(ctx, evidence, jobs)
		if err != nil {
			return eris.Wrap(err, "analysis run")
		}

		zap.L().Info("run complete",
			zap.String("outcome", string(result.Outcome)),
			zap.Int("evidence_items", len(evidence)),
			zap.Int("clusters", result.Clusters),
		)

		digest := notify.RenderDigest(result.Opportunity, time.Now())
		if cfg.Email.Enabled && !runDryRun {
			sender, err := notify.NewSMTPSender(cfg.Email)
			if err != nil {
				return err
			}
			if err := sender.Send(ctx, digest); err != nil {
				return err
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Outcome     pipeline.Outcome   `json:"outcome"`
			Opportunity *model.Opportunity `json:"opportunity,omitempty"`
			Digest      string             `json:"digest_subject"`
		}{result.Outcome, result.Opportunity, digest.Subject})
	},
}

// collectEvidence gathers the day's article and job-posting evidence. Job
// refresh failures degrade to the stored postings; article fetch failure is
// fatal since articles are the primary signal.
func collectEvidence(ctx context.Context, st store.Store, scoring scorer.Config) ([]model.EvidenceItem, []model.JobPosting, error) {
	health := fetcher.NewHealthTracker(cfg.Feeds.HealthStatePath, cfg.Feeds.FailureDisable)
	rss := fetcher.NewRSSFetcher(cfg.Feeds, health)

	articles, err := rss.FetchArticles(ctx)
	if err != nil {
		return nil, nil, eris.Wrap(err, "fetch articles")
	}
	if err := health.Save(); err != nil {
		zap.L().Warn("persist feed health state", zap.Error(err))
	}

	if cfg.Jobs.SerpAPIKey != "" {
		client := serpapi.NewClient(cfg.Jobs.SerpAPIKey, serpapi.WithRateLimit(cfg.Jobs.RatePerSec))
		jobs, err := fetcher.NewJobFetcher(client, cfg.Jobs, scoring).FetchJobs(ctx)
		if err != nil {
			zap.L().Warn("job refresh failed, continuing with stored postings", zap.Error(err))
		} else if err := st.UpsertJobPostings(ctx, jobs); err != nil {
			return nil, nil, eris.Wrap(err, "store job postings")
		}
	}

	stored, err := st.LoadJobPostings(ctx)
	if err != nil {
		return nil, nil, eris.Wrap(err, "load job postings")
	}
	fresh := dedupe.RetireStaleJobPostings(stored, cfg.Jobs.MaxAgeDays, time.Now())

	evidence := articles
	for _, job := range fresh {
		evidence = append(evidence, job.Evidence())
	}

	zap.L().Info("evidence collected",
		zap.Int("articles", len(articles)),
		zap.Int("job_postings", len(fresh)),
	)
	return evidence, fresh, nil
}

// snapshotStore copies history and known clients into an in-memory store so
// a dry run sees real dedupe state without writing anything back.
func snapshotStore(ctx context.Context, st store.Store) (store.Store, error) {
	history, err := st.LoadHistory(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot history")
	}
	clients, err := st.LoadKnownClients(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot known clients")
	}

	mem := store.NewMemory()
	for _, opp := range history {
		if err := mem.AppendHistory(ctx, opp); err != nil {
			return nil, eris.Wrap(err, "snapshot append")
		}
	}
	for _, c := range clients {
		if err := mem.AddKnownClient(ctx, c.Name); err != nil {
			return nil, eris.Wrap(err, "snapshot client")
		}
	}
	return mem, nil
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "analyze without persisting or emailing results")
	rootCmd.AddCommand(runCmd)
}
