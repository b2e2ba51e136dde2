package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dynamic-campus/leadgen-cli/internal/config"
	"github.com/dynamic-campus/leadgen-cli/internal/oracle"
	"github.com/dynamic-campus/leadgen-cli/internal/scorer"
	"github.com/dynamic-campus/leadgen-cli/internal/store"
	anthropicpkg "github.com/dynamic-campus/leadgen-cli/pkg/anthropic"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "leadgen-cli",
	Short: "Higher-ed IT lead generation pipeline",
	Long:  "Aggregates higher-education news and hiring signals, clusters them by institution, classifies opportunities via Claude, and emits at most one scored lead per day.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore opens the SQLite store and applies migrations.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// loadScoring returns the scoring keyword tables, applying the configured
// rules file when one is set.
func loadScoring() (scorer.Config, error) {
	if cfg.Scoring.RulesPath == "" {
		return scorer.DefaultConfig(), nil
	}
	scoring, err := scorer.LoadConfig(cfg.Scoring.RulesPath)
	if err != nil {
		return scorer.Config{}, eris.Wrap(err, "load scoring rules")
	}
	if err := scoring.Validate(); err != nil {
		return scorer.Config{}, eris.Wrap(err, "validate scoring rules")
	}
	return scoring, nil
}

// newOracle builds the Claude-backed classifier from configuration.
func newOracle() (oracle.Classifier, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic.key not configured (LEADGEN_ANTHROPIC_KEY)")
	}
	return oracle.New(anthropicpkg.NewClient(cfg.Anthropic.Key), oracle.Options{
		Model:       cfg.Anthropic.Model,
		MaxTokens:   cfg.Anthropic.MaxTokens,
		CallTimeout: time.Duration(cfg.Anthropic.CallTimeoutSecs) * time.Second,
	}), nil
}
