// Package store owns persistence for lead history, the known-client
// exclusion list, and scraped job postings. History is append-only: the
// pipeline reads it for deduplication and appends exactly one record per
// run, never updating in place.
package store

import (
	"context"

	"github.com/dynamic-campus/leadgen-cli/internal/model"
)

// Store defines the persistence interface for the lead pipeline.
type Store interface {
	// Lead history (append-only)
	LoadHistory(ctx context.Context) ([]model.Opportunity, error)
	AppendHistory(ctx context.Context, opp model.Opportunity) error

	// Known-client exclusion list
	LoadKnownClients(ctx context.Context) ([]model.KnownClient, error)
	AddKnownClient(ctx context.Context, name string) error

	// Job postings (refreshed snapshot, upsert by job_id)
	LoadJobPostings(ctx context.Context) ([]model.JobPosting, error)
	UpsertJobPostings(ctx context.Context, jobs []model.JobPosting) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
