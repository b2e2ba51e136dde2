package fetcher

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dynamic-campus/leadgen-cli/internal/config"
	"github.com/dynamic-campus/leadgen-cli/internal/scorer"
	"github.com/dynamic-campus/leadgen-cli/pkg/serpapi"
)

type mockSerpAPI struct {
	mock.Mock
}

func (m *mockSerpAPI) SearchJobs(ctx context.Context, query string, num int) ([]serpapi.JobResult, error) {
	args := m.Called(ctx, query, num)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]serpapi.JobResult), args.Error(1)
}

func newTestJobFetcher(client serpapi.Client, queries []string) *JobFetcher {
	f := NewJobFetcher(client, config.JobsConfig{Queries: queries, MaxPerQuery: 10}, scorer.DefaultConfig())
	f.now = func() time.Time { return time.Date(2026, 6, 15, 8, 0, 0, 0, time.UTC) }
	return f
}

func TestFetchJobs(t *testing.T) {
	t.Run("filters non-institutional employers", func(t *testing.T) {
		client := &mockSerpAPI{}
		client.On("SearchJobs", mock.Anything, "university CIO", 10).Return([]serpapi.JobResult{
			{Title: "CIO", CompanyName: "Acme State University", Description: "Lead campus IT.", Via: "via LinkedIn"},
			{Title: "CIO", CompanyName: "TechStaff Recruiting LLC", Description: "Our client seeks a CIO."},
		}, nil)

		jobs, err := newTestJobFetcher(client, []string{"university CIO"}).FetchJobs(context.Background())
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "Acme State University", jobs[0].Company)
		assert.Equal(t, "2026-06-15", jobs[0].DateScraped)
		assert.Equal(t, "LinkedIn", jobs[0].Source)
		assert.Greater(t, jobs[0].ConfidenceScore, 0.0)
	})

	t.Run("duplicate postings collapse across queries", func(t *testing.T) {
		result := []serpapi.JobResult{
			{Title: "IT Director", CompanyName: "Bayside College", Description: "Run the IT department."},
		}
		client := &mockSerpAPI{}
		client.On("SearchJobs", mock.Anything, "q1", 10).Return(result, nil)
		client.On("SearchJobs", mock.Anything, "q2", 10).Return(result, nil)

		jobs, err := newTestJobFetcher(client, []string{"q1", "q2"}).FetchJobs(context.Background())
		require.NoError(t, err)
		assert.Len(t, jobs, 1)
	})

	t.Run("failed query skipped", func(t *testing.T) {
		client := &mockSerpAPI{}
		client.On("SearchJobs", mock.Anything, "q1", 10).Return(nil, errors.New("quota exceeded"))
		client.On("SearchJobs", mock.Anything, "q2", 10).Return([]serpapi.JobResult{
			{Title: "CISO", CompanyName: "Zenith Institute", Description: "Own security."},
		}, nil)

		jobs, err := newTestJobFetcher(client, []string{"q1", "q2"}).FetchJobs(context.Background())
		require.NoError(t, err)
		assert.Len(t, jobs, 1)
	})

	t.Run("long descriptions truncated for storage", func(t *testing.T) {
		client := &mockSerpAPI{}
		client.On("SearchJobs", mock.Anything, "q1", 10).Return([]serpapi.JobResult{
			{Title: "CIO", CompanyName: "Acme State University", Description: strings.Repeat("responsibilities. ", 200)},
		}, nil)

		jobs, err := newTestJobFetcher(client, []string{"q1"}).FetchJobs(context.Background())
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.LessOrEqual(t, len(jobs[0].Description), maxStoredDescription)
		assert.LessOrEqual(t, len(jobs[0].Summary), 300)
	})
}

func TestSummarizeDescription(t *testing.T) {
	assert.Equal(t, "", summarizeDescription("  "))
	assert.Equal(t, "One sentence only.", summarizeDescription("One sentence only."))
	assert.Equal(t, "First. Second.", summarizeDescription("First. Second. Third."))
}

func TestIsHigherEdEmployer(t *testing.T) {
	assert.True(t, isHigherEdEmployer("Acme State University"))
	assert.True(t, isHigherEdEmployer("Bayside Community College"))
	assert.False(t, isHigherEdEmployer("Initech Corporation"))
}
