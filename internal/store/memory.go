package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/dynamic-campus/leadgen-cli/internal/model"
)

// MemoryStore is an in-memory Store used in tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	history []model.Opportunity
	clients []model.KnownClient
	jobs    map[string]model.JobPosting

	// FailAppend makes AppendHistory error, for persistence-failure tests.
	FailAppend bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{jobs: map[string]model.JobPosting{}}
}

func (m *MemoryStore) LoadHistory(ctx context.Context) ([]model.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Opportunity, len(m.history))
	copy(out, m.history)
	return out, nil
}

func (m *MemoryStore) AppendHistory(ctx context.Context, opp model.Opportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAppend {
		return eris.New("memory: append disabled")
	}
	m.history = append(m.history, opp)
	return nil
}

func (m *MemoryStore) LoadKnownClients(ctx context.Context) ([]model.KnownClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.KnownClient, len(m.clients))
	copy(out, m.clients)
	return out, nil
}

func (m *MemoryStore) AddKnownClient(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return eris.New("memory: known client name is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clients {
		if strings.EqualFold(c.Name, name) {
			return nil
		}
	}
	m.clients = append(m.clients, model.KnownClient{Name: name})
	return nil
}

func (m *MemoryStore) LoadJobPostings(ctx context.Context) ([]model.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.JobPosting, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].DateScraped != out[k].DateScraped {
			return out[i].DateScraped > out[k].DateScraped
		}
		return out[i].JobID < out[k].JobID
	})
	return out, nil
}

func (m *MemoryStore) UpsertJobPostings(ctx context.Context, jobs []model.JobPosting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range jobs {
		m.jobs[j.JobID] = j
	}
	return nil
}

func (m *MemoryStore) Migrate(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
