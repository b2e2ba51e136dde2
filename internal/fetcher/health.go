package fetcher

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// feedStatus tracks one feed's recent reliability.
type feedStatus struct {
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastSuccess         time.Time `json:"last_success,omitempty"`
	LastError           string    `json:"last_error,omitempty"`
	Disabled            bool      `json:"disabled"`
}

// HealthTracker records per-feed fetch outcomes and disables feeds that fail
// too many times in a row. State persists across runs as a small JSON file so
// a dead feed stays disabled until someone re-enables it.
type HealthTracker struct {
	mu        sync.Mutex
	path      string
	threshold int
	feeds     map[string]*feedStatus
}

// NewHealthTracker loads feed health state from path. A missing file starts
// fresh; a corrupt file is discarded with a warning.
func NewHealthTracker(path string, disableThreshold int) *HealthTracker {
	t := &HealthTracker{
		path:      path,
		threshold: disableThreshold,
		feeds:     map[string]*feedStatus{},
	}
	if disableThreshold <= 0 {
		t.threshold = 5
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.S().Warnw("feed health state unreadable, starting fresh", "path", path, "error", err)
		}
		return t
	}
	if err := json.Unmarshal(data, &t.feeds); err != nil {
		zap.S().Warnw("feed health state corrupt, starting fresh", "path", path, "error", err)
		t.feeds = map[string]*feedStatus{}
	}
	return t
}

// Enabled reports whether a feed should be fetched this run.
func (t *HealthTracker) Enabled(feedURL string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.feeds[feedURL]
	return !ok || !st.Disabled
}

// RecordSuccess resets a feed's failure streak.
func (t *HealthTracker) RecordSuccess(feedURL string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.status(feedURL)
	st.ConsecutiveFailures = 0
	st.LastSuccess = time.Now().UTC()
	st.LastError = ""
	st.Disabled = false
}

// RecordFailure increments a feed's failure streak and disables the feed once
// the streak reaches the threshold.
func (t *HealthTracker) RecordFailure(feedURL string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.status(feedURL)
	st.ConsecutiveFailures++
	st.LastError = err.Error()
	if st.ConsecutiveFailures >= t.threshold && !st.Disabled {
		st.Disabled = true
		zap.S().Warnw("disabling unhealthy feed",
			"feed", feedURL,
			"consecutive_failures", st.ConsecutiveFailures,
		)
	}
}

// Save writes the health state back to disk.
func (t *HealthTracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	data, err := json.MarshalIndent(t.feeds, "", "  ")
	if err != nil {
		return eris.Wrap(err, "fetcher: marshal feed health")
	}
	return eris.Wrapf(os.WriteFile(t.path, data, 0o644), "fetcher: write feed health %s", t.path)
}

func (t *HealthTracker) status(feedURL string) *feedStatus {
	st, ok := t.feeds[feedURL]
	if !ok {
		st = &feedStatus{}
		t.feeds[feedURL] = st
	}
	return st
}
