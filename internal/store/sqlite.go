package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/dynamic-campus/leadgen-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id              TEXT PRIMARY KEY,
	lead_id         TEXT NOT NULL,
	institution     TEXT NOT NULL,
	summary         TEXT NOT NULL,
	lead_type       TEXT NOT NULL,
	engagement_tier TEXT NOT NULL,
	confidence      REAL NOT NULL,
	sources         TEXT NOT NULL,
	date_identified TEXT NOT NULL,
	is_fallback     INTEGER NOT NULL DEFAULT 0,
	notes           TEXT,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS known_clients (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL UNIQUE COLLATE NOCASE,
	added_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS job_postings (
	id           TEXT PRIMARY KEY,
	job_id       TEXT NOT NULL UNIQUE,
	title        TEXT NOT NULL,
	company      TEXT NOT NULL,
	summary      TEXT,
	description  TEXT,
	location     TEXT,
	url          TEXT,
	source       TEXT,
	confidence   REAL NOT NULL DEFAULT 0,
	date_scraped TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_institution ON leads(institution COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_leads_lead_type ON leads(lead_type);
CREATE INDEX IF NOT EXISTS idx_job_postings_company ON job_postings(company);
CREATE INDEX IF NOT EXISTS idx_job_postings_date_scraped ON job_postings(date_scraped);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadHistory(ctx context.Context) ([]model.Opportunity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lead_id, institution, summary, lead_type, engagement_tier,
		        confidence, sources, date_identified, is_fallback, COALESCE(notes, '')
		 FROM leads ORDER BY created_at, rowid`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load history")
	}
	defer rows.Close()

	var history []model.Opportunity
	for rows.Next() {
		var opp model.Opportunity
		var sourcesJSON string
		var fallback int
		if err := rows.Scan(
			&opp.LeadID, &opp.Institution, &opp.OpportunitySummary,
			&opp.LeadType, &opp.EngagementTier, &opp.ConfidenceScore,
			&sourcesJSON, &opp.DateIdentified, &fallback, &opp.Notes,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		if err := json.Unmarshal([]byte(sourcesJSON), &opp.Sources); err != nil {
			return nil, eris.Wrapf(err, "sqlite: decode sources for lead %s", opp.LeadID)
		}
		opp.IsFallback = fallback != 0
		history = append(history, opp)
	}
	return history, eris.Wrap(rows.Err(), "sqlite: load history iterate")
}

func (s *SQLiteStore) AppendHistory(ctx context.Context, opp model.Opportunity) error {
	sourcesJSON, err := json.Marshal(opp.Sources)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal sources")
	}

	fallback := 0
	if opp.IsFallback {
		fallback = 1
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leads (id, lead_id, institution, summary, lead_type,
		                    engagement_tier, confidence, sources, date_identified,
		                    is_fallback, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), opp.LeadID, opp.Institution, opp.OpportunitySummary,
		string(opp.LeadType), string(opp.EngagementTier), opp.ConfidenceScore,
		string(sourcesJSON), opp.DateIdentified, fallback, opp.Notes,
		time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: append lead %s", opp.LeadID)
}

func (s *SQLiteStore) LoadKnownClients(ctx context.Context) ([]model.KnownClient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM known_clients ORDER BY name COLLATE NOCASE`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load known clients")
	}
	defer rows.Close()

	var clients []model.KnownClient
	for rows.Next() {
		var c model.KnownClient
		if err := rows.Scan(&c.Name); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan known client")
		}
		clients = append(clients, c)
	}
	return clients, eris.Wrap(rows.Err(), "sqlite: load known clients iterate")
}

func (s *SQLiteStore) AddKnownClient(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return eris.New("sqlite: known client name is empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO known_clients (id, name, added_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO NOTHING`,
		uuid.New().String(), name, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: add known client %s", name)
}

func (s *SQLiteStore) LoadJobPostings(ctx context.Context) ([]model.JobPosting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT job_id, title, company, COALESCE(summary, ''), COALESCE(description, ''),
		        COALESCE(location, ''), COALESCE(url, ''), COALESCE(source, ''),
		        confidence, date_scraped
		 FROM job_postings ORDER BY date_scraped DESC, job_id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load job postings")
	}
	defer rows.Close()

	var jobs []model.JobPosting
	for rows.Next() {
		var j model.JobPosting
		if err := rows.Scan(
			&j.JobID, &j.Title, &j.Company, &j.Summary, &j.Description,
			&j.Location, &j.URL, &j.Source, &j.ConfidenceScore, &j.DateScraped,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan job posting")
		}
		jobs = append(jobs, j)
	}
	return jobs, eris.Wrap(rows.Err(), "sqlite: load job postings iterate")
}

func (s *SQLiteStore) UpsertJobPostings(ctx context.Context, jobs []model.JobPosting) error {
	if len(jobs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin upsert")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO job_postings (id, job_id, title, company, summary, description,
		                           location, url, source, confidence, date_scraped, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(job_id) DO UPDATE SET
		   title = excluded.title,
		   company = excluded.company,
		   summary = excluded.summary,
		   description = excluded.description,
		   location = excluded.location,
		   url = excluded.url,
		   source = excluded.source,
		   confidence = excluded.confidence,
		   date_scraped = excluded.date_scraped`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, j := range jobs {
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(), j.JobID, j.Title, j.Company, j.Summary,
			j.Description, j.Location, j.URL, j.Source, j.ConfidenceScore,
			j.DateScraped, now,
		); err != nil {
			return eris.Wrapf(err, "sqlite: upsert job %s", j.JobID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit upsert")
}
