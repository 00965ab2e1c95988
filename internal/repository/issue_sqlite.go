package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS scans (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	repo         TEXT    NOT NULL UNIQUE,
	scanned_at   TEXT    NOT NULL,
	issues_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS issues (
	pk         INTEGER PRIMARY KEY AUTOINCREMENT,
	number     INTEGER NOT NULL,
	title      TEXT    NOT NULL,
	body       TEXT,
	html_url   TEXT    NOT NULL,
	created_at TEXT    NOT NULL,
	repo       TEXT    NOT NULL,
	UNIQUE (number, repo)
);

CREATE INDEX IF NOT EXISTS idx_issues_repo ON issues (repo);
`

// IssueSQLite is the relational issue cache backed by SQLite.
type IssueSQLite struct {
	db  *sql.DB
	now func() time.Time
	log *zap.Logger
}

// NewIssueSQLite creates the tables if they are missing and returns the cache.
func NewIssueSQLite(ctx context.Context, db *sql.DB, logger *zap.Logger) (*IssueSQLite, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, storageErr("init_schema", "", err)
	}
	return &IssueSQLite{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
		log: logger.Named("issue_repository"),
	}, nil
}

// ReplaceIssues swaps the cached issue set for repo and upserts its scan
// record in a single transaction.
func (r *IssueSQLite) ReplaceIssues(ctx context.Context, repo string, issues []models.Issue) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storageErr("replace_issues", repo, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM issues WHERE repo = ?`, repo); err != nil {
		return 0, storageErr("replace_issues", repo, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO issues (number, title, body, html_url, created_at, repo)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, storageErr("replace_issues", repo, err)
	}
	defer stmt.Close()

	for _, is := range issues {
		if _, err := stmt.ExecContext(ctx,
			is.Number, is.Title, is.Body, is.URL, formatTime(is.CreatedAt), repo); err != nil {
			return 0, storageErr("replace_issues", repo, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO scans (repo, scanned_at, issues_count) VALUES (?, ?, ?)
		ON CONFLICT (repo) DO UPDATE SET
			scanned_at = excluded.scanned_at,
			issues_count = excluded.issues_count`,
		repo, formatTime(r.now()), len(issues)); err != nil {
		return 0, storageErr("replace_issues", repo, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, storageErr("replace_issues", repo, err)
	}

	r.log.Info("replaced cached issues", zap.String("repo", repo), zap.Int("count", len(issues)))
	return len(issues), nil
}

// GetIssues returns every cached issue for repo in insertion order.
func (r *IssueSQLite) GetIssues(ctx context.Context, repo string) ([]models.Issue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT number, title, COALESCE(body, ''), html_url, created_at, repo
		FROM issues WHERE repo = ? ORDER BY pk`, repo)
	if err != nil {
		return nil, storageErr("get_issues", repo, err)
	}
	defer rows.Close()

	var issues []models.Issue
	for rows.Next() {
		var (
			is      models.Issue
			created string
		)
		if err := rows.Scan(&is.Number, &is.Title, &is.Body, &is.URL, &created, &is.Repo); err != nil {
			return nil, storageErr("get_issues", repo, err)
		}
		if is.CreatedAt, err = parseTime(created); err != nil {
			return nil, storageErr("get_issues", repo, err)
		}
		issues = append(issues, is)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get_issues", repo, err)
	}
	return issues, nil
}

// IsScanned reports whether repo has a scan record, regardless of how many
// issues it holds.
func (r *IssueSQLite) IsScanned(ctx context.Context, repo string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM scans WHERE repo = ?`, repo).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storageErr("is_scanned", repo, err)
	}
	return true, nil
}

// FindScan returns the scan record for repo.
// When the repo was never scanned it returns an empty record and a nil error.
func (r *IssueSQLite) FindScan(ctx context.Context, repo string) (models.ScanRecord, error) {
	var (
		rec     models.ScanRecord
		scanned string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT repo, scanned_at, issues_count FROM scans WHERE repo = ?`, repo).
		Scan(&rec.Repo, &scanned, &rec.IssuesCount)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ScanRecord{}, nil
	}
	if err != nil {
		return models.ScanRecord{}, storageErr("find_scan", repo, err)
	}
	if rec.ScannedAt, err = parseTime(scanned); err != nil {
		return models.ScanRecord{}, storageErr("find_scan", repo, err)
	}
	return rec, nil
}

// Ping checks the database connection.
func (r *IssueSQLite) Ping(ctx context.Context) error {
	return storageErr("ping", "", r.db.PingContext(ctx))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
