package models

import (
	"strings"
	"time"
)

// Issue is one open GitHub issue cached for a repository.
// (Number, Repo) is unique within the cache.
type Issue struct {
	Number    int       `json:"number"     bson:"number"`
	Title     string    `json:"title"      bson:"title"`
	Body      string    `json:"body"       bson:"body"`
	URL       string    `json:"html_url"   bson:"html_url"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Repo      string    `json:"repo"       bson:"repo"` // "owner/name"
}

// ScanRecord tracks the most recent successful scan of a repository.
type ScanRecord struct {
	Repo        string    `json:"repo"         bson:"_id"`
	ScannedAt   time.Time `json:"scanned_at"   bson:"scanned_at"`
	IssuesCount int       `json:"issues_count" bson:"issues_count"`
}

// SplitRepo splits "owner/name" into its two parts. ok is false unless the
// identifier has exactly two non-empty slash-separated segments.
func SplitRepo(repo string) (owner, name string, ok bool) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
