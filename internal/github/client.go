package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/models"
)

const (
	// DefaultBaseURL is GitHub's public REST API root.
	DefaultBaseURL = "https://api.github.com"
	// DefaultTimeout bounds each page request.
	DefaultTimeout = 30 * time.Second
	// PageSize is the per_page value used when listing issues.
	PageSize = 100

	// createdAtLayout is the only accepted wire format for created_at.
	createdAtLayout = "2006-01-02T15:04:05Z"
)

// HTTPClient is the subset of *http.Client the fetcher needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a minimal wrapper around GitHub's REST API v3.
// It covers only the issue listing the scanner requires.
type Client struct {
	http    HTTPClient
	baseURL string
	token   string
	timeout time.Duration
	log     *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root (GitHub Enterprise, tests).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout overrides the per-page request budget.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l.Named("github") }
}

// NewClient returns a ready-to-use GitHub API client.
// token may be an empty string, but you will be subject to very low rate‑limits.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{},
		baseURL: DefaultBaseURL,
		token:   token,
		timeout: DefaultTimeout,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// issuePayload is one element of the list-issues response.
type issuePayload struct {
	Number      int             `json:"number"`
	Title       string          `json:"title"`
	Body        *string         `json:"body"`
	HTMLURL     string          `json:"html_url"`
	CreatedAt   string          `json:"created_at"`
	PullRequest json.RawMessage `json:"pull_request"`
}

// FetchAllOpenIssues pages through /repos/{owner}/{name}/issues until an
// empty page is returned. Pull requests are skipped. Any failure aborts the
// whole fetch; no partial result is returned.
func (c *Client) FetchAllOpenIssues(ctx context.Context, repo string) ([]models.Issue, error) {
	owner, name, ok := models.SplitRepo(repo)
	if !ok {
		return nil, &FetchError{Kind: KindInvalidRepoFormat, Repo: repo}
	}

	var all []models.Issue
	for page := 1; ; page++ {
		items, err := c.listPage(ctx, repo, owner, name, page)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			break
		}

		for _, it := range items {
			if it.PullRequest != nil {
				continue
			}
			issue, err := normalize(repo, it)
			if err != nil {
				return nil, err
			}
			all = append(all, issue)
		}
		c.log.Debug("fetched page",
			zap.String("repo", repo),
			zap.Int("page", page),
			zap.Int("items", len(items)),
			zap.Int("issues_so_far", len(all)))
	}

	c.log.Info("fetched open issues", zap.String("repo", repo), zap.Int("count", len(all)))
	return all, nil
}

// listPage fetches and decodes one page under its own timeout.
func (c *Client) listPage(ctx context.Context, repo, owner, name string, page int) ([]issuePayload, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := fmt.Sprintf("%s/repos/%s/%s/issues", c.baseURL, url.PathEscape(owner), url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Repo: repo, Err: err}
	}

	q := req.URL.Query()
	q.Set("state", "open")
	q.Set("per_page", strconv.Itoa(PageSize))
	q.Set("page", strconv.Itoa(page))
	req.URL.RawQuery = q.Encode()

	c.addHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(ctx, repo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, statusError(repo, resp.StatusCode, string(body))
	}

	var items []issuePayload
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		if ctx.Err() != nil {
			return nil, classifyTransport(ctx, repo, err)
		}
		return nil, &FetchError{Kind: KindUpstream, Repo: repo, StatusCode: resp.StatusCode,
			Body: "decode issues: " + err.Error(), Err: err}
	}
	return items, nil
}

// addHeaders sets authentication and Accept headers.
func (c *Client) addHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", "issue-scanner-api")
}

func normalize(repo string, it issuePayload) (models.Issue, error) {
	created, err := parseCreatedAt(it.CreatedAt)
	if err != nil {
		return models.Issue{}, &FetchError{Kind: KindUpstream, Repo: repo, StatusCode: http.StatusOK,
			Body: fmt.Sprintf("issue #%d: %v", it.Number, err), Err: err}
	}

	var body string
	if it.Body != nil {
		body = *it.Body
	}
	return models.Issue{
		Number:    it.Number,
		Title:     it.Title,
		Body:      body,
		URL:       it.HTMLURL,
		CreatedAt: created,
		Repo:      repo,
	}, nil
}

// parseCreatedAt accepts exactly YYYY-MM-DDTHH:MM:SSZ. time.Parse tolerates
// fractional seconds, so the length is checked as well.
func parseCreatedAt(s string) (time.Time, error) {
	if len(s) != len(createdAtLayout) {
		return time.Time{}, fmt.Errorf("invalid created_at %q", s)
	}
	t, err := time.Parse(createdAtLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid created_at %q: %w", s, err)
	}
	return t, nil
}

func statusError(repo string, code int, body string) *FetchError {
	switch code {
	case http.StatusNotFound:
		return &FetchError{Kind: KindNotFound, Repo: repo, StatusCode: code, Body: body}
	case http.StatusUnauthorized:
		return &FetchError{Kind: KindAuthFailed, Repo: repo, StatusCode: code, Body: body}
	case http.StatusForbidden:
		return &FetchError{Kind: KindRateLimitOrForbidden, Repo: repo, StatusCode: code, Body: body}
	default:
		return &FetchError{Kind: KindUpstream, Repo: repo, StatusCode: code, Body: body}
	}
}

// classifyTransport separates per-page timeouts from other transport failures.
func classifyTransport(ctx context.Context, repo string, err error) *FetchError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Kind: KindTimeout, Repo: repo, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &FetchError{Kind: KindTimeout, Repo: repo, Err: err}
	}
	return &FetchError{Kind: KindNetwork, Repo: repo, Err: err}
}
