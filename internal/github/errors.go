package github

import "fmt"

// FetchErrorKind tags every failure FetchAllOpenIssues can return.
type FetchErrorKind int

const (
	KindInvalidRepoFormat FetchErrorKind = iota + 1
	KindNotFound
	KindAuthFailed
	KindRateLimitOrForbidden
	KindUpstream
	KindTimeout
	KindNetwork
)

func (k FetchErrorKind) String() string {
	switch k {
	case KindInvalidRepoFormat:
		return "invalid_repo_format"
	case KindNotFound:
		return "not_found"
	case KindAuthFailed:
		return "auth_failed"
	case KindRateLimitOrForbidden:
		return "rate_limit_or_forbidden"
	case KindUpstream:
		return "upstream_error"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network_error"
	default:
		return fmt.Sprintf("fetch_error(%d)", int(k))
	}
}

// FetchError is the single error type returned by the fetcher.
type FetchError struct {
	Kind       FetchErrorKind
	Repo       string
	StatusCode int    // set for HTTP status failures
	Body       string // upstream body or decode detail
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindInvalidRepoFormat:
		return fmt.Sprintf("Invalid repo format: %s. Expected 'owner/repository'", e.Repo)
	case KindNotFound:
		return fmt.Sprintf("Repository '%s' not found on GitHub", e.Repo)
	case KindAuthFailed:
		return "GitHub authentication failed. Check your GITHUB_TOKEN"
	case KindRateLimitOrForbidden:
		return "GitHub API rate limit exceeded or access forbidden"
	case KindUpstream:
		return fmt.Sprintf("GitHub API error: %d - %s", e.StatusCode, e.Body)
	case KindTimeout:
		return "GitHub API request timed out. Please try again later"
	case KindNetwork:
		if e.Err != nil {
			return "Network error while connecting to GitHub API: " + e.Err.Error()
		}
		return "Network error while connecting to GitHub API"
	default:
		return "github: " + e.Kind.String()
	}
}

func (e *FetchError) Unwrap() error { return e.Err }
