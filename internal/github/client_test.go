package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient is a test double for HTTPClient.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

const pageOne = `[
	{"number": 1, "title": "Crash on start", "body": "stack trace", "html_url": "https://github.com/acme/widgets/issues/1", "created_at": "2024-01-02T03:04:05Z"},
	{"number": 2, "title": "Add dark mode", "body": null, "html_url": "https://github.com/acme/widgets/issues/2", "created_at": "2024-02-03T04:05:06Z"},
	{"number": 3, "title": "Bump deps", "body": "", "html_url": "https://github.com/acme/widgets/pull/3", "created_at": "2024-03-04T05:06:07Z", "pull_request": {"url": "x"}},
	{"number": 4, "title": "Docs typo", "html_url": "https://github.com/acme/widgets/issues/4", "created_at": "2024-04-05T06:07:08Z"}
]`

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchAllOpenIssues_PaginatesAndSkipsPullRequests(t *testing.T) {
	var pages []int
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/issues", r.URL.Path)
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		require.NoError(t, err)
		pages = append(pages, page)

		if page == 1 {
			fmt.Fprint(w, pageOne)
			return
		}
		fmt.Fprint(w, `[]`)
	})

	client := NewClient("test-token", WithBaseURL(srv.URL))
	issues, err := client.FetchAllOpenIssues(context.Background(), "acme/widgets")
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, pages)
	require.Len(t, issues, 3)
	assert.Equal(t, []int{1, 2, 4}, []int{issues[0].Number, issues[1].Number, issues[2].Number})

	assert.Equal(t, "Crash on start", issues[0].Title)
	assert.Equal(t, "stack trace", issues[0].Body)
	assert.Equal(t, "https://github.com/acme/widgets/issues/1", issues[0].URL)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), issues[0].CreatedAt)
	assert.Equal(t, "acme/widgets", issues[0].Repo)

	// null and missing bodies both normalize to "".
	assert.Equal(t, "", issues[1].Body)
	assert.Equal(t, "", issues[2].Body)
}

func TestFetchAllOpenIssues_KeepsUpstreamOrderAcrossPages(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `[{"number": 9, "title": "b", "html_url": "u9", "created_at": "2024-01-01T00:00:00Z"}]`)
		case "2":
			fmt.Fprint(w, `[{"number": 3, "title": "a", "html_url": "u3", "created_at": "2024-01-01T00:00:00Z"}]`)
		default:
			fmt.Fprint(w, `[]`)
		}
	})

	issues, err := NewClient("", WithBaseURL(srv.URL)).FetchAllOpenIssues(context.Background(), "o/r")
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, 9, issues[0].Number)
	assert.Equal(t, 3, issues[1].Number)
}

func TestFetchAllOpenIssues_OnlyPullRequestsYieldsEmpty(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `[{"number": 5, "title": "pr", "html_url": "u", "created_at": "2024-01-01T00:00:00Z", "pull_request": null}]`)
			return
		}
		fmt.Fprint(w, `[]`)
	})

	issues, err := NewClient("", WithBaseURL(srv.URL)).FetchAllOpenIssues(context.Background(), "o/r")
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestFetchAllOpenIssues_InvalidRepoMakesNoRequest(t *testing.T) {
	var calls int32
	mock := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("unexpected call")
	}}
	client := NewClient("t", WithHTTPClient(mock))

	for _, repo := range []string{"", "noSlash", "a/b/c", "/name", "owner/"} {
		_, err := client.FetchAllOpenIssues(context.Background(), repo)

		var fe *FetchError
		require.ErrorAs(t, err, &fe, "repo %q", repo)
		assert.Equal(t, KindInvalidRepoFormat, fe.Kind, "repo %q", repo)
	}
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestFetchAllOpenIssues_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		kind   FetchErrorKind
	}{
		{http.StatusNotFound, KindNotFound},
		{http.StatusUnauthorized, KindAuthFailed},
		{http.StatusForbidden, KindRateLimitOrForbidden},
		{http.StatusInternalServerError, KindUpstream},
		{http.StatusUnprocessableEntity, KindUpstream},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"message":"nope"}`)
			})

			issues, err := NewClient("t", WithBaseURL(srv.URL)).FetchAllOpenIssues(context.Background(), "acme/widgets")
			assert.Nil(t, issues)

			var fe *FetchError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.kind, fe.Kind)
			assert.Equal(t, tt.status, fe.StatusCode)
		})
	}
}

func TestFetchAllOpenIssues_UpstreamErrorCarriesBody(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "bad gateway")
	})

	_, err := NewClient("t", WithBaseURL(srv.URL)).FetchAllOpenIssues(context.Background(), "acme/widgets")
	require.Error(t, err)
	assert.Equal(t, "GitHub API error: 502 - bad gateway", err.Error())
}

func TestFetchAllOpenIssues_ErrorOnLaterPageDiscardsEarlierPages(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, pageOne)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	})

	issues, err := NewClient("t", WithBaseURL(srv.URL)).FetchAllOpenIssues(context.Background(), "acme/widgets")
	assert.Nil(t, issues)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindRateLimitOrForbidden, fe.Kind)
}

func TestFetchAllOpenIssues_StrictCreatedAt(t *testing.T) {
	for _, ts := range []string{"2024-01-02T03:04:05.123Z", "2024-01-02T03:04:05+00:00", "2024-01-02"} {
		t.Run(ts, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `[{"number": 1, "title": "t", "html_url": "u", "created_at": %q}]`, ts)
			})

			_, err := NewClient("t", WithBaseURL(srv.URL)).FetchAllOpenIssues(context.Background(), "acme/widgets")

			var fe *FetchError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, KindUpstream, fe.Kind)
		})
	}
}

func TestFetchAllOpenIssues_Timeout(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	client := NewClient("t", WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))
	_, err := client.FetchAllOpenIssues(context.Background(), "acme/widgets")

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindTimeout, fe.Kind)
}

func TestFetchAllOpenIssues_NetworkError(t *testing.T) {
	mock := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}}

	_, err := NewClient("t", WithHTTPClient(mock)).FetchAllOpenIssues(context.Background(), "acme/widgets")

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindNetwork, fe.Kind)
	assert.Contains(t, err.Error(), "connection refused")
}
