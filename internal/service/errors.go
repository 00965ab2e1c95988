package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotScanned is returned by Analyze for a repository with no scan record.
	ErrNotScanned = errors.New("repository has not been scanned")
	// ErrNoIssues is returned by Analyze when the last scan cached zero issues.
	ErrNoIssues = errors.New("repository has no cached issues")
)

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AnalysisErrorKind tags failures from the generation provider.
type AnalysisErrorKind int

const (
	KindAnalysisAuthFailed AnalysisErrorKind = iota + 1
	KindRateLimited
	KindConnectionFailed
	KindProviderError
	KindUnexpected
)

func (k AnalysisErrorKind) String() string {
	switch k {
	case KindAnalysisAuthFailed:
		return "auth_failed"
	case KindRateLimited:
		return "rate_limited"
	case KindConnectionFailed:
		return "connection_failed"
	case KindProviderError:
		return "provider_error"
	case KindUnexpected:
		return "unexpected_error"
	default:
		return fmt.Sprintf("analysis_error(%d)", int(k))
	}
}

// AnalysisError is the single error type returned by AnalysisClient.
type AnalysisError struct {
	Kind    AnalysisErrorKind
	Message string // provider message for KindProviderError / KindUnexpected
	Err     error
}

func (e *AnalysisError) Error() string {
	switch e.Kind {
	case KindAnalysisAuthFailed:
		return "LLM authentication failed. Check your API credentials"
	case KindRateLimited:
		return "LLM API rate limit exceeded. Please try again later"
	case KindConnectionFailed:
		return "Failed to connect to LLM API. Check your network connection"
	case KindProviderError:
		return "LLM API error: " + e.Message
	default:
		return "Unexpected error during analysis: " + e.Message
	}
}

func (e *AnalysisError) Unwrap() error { return e.Err }
