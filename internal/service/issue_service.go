package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/models"
)

// ---- Collaborator contracts -------------------------------------------------

// IssueFetcher pulls every open issue of a repository from GitHub.
type IssueFetcher interface {
	FetchAllOpenIssues(ctx context.Context, repo string) ([]models.Issue, error)
}

// IssueCache persists issues and scan records per repository.
type IssueCache interface {
	ReplaceIssues(ctx context.Context, repo string, issues []models.Issue) (int, error)
	GetIssues(ctx context.Context, repo string) ([]models.Issue, error)
	IsScanned(ctx context.Context, repo string) (bool, error)
	FindScan(ctx context.Context, repo string) (models.ScanRecord, error)
}

// IssueAnalyzer produces LLM output for a set of issues.
type IssueAnalyzer interface {
	Analyze(ctx context.Context, issues []models.Issue, instruction string) (string, error)
}

// ---- Service interface + implementation ------------------------------------

// IssueService scans repositories into the cache and analyzes cached issues.
type IssueService interface {
	Scan(ctx context.Context, repo string) (models.ScanResult, error)
	Analyze(ctx context.Context, repo, instruction string) (models.AnalysisResult, error)
	GetScan(ctx context.Context, repo string) (models.ScanRecord, error)
	ListIssues(ctx context.Context, repo string) ([]models.Issue, error)
}

type issueService struct {
	fetcher  IssueFetcher
	cache    IssueCache
	analyzer IssueAnalyzer
	scans    singleflight.Group
	log      *zap.Logger
}

// NewIssueService wires dependencies.
func NewIssueService(fetcher IssueFetcher, cache IssueCache, analyzer IssueAnalyzer, logger *zap.Logger) IssueService {
	return &issueService{
		fetcher:  fetcher,
		cache:    cache,
		analyzer: analyzer,
		log:      logger.Named("issue_service"),
	}
}

// Scan fetches every open issue and replaces the cached set. Concurrent scans
// of the same repository share one fetch. On any failure the cache is left
// as it was.
func (s *issueService) Scan(ctx context.Context, repo string) (models.ScanResult, error) {
	repo, err := ValidateRepo(repo)
	if err != nil {
		return models.ScanResult{}, err
	}

	v, err, shared := s.scans.Do(repo, func() (interface{}, error) {
		issues, err := s.fetcher.FetchAllOpenIssues(ctx, repo)
		if err != nil {
			return 0, err
		}
		return s.cache.ReplaceIssues(ctx, repo, issues)
	})
	if err != nil {
		s.log.Warn("scan failed", zap.String("repo", repo), zap.Error(err))
		return models.ScanResult{}, err
	}

	count := v.(int)
	s.log.Info("scan complete", zap.String("repo", repo), zap.Int("issues", count), zap.Bool("shared", shared))
	return models.ScanResult{Repo: repo, IssuesFetched: count, Cached: true}, nil
}

// Analyze runs the LLM over the cached issues of a scanned repository.
func (s *issueService) Analyze(ctx context.Context, repo, instruction string) (models.AnalysisResult, error) {
	repo, err := ValidateRepo(repo)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return models.AnalysisResult{}, &ValidationError{Field: "prompt", Message: "Prompt cannot be empty"}
	}

	scanned, err := s.cache.IsScanned(ctx, repo)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	if !scanned {
		return models.AnalysisResult{}, ErrNotScanned
	}

	issues, err := s.cache.GetIssues(ctx, repo)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	if len(issues) == 0 {
		return models.AnalysisResult{}, ErrNoIssues
	}

	text, err := s.analyzer.Analyze(ctx, issues, instruction)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	return models.AnalysisResult{Analysis: text}, nil
}

// GetScan returns the scan record, or ErrNotScanned.
func (s *issueService) GetScan(ctx context.Context, repo string) (models.ScanRecord, error) {
	repo, err := ValidateRepo(repo)
	if err != nil {
		return models.ScanRecord{}, err
	}
	rec, err := s.cache.FindScan(ctx, repo)
	if err != nil {
		return models.ScanRecord{}, err
	}
	if rec.Repo == "" {
		return models.ScanRecord{}, ErrNotScanned
	}
	return rec, nil
}

// ListIssues returns the cached issues of a scanned repository.
func (s *issueService) ListIssues(ctx context.Context, repo string) ([]models.Issue, error) {
	repo, err := ValidateRepo(repo)
	if err != nil {
		return nil, err
	}
	scanned, err := s.cache.IsScanned(ctx, repo)
	if err != nil {
		return nil, err
	}
	if !scanned {
		return nil, ErrNotScanned
	}
	issues, err := s.cache.GetIssues(ctx, repo)
	if err != nil {
		return nil, err
	}
	if issues == nil {
		issues = []models.Issue{}
	}
	return issues, nil
}

// ValidateRepo trims repo and checks the owner/name shape.
func ValidateRepo(repo string) (string, error) {
	repo = strings.TrimSpace(repo)
	if repo == "" {
		return "", &ValidationError{Field: "repo", Message: "Repository name cannot be empty"}
	}
	if _, _, ok := models.SplitRepo(repo); !ok {
		return "", &ValidationError{Field: "repo", Message: "Repository must be in format 'owner/repository'"}
	}
	return repo, nil
}
