package models

// ScanRequest is the payload for POST /scan.
type ScanRequest struct {
	Repo string `json:"repo"` // "owner/name"
}

// AnalyzeRequest is the payload for POST /analyze.
type AnalyzeRequest struct {
	Repo   string `json:"repo"`
	Prompt string `json:"prompt"` // free-form instruction passed verbatim to the LLM
}

// ScanResult is returned once a scan has replaced the cached issues.
type ScanResult struct {
	Repo          string `json:"repo"`
	IssuesFetched int    `json:"issues_fetched"`
	Cached        bool   `json:"cached_successfully"`
}

// AnalysisResult carries the generated text for POST /analyze.
type AnalysisResult struct {
	Analysis string `json:"analysis"`
}
