package domain

import (
	"context"
)

// AssessmentAPI is the remote risk-assessment service as seen by the workflow
type AssessmentAPI interface {
	Submit(ctx context.Context, payload *RequestPayload) (*AssessmentResponse, error)
	FetchHistory(ctx context.Context) ([]HistoryItem, error)
	ExportCSV(ctx context.Context, pairs []PairResult) (*ExportFile, error)
	ExportPDF(ctx context.Context, pairs []PairResult, summary SummaryResult) (*ExportFile, error)
}

// SuggestionAPI looks up drug names matching a partial query
type SuggestionAPI interface {
	Suggest(ctx context.Context, query string) ([]string, error)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetAPIConfig() *APIConfig
	GetCacheConfig() *CacheConfig
	GetArchiveConfig() *ArchiveConfig
	Validate() error
}
