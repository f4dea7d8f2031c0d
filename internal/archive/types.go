// Package archive keeps rendered interaction reports locally so a past check
// can be revisited after the assessment service has forgotten it.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ddi-checker/internal/domain"
)

// Supported drivers
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Record is one archived report: the drugs checked and the exact pairs and
// summary that were displayed.
type Record struct {
	ID          uuid.UUID            `json:"id" yaml:"id"`
	Drugs       []string             `json:"drugs" yaml:"drugs"`
	IsPediatric bool                 `json:"is_pediatric" yaml:"is_pediatric"`
	Summary     domain.SummaryResult `json:"summary" yaml:"summary"`
	Pairs       []domain.PairResult  `json:"pairs" yaml:"pairs"`
	CreatedAt   time.Time            `json:"created_at" yaml:"created_at"`
}

// NewRecord creates a record with a fresh id. Pairs and summary are deep-copied.
func NewRecord(drugs []string, isPediatric bool, summary domain.SummaryResult, pairs []domain.PairResult) *Record {
	return &Record{
		ID:          uuid.New(),
		Drugs:       append([]string{}, drugs...),
		IsPediatric: isPediatric,
		Summary:     summary.Clone(),
		Pairs:       domain.ClonePairs(pairs),
	}
}

// Store defines the interface for report archive operations.
type Store interface {
	// Save stores a record, replacing any record with the same id.
	// A zero ID or CreatedAt is filled in.
	Save(ctx context.Context, record *Record) error

	// Get retrieves a record by id. It returns nil, nil when absent.
	Get(ctx context.Context, id uuid.UUID) (*Record, error)

	// List returns records newest first with pagination.
	List(ctx context.Context, limit, offset int) ([]*Record, error)

	// Count returns the total number of records.
	Count(ctx context.Context) (int64, error)

	// Delete removes a record by id.
	Delete(ctx context.Context, id uuid.UUID) error

	// ExportJSON writes every record to writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// Close closes the store and releases resources.
	Close() error
}

// Export represents the JSON export format.
type Export struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Reports    []*Record `json:"reports"`
}

// maxExportLimit is the maximum number of records to export at once.
const maxExportLimit = 1000000

// Open selects a store from configuration. The "none" driver yields a nil store.
func Open(ctx context.Context, config domain.ArchiveConfig) (Store, error) {
	switch strings.ToLower(config.Driver) {
	case "", DriverNone:
		return nil, nil
	case DriverSQLite:
		store, err := NewSQLiteStore(config.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverPostgres:
		store, err := NewPostgresStoreFromURL(config.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported archive driver: %s", config.Driver)
	}
}

// encodedRecord holds the JSON columns of a record.
type encodedRecord struct {
	drugs   string
	summary string
	pairs   string
}

func encodeRecord(record *Record) (*encodedRecord, error) {
	drugs := record.Drugs
	if drugs == nil {
		drugs = []string{}
	}
	pairs := record.Pairs
	if pairs == nil {
		pairs = []domain.PairResult{}
	}

	d, err := json.Marshal(drugs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode drugs: %w", err)
	}
	s, err := json.Marshal(record.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}
	p, err := json.Marshal(pairs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pairs: %w", err)
	}
	return &encodedRecord{drugs: string(d), summary: string(s), pairs: string(p)}, nil
}

func (e *encodedRecord) decodeInto(record *Record) error {
	if err := json.Unmarshal([]byte(e.drugs), &record.Drugs); err != nil {
		return fmt.Errorf("failed to decode drugs: %w", err)
	}
	if err := json.Unmarshal([]byte(e.summary), &record.Summary); err != nil {
		return fmt.Errorf("failed to decode summary: %w", err)
	}
	if err := json.Unmarshal([]byte(e.pairs), &record.Pairs); err != nil {
		return fmt.Errorf("failed to decode pairs: %w", err)
	}
	return nil
}

// prepare fills in a missing id and creation time.
func prepare(record *Record) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord scans a row of id, drugs, is_pediatric, summary, pairs, created_at.
func scanRecord(s scanner) (*Record, error) {
	record := &Record{}
	var enc encodedRecord

	err := s.Scan(&record.ID, &enc.drugs, &record.IsPediatric, &enc.summary, &enc.pairs, &record.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := enc.decodeInto(record); err != nil {
		return nil, err
	}
	return record, nil
}

func writeExport(writer io.Writer, records []*Record) error {
	if records == nil {
		records = []*Record{}
	}
	export := &Export{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Count:      len(records),
		Reports:    records,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}
