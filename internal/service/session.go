package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ddi-checker/internal/archive"
	"github.com/ddi-checker/internal/domain"
	"github.com/ddi-checker/internal/logging"
	"github.com/ddi-checker/internal/metrics"
)

var (
	// ErrSubmitInFlight is returned when a submission is already awaiting a response.
	ErrSubmitInFlight = errors.New("a submission is already in progress")

	// ErrNoReport is returned when exporting before any report was rendered.
	ErrNoReport = errors.New("no report to export")
)

// Session owns the state of one interaction check workflow: the entry list,
// the patient attributes, the current report and the history panel. It is
// the single writer of the display model.
type Session struct {
	mu sync.Mutex

	api      domain.AssessmentAPI
	renderer *Renderer
	archive  archive.Store
	logger   *logrus.Logger

	entries  *EntryList
	patient  domain.PatientContext
	current  *DisplayModel
	history  HistoryView
	inFlight bool
}

// NewSession creates a session with two empty entries. store may be nil to
// disable archiving; a nil logger discards output.
func NewSession(api domain.AssessmentAPI, renderer *Renderer, store archive.Store, logger *logrus.Logger) *Session {
	if renderer == nil {
		renderer = NewRenderer(DefaultHistoryLimit)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{
		api:      api,
		renderer: renderer,
		archive:  store,
		logger:   logger,
		entries:  NewEntryList(),
		history:  HistoryView{Items: []HistoryEntryView{}},
	}
}

// Submit validates the current entries, sends them for assessment and renders
// the result. Validation failures return before any request. A request error
// discards the previous report. On success the history panel is refreshed
// after the report has been rendered. The returned model is a copy; exports
// always use the session's own.
func (s *Session) Submit(ctx context.Context) (*DisplayModel, error) {
	s.mu.Lock()
	payload, err := BuildRequest(s.entries, s.patient)
	if err != nil {
		s.mu.Unlock()
		s.logger.WithError(err).Info("Submission rejected by validation")
		return nil, err
	}
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	s.inFlight = true
	s.mu.Unlock()

	metrics.SubmissionsInFlight.Inc()
	defer func() {
		metrics.SubmissionsInFlight.Dec()
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	started := time.Now()
	s.logger.WithField("drugs", payload.DrugNames()).Debug("Submitting interaction check")

	resp, err := s.api.Submit(ctx, payload)
	if err != nil {
		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()

		s.logger.WithFields(logrus.Fields{
			"drugs":    len(payload.Drugs),
			"duration": time.Since(started),
			"error":    err.Error(),
		}).Warn("Interaction check failed")
		return nil, err
	}

	model := s.renderer.Render(resp)

	s.mu.Lock()
	s.current = model
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"drugs":       len(payload.Drugs),
		"pairs":       len(model.Pairs),
		"level":       model.Summary.Result.Level,
		"risky_pairs": model.Summary.Result.RiskyPairs,
		"duration":    time.Since(started),
	}).Info("Interaction check completed")

	s.archiveReport(ctx, payload, model)
	s.RefreshHistory(ctx)

	return model.Clone(), nil
}

// archiveReport saves the rendered report. Failures are logged only.
func (s *Session) archiveReport(ctx context.Context, payload *domain.RequestPayload, model *DisplayModel) {
	if s.archive == nil {
		return
	}

	record := archive.NewRecord(payload.DrugNames(), payload.IsPediatric, model.ExportSummary(), model.ExportPairs())
	if err := s.archive.Save(ctx, record); err != nil {
		s.logger.WithError(err).Warn("Failed to archive report")
		return
	}
	s.logger.WithField("report_id", record.ID).Debug("Report archived")
}

// RefreshHistory fetches recent checks and replaces the history panel. A
// failed fetch yields the unavailable state, never an empty list.
func (s *Session) RefreshHistory(ctx context.Context) HistoryView {
	items, err := s.api.FetchHistory(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("History unavailable")
		err = errors.Join(domain.ErrHistoryUnavailable, err)
	}
	view := s.renderer.RenderHistory(items, err)

	s.mu.Lock()
	s.history = view
	s.mu.Unlock()
	return view
}

// Current returns a copy of the rendered report, or nil when none is displayed.
func (s *Session) Current() *DisplayModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// History returns the last rendered history panel.
func (s *Session) History() HistoryView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history
}

// ExportCSV exports the pairs currently displayed.
func (s *Session) ExportCSV(ctx context.Context) (*domain.ExportFile, error) {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()

	if current == nil {
		return nil, ErrNoReport
	}
	return s.api.ExportCSV(ctx, current.ExportPairs())
}

// ExportPDF exports the pairs and summary currently displayed.
func (s *Session) ExportPDF(ctx context.Context) (*domain.ExportFile, error) {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()

	if current == nil {
		return nil, ErrNoReport
	}
	return s.api.ExportPDF(ctx, current.ExportPairs(), current.ExportSummary())
}

// SetPatient replaces the patient attributes.
func (s *Session) SetPatient(patient domain.PatientContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patient = patient.Clone()
}

// Patient returns a copy of the patient attributes.
func (s *Session) Patient() domain.PatientContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patient.Clone()
}

// Entries returns copies of every entry in the list.
func (s *Session) Entries() []domain.DrugEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Entries()
}

// EditEntries runs fn against the entry list under the session lock. Edits
// made while a submission is in flight do not reach the sent payload.
func (s *Session) EditEntries(fn func(*EntryList) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.entries)
}
