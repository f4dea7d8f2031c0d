// Package external contains the HTTP client for the remote DDI risk-assessment
// service and the Redis cache used for drug-name suggestions.
package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/ddi-checker/internal/domain"
	"github.com/ddi-checker/internal/metrics"
)

// Endpoints of the assessment service
const (
	EndpointPredict      = "/predict"
	EndpointHistory      = "/history"
	EndpointExportCSV    = "/export_csv"
	EndpointExportPDF    = "/export_pdf"
	EndpointAutocomplete = "/autocomplete"
)

const (
	defaultCSVFilename = "ddi_results.csv"
	defaultPDFFilename = "ddi_report.pdf"
)

// maxResponseSize bounds any response body, PDFs included.
var maxResponseSize int64 = 32 << 20

// AssessmentClient talks to the DDI risk-assessment service.
type AssessmentClient struct {
	baseURL        string
	userAgent      string
	httpClient     *http.Client
	rateLimit      *rate.Limiter
	circuitBreaker *gobreaker.CircuitBreaker
	logger         *logrus.Logger
}

// rawResponse is a fully read HTTP response.
type rawResponse struct {
	statusCode int
	header     http.Header
	body       []byte
}

// errorBody is the failure shape returned by the service on non-2xx responses.
type errorBody struct {
	Error string `json:"error"`
}

type exportCSVRequest struct {
	Pairs []domain.PairResult `json:"pairs"`
}

type exportPDFRequest struct {
	Pairs   []domain.PairResult  `json:"pairs"`
	Summary domain.SummaryResult `json:"summary"`
}

// NewAssessmentClient creates a new assessment service client. The client keeps
// the service's session cookie, which is what scopes /history to its checks.
func NewAssessmentClient(config domain.APIConfig, logger *logrus.Logger) *AssessmentClient {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 5
	}
	if config.UserAgent == "" {
		config.UserAgent = "ddi-checker/1.0"
	}

	// cookiejar.New only fails on a bad PublicSuffixList, and none is given.
	jar, _ := cookiejar.New(nil)

	return &AssessmentClient{
		baseURL:   strings.TrimRight(config.BaseURL, "/"),
		userAgent: config.UserAgent,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Jar:     jar,
		},
		rateLimit:      rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		circuitBreaker: newCircuitBreaker("AssessmentService", config.CircuitBreaker, logger),
		logger:         logger,
	}
}

// Submit sends a predict request and decodes the assessment.
func (c *AssessmentClient) Submit(ctx context.Context, payload *domain.RequestPayload) (*domain.AssessmentResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, EndpointPredict, nil, payload)
	if err != nil {
		return nil, err
	}

	var assessment domain.AssessmentResponse
	if err := json.Unmarshal(resp.body, &assessment); err != nil {
		return nil, malformed(EndpointPredict, resp.statusCode, err)
	}

	for _, pair := range assessment.Pairs {
		if !pair.Risk.IsValid() {
			c.logger.WithFields(logrus.Fields{
				"drug1": pair.Drug1,
				"drug2": pair.Drug2,
				"risk":  pair.Risk,
			}).Debug("Unrecognised risk level in assessment")
		}
		for _, eval := range []*domain.DoseEvaluation{pair.DoseEvalA, pair.DoseEvalB} {
			if eval != nil && !eval.Status.IsValid() {
				c.logger.WithField("status", eval.Status).Debug("Unrecognised dose status in assessment")
			}
		}
	}

	c.logger.WithFields(logrus.Fields{
		"drugs":       len(payload.Drugs),
		"pairs":       len(assessment.Pairs),
		"level":       assessment.Summary.Level,
		"risky_pairs": assessment.Summary.RiskyPairs,
	}).Debug("Received interaction assessment")

	return &assessment, nil
}

// FetchHistory retrieves recent checks, newest first. An empty list is a valid answer.
func (c *AssessmentClient) FetchHistory(ctx context.Context) ([]domain.HistoryItem, error) {
	resp, err := c.do(ctx, http.MethodGet, EndpointHistory, nil, nil)
	if err != nil {
		return nil, err
	}

	var items []domain.HistoryItem
	if err := json.Unmarshal(resp.body, &items); err != nil {
		return nil, malformed(EndpointHistory, resp.statusCode, err)
	}
	if items == nil {
		items = []domain.HistoryItem{}
	}
	return items, nil
}

// ExportCSV asks the service to render pairs as CSV.
func (c *AssessmentClient) ExportCSV(ctx context.Context, pairs []domain.PairResult) (*domain.ExportFile, error) {
	resp, err := c.do(ctx, http.MethodPost, EndpointExportCSV, nil, exportCSVRequest{Pairs: nonNilPairs(pairs)})
	if err != nil {
		return nil, err
	}
	return exportFile(resp, defaultCSVFilename, "text/csv"), nil
}

// ExportPDF asks the service to render pairs and summary as a PDF report.
func (c *AssessmentClient) ExportPDF(ctx context.Context, pairs []domain.PairResult, summary domain.SummaryResult) (*domain.ExportFile, error) {
	body := exportPDFRequest{Pairs: nonNilPairs(pairs), Summary: summary}
	resp, err := c.do(ctx, http.MethodPost, EndpointExportPDF, nil, body)
	if err != nil {
		return nil, err
	}
	return exportFile(resp, defaultPDFFilename, "application/pdf"), nil
}

// Suggest returns drug names containing query, as known to the service.
func (c *AssessmentClient) Suggest(ctx context.Context, query string) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, EndpointAutocomplete, url.Values{"q": {query}}, nil)
	if err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(resp.body, &names); err != nil {
		return nil, malformed(EndpointAutocomplete, resp.statusCode, err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// do performs one request through the rate limiter and circuit breaker. Any
// non-2xx response comes back as a server RequestError; only transport failures
// and 5xx responses count against the breaker.
func (c *AssessmentClient) do(ctx context.Context, method, endpoint string, query url.Values, body any) (*rawResponse, error) {
	started := time.Now()

	var data []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to encode request: %w", endpoint, err)
		}
		data = encoded
	}

	if err := c.rateLimit.Wait(ctx); err != nil {
		metrics.ObserveRequest(endpoint, metrics.OutcomeNetwork, started)
		return nil, domain.NewNetworkError(endpoint, fmt.Errorf("rate limit wait failed: %w", err))
	}

	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		resp, err := c.roundTrip(ctx, method, endpoint, query, data)
		if err != nil {
			return nil, err
		}
		if resp.statusCode >= http.StatusInternalServerError {
			return nil, serverError(endpoint, resp)
		}
		return resp, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = domain.NewNetworkError(endpoint, fmt.Errorf("circuit breaker execution failed: %w", err))
		}
		c.logFailure(method, endpoint, err, started)
		return nil, err
	}

	resp := result.(*rawResponse)
	if resp.statusCode < 200 || resp.statusCode > 299 {
		err := serverError(endpoint, resp)
		c.logFailure(method, endpoint, err, started)
		return nil, err
	}

	metrics.ObserveRequest(endpoint, metrics.OutcomeSuccess, started)
	c.logger.WithFields(logrus.Fields{
		"method":   method,
		"endpoint": endpoint,
		"status":   resp.statusCode,
		"duration": time.Since(started),
	}).Debug("Assessment service request completed")

	return resp, nil
}

// roundTrip sends the request and reads the whole body. Transport failures are
// returned as network RequestErrors.
func (c *AssessmentClient) roundTrip(ctx context.Context, method, endpoint string, query url.Values, body []byte) (*rawResponse, error) {
	fullURL := c.baseURL + endpoint
	if len(query) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, query.Encode())
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, domain.NewNetworkError(endpoint, fmt.Errorf("failed to create request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, */*")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewNetworkError(endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, domain.NewNetworkError(endpoint, fmt.Errorf("failed to read response: %w", err))
	}
	if int64(len(data)) > maxResponseSize {
		return nil, domain.NewNetworkError(endpoint, fmt.Errorf("response exceeds %d bytes", maxResponseSize))
	}

	return &rawResponse{
		statusCode: resp.StatusCode,
		header:     resp.Header,
		body:       data,
	}, nil
}

func (c *AssessmentClient) logFailure(method, endpoint string, err error, started time.Time) {
	outcome := metrics.OutcomeNetwork
	if domain.IsServerError(err) {
		outcome = metrics.OutcomeServer
	}
	metrics.ObserveRequest(endpoint, outcome, started)

	c.logger.WithFields(logrus.Fields{
		"method":   method,
		"endpoint": endpoint,
		"outcome":  outcome,
		"duration": time.Since(started),
		"error":    err.Error(),
	}).Warn("Assessment service request failed")
}

// serverError extracts the service's error message from a non-2xx response.
func serverError(endpoint string, resp *rawResponse) *domain.RequestError {
	var eb errorBody
	if err := json.Unmarshal(resp.body, &eb); err != nil {
		eb.Error = ""
	}
	return domain.NewServerError(endpoint, resp.statusCode, strings.TrimSpace(eb.Error))
}

func malformed(endpoint string, statusCode int, err error) *domain.RequestError {
	re := domain.NewServerError(endpoint, statusCode, fmt.Sprintf("malformed response: %v", err))
	re.Err = err
	return re
}

func exportFile(resp *rawResponse, defaultName, defaultType string) *domain.ExportFile {
	file := &domain.ExportFile{
		Filename:    defaultName,
		ContentType: defaultType,
		Data:        resp.body,
	}
	if ct := resp.header.Get("Content-Type"); ct != "" {
		file.ContentType = ct
	}
	if cd := resp.header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			file.Filename = safeFilename(params["filename"], defaultName)
		}
	}
	return file
}

// safeFilename reduces a server-suggested name to its last path element so it
// can never address a file outside the working directory.
func safeFilename(name, fallback string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	switch name {
	case "", ".", "..", "/":
		return fallback
	}
	return name
}

// nonNilPairs keeps an empty pair list encoded as [] rather than null.
func nonNilPairs(pairs []domain.PairResult) []domain.PairResult {
	if pairs == nil {
		return []domain.PairResult{}
	}
	return pairs
}
