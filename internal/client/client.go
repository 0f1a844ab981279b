// Package client is a Go client for the review board HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/uwdate/review-backend/internal/dto"
	"github.com/uwdate/review-backend/internal/models"
)

const DefaultBaseURL = "http://localhost:3001/api"

type Client interface {
	ListReviews(ctx context.Context) ([]models.PublicReview, error)
	SearchReviews(ctx context.Context, query string) (*models.SearchResult, error)
	SubmitReview(ctx context.Context, s Submission) (*dto.SubmitReviewResponse, error)
	ReportReview(ctx context.Context, reviewID string, req dto.ReportReviewRequest) (*dto.ReportReviewResponse, error)
	Stats(ctx context.Context) (*dto.StatsResponse, error)
	Health(ctx context.Context) (*dto.HealthResponse, error)
}

// Submission is a review together with its evidence files.
type Submission struct {
	Review   dto.SubmitReviewRequest
	Evidence []File
}

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
	Details []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Temporary reports whether the failure is on the server side.
func (e *APIError) Temporary() bool {
	return e.Status >= 500
}

// HTTPClient talks to the API over HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) ListReviews(ctx context.Context) ([]models.PublicReview, error) {
	var out []models.PublicReview
	if err := c.do(ctx, http.MethodGet, "/reviews", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) SearchReviews(ctx context.Context, query string) (*models.SearchResult, error) {
	var out models.SearchResult
	path := "/reviews/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitReview always posts multipart form data so evidence files can ride
// along with the fields.
func (c *HTTPClient) SubmitReview(ctx context.Context, s Submission) (*dto.SubmitReviewResponse, error) {
	body, contentType, err := encodeSubmission(s)
	if err != nil {
		return nil, err
	}
	var out dto.SubmitReviewResponse
	if err := c.do(ctx, http.MethodPost, "/reviews/submit", body, contentType, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ReportReview(ctx context.Context, reviewID string, req dto.ReportReviewRequest) (*dto.ReportReviewResponse, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var out dto.ReportReviewResponse
	path := "/reviews/" + url.PathEscape(reviewID) + "/report"
	if err := c.do(ctx, http.MethodPost, path, bytes.NewReader(raw), "application/json", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	var out dto.StatsResponse
	if err := c.do(ctx, http.MethodGet, "/stats", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Health(ctx context.Context) (*dto.HealthResponse, error) {
	var out dto.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var er dto.ErrorResponse
		if json.Unmarshal(raw, &er) == nil && er.Message != "" {
			apiErr.Message = er.Message
			apiErr.Details = er.Details
		}
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func encodeSubmission(s Submission) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	r := s.Review

	fields := []struct{ key, value string }{
		{"reviewerName", r.ReviewerName},
		{"reviewerEmail", r.ReviewerEmail},
		{"targetName", r.TargetName},
		{"targetProgram", r.TargetProgram},
		{"relationship", r.Relationship},
		{"duration", r.Duration},
		{"content", r.Content},
		{"truthDeclaration", strconv.FormatBool(bool(r.TruthDeclaration))},
		{"privacyAgreement", strconv.FormatBool(bool(r.PrivacyAgreement))},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := w.WriteField(f.key, f.value); err != nil {
			return nil, "", err
		}
	}
	for _, tag := range r.Tags {
		if err := w.WriteField("tags", tag); err != nil {
			return nil, "", err
		}
	}
	for _, tt := range r.TagTypes {
		if err := w.WriteField("tagTypes", tt); err != nil {
			return nil, "", err
		}
	}

	for _, f := range s.Evidence {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="evidence"; filename=%q`, f.Name))
		h.Set("Content-Type", f.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// IsUnavailable reports whether err means the server could not be reached
// or failed on its side. Client errors (4xx) are not.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return !errors.Is(err, context.Canceled)
}
