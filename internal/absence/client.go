// Package absence creates timespans in absence.io.
package absence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Tiliavir/toggl-absence/internal/model"
)

const (
	DefaultBaseURL = "https://app.absence.io/api/v2"

	createPath  = "/timespans/create"
	contentType = "application/json"

	// maxErrorBody caps how much of an error response is kept for reporting.
	maxErrorBody = 4 << 10
)

// ErrInvalidRecord is returned for records whose end lies before their start.
var ErrInvalidRecord = errors.New("invalid absence record")

// TransportError wraps network failures while talking to absence.io.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("absence.io request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UploadError is returned when absence.io answers with a non-2xx status.
type UploadError struct {
	StatusCode int
	Reason     string
	Body       string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("absence.io rejected timespan: %d %s", e.StatusCode, e.Reason)
}

// Config holds the absence.io connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Signer signs each request. Required.
	Signer Signer
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Client uploads timespans to absence.io.
type Client struct {
	baseURL    string
	signer     Signer
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		signer:     cfg.Signer,
		httpClient: cfg.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return c
}

// Upload posts a single record. It does not retry and absence.io does not
// deduplicate, so uploading the same record twice creates two timespans.
func (c *Client) Upload(ctx context.Context, rec model.AbsenceRecord) error {
	// Both timestamps share a fixed UTC layout, so string order is time order.
	if rec.End < rec.Start {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidRecord, rec.End, rec.Start)
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling timespan: %w", err)
	}

	endpoint := c.baseURL + createPath
	auth, err := c.signer.Sign(http.MethodPost, endpoint, contentType, body)
	if err != nil {
		return fmt.Errorf("signing request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		uerr := &UploadError{
			StatusCode: resp.StatusCode,
			Reason:     reason(resp),
			Body:       string(respBody),
		}
		log.WithFields(log.Fields{
			"status": resp.StatusCode,
			"type":   rec.Type,
			"start":  rec.Start,
		}).Error(uerr)
		return uerr
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	log.WithFields(log.Fields{"type": rec.Type, "start": rec.Start, "end": rec.End}).Debug("uploaded timespan")
	return nil
}

// reason extracts the reason phrase from resp.Status ("404 Not Found" -> "Not Found").
func reason(resp *http.Response) string {
	r := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if r == "" {
		r = http.StatusText(resp.StatusCode)
	}
	return r
}
