// Package toggl reads detailed time entries from the Toggl reports API.
package toggl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Tiliavir/toggl-absence/internal/model"
	"github.com/Tiliavir/toggl-absence/internal/timecalc"
)

const (
	DefaultBaseURL   = "https://api.track.toggl.com/reports/api/v2"
	DefaultUserAgent = "absence_exporter"

	// apiTokenPassword is the fixed Basic-Auth password Toggl expects next to an API token.
	apiTokenPassword = "api_token"
)

// TransportError is returned when a page cannot be fetched.
type TransportError struct {
	Page       int
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("toggl API error on page %d: status %d", e.Page, e.StatusCode)
	}
	return fmt.Sprintf("toggl API request for page %d failed: %v", e.Page, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Config holds everything needed to talk to the reports API.
type Config struct {
	BaseURL     string
	WorkspaceID string
	APIKey      string
	UserAgent   string
	Timeout     time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Client is a Toggl reports API client.
type Client struct {
	baseURL     string
	workspaceID string
	apiKey      string
	userAgent   string
	httpClient  *http.Client
}

func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:     cfg.BaseURL,
		workspaceID: cfg.WorkspaceID,
		apiKey:      cfg.APIKey,
		userAgent:   cfg.UserAgent,
		httpClient:  cfg.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return c
}

// detailEntry is a single row of the details report.
type detailEntry struct {
	ID          int64    `json:"id"`
	Description string   `json:"description"`
	Project     string   `json:"project"`
	User        string   `json:"user"`
	Tags        []string `json:"tags"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Dur         int64    `json:"dur"`
}

// detailsResponse is the paged response of the details report.
type detailsResponse struct {
	Data       []detailEntry `json:"data"`
	PerPage    int           `json:"per_page"`
	TotalCount int           `json:"total_count"`
}

// Page is one decoded page of the details report.
type Page struct {
	Entries    []model.TimeEntry
	PerPage    int
	TotalCount int
}

// mapDetailEntry converts a report row into a TimeEntry, keeping the
// UTC offset of start and end.
func mapDetailEntry(d detailEntry) (model.TimeEntry, error) {
	start, err := time.Parse(time.RFC3339, d.Start)
	if err != nil {
		return model.TimeEntry{}, fmt.Errorf("parsing start of entry %d: %w", d.ID, err)
	}
	end, err := time.Parse(time.RFC3339, d.End)
	if err != nil {
		return model.TimeEntry{}, fmt.Errorf("parsing end of entry %d: %w", d.ID, err)
	}
	return model.TimeEntry{
		ID:          d.ID,
		Description: d.Description,
		Project:     d.Project,
		User:        d.User,
		Tags:        d.Tags,
		Start:       start,
		End:         end,
		DurationMs:  d.Dur,
	}, nil
}

// FetchPage requests a single page (1-based) of entries in [since, until].
func (c *Client) FetchPage(ctx context.Context, since, until time.Time, page int) (Page, error) {
	q := url.Values{}
	q.Set("workspace_id", c.workspaceID)
	q.Set("since", since.Format(timecalc.DateLayout))
	q.Set("until", until.Format(timecalc.DateLayout))
	q.Set("user_agent", c.userAgent)
	q.Set("page", strconv.Itoa(page))
	endpoint := c.baseURL + "/details?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Page{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.apiKey, apiTokenPassword)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Page{}, &TransportError{Page: page, Err: err}
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return Page{}, &TransportError{Page: page, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		log.WithFields(log.Fields{"page": page, "status": resp.StatusCode}).
			Errorf("toggl API returned non-OK status: %s", string(body))
		return Page{}, &TransportError{Page: page, StatusCode: resp.StatusCode}
	}

	var raw detailsResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return Page{}, fmt.Errorf("decoding toggl response: %w", err)
	}

	p := Page{
		Entries:    make([]model.TimeEntry, 0, len(raw.Data)),
		PerPage:    raw.PerPage,
		TotalCount: raw.TotalCount,
	}
	for _, d := range raw.Data {
		e, err := mapDetailEntry(d)
		if err != nil {
			return Page{}, err
		}
		p.Entries = append(p.Entries, e)
	}
	log.WithFields(log.Fields{
		"page":        page,
		"entries":     len(p.Entries),
		"per_page":    p.PerPage,
		"total_count": p.TotalCount,
	}).Debug("fetched toggl page")
	return p, nil
}

// Entries yields every entry in [since, until] in source order, requesting
// pages lazily. Paging stops once the summed per_page of all requested pages
// reaches the reported total_count. The first error ends the sequence.
func (c *Client) Entries(ctx context.Context, since, until time.Time) iter.Seq2[model.TimeEntry, error] {
	return func(yield func(model.TimeEntry, error) bool) {
		retrieved, total := 0, 1
		for page := 1; retrieved < total; page++ {
			p, err := c.FetchPage(ctx, since, until, page)
			if err != nil {
				yield(model.TimeEntry{}, err)
				return
			}
			for _, e := range p.Entries {
				if !yield(e, nil) {
					return
				}
			}

			total = p.TotalCount
			if p.PerPage <= 0 && retrieved < total {
				yield(model.TimeEntry{}, fmt.Errorf("toggl page %d reported per_page=%d with %d of %d entries outstanding",
					page, p.PerPage, retrieved, total))
				return
			}
			retrieved += p.PerPage
		}
	}
}

// Fetch collects all entries in [since, until].
func (c *Client) Fetch(ctx context.Context, since, until time.Time) ([]model.TimeEntry, error) {
	var all []model.TimeEntry
	for e, err := range c.Entries(ctx, since, until) {
		if err != nil {
			return nil, err
		}
		all = append(all, e)
	}
	return all, nil
}
