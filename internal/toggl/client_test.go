package toggl_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/toggl-absence/internal/toggl"
)

var (
	since = time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	until = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
)

// pagedServer serves total entries split into pages of perPage, newest first.
func pagedServer(t *testing.T, total, perPage int, requests *int32) *httptest.Server {
	t.Helper()
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.FixedZone("", 3600))

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)

		user, pass, ok := r.BasicAuth()
		if !ok || user != "toggl-key" || pass != "api_token" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		q := r.URL.Query()
		if q.Get("workspace_id") != "ws-1" || q.Get("since") != "2026-02-23" ||
			q.Get("until") != "2026-03-01" || q.Get("user_agent") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		page, _ := strconv.Atoi(q.Get("page"))
		data := []map[string]any{}
		for i := (page - 1) * perPage; i < page*perPage && i < total; i++ {
			start := base.Add(-time.Duration(i+1) * time.Hour)
			data = append(data, map[string]any{
				"id":          i,
				"description": fmt.Sprintf("entry %d", i),
				"project":     "Backend",
				"start":       start.Format(time.RFC3339),
				"end":         start.Add(45 * time.Minute).Format(time.RFC3339),
				"dur":         45 * 60 * 1000,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":        data,
			"per_page":    perPage,
			"total_count": total,
		})
	}))
}

func newClient(srv *httptest.Server) *toggl.Client {
	return toggl.NewClient(toggl.Config{
		BaseURL:     srv.URL,
		WorkspaceID: "ws-1",
		APIKey:      "toggl-key",
		Timeout:     5 * time.Second,
	})
}

func TestFetch_Pagination(t *testing.T) {
	var requests int32
	srv := pagedServer(t, 250, 50, &requests)
	defer srv.Close()

	entries, err := newClient(srv).Fetch(context.Background(), since, until)
	require.NoError(t, err)

	assert.Equal(t, int32(5), atomic.LoadInt32(&requests))
	require.Len(t, entries, 250)
	for i, e := range entries {
		assert.Equal(t, int64(i), e.ID, "entries must keep source order")
	}
	assert.Equal(t, "entry 0", entries[0].Description)
	assert.Equal(t, "Backend", entries[0].Project)
	assert.Equal(t, int64(2700000), entries[0].DurationMs)
	_, offset := entries[0].Start.Zone()
	assert.Equal(t, 3600, offset, "start keeps its UTC offset")
}

func TestFetch_PartialLastPage(t *testing.T) {
	var requests int32
	srv := pagedServer(t, 120, 50, &requests)
	defer srv.Close()

	entries, err := newClient(srv).Fetch(context.Background(), since, until)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
	assert.Len(t, entries, 120)
}

func TestFetch_Empty(t *testing.T) {
	var requests int32
	srv := pagedServer(t, 0, 50, &requests)
	defer srv.Close()

	entries, err := newClient(srv).Fetch(context.Background(), since, until)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
	assert.Empty(t, entries)
}

func TestEntries_StopsEarly(t *testing.T) {
	var requests int32
	srv := pagedServer(t, 250, 50, &requests)
	defer srv.Close()

	n := 0
	for _, err := range newClient(srv).Entries(context.Background(), since, until) {
		require.NoError(t, err)
		n++
		if n == 10 {
			break
		}
	}
	assert.Equal(t, 10, n)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestFetch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newClient(srv).Fetch(context.Background(), since, until)
	require.Error(t, err)

	var te *toggl.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusForbidden, te.StatusCode)
	assert.Equal(t, 1, te.Page)
}

func TestFetch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := toggl.NewClient(toggl.Config{BaseURL: url, WorkspaceID: "ws-1", APIKey: "k", Timeout: time.Second})
	_, err := c.Fetch(context.Background(), since, until)

	var te *toggl.TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.StatusCode)
	assert.NotNil(t, te.Unwrap())
}

func TestFetch_ZeroPerPageDoesNotLoop(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		_, _ = w.Write([]byte(`{"data":[],"per_page":0,"total_count":10}`))
	}))
	defer srv.Close()

	_, err := newClient(srv).Fetch(context.Background(), since, until)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestFetch_InvalidTimestamp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":1,"start":"yesterday","end":"today","dur":1}],"per_page":50,"total_count":1}`))
	}))
	defer srv.Close()

	_, err := newClient(srv).Fetch(context.Background(), since, until)
	assert.Error(t, err)
}
