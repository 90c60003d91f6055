package absence_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hiyosi/hawk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/toggl-absence/internal/absence"
	"github.com/Tiliavir/toggl-absence/internal/timecalc"
)

type keyStore map[string]string

func (k keyStore) GetCredential(id string) (*hawk.Credential, error) {
	key, ok := k[id]
	if !ok {
		return nil, errors.New("unknown id")
	}
	return &hawk.Credential{ID: id, Key: key, Alg: hawk.SHA256}, nil
}

// hawkServer verifies every request against keys and reports the outcome on the channel.
func hawkServer(t *testing.T, keys keyStore) (*httptest.Server, <-chan error) {
	t.Helper()
	results := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			results <- err
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		s := hawk.NewServer(keys)
		s.Payload = string(body)
		_, err = s.Authenticate(r)
		results <- err
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)
	return srv, results
}

// rewritingSigner signs something other than what is sent.
type rewritingSigner struct {
	inner       absence.Signer
	body        func([]byte) []byte
	contentType string
}

func (s rewritingSigner) Sign(method, rawURL, contentType string, body []byte) (string, error) {
	if s.body != nil {
		body = s.body(body)
	}
	if s.contentType != "" {
		contentType = s.contentType
	}
	return s.inner.Sign(method, rawURL, contentType, body)
}

func TestHawkSigner_Verifies(t *testing.T) {
	keys := keyStore{"user-1": "secret"}
	signer := absence.HawkSigner{ID: "user-1", Key: "secret"}

	t.Run("should be accepted by a hawk server", func(t *testing.T) {
		srv, results := hawkServer(t, keys)
		c := absence.NewClient(absence.Config{BaseURL: srv.URL, Signer: signer})

		err := c.Upload(context.Background(), workRecord())
		authErr := <-results

		require.NoError(t, err)
		assert.NoError(t, authErr)
	})

	t.Run("should reject a body that differs from the signed one", func(t *testing.T) {
		srv, results := hawkServer(t, keys)
		tampered := rewritingSigner{inner: signer, body: func(b []byte) []byte {
			return append(append([]byte{}, b...), ' ')
		}}
		c := absence.NewClient(absence.Config{BaseURL: srv.URL, Signer: tampered})

		err := c.Upload(context.Background(), workRecord())
		authErr := <-results

		var uerr *absence.UploadError
		require.ErrorAs(t, err, &uerr)
		assert.Equal(t, http.StatusUnauthorized, uerr.StatusCode)
		require.Error(t, authErr)
		assert.Contains(t, authErr.Error(), "payload hash")
	})

	t.Run("should reject a different content type", func(t *testing.T) {
		srv, results := hawkServer(t, keys)
		c := absence.NewClient(absence.Config{
			BaseURL: srv.URL,
			Signer:  rewritingSigner{inner: signer, contentType: "text/plain"},
		})

		err := c.Upload(context.Background(), workRecord())
		authErr := <-results

		require.Error(t, err)
		require.Error(t, authErr)
		assert.Contains(t, authErr.Error(), "payload hash")
	})

	t.Run("should reject a wrong key", func(t *testing.T) {
		srv, results := hawkServer(t, keys)
		c := absence.NewClient(absence.Config{
			BaseURL: srv.URL,
			Signer:  absence.HawkSigner{ID: "user-1", Key: "not-the-secret"},
		})

		err := c.Upload(context.Background(), workRecord())
		authErr := <-results

		require.Error(t, err)
		require.Error(t, authErr)
		assert.Contains(t, authErr.Error(), "Bad MAC")
	})

	t.Run("should reject a stale timestamp", func(t *testing.T) {
		srv, results := hawkServer(t, keys)
		stale := absence.HawkSigner{
			ID:    "user-1",
			Key:   "secret",
			Clock: &timecalc.MockClock{FixedNow: time.Now().Add(-time.Hour)},
		}
		c := absence.NewClient(absence.Config{BaseURL: srv.URL, Signer: stale})

		err := c.Upload(context.Background(), workRecord())
		authErr := <-results

		require.Error(t, err)
		require.Error(t, authErr)
		assert.Contains(t, authErr.Error(), "Stale timestamp")
	})
}
