package absence

import (
	"github.com/google/uuid"
	"github.com/hiyosi/hawk"

	"github.com/Tiliavir/toggl-absence/internal/timecalc"
)

// Signer produces the Authorization header value for a request.
type Signer interface {
	Sign(method, rawURL, contentType string, body []byte) (string, error)
}

// HawkSigner signs requests with Hawk (sha256), binding the payload and its
// content type into the MAC.
type HawkSigner struct {
	ID    string
	Key   string
	Clock timecalc.Clock
}

func (s HawkSigner) Sign(method, rawURL, contentType string, body []byte) (string, error) {
	clock := s.Clock
	if clock == nil {
		clock = timecalc.SystemClock{}
	}
	c := hawk.NewClient(
		&hawk.Credential{
			ID:  s.ID,
			Key: s.Key,
			Alg: hawk.SHA256,
		},
		&hawk.Option{
			TimeStamp:   clock.Now().Unix(),
			Nonce:       uuid.NewString(),
			Payload:     string(body),
			ContentType: contentType,
		},
	)
	return c.Header(method, rawURL)
}
