// Package compliance inspects newly stored objects for a "compliant" flag and
// raises an alert when it is missing or false.
package compliance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// AlertSubject is the subject of every published violation alert
const AlertSubject = "Compliance Violation Alert"

// Event identifies one newly stored object
type Event struct {
	Bucket string
	Key    string
}

// URI returns the s3:// form of the event's object
func (e Event) URI() string {
	return fmt.Sprintf("s3://%s/%s", e.Bucket, e.Key)
}

// Result mirrors an API-gateway style response: the status is always 200
// and the body is the JSON document {"compliant": bool}.
type Result struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
	// Compliant is the decision Body was built from
	Compliant bool `json:"-"`
}

// Fetcher reads an object body
type Fetcher interface {
	FetchObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Publisher delivers an alert message
type Publisher interface {
	Publish(ctx context.Context, subject, message string) error
}

type Checker struct {
	fetcher   Fetcher
	publisher Publisher
	log       zerolog.Logger
}

func NewChecker(fetcher Fetcher, publisher Publisher, log zerolog.Logger) *Checker {
	return &Checker{fetcher: fetcher, publisher: publisher, log: log}
}

// Check fetches the object, decides compliance and alerts on failure. An
// unreadable or unparseable object counts as non-compliant; only a failed
// alert publication is returned as an error.
func (c *Checker) Check(ctx context.Context, ev Event) (Result, error) {
	log := c.log.With().Str("bucket", ev.Bucket).Str("key", ev.Key).Logger()

	compliant := false
	body, err := c.fetcher.FetchObject(ctx, ev.Bucket, ev.Key)
	if err != nil {
		log.Error().Err(err).Msg("fetch object failed, treating as non-compliant")
	} else {
		compliant = IsCompliant(body)
	}

	if compliant {
		log.Info().Msgf("%s passed compliance check.", ev.URI())
		return NewResult(true), nil
	}

	message := "Compliance Check Failed for " + ev.URI()
	log.Warn().Msg(message)
	if err := c.publisher.Publish(ctx, AlertSubject, message); err != nil {
		return Result{}, fmt.Errorf("publish alert for %s: %w", ev.URI(), err)
	}

	return NewResult(false), nil
}

// IsCompliant reports whether body is a JSON object whose "compliant" field
// is the boolean true. Anything else is non-compliant.
func IsCompliant(body []byte) bool {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return false
	}

	raw, ok := doc["compliant"]
	if !ok {
		return false
	}

	var compliant bool
	if err := json.Unmarshal(raw, &compliant); err != nil {
		return false
	}
	return compliant
}

// NewResult builds the status-200 result for a compliance decision
func NewResult(compliant bool) Result {
	body, _ := json.Marshal(struct {
		Compliant bool `json:"compliant"`
	}{compliant})
	return Result{StatusCode: http.StatusOK, Body: string(body), Compliant: compliant}
}
