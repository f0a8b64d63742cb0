package model

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Envelope parsing errors, surfaced to the webhook caller as 400s.
var (
	ErrEmptyEnvelopeArray = errors.New("empty webhook data array")
	ErrMissingAPIKey      = errors.New("missing FireFlies_API_KEY")
	ErrMissingTranscripts = errors.New("missing transcripts")
	ErrTranscriptsNotList = errors.New("transcripts must be an array")
)

// Transcript is a single Fireflies transcript as delivered on the
// inbound webhook.
type Transcript struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	DateString string `json:"dateString"`
}

// IngestEnvelope is one element of an inbound webhook payload. The
// automation layer delivers either this object directly or a one-or-more
// element array of it; transcripts may arrive nested under "body" or at
// the top level.
type IngestEnvelope struct {
	FireFliesAPIKey string          `json:"FireFlies_API_KEY"`
	Body            *IngestBody     `json:"body"`
	Transcripts     *TranscriptList `json:"transcripts"`
}

// IngestBody holds the nested transcript list variant.
type IngestBody struct {
	Transcripts *TranscriptList `json:"transcripts"`
}

// TranscriptList wraps []Transcript so a payload that carries a
// non-array "transcripts" value can be told apart from an absent one.
type TranscriptList struct {
	Items   []Transcript
	IsArray bool
}

// UnmarshalJSON records whether the raw value was an array before
// decoding it, so validation can answer "present but not a list".
func (l *TranscriptList) UnmarshalJSON(data []byte) error {
	trimmed := string(data)
	if trimmed == "null" {
		return nil
	}
	if len(data) == 0 || data[0] != '[' {
		l.IsArray = false
		return nil
	}
	l.IsArray = true
	return json.Unmarshal(data, &l.Items)
}

// IngestRequest is the normalized shape all downstream ingestion logic
// works against: one API key, one transcript list. Transcripts is nil
// when the payload carried none; whether it is a proper list is checked
// after the owning user has been resolved, so an unknown key reports
// 404 regardless of the transcript shape.
type IngestRequest struct {
	APIKey      string
	Transcripts *TranscriptList
}

// TranscriptItems validates and returns the transcript slice.
func (r *IngestRequest) TranscriptItems() ([]Transcript, error) {
	if r.Transcripts == nil {
		return nil, ErrMissingTranscripts
	}
	if !r.Transcripts.IsArray {
		return nil, ErrTranscriptsNotList
	}
	return r.Transcripts.Items, nil
}

// ParseIngestPayload decodes a raw webhook body into a normalized
// IngestRequest. The payload may be a single envelope or an array of
// envelopes; only the first array element is consulted. Validation here
// covers shape and key presence only; the API key is not authenticated.
func ParseIngestPayload(raw []byte) (*IngestRequest, error) {
	raw = bytes.TrimSpace(raw)

	var env IngestEnvelope

	// Array form: use the first element.
	if len(raw) > 0 && raw[0] == '[' {
		var envs []IngestEnvelope
		if err := json.Unmarshal(raw, &envs); err != nil {
			// Same for an array of scalars: the first element carries
			// no key field.
			if json.Valid(raw) {
				return nil, ErrMissingAPIKey
			}
			return nil, err
		}
		if len(envs) == 0 {
			return nil, ErrEmptyEnvelopeArray
		}
		env = envs[0]
	} else {
		// A scalar body is valid JSON with no fields to read; report
		// the missing key the way an empty object would, not a parse
		// failure.
		if len(raw) > 0 && raw[0] != '{' && json.Valid(raw) {
			return nil, ErrMissingAPIKey
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, err
		}
	}

	if env.FireFliesAPIKey == "" {
		return nil, ErrMissingAPIKey
	}

	list := env.Transcripts
	if env.Body != nil && env.Body.Transcripts != nil {
		list = env.Body.Transcripts
	}

	return &IngestRequest{
		APIKey:      env.FireFliesAPIKey,
		Transcripts: list,
	}, nil
}
