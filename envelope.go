package videodb

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Status is the job status reported in a response envelope.
type Status string

const (
	StatusDone       Status = "done"
	StatusProcessing Status = "processing"
	StatusInProgress Status = "in_progress"
	StatusError      Status = "error"
)

// Pending reports whether the job has not reached a terminal state yet.
func (s Status) Pending() bool {
	return s == StatusProcessing || s == StatusInProgress
}

// RequestType tells whether the caller asked to block on a job.
type RequestType string

const (
	RequestTypeSync  RequestType = "sync"
	RequestTypeAsync RequestType = "async"
)

// Envelope is the JSON wrapper every API response is sent in.
type Envelope struct {
	Success     bool            `json:"success"`
	Status      Status          `json:"status"`
	RequestType RequestType     `json:"request_type,omitempty"`
	Message     string          `json:"message,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`

	// Response holds a nested envelope; polling endpoints may wrap their
	// result this way.
	Response json.RawMessage `json:"response,omitempty"`
}

// disposition is what the executor must do with a decoded envelope.
type disposition int

const (
	dispositionFailed disposition = iota
	dispositionPayload
	dispositionAccepted
	dispositionPoll
)

var errNotObject = errors.New("response body is not a JSON object")

func decodeEnvelope(body []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errNotObject
	}

	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}

	return &env, nil
}

func (e *Envelope) requestType() RequestType {
	if e.RequestType == "" {
		return RequestTypeSync
	}
	return e.RequestType
}

// disposition applies the envelope precedence: an async processing job is
// acknowledged, a sync one is polled, otherwise success decides.
func (e *Envelope) disposition() disposition {
	if e.Status == StatusProcessing {
		if e.requestType() == RequestTypeAsync {
			return dispositionAccepted
		}
		return dispositionPoll
	}

	if e.Success {
		return dispositionPayload
	}

	return dispositionFailed
}

// unwrap returns the nested envelope carried under "response", or e itself.
func (e *Envelope) unwrap() *Envelope {
	if len(e.Response) == 0 || bytes.Equal(bytes.TrimSpace(e.Response), []byte("null")) {
		return e
	}

	inner, err := decodeEnvelope(e.Response)
	if err != nil {
		return e
	}

	return inner
}

// outputURL returns data.output_url of a pending envelope.
func (e *Envelope) outputURL() string {
	var data struct {
		OutputURL string `json:"output_url"`
	}

	if len(e.Data) == 0 {
		return ""
	}

	if err := json.Unmarshal(e.Data, &data); err != nil {
		return ""
	}

	return data.OutputURL
}

func (e *Envelope) failureMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return "Unknown error"
}
