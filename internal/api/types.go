package api

import (
	"bytes"
	"encoding/json"
)

// Envelope is the common Mimecast API response wrapper. The data payload
// stays raw so each endpoint can decode its own shape; it is usually a JSON
// array even for single-object responses.
type Envelope struct {
	Meta Meta            `json:"meta"`
	Data json.RawMessage `json:"data,omitempty"`
	Fail []Failure       `json:"fail,omitempty"`
}

// Meta carries response metadata. Status is raw because the API returns a
// numeric HTTP status on success and the string "fail" on some error
// responses.
type Meta struct {
	Status     json.RawMessage `json:"status,omitempty"`
	Errors     []ErrorEntry    `json:"errors,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// Failed reports whether the meta status is the literal string "fail".
func (m Meta) Failed() bool {
	return bytes.Equal(bytes.TrimSpace(m.Status), []byte(`"fail"`))
}

// Pagination describes result paging in request and response meta blocks.
type Pagination struct {
	PageSize  int    `json:"pageSize,omitempty"`
	PageToken string `json:"pageToken,omitempty"`
	Next      string `json:"next,omitempty"`
	Previous  string `json:"previous,omitempty"`
}

// Failure is one entry of a response's fail array.
type Failure struct {
	Key    json.RawMessage `json:"key,omitempty"`
	Errors []ErrorEntry    `json:"errors"`
}

// ErrorEntry is a single error reported by the API.
type ErrorEntry struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Err returns a *ResponseError when the envelope reports failure, either
// through meta.status or a non-empty fail array, and nil otherwise.
func (e *Envelope) Err(statusCode int) error {
	if e.Meta.Failed() {
		return &ResponseError{
			StatusCode: statusCode,
			Failures:   []Failure{{Errors: e.Meta.Errors}},
		}
	}
	if len(e.Fail) > 0 {
		return &ResponseError{StatusCode: statusCode, Failures: e.Fail}
	}
	return nil
}
