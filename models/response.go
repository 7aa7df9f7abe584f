package models

import (
	"encoding/json"
	"time"
)

// DatetimeLayout is the ISO-8601 local timestamp stamped on success results.
const DatetimeLayout = "2006-01-02T15:04:05.000000"

// FetchResult is the outcome of one logical fetch. It is either a success
// (Code == CodeSuccess, Results set) or an error (Telemetry set for every
// error past input validation).
type FetchResult struct {
	Code      int
	Message   string
	Datetime  string
	Results   []Movement
	Telemetry *Telemetry

	cause error
}

// NewSuccessResult builds a success result stamped with at.
func NewSuccessResult(at time.Time, results []Movement) *FetchResult {
	if results == nil {
		results = []Movement{}
	}
	return &FetchResult{
		Code:     CodeSuccess,
		Message:  MsgSuccess,
		Datetime: at.Format(DatetimeLayout),
		Results:  results,
	}
}

// NewErrorResult builds an error result. cause is kept for Err and logging
// and never serialized.
func NewErrorResult(code int, message string, cause error) *FetchResult {
	return &FetchResult{Code: code, Message: message, cause: cause}
}

// OK reports whether r is a success result.
func (r *FetchResult) OK() bool { return r.Code == CodeSuccess }

// Err returns the typed error behind an error result, or nil on success.
func (r *FetchResult) Err() error {
	if r.OK() {
		return nil
	}
	return NewFetchError(r.Code, r.Message, r.cause)
}

// wireResult is the JSON layout shared by both result shapes.
type wireResult struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Datetime  string      `json:"datetime,omitempty"`
	Results   *[]Movement `json:"results,omitempty"`
	Telemetry *Telemetry  `json:"telemetria,omitempty"`
}

func (r FetchResult) MarshalJSON() ([]byte, error) {
	w := wireResult{
		Code:      r.Code,
		Message:   r.Message,
		Telemetry: r.Telemetry,
	}
	if r.OK() {
		results := r.Results
		if results == nil {
			results = []Movement{}
		}
		w.Datetime = r.Datetime
		w.Results = &results
	}
	return json.Marshal(w)
}

func (r *FetchResult) UnmarshalJSON(data []byte) error {
	var w wireResult
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = FetchResult{
		Code:      w.Code,
		Message:   w.Message,
		Datetime:  w.Datetime,
		Telemetry: w.Telemetry,
	}
	if w.Results != nil {
		r.Results = *w.Results
	}
	return nil
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status       string `json:"status"`
	Uptime       string `json:"uptime"`
	Version      string `json:"version"`
	PortalURL    string `json:"portal_url"`
	MaxRetries   int    `json:"max_retries"`
	Timeout      string `json:"timeout"`
	CacheEntries int    `json:"cache_entries"`
}
