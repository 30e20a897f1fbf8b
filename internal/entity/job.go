package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/user/aura-service/pkg/utils"
)

// ErrMalformedJob is returned for queue payloads that carry no usable URL.
var ErrMalformedJob = errors.New("malformed job payload")

// Keywords is a normalized keyword list. In JSON it is accepted either as an
// array or as a single comma-separated string.
type Keywords []string

// UnmarshalJSON implements json.Unmarshaler.
func (k *Keywords) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*k = NormalizeKeywords(list)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("keywords must be a string or an array: %w", err)
	}
	*k = SplitKeywords(s)
	return nil
}

// SplitKeywords parses a comma-separated keyword string.
func SplitKeywords(s string) Keywords {
	return NormalizeKeywords(strings.Split(s, ","))
}

// NormalizeKeywords trims and lowercases every keyword and drops empty ones.
func NormalizeKeywords(in []string) Keywords {
	var out Keywords
	for _, kw := range in {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Job is one unit of work on the analysis queue.
type Job struct {
	ID         string   `json:"id,omitempty"`
	URL        string   `json:"url"`
	Interests  Keywords `json:"interests,omitempty"`
	Exclusions Keywords `json:"exclusions,omitempty"`
}

// ParseJob decodes a queue payload. Payloads are JSON objects, JSON strings
// or, for older producers, a bare URL.
func ParseJob(payload []byte) (Job, error) {
	raw := bytes.TrimSpace(payload)
	if len(raw) == 0 {
		return Job{}, ErrMalformedJob
	}

	var job Job
	switch raw[0] {
	case '{':
		if err := json.Unmarshal(raw, &job); err != nil {
			return Job{}, fmt.Errorf("%w: %v", ErrMalformedJob, err)
		}
	case '"':
		if err := json.Unmarshal(raw, &job.URL); err != nil {
			return Job{}, fmt.Errorf("%w: %v", ErrMalformedJob, err)
		}
	default:
		job.URL = string(raw)
	}

	job.URL = strings.TrimSpace(job.URL)
	if _, ok := utils.ParseHTTPURL(job.URL); !ok {
		return Job{}, fmt.Errorf("%w: invalid url %q", ErrMalformedJob, job.URL)
	}
	return job, nil
}
