package oaihttp

import (
	"errors"
	"fmt"
)

// ErrEmptyCompletion is returned when the upstream answered 2xx without any text.
var ErrEmptyCompletion = errors.New("empty upstream completion")

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "upstream http error"
	}
	if e.Body == "" {
		return fmt.Sprintf("upstream http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("upstream http error: status=%d body=%s", e.StatusCode, e.Body)
}

// MalformedResponseError is returned when a 2xx reply is not a chat completion envelope.
type MalformedResponseError struct {
	Body string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("upstream response is not a chat completion: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
