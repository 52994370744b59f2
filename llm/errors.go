package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a failed model call.
type Kind string

const (
	KindNetwork Kind = "network"
	KindTimeout Kind = "timeout"
	KindServer  Kind = "server"
	KindDecode  Kind = "decode"
)

// Error is returned by OllamaClient for every failed call.
type Error struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// transportError classifies an error from http.Client.Do.
func transportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindNetwork, Err: err}
}

// ReplyPrefix starts every degraded reply.
const ReplyPrefix = "Error calling local LLM: "

// Reply returns text when err is nil, otherwise a readable error message in
// its place, so HTTP callers can answer 200 with degraded content.
func Reply(text string, err error) string {
	if err == nil {
		return text
	}
	return ReplyPrefix + err.Error()
}
