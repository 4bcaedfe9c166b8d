// Package errors provides a stack-carrying error type with an attached
// taxonomy of error kinds, used across the SDK instead of bare fmt.Errorf
// so callers can branch on `Kind` without string matching.
package errors

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Kind classifies an error into one of the taxonomy buckets used across
// the SDK's components.
type Kind string

const (
	// Input marks missing or ill-formed arguments.
	Input Kind = "input"
	// Encoding marks invalid multibase/multicodec data.
	Encoding Kind = "encoding"
	// Cryptographic marks signature/key failures.
	Cryptographic Kind = "cryptographic"
	// Integrity marks version-chain or content-hash mismatches.
	Integrity Kind = "integrity"
	// NotFound marks missing resources, inscriptions, or checkpoints.
	NotFound Kind = "not_found"
	// InvalidTransition marks a disallowed layer or state transition.
	InvalidTransition Kind = "invalid_transition"
	// External marks HTTP/RPC failures, timeouts, or storage unavailability.
	External Kind = "external"
	// Representation marks an unsupported requested media type.
	Representation Kind = "representation"
	// Quarantine marks a migration whose rollback failed.
	Quarantine Kind = "quarantine"
	// Timeout marks a context deadline exceeded on a suspension point.
	Timeout Kind = "timeout"
)

const tagKind = "kind"

// Error is an error with an attached stacktrace and a classification tag.
// It can be used wherever the builtin error interface is expected.
type Error struct {
	ts     int64
	err    error
	prev   error
	prefix string
	frames []StackFrame
	hints  []string
	events []Event
	tags   map[string]interface{}
	mu     sync.Mutex
}

// Event instances provide additional contextual information for an error.
type Event struct {
	Kind       string                 `json:"kind,omitempty"`
	Message    string                 `json:"message,omitempty"`
	Stamp      int64                  `json:"stamp,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// Error returns the underlying error's message.
func (e *Error) Error() string {
	msg := e.err.Error()
	if e.prefix != "" {
		msg = fmt.Sprintf("%s: %s", e.prefix, msg)
	}
	return msg
}

// Unwrap returns the next error in the chain, if any.
func (e *Error) Unwrap() error {
	return e.prev
}

// Cause returns the root error of the chain.
func (e *Error) Cause() error {
	if e.prev == nil {
		return e
	}
	var ce hasCause
	if As(e.prev, &ce) {
		return ce.Cause()
	}
	return e
}

// StackTrace returns the frames captured for this error.
func (e *Error) StackTrace() []StackFrame {
	return e.frames
}

// AddHint registers additional contextual information on the error.
func (e *Error) AddHint(hint string) *Error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hints = append(e.hints, hint)
	return e
}

// AddEvent registers an additional event on the error instance.
func (e *Error) AddEvent(ev Event) *Error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ev.Stamp == 0 {
		ev.Stamp = time.Now().UnixMilli()
	}
	e.events = append(e.events, ev)
	return e
}

// SetTag registers a key/value pair on the error, replacing any previous
// value under the same key.
func (e *Error) SetTag(key string, value interface{}) *Error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tags == nil {
		e.tags = make(map[string]interface{})
	}
	e.tags[key] = value
	return e
}

// Tags returns the key/value pairs attached to the error.
func (e *Error) Tags() map[string]interface{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tags
}

// Kind returns the classification tag attached to the error, if any.
func (e *Error) Kind() Kind {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tags == nil {
		return ""
	}
	if k, ok := e.tags[tagKind]; ok {
		if ks, ok := k.(Kind); ok {
			return ks
		}
	}
	return ""
}

// Format implements fmt.Formatter.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 's':
		_, _ = io.WriteString(s, e.Error())
	case 'v':
		str := fmt.Sprintf("%s\n", e.Error())
		if s.Flag('+') {
			for i, frame := range e.StackTrace() {
				str += fmt.Sprintf("‹%d› %+v", i, frame)
			}
			if k := e.Kind(); k != "" {
				str += fmt.Sprintf("‹kind› %s\n", k)
			}
			for _, h := range e.hints {
				str += fmt.Sprintf("‹hint› %s\n", h)
			}
		} else {
			for _, frame := range e.StackTrace() {
				str += fmt.Sprintf("%v", frame)
			}
		}
		_, _ = io.WriteString(s, str)
	}
}

type hasCause interface {
	Cause() error
}
