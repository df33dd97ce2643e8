package workflowy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Kind classifies a failed API call.
type Kind int

const (
	// TransportFailure means no response was obtained (network error,
	// timeout, cancellation). StatusCode is always 0.
	TransportFailure Kind = iota + 1

	// HttpFailure means the API answered with a non-2xx status.
	HttpFailure

	// MalformedResponse means a 2xx body was not valid JSON where JSON was
	// required.
	MalformedResponse

	// UnexpectedShape means the JSON parsed but a required field such as
	// "status", "node" or "nodes" is missing.
	UnexpectedShape

	// StatusNotOk means the body carried a "status" field whose value was
	// not "ok".
	StatusNotOk

	// DecodeError means the payload could not be mapped onto the node model.
	DecodeError
)

func (k Kind) String() string {
	switch k {
	case TransportFailure:
		return "TransportFailure"
	case HttpFailure:
		return "HttpFailure"
	case MalformedResponse:
		return "MalformedResponse"
	case UnexpectedShape:
		return "UnexpectedShape"
	case StatusNotOk:
		return "StatusNotOk"
	case DecodeError:
		return "DecodeError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is returned by every Client operation that reached the classifier.
type Error struct {
	Kind Kind

	// Op is the operation label, e.g. "delete node".
	Op string

	// StatusCode is the HTTP status, or 0 for transport failures.
	StatusCode int

	// Reason is the HTTP reason phrase, when known.
	Reason string

	// Detail is the parsed JSON body when the body was JSON, otherwise the
	// raw body text.
	Detail any

	// Body is the raw response body.
	Body string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Op, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d", e.StatusCode)
		if e.Reason != "" {
			fmt.Fprintf(&b, " %s", e.Reason)
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		fmt.Fprintf(&b, ": %s", body)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// apiErrorBody covers the error payloads seen from the API.
type apiErrorBody struct {
	Detail  string `mapstructure:"detail"`
	Error   string `mapstructure:"error"`
	Message string `mapstructure:"message"`
	Status  string `mapstructure:"status"`
}

// Message returns a short human readable description of the failure,
// preferring structured fields from the response body.
func (e *Error) Message() string {
	switch d := e.Detail.(type) {
	case map[string]any:
		var body apiErrorBody
		cfg := &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &body,
		}
		if dec, err := mapstructure.NewDecoder(cfg); err == nil && dec.Decode(d) == nil {
			for _, msg := range []string{body.Detail, body.Error, body.Message} {
				if msg != "" {
					return msg
				}
			}
			if e.Kind == StatusNotOk && body.Status != "" {
				return fmt.Sprintf("status %q", body.Status)
			}
		}
	case string:
		if s := strings.TrimSpace(d); s != "" {
			return s
		}
	}

	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var wfErr *Error
	if errors.As(err, &wfErr) {
		return wfErr.Kind == kind
	}
	return false
}
