package workflowy

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Mode selects how a successful HTTP exchange is recognized.
type Mode int

const (
	// ModeStatusCode treats any 2xx response as success. The body is left
	// to the decoder.
	ModeStatusCode Mode = iota

	// ModeStatusConfirm additionally requires the body to be a JSON object
	// with "status" equal to "ok" (case-insensitive).
	ModeStatusConfirm
)

func (m Mode) String() string {
	switch m {
	case ModeStatusCode:
		return "status code"
	case ModeStatusConfirm:
		return "status confirmation"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Classify decides the outcome of an exchange. resp and transportErr are
// the results of Transport.Send. A nil return means success.
func Classify(op string, mode Mode, resp *Response, transportErr error) error {
	if transportErr != nil || resp == nil {
		if transportErr == nil {
			transportErr = errors.New("empty response")
		}
		return &Error{
			Kind:   TransportFailure,
			Op:     op,
			Detail: transportErr.Error(),
			Err:    transportErr,
		}
	}

	if !resp.Successful() {
		return &Error{
			Kind:       HttpFailure,
			Op:         op,
			StatusCode: resp.StatusCode,
			Reason:     resp.Reason,
			Detail:     DecodeGeneric(resp.Body),
			Body:       resp.Body,
		}
	}

	if mode != ModeStatusConfirm {
		return nil
	}

	return confirmStatus(op, resp)
}

// confirmStatus checks a {"status": "ok"} body.
func confirmStatus(op string, resp *Response) error {
	fail := func(kind Kind, err error) error {
		return &Error{
			Kind:       kind,
			Op:         op,
			StatusCode: resp.StatusCode,
			Reason:     resp.Reason,
			Detail:     DecodeGeneric(resp.Body),
			Body:       resp.Body,
			Err:        err,
		}
	}

	var v any
	if err := json.Unmarshal([]byte(resp.Body), &v); err != nil {
		return fail(MalformedResponse, fmt.Errorf("error parsing response JSON: %w", err))
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return fail(UnexpectedShape, errors.New(`unexpected response shape (missing "status")`))
	}
	raw, ok := obj["status"]
	if !ok {
		return fail(UnexpectedShape, errors.New(`unexpected response shape (missing "status")`))
	}

	status, _ := raw.(string)
	if !strings.EqualFold(status, "ok") {
		return fail(StatusNotOk, fmt.Errorf("status != ok (%v)", raw))
	}

	return nil
}
