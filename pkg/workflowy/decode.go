package workflowy

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Shape identifies the envelope a response body is expected to carry.
type Shape int

const (
	// ShapeNodeEnvelope is {"node": {...}}.
	ShapeNodeEnvelope Shape = iota

	// ShapeNodesEnvelope is {"nodes": [...]}.
	ShapeNodesEnvelope

	// ShapeNodeArray is a bare [...] of nodes. {"nodes": [...]} is accepted
	// too.
	ShapeNodeArray

	// ShapeGeneric is any JSON value, or raw text if the body is not JSON.
	ShapeGeneric
)

func (s Shape) String() string {
	switch s {
	case ShapeNodeEnvelope:
		return "node envelope"
	case ShapeNodesEnvelope:
		return "nodes envelope"
	case ShapeNodeArray:
		return "node array"
	case ShapeGeneric:
		return "generic"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Decode decodes body according to shape. The result is a *Node for
// ShapeNodeEnvelope, a []Node for the collection shapes and the value
// returned by DecodeGeneric otherwise.
func Decode(op, body string, shape Shape) (any, error) {
	switch shape {
	case ShapeNodeEnvelope:
		return DecodeNode(op, body)
	case ShapeNodesEnvelope, ShapeNodeArray:
		return DecodeNodes(op, body, shape)
	case ShapeGeneric:
		return DecodeGeneric(body), nil
	default:
		return nil, fmt.Errorf("unknown response shape: %s", shape)
	}
}

// DecodeNode decodes a {"node": {...}} body.
func DecodeNode(op, body string) (*Node, error) {
	obj, err := decodeObject(op, body)
	if err != nil {
		return nil, err
	}

	raw, ok := obj["node"]
	if !ok || isNull(raw) {
		return nil, shapeError(op, body, `missing "node"`)
	}

	var node Node
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, decodeError(op, body, err)
	}
	return &node, nil
}

// DecodeNodes decodes a collection of nodes from body according to shape,
// which must be ShapeNodesEnvelope or ShapeNodeArray.
func DecodeNodes(op, body string, shape Shape) ([]Node, error) {
	trimmed := strings.TrimSpace(body)
	if !json.Valid([]byte(trimmed)) {
		return nil, malformedError(op, body, fmt.Errorf("response is not valid JSON"))
	}

	var raw json.RawMessage
	switch {
	case strings.HasPrefix(trimmed, "["):
		if shape != ShapeNodeArray {
			return nil, shapeError(op, body, `expected {"nodes": [...]}, got an array`)
		}
		raw = json.RawMessage(trimmed)
	case strings.HasPrefix(trimmed, "{"):
		if shape != ShapeNodesEnvelope && shape != ShapeNodeArray {
			return nil, shapeError(op, body, fmt.Sprintf("cannot decode %s as a node collection", shape))
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
			return nil, decodeError(op, body, err)
		}
		v, ok := obj["nodes"]
		if !ok || isNull(v) {
			return nil, shapeError(op, body, `missing "nodes"`)
		}
		raw = v
	default:
		return nil, shapeError(op, body, "expected a JSON object or array")
	}

	var nodes []Node
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil, decodeError(op, body, err)
	}
	if nodes == nil {
		nodes = []Node{}
	}
	return nodes, nil
}

// DecodeCreatedID extracts the id of a newly created node. The API answers
// with {"item_id": "..."}, but bare JSON strings and non-JSON text are
// accepted as the id as well.
func DecodeCreatedID(op, body string) (string, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return "", shapeError(op, body, "empty response")
	}

	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		// Not JSON: the body is the id.
		return trimmed, nil
	}

	switch val := v.(type) {
	case string:
		if id := strings.TrimSpace(val); id != "" {
			return id, nil
		}
		return "", shapeError(op, body, "empty id")
	case map[string]any:
		for _, key := range []string{"item_id", "id"} {
			raw, ok := val[key]
			if !ok {
				continue
			}
			id, ok := raw.(string)
			if !ok {
				return "", decodeError(op, body, fmt.Errorf("%q is %T, not a string", key, raw))
			}
			if id = strings.TrimSpace(id); id != "" {
				return id, nil
			}
		}
		return "", shapeError(op, body, `missing "item_id"`)
	default:
		return "", shapeError(op, body, fmt.Sprintf("unexpected %T response", v))
	}
}

// DecodeGeneric returns the parsed JSON value of body, or the raw text if
// the body is not JSON. Blank bodies decode to nil.
func DecodeGeneric(body string) any {
	if strings.TrimSpace(body) == "" {
		return nil
	}

	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return body
	}
	return v
}

func decodeObject(op, body string) (map[string]json.RawMessage, error) {
	trimmed := strings.TrimSpace(body)
	if !json.Valid([]byte(trimmed)) {
		return nil, malformedError(op, body, fmt.Errorf("response is not valid JSON"))
	}
	if !strings.HasPrefix(trimmed, "{") {
		return nil, shapeError(op, body, "expected a JSON object")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, decodeError(op, body, err)
	}
	return obj, nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func malformedError(op, body string, err error) *Error {
	return &Error{
		Kind:   MalformedResponse,
		Op:     op,
		Detail: DecodeGeneric(body),
		Body:   body,
		Err:    err,
	}
}

func shapeError(op, body, msg string) *Error {
	return &Error{
		Kind:   UnexpectedShape,
		Op:     op,
		Detail: DecodeGeneric(body),
		Body:   body,
		Err:    errors.New(msg),
	}
}

func decodeError(op, body string, err error) *Error {
	return &Error{
		Kind:   DecodeError,
		Op:     op,
		Detail: DecodeGeneric(body),
		Body:   body,
		Err:    err,
	}
}
