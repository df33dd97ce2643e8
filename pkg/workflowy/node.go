package workflowy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Node is a single Workflowy outline item.
type Node struct {
	ID   string
	Name string
	Note string

	// ParentID is only populated by the export endpoint. Single node fetches
	// don't include it.
	ParentID string

	Priority  int
	Completed bool

	CreatedAt   time.Time
	ModifiedAt  time.Time
	CompletedAt *time.Time

	// LayoutMode comes from the nested "data" object, e.g. "default".
	LayoutMode string
}

// HasParent reports whether the node carries a parent reference.
func (n *Node) HasParent() bool {
	return strings.TrimSpace(n.ParentID) != ""
}

// nodeData is the nested structural metadata of a node.
type nodeData struct {
	LayoutMode string `json:"layoutMode,omitempty"`
}

// wireNode is the JSON representation used by the Workflowy API.
type wireNode struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Note        *string         `json:"note"`
	ParentID    *string         `json:"parent_id,omitempty"`
	Priority    int             `json:"priority"`
	Completed   bool            `json:"completed"`
	Data        *nodeData       `json:"data,omitempty"`
	CreatedAt   json.RawMessage `json:"createdAt,omitempty"`
	ModifiedAt  json.RawMessage `json:"modifiedAt,omitempty"`
	CompletedAt json.RawMessage `json:"completedAt"`
}

// UnmarshalJSON decodes the API node shape. Timestamps may be encoded as
// numbers or numeric strings of epoch seconds.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	createdAt, err := parseEpoch(w.CreatedAt, false)
	if err != nil {
		return fmt.Errorf("createdAt: %w", err)
	}
	modifiedAt, err := parseEpoch(w.ModifiedAt, false)
	if err != nil {
		return fmt.Errorf("modifiedAt: %w", err)
	}
	completedAt, err := parseEpoch(w.CompletedAt, true)
	if err != nil {
		return fmt.Errorf("completedAt: %w", err)
	}

	*n = Node{
		ID:          w.ID,
		Name:        w.Name,
		Priority:    w.Priority,
		Completed:   w.Completed,
		CompletedAt: completedAt,
	}
	if w.Note != nil {
		n.Note = *w.Note
	}
	if w.ParentID != nil {
		n.ParentID = *w.ParentID
	}
	if w.Data != nil {
		n.LayoutMode = w.Data.LayoutMode
	}
	if createdAt != nil {
		n.CreatedAt = *createdAt
	}
	if modifiedAt != nil {
		n.ModifiedAt = *modifiedAt
	}

	return nil
}

// MarshalJSON encodes the node in the API shape, with timestamps as epoch
// seconds.
func (n Node) MarshalJSON() ([]byte, error) {
	w := wireNode{
		ID:          n.ID,
		Name:        n.Name,
		Priority:    n.Priority,
		Completed:   n.Completed,
		CreatedAt:   formatEpoch(&n.CreatedAt),
		ModifiedAt:  formatEpoch(&n.ModifiedAt),
		CompletedAt: formatEpoch(n.CompletedAt),
	}
	if n.Note != "" {
		note := n.Note
		w.Note = &note
	}
	if n.HasParent() {
		parentID := n.ParentID
		w.ParentID = &parentID
	}
	if n.LayoutMode != "" {
		w.Data = &nodeData{LayoutMode: n.LayoutMode}
	}

	return json.Marshal(w)
}

var jsonNull = []byte("null")

// parseEpoch decodes a raw JSON token holding Unix epoch seconds. Absent
// values decode to nil. A null or blank string is only accepted when
// nullable is true.
func parseEpoch(raw json.RawMessage, nullable bool) (*time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	if bytes.Equal(raw, jsonNull) {
		if nullable {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid Unix epoch timestamp: null")
	}

	var digits string
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("invalid Unix epoch timestamp: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" && nullable {
			return nil, nil
		}
		digits = s
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		digits = string(raw)
	default:
		return nil, fmt.Errorf("invalid Unix epoch timestamp: %s", raw)
	}

	seconds, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid Unix epoch timestamp %q", digits)
	}

	t := time.Unix(seconds, 0).UTC()
	return &t, nil
}

// formatEpoch encodes t as a JSON number of epoch seconds, or null.
func formatEpoch(t *time.Time) json.RawMessage {
	if t == nil {
		return json.RawMessage(jsonNull)
	}
	return json.RawMessage(strconv.FormatInt(t.UTC().Unix(), 10))
}
