package workflowy

import (
	"fmt"
	"strings"
)

// Position is where a created or moved node is placed among its siblings.
// The zero value places the node at the bottom.
type Position int

const (
	PositionBottom Position = iota
	PositionTop
)

func (p Position) String() string {
	switch p {
	case PositionTop:
		return "top"
	case PositionBottom:
		return "bottom"
	default:
		return fmt.Sprintf("Position(%d)", int(p))
	}
}

// MarshalText encodes the position as its lowercase wire token.
func (p Position) MarshalText() ([]byte, error) {
	switch p {
	case PositionTop, PositionBottom:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("invalid position %d", int(p))
	}
}

// UnmarshalText accepts "top" or "bottom" in any case. "first" and "last"
// are accepted as aliases.
func (p *Position) UnmarshalText(text []byte) error {
	parsed, err := ParsePosition(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePosition parses a position token. A blank token is PositionBottom.
func ParsePosition(s string) (Position, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bottom", "last":
		return PositionBottom, nil
	case "top", "first":
		return PositionTop, nil
	default:
		return PositionBottom, fmt.Errorf("invalid position %q: must be top or bottom", s)
	}
}

type targetKind int

const (
	targetNode targetKind = iota
	targetTopLevel
	targetHome
	targetInbox
)

// Target is a move destination: one of the reserved locations or an
// existing node.
type Target struct {
	kind targetKind
	id   string
}

var (
	// TargetTopLevel is the top level of the outline.
	TargetTopLevel = Target{kind: targetTopLevel}

	// TargetHome is the user's home node.
	TargetHome = Target{kind: targetHome}

	// TargetInbox is the user's inbox.
	TargetInbox = Target{kind: targetInbox}
)

// rootScope is the token the API uses for "no parent".
const rootScope = "None"

// NodeTarget returns a target for the node with the given id.
func NodeTarget(id string) Target {
	return Target{kind: targetNode, id: strings.TrimSpace(id)}
}

// ParseTarget maps user input onto a target. "top", "toplevel", "top-level"
// and "none" select the top level, "home" and "inbox" select those locations
// and anything else is taken as a node id.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Target{}, fmt.Errorf("target is required")
	case "top", "toplevel", "top-level", "none":
		return TargetTopLevel, nil
	case "home":
		return TargetHome, nil
	case "inbox":
		return TargetInbox, nil
	default:
		return NodeTarget(s), nil
	}
}

// Token returns the value sent as parent_id.
func (t Target) Token() string {
	switch t.kind {
	case targetTopLevel:
		return rootScope
	case targetHome:
		return "home"
	case targetInbox:
		return "inbox"
	default:
		return t.id
	}
}

// NodeID returns the id for node targets and "" for reserved locations.
func (t Target) NodeID() string {
	if t.kind == targetNode {
		return t.id
	}
	return ""
}

// Validate rejects node targets without an id.
func (t Target) Validate() error {
	if t.kind == targetNode && t.id == "" {
		return fmt.Errorf("target node id is required")
	}
	return nil
}

func (t Target) String() string {
	switch t.kind {
	case targetTopLevel:
		return "top-level"
	case targetHome, targetInbox:
		return t.Token()
	default:
		return "node " + t.id
	}
}
