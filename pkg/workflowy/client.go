package workflowy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
)

// Client is a typed client for the Workflowy REST API. It holds no per-call
// state and is safe for concurrent use.
type Client struct {
	transport Transport
	logger    hclog.Logger
}

// NewClient creates a client that talks to the API over HTTP.
func NewClient(cfg *Config) (*Client, error) {
	t, err := NewHTTPTransport(cfg)
	if err != nil {
		return nil, err
	}
	return NewClientWithTransport(t, cfg.Logger), nil
}

// NewClientWithTransport creates a client on top of an existing transport.
// logger may be nil.
func NewClientWithTransport(t Transport, logger hclog.Logger) *Client {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Client{
		transport: t,
		logger:    logger.Named("workflowy"),
	}
}

// CreateNodeRequest contains the fields used to create a node.
type CreateNodeRequest struct {
	// ParentID is optional. Blank creates the node at the top level.
	ParentID   string
	Name       string
	Note       string
	LayoutMode string
	Position   Position
}

// Validate checks the request before it is sent.
func (r CreateNodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Position, validation.In(PositionTop, PositionBottom)),
	)
}

type createNodeBody struct {
	ParentID   string   `json:"parent_id,omitempty"`
	Name       string   `json:"name"`
	Note       *string  `json:"note"`
	LayoutMode string   `json:"layout_mode"`
	Position   Position `json:"position"`
}

// UpdateNodeRequest lists the fields to replace. Nil fields are left
// unchanged.
type UpdateNodeRequest struct {
	Name       *string `json:"name,omitempty"`
	Note       *string `json:"note,omitempty"`
	LayoutMode *string `json:"layout_mode,omitempty"`
}

// Validate checks the request before it is sent.
func (r UpdateNodeRequest) Validate() error {
	if r.Name == nil && r.Note == nil && r.LayoutMode == nil {
		return errors.New("at least one of name, note or layout mode is required")
	}
	if r.Name != nil {
		if err := validation.Validate(*r.Name, validation.Required); err != nil {
			return fmt.Errorf("name: %w", err)
		}
	}
	return nil
}

type moveNodeBody struct {
	ParentID string   `json:"parent_id"`
	Position Position `json:"position"`
}

// CreateNode creates a node and returns its id.
func (c *Client) CreateNode(ctx context.Context, req CreateNodeRequest) (string, error) {
	const op = "create node"

	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	body := createNodeBody{
		ParentID:   strings.TrimSpace(req.ParentID),
		Name:       req.Name,
		LayoutMode: req.LayoutMode,
		Position:   req.Position,
	}
	if body.LayoutMode == "" {
		body.LayoutMode = "default"
	}
	if req.Note != "" {
		note := req.Note
		body.Note = &note
	}

	resp, err := c.do(ctx, op, ModeStatusCode, http.MethodPost, "nodes", body)
	if err != nil {
		return "", err
	}

	id, err := DecodeCreatedID(op, resp.Body)
	if err != nil {
		return "", withStatus(err, resp)
	}
	return id, nil
}

// GetNode fetches a single node. The returned node has no ParentID.
func (c *Client) GetNode(ctx context.Context, id string) (*Node, error) {
	const op = "get node"

	if err := requireID(op, id); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, op, ModeStatusCode, http.MethodGet, nodePath(id), nil)
	if err != nil {
		return nil, err
	}

	node, err := DecodeNode(op, resp.Body)
	if err != nil {
		return nil, withStatus(err, resp)
	}
	return node, nil
}

// GetNodes lists the children of parentID. A blank parentID lists the top
// level.
func (c *Client) GetNodes(ctx context.Context, parentID string) ([]Node, error) {
	const op = "get nodes"

	parent := strings.TrimSpace(parentID)
	if parent == "" {
		parent = rootScope
	}
	path := "nodes?parent_id=" + url.QueryEscape(parent)

	resp, err := c.do(ctx, op, ModeStatusCode, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	nodes, err := DecodeNodes(op, resp.Body, ShapeNodeArray)
	if err != nil {
		return nil, withStatus(err, resp)
	}
	return nodes, nil
}

// UpdateNode replaces the given fields of a node.
func (c *Client) UpdateNode(ctx context.Context, id string, req UpdateNodeRequest) error {
	const op = "update node"

	if err := requireID(op, id); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err := c.do(ctx, op, ModeStatusConfirm, http.MethodPost, nodePath(id), req)
	return err
}

// DeleteNode permanently deletes a node.
func (c *Client) DeleteNode(ctx context.Context, id string) error {
	const op = "delete node"

	if err := requireID(op, id); err != nil {
		return err
	}

	_, err := c.do(ctx, op, ModeStatusConfirm, http.MethodDelete, nodePath(id), nil)
	return err
}

// CompleteNode marks a node as completed.
func (c *Client) CompleteNode(ctx context.Context, id string) error {
	const op = "complete node"

	if err := requireID(op, id); err != nil {
		return err
	}

	_, err := c.do(ctx, op, ModeStatusConfirm, http.MethodPost, nodePath(id)+"/complete", nil)
	return err
}

// UncompleteNode marks a node as not completed.
func (c *Client) UncompleteNode(ctx context.Context, id string) error {
	const op = "uncomplete node"

	if err := requireID(op, id); err != nil {
		return err
	}

	_, err := c.do(ctx, op, ModeStatusConfirm, http.MethodPost, nodePath(id)+"/uncomplete", nil)
	return err
}

// MoveNode moves a node under target at the given position.
func (c *Client) MoveNode(ctx context.Context, id string, target Target, pos Position) error {
	const op = "move node"

	if err := requireID(op, id); err != nil {
		return err
	}
	if err := target.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	body := moveNodeBody{
		ParentID: target.Token(),
		Position: pos,
	}
	_, err := c.do(ctx, op, ModeStatusConfirm, http.MethodPost, nodePath(id)+"/move", body)
	return err
}

// ExportNodes returns every node of the account as a flat list. Exported
// nodes carry ParentID.
func (c *Client) ExportNodes(ctx context.Context) ([]Node, error) {
	const op = "export nodes"

	resp, err := c.do(ctx, op, ModeStatusCode, http.MethodGet, "nodes-export", nil)
	if err != nil {
		return nil, err
	}

	nodes, err := DecodeNodes(op, resp.Body, ShapeNodesEnvelope)
	if err != nil {
		return nil, withStatus(err, resp)
	}
	return nodes, nil
}

// GetAllNodesAsTree exports every node and rebuilds the outline.
func (c *Client) GetAllNodesAsTree(ctx context.Context) (*Forest, error) {
	nodes, err := c.ExportNodes(ctx)
	if err != nil {
		return nil, err
	}

	forest, err := BuildTree(nodes)
	if err != nil {
		return nil, fmt.Errorf("error building tree: %w", err)
	}

	if len(forest.Orphans) > 0 {
		c.logger.Warn("exported nodes reference missing parents",
			"orphans", len(forest.Orphans),
		)
	}
	return forest, nil
}

// do sends one request and classifies the outcome.
func (c *Client) do(ctx context.Context, op string, mode Mode, method, path string, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to marshal request body: %w", op, err)
		}
	}

	resp, sendErr := c.transport.Send(ctx, method, path, payload)
	if err := Classify(op, mode, resp, sendErr); err != nil {
		c.logger.Debug("workflowy request failed",
			"op", op,
			"method", method,
			"path", path,
			"error", err,
		)
		return nil, err
	}

	c.logger.Trace("workflowy request succeeded", "op", op, "status", resp.StatusCode)
	return resp, nil
}

func requireID(op, id string) error {
	if err := validation.Validate(strings.TrimSpace(id), validation.Required); err != nil {
		return fmt.Errorf("%s: node id: %w", op, err)
	}
	return nil
}

func nodePath(id string) string {
	return "nodes/" + url.PathEscape(strings.TrimSpace(id))
}

// withStatus records the HTTP status on decoder errors.
func withStatus(err error, resp *Response) error {
	var wfErr *Error
	if errors.As(err, &wfErr) && wfErr.StatusCode == 0 {
		wfErr.StatusCode = resp.StatusCode
		wfErr.Reason = resp.Reason
	}
	return err
}
