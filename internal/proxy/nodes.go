package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/hashicorp-forge/workflowy/internal/server"
	"github.com/hashicorp-forge/workflowy/pkg/workflowy"
)

// NodeCreateRequest is the body of POST /node.
type NodeCreateRequest struct {
	ParentID   string `json:"parentId,omitempty"`
	Name       string `json:"name"`
	Note       string `json:"note,omitempty"`
	LayoutMode string `json:"layoutMode,omitempty"`
	Position   string `json:"position,omitempty"`
}

func (r NodeCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("The Name field is required.")),
		validation.Field(&r.Position, validation.By(position)),
	)
}

// NodeUpdateRequest is the body of POST /node/{id}. Omitted fields are left
// unchanged.
type NodeUpdateRequest struct {
	Name       *string `json:"name,omitempty"`
	Note       *string `json:"note,omitempty"`
	LayoutMode *string `json:"layoutMode,omitempty"`
}

func (r NodeUpdateRequest) Validate() error {
	if r.Name == nil && r.Note == nil && r.LayoutMode == nil {
		return validation.Errors{
			"name": errors.New("at least one of name, note or layoutMode is required"),
		}
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty.Error("The Name field is required.")),
	)
}

// NodeMoveRequest is the body of POST /node/{id}/move.
type NodeMoveRequest struct {
	// Target is a node id or one of "top-level", "home" and "inbox".
	Target   string `json:"target"`
	Position string `json:"position,omitempty"`
}

func (r NodeMoveRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Target, validation.Required),
		validation.Field(&r.Position, validation.By(position)),
	)
}

type statusResponse struct {
	Status string `json:"status"`
}

type createResponse struct {
	ID string `json:"id"`
}

var statusOK = statusResponse{Status: "ok"}

// GetNodeHandler returns a single node.
func GetNodeHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := nodeID(srv, w, r)
		if !ok {
			return
		}

		node, err := srv.Workflowy.GetNode(r.Context(), id)
		if err != nil {
			respondError(srv, w, r, "An error occurred while fetching the node.", err)
			return
		}
		respondOK(srv, w, r, node)
	})
}

// GetNodesHandler lists the children of the parentId query parameter, or the
// top level when it is absent.
func GetNodesHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nodes, err := srv.Workflowy.GetNodes(r.Context(), r.URL.Query().Get("parentId"))
		if err != nil {
			respondError(srv, w, r, "An error occurred while fetching nodes.", err)
			return
		}
		respondOK(srv, w, r, nodes)
	})
}

// CreateNodeHandler creates a node and responds with its id.
func CreateNodeHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req NodeCreateRequest
		if err := decodeRequest(r, &req); err != nil {
			srv.Logger.Warn("error decoding request",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path,
			)
			respondValidation(srv, w, r, validation.Errors{"body": err})
			return
		}
		if err := req.Validate(); err != nil {
			respondValidation(srv, w, r, err)
			return
		}

		// Validated above.
		pos, _ := workflowy.ParsePosition(req.Position)

		id, err := srv.Workflowy.CreateNode(r.Context(), workflowy.CreateNodeRequest{
			ParentID:   req.ParentID,
			Name:       req.Name,
			Note:       req.Note,
			LayoutMode: req.LayoutMode,
			Position:   pos,
		})
		if err != nil {
			respondError(srv, w, r, "An error occurred while creating the node.", err)
			return
		}

		srv.Logger.Info("created node", "id", id)
		respondOK(srv, w, r, createResponse{ID: id})
	})
}

// UpdateNodeHandler replaces the given fields of a node.
func UpdateNodeHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := nodeID(srv, w, r)
		if !ok {
			return
		}

		var req NodeUpdateRequest
		if err := decodeRequest(r, &req); err != nil {
			respondValidation(srv, w, r, validation.Errors{"body": err})
			return
		}
		if err := req.Validate(); err != nil {
			respondValidation(srv, w, r, err)
			return
		}

		err := srv.Workflowy.UpdateNode(r.Context(), id, workflowy.UpdateNodeRequest{
			Name:       req.Name,
			Note:       req.Note,
			LayoutMode: req.LayoutMode,
		})
		if err != nil {
			respondError(srv, w, r, "An error occurred while updating the node.", err)
			return
		}
		respondOK(srv, w, r, statusOK)
	})
}

// DeleteNodeHandler permanently deletes a node.
func DeleteNodeHandler(srv server.Server) http.Handler {
	return nodeActionHandler(srv, "deleting", srv.Workflowy.DeleteNode)
}

// CompleteNodeHandler marks a node as completed.
func CompleteNodeHandler(srv server.Server) http.Handler {
	return nodeActionHandler(srv, "completing", srv.Workflowy.CompleteNode)
}

// UncompleteNodeHandler marks a node as not completed.
func UncompleteNodeHandler(srv server.Server) http.Handler {
	return nodeActionHandler(srv, "uncompleting", srv.Workflowy.UncompleteNode)
}

// MoveNodeHandler moves a node under a target.
func MoveNodeHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := nodeID(srv, w, r)
		if !ok {
			return
		}

		var req NodeMoveRequest
		if err := decodeRequest(r, &req); err != nil {
			respondValidation(srv, w, r, validation.Errors{"body": err})
			return
		}
		if err := req.Validate(); err != nil {
			respondValidation(srv, w, r, err)
			return
		}

		target, err := workflowy.ParseTarget(req.Target)
		if err != nil {
			respondValidation(srv, w, r, validation.Errors{"target": err})
			return
		}
		pos, _ := workflowy.ParsePosition(req.Position)

		if err := srv.Workflowy.MoveNode(r.Context(), id, target, pos); err != nil {
			respondError(srv, w, r, "An error occurred while moving the node.", err)
			return
		}
		respondOK(srv, w, r, statusOK)
	})
}

// ExportHandler returns every node as a flat list.
func ExportHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nodes, err := srv.Workflowy.ExportNodes(r.Context())
		if err != nil {
			respondError(srv, w, r, "An error occurred while exporting nodes.", err)
			return
		}
		respondOK(srv, w, r, nodes)
	})
}

// TreeHandler returns every node rebuilt into a nested outline.
func TreeHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		forest, err := srv.Workflowy.GetAllNodesAsTree(r.Context())
		if err != nil {
			respondError(srv, w, r, "An error occurred while building the tree.", err)
			return
		}
		respondOK(srv, w, r, forest)
	})
}

// nodeActionHandler runs an id-only action that the API confirms with
// {"status": "ok"}.
func nodeActionHandler(srv server.Server, verb string, action func(context.Context, string) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := nodeID(srv, w, r)
		if !ok {
			return
		}

		if err := action(r.Context(), id); err != nil {
			respondError(srv, w, r,
				fmt.Sprintf("An error occurred while %s the node.", verb), err)
			return
		}

		srv.Logger.Debug("node action succeeded", "action", verb, "id", id)
		respondOK(srv, w, r, statusOK)
	})
}

// nodeID reads and validates the {id} path value, responding with 400 when
// it is blank.
func nodeID(srv server.Server, w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := validation.Validate(id, validation.Required.Error("Node ID is required.")); err != nil {
		respondValidation(srv, w, r, validation.Errors{"id": err})
		return "", false
	}
	return id, true
}

// decodeRequest decodes the JSON request body into v.
func decodeRequest(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

const maxBodyBytes = 1 << 20

func position(value any) error {
	s, _ := value.(string)
	_, err := workflowy.ParsePosition(s)
	return err
}
