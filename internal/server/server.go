package server

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/workflowy/internal/config"
	"github.com/hashicorp-forge/workflowy/pkg/workflowy"
)

// Workflowy is the subset of *workflowy.Client used by the proxy handlers.
type Workflowy interface {
	CreateNode(ctx context.Context, req workflowy.CreateNodeRequest) (string, error)
	GetNode(ctx context.Context, id string) (*workflowy.Node, error)
	GetNodes(ctx context.Context, parentID string) ([]workflowy.Node, error)
	UpdateNode(ctx context.Context, id string, req workflowy.UpdateNodeRequest) error
	DeleteNode(ctx context.Context, id string) error
	CompleteNode(ctx context.Context, id string) error
	UncompleteNode(ctx context.Context, id string) error
	MoveNode(ctx context.Context, id string, target workflowy.Target, pos workflowy.Position) error
	ExportNodes(ctx context.Context) ([]workflowy.Node, error)
	GetAllNodesAsTree(ctx context.Context) (*workflowy.Forest, error)
}

var _ Workflowy = (*workflowy.Client)(nil)

// Server contains the server configuration.
type Server struct {
	// Workflowy is the API client the handlers call.
	Workflowy Workflowy

	// Config is the config for the server.
	Config *config.Config

	// Logger is the logger for the server.
	Logger hclog.Logger
}
