package proxy

import (
	"net/http"

	"github.com/hashicorp-forge/workflowy/internal/server"
)

// HealthPath is served outside the base path.
const HealthPath = "/health"

type endpoint struct {
	method  string
	path    string
	handler http.Handler
}

// NewHandler returns the proxy routes mounted under basePath, plus the
// health endpoint. basePath must be normalized ("/WFAPI" or "").
func NewHandler(srv server.Server, basePath string) http.Handler {
	endpoints := []endpoint{
		{http.MethodGet, "/node/{id}", GetNodeHandler(srv)},
		{http.MethodGet, "/nodes", GetNodesHandler(srv)},
		{http.MethodPost, "/node", CreateNodeHandler(srv)},
		{http.MethodPost, "/node/{id}", UpdateNodeHandler(srv)},
		{http.MethodDelete, "/node/{id}", DeleteNodeHandler(srv)},
		{http.MethodPost, "/node/{id}/complete", CompleteNodeHandler(srv)},
		{http.MethodPost, "/node/{id}/uncomplete", UncompleteNodeHandler(srv)},
		{http.MethodPost, "/node/{id}/move", MoveNodeHandler(srv)},
		{http.MethodGet, "/export", ExportHandler(srv)},
		{http.MethodGet, "/tree", TreeHandler(srv)},
	}

	mux := http.NewServeMux()
	mux.Handle("GET "+HealthPath, HealthHandler(srv))
	for _, e := range endpoints {
		mux.Handle(e.method+" "+basePath+e.path, e.handler)
	}

	// Unmatched routes still get an envelope.
	mux.Handle("/", NotFoundHandler(srv))

	return mux
}

// HealthHandler reports that the server is up. It does not call the API.
func HealthHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondOK(srv, w, r, statusOK)
	})
}

// NotFoundHandler responds with a 404 envelope.
func NotFoundHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(srv, w, r, Envelope{
			Type:   problemType,
			Title:  "Not Found",
			Status: http.StatusNotFound,
			Detail: "no route for " + r.Method + " " + r.URL.Path,
		})
	})
}
