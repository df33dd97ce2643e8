// Package workflowy is a typed client for the Workflowy REST API.
//
// # Overview
//
// The API is loosely typed: timestamps arrive as numbers or strings, nodes
// arrive wrapped in {"node": ...}, {"nodes": [...]} or as bare arrays, and
// success is signalled in two different ways. This package normalizes all of
// that into Node values and a single *Error type.
//
// # Success conventions
//
// Reads (GetNode, GetNodes, ExportNodes) and CreateNode succeed on any 2xx
// status; the body is then decoded. Mutations (UpdateNode, DeleteNode,
// CompleteNode, UncompleteNode, MoveNode) additionally require a
// {"status": "ok"} body, compared case-insensitively. See Classify.
//
// # Errors
//
// Every failed call returns an *Error whose Kind is one of:
//
//   - TransportFailure  - no response (network error, timeout, cancellation)
//   - HttpFailure       - non-2xx status
//   - MalformedResponse - 2xx but not JSON where JSON was required
//   - UnexpectedShape   - JSON without "status", "node", "nodes" or "item_id"
//   - StatusNotOk       - "status" present but not "ok"
//   - DecodeError       - fields that don't map onto Node
//
// Use errors.As or IsKind to inspect them. Requests that fail local
// validation (blank ids, missing name) are rejected before any I/O with a
// plain error.
//
// # Trees
//
// ExportNodes returns the whole account as a flat list with parent ids.
// BuildTree, or Client.GetAllNodesAsTree, links that list into a Forest in
// linear time. Nodes whose parent is missing from the export become roots
// and are listed in Forest.Orphans; parent cycles fail with *CycleError.
//
// # Configuration Example
//
//	client, err := workflowy.NewClient(&workflowy.Config{
//	  APIKey:  os.Getenv("WORKFLOWY_APIKEY"),
//	  Timeout: 30 * time.Second,
//	  Logger:  logger,
//	})
package workflowy
