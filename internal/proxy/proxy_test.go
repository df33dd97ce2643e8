package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/workflowy/internal/config"
	"github.com/hashicorp-forge/workflowy/internal/server"
	"github.com/hashicorp-forge/workflowy/pkg/workflowy"
)

// fakeWorkflowy records calls and returns canned results.
type fakeWorkflowy struct {
	err error

	node    *workflowy.Node
	nodes   []workflowy.Node
	forest  *workflowy.Forest
	created string

	calls      []string
	lastCreate workflowy.CreateNodeRequest
	lastUpdate workflowy.UpdateNodeRequest
	lastParent string
	lastTarget workflowy.Target
	lastPos    workflowy.Position
}

func (f *fakeWorkflowy) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeWorkflowy) CreateNode(_ context.Context, req workflowy.CreateNodeRequest) (string, error) {
	f.lastCreate = req
	if err := f.record("create"); err != nil {
		return "", err
	}
	return f.created, nil
}

func (f *fakeWorkflowy) GetNode(_ context.Context, id string) (*workflowy.Node, error) {
	if err := f.record("get " + id); err != nil {
		return nil, err
	}
	return f.node, nil
}

func (f *fakeWorkflowy) GetNodes(_ context.Context, parentID string) ([]workflowy.Node, error) {
	f.lastParent = parentID
	if err := f.record("list"); err != nil {
		return nil, err
	}
	return f.nodes, nil
}

func (f *fakeWorkflowy) UpdateNode(_ context.Context, id string, req workflowy.UpdateNodeRequest) error {
	f.lastUpdate = req
	return f.record("update " + id)
}

func (f *fakeWorkflowy) DeleteNode(_ context.Context, id string) error {
	return f.record("delete " + id)
}

func (f *fakeWorkflowy) CompleteNode(_ context.Context, id string) error {
	return f.record("complete " + id)
}

func (f *fakeWorkflowy) UncompleteNode(_ context.Context, id string) error {
	return f.record("uncomplete " + id)
}

func (f *fakeWorkflowy) MoveNode(_ context.Context, id string, target workflowy.Target, pos workflowy.Position) error {
	f.lastTarget = target
	f.lastPos = pos
	return f.record("move " + id)
}

func (f *fakeWorkflowy) ExportNodes(context.Context) ([]workflowy.Node, error) {
	if err := f.record("export"); err != nil {
		return nil, err
	}
	return f.nodes, nil
}

func (f *fakeWorkflowy) GetAllNodesAsTree(context.Context) (*workflowy.Forest, error) {
	if err := f.record("tree"); err != nil {
		return nil, err
	}
	return f.forest, nil
}

type envelope struct {
	Type    string          `json:"type"`
	Title   string          `json:"title"`
	Status  int             `json:"status"`
	Detail  string          `json:"detail"`
	Data    json.RawMessage `json:"data"`
	Errors  map[string]any  `json:"errors"`
	TraceID string          `json:"traceId"`
}

func newTestHandler(fake *fakeWorkflowy) http.Handler {
	srv := server.Server{
		Workflowy: fake,
		Config:    config.Default(),
		Logger:    hclog.NewNullLogger(),
	}
	return NewHandler(srv, srv.Config.NormalizedBasePath())
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, rec.Code, env.Status)
	assert.NotEmpty(t, env.TraceID)
	assert.NotNil(t, env.Errors)
	return rec, env
}

func TestGetNode(t *testing.T) {
	fake := &fakeWorkflowy{node: &workflowy.Node{ID: "id_1", Name: "Test Node"}}
	h := newTestHandler(fake)

	rec, env := do(t, h, http.MethodGet, "/WFAPI/node/id_1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", env.Title)
	assert.Empty(t, env.Type)
	assert.Equal(t, []string{"get id_1"}, fake.calls)

	var node workflowy.Node
	require.NoError(t, json.Unmarshal(env.Data, &node))
	assert.Equal(t, "id_1", node.ID)
	assert.Equal(t, "Test Node", node.Name)
}

func TestGetNodes(t *testing.T) {
	fake := &fakeWorkflowy{nodes: []workflowy.Node{{ID: "a"}, {ID: "b"}}}
	h := newTestHandler(fake)

	rec, env := do(t, h, http.MethodGet, "/WFAPI/nodes?parentId=p1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", fake.lastParent)

	var nodes []workflowy.Node
	require.NoError(t, json.Unmarshal(env.Data, &nodes))
	assert.Len(t, nodes, 2)

	_, _ = do(t, h, http.MethodGet, "/WFAPI/nodes", "")
	assert.Empty(t, fake.lastParent)
}

func TestCreateNode(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fake := &fakeWorkflowy{created: "id_1"}
		h := newTestHandler(fake)

		rec, env := do(t, h, http.MethodPost, "/WFAPI/node",
			`{"parentId": "p", "name": "Test Node", "note": "n", "layoutMode": "board", "position": "top"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id": "id_1"}`, string(env.Data))
		assert.Equal(t, workflowy.CreateNodeRequest{
			ParentID:   "p",
			Name:       "Test Node",
			Note:       "n",
			LayoutMode: "board",
			Position:   workflowy.PositionTop,
		}, fake.lastCreate)
	})

	t.Run("missing name", func(t *testing.T) {
		fake := &fakeWorkflowy{}
		h := newTestHandler(fake)

		rec, env := do(t, h, http.MethodPost, "/WFAPI/node", `{"note": "n", "position": "sideways"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "One or more validation errors occurred.", env.Title)
		assert.Equal(t, "null", string(env.Data))
		assert.Contains(t, env.Errors, "name")
		assert.Contains(t, env.Errors, "position")
		assert.Empty(t, fake.calls)
	})

	t.Run("invalid json", func(t *testing.T) {
		fake := &fakeWorkflowy{}
		rec, env := do(t, newTestHandler(fake), http.MethodPost, "/WFAPI/node", `{"name":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, env.Errors, "body")
		assert.Empty(t, fake.calls)
	})

	t.Run("empty body", func(t *testing.T) {
		rec, env := do(t, newTestHandler(&fakeWorkflowy{}), http.MethodPost, "/WFAPI/node", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, []any{"request body is required"}, env.Errors["body"])
	})
}

func TestUpdateNode(t *testing.T) {
	t.Run("name only", func(t *testing.T) {
		fake := &fakeWorkflowy{}
		rec, env := do(t, newTestHandler(fake), http.MethodPost, "/WFAPI/node/n1", `{"name": "Renamed"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status": "ok"}`, string(env.Data))
		require.NotNil(t, fake.lastUpdate.Name)
		assert.Equal(t, "Renamed", *fake.lastUpdate.Name)
		assert.Nil(t, fake.lastUpdate.Note)
		assert.Equal(t, []string{"update n1"}, fake.calls)
	})

	t.Run("blank name", func(t *testing.T) {
		fake := &fakeWorkflowy{}
		rec, env := do(t, newTestHandler(fake), http.MethodPost, "/WFAPI/node/n1", `{"name": ""}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, []any{"The Name field is required."}, env.Errors["name"])
		assert.Empty(t, fake.calls)
	})

	t.Run("no fields", func(t *testing.T) {
		fake := &fakeWorkflowy{}
		rec, _ := do(t, newTestHandler(fake), http.MethodPost, "/WFAPI/node/n1", `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, fake.calls)
	})
}

func TestNodeActions(t *testing.T) {
	cases := []struct {
		method string
		path   string
		call   string
	}{
		{http.MethodDelete, "/WFAPI/node/n1", "delete n1"},
		{http.MethodPost, "/WFAPI/node/n1/complete", "complete n1"},
		{http.MethodPost, "/WFAPI/node/n1/uncomplete", "uncomplete n1"},
	}
	for _, tc := range cases {
		t.Run(tc.call, func(t *testing.T) {
			fake := &fakeWorkflowy{}
			rec, env := do(t, newTestHandler(fake), tc.method, tc.path, "")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"status": "ok"}`, string(env.Data))
			assert.Equal(t, []string{tc.call}, fake.calls)
		})
	}

	t.Run("blank id", func(t *testing.T) {
		fake := &fakeWorkflowy{}
		rec, env := do(t, newTestHandler(fake), http.MethodDelete, "/WFAPI/node/%20", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, []any{"Node ID is required."}, env.Errors["id"])
		assert.Empty(t, fake.calls)
	})
}

func TestMoveNode(t *testing.T) {
	t.Run("reserved target", func(t *testing.T) {
		fake := &fakeWorkflowy{}
		rec, _ := do(t, newTestHandler(fake), http.MethodPost, "/WFAPI/node/n1/move",
			`{"target": "inbox", "position": "top"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, workflowy.TargetInbox, fake.lastTarget)
		assert.Equal(t, workflowy.PositionTop, fake.lastPos)
	})

	t.Run("node target", func(t *testing.T) {
		fake := &fakeWorkflowy{}
		rec, _ := do(t, newTestHandler(fake), http.MethodPost, "/WFAPI/node/n1/move", `{"target": "p2"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "p2", fake.lastTarget.NodeID())
		assert.Equal(t, workflowy.PositionBottom, fake.lastPos)
	})

	t.Run("missing target", func(t *testing.T) {
		fake := &fakeWorkflowy{}
		rec, env := do(t, newTestHandler(fake), http.MethodPost, "/WFAPI/node/n1/move", `{"position": "top"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, env.Errors, "target")
		assert.Empty(t, fake.calls)
	})
}

func TestExportAndTree(t *testing.T) {
	nodes := []workflowy.Node{
		{ID: "p"},
		{ID: "c1", ParentID: "p"},
		{ID: "c2", ParentID: "p"},
	}
	forest, err := workflowy.BuildTree(nodes)
	require.NoError(t, err)

	fake := &fakeWorkflowy{nodes: nodes, forest: forest}
	h := newTestHandler(fake)

	_, env := do(t, h, http.MethodGet, "/WFAPI/export", "")
	var exported []workflowy.Node
	require.NoError(t, json.Unmarshal(env.Data, &exported))
	assert.Len(t, exported, 3)

	_, env = do(t, h, http.MethodGet, "/WFAPI/tree", "")
	var tree struct {
		Roots []struct {
			ID       string `json:"id"`
			Children []struct {
				ID       string `json:"id"`
				ParentID string `json:"parent_id"`
			} `json:"children"`
		} `json:"roots"`
		Orphans []string `json:"orphans"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tree))
	require.Len(t, tree.Roots, 1)
	assert.Equal(t, "p", tree.Roots[0].ID)
	require.Len(t, tree.Roots[0].Children, 2)
	assert.Equal(t, "c1", tree.Roots[0].Children[0].ID)
	assert.Equal(t, "p", tree.Roots[0].Children[0].ParentID)
	assert.Equal(t, "c2", tree.Roots[0].Children[1].ID)
	assert.Empty(t, tree.Orphans)
}

func TestErrorMapping(t *testing.T) {
	timeoutErr := &workflowy.Error{
		Kind: workflowy.TransportFailure,
		Op:   "get node",
		Err:  context.DeadlineExceeded,
	}

	cases := []struct {
		name   string
		err    error
		status int
		title  string
		detail string
	}{
		{
			name: "remote not found",
			err: &workflowy.Error{
				Kind: workflowy.HttpFailure, StatusCode: 404, Reason: "Not Found",
				Detail: map[string]any{"detail": "not found"},
			},
			status: http.StatusNotFound,
			title:  "Workflowy API error",
			detail: "not found",
		},
		{
			name:   "remote redirect",
			err:    &workflowy.Error{Kind: workflowy.HttpFailure, StatusCode: 302},
			status: http.StatusBadGateway,
			title:  "Workflowy API error",
		},
		{
			name:   "connection refused",
			err:    &workflowy.Error{Kind: workflowy.TransportFailure, Err: errors.New("connection refused")},
			status: http.StatusBadGateway,
			title:  "Workflowy API error",
			detail: "connection refused",
		},
		{
			name:   "timeout",
			err:    timeoutErr,
			status: http.StatusGatewayTimeout,
			title:  "Workflowy API error",
		},
		{
			name: "status not ok",
			err: &workflowy.Error{
				Kind: workflowy.StatusNotOk, StatusCode: 200,
				Detail: map[string]any{"status": "failed"},
			},
			status: http.StatusBadGateway,
			title:  "Workflowy API error",
			detail: `status "failed"`,
		},
		{
			name:   "malformed",
			err:    &workflowy.Error{Kind: workflowy.MalformedResponse, StatusCode: 200, Detail: "<html>"},
			status: http.StatusBadGateway,
			title:  "Workflowy API error",
		},
		{
			name:   "unexpected shape",
			err:    &workflowy.Error{Kind: workflowy.UnexpectedShape, StatusCode: 200},
			status: http.StatusBadGateway,
			title:  "Workflowy API error",
		},
		{
			name:   "decode error",
			err:    &workflowy.Error{Kind: workflowy.DecodeError, StatusCode: 200},
			status: http.StatusBadGateway,
			title:  "Workflowy API error",
		},
		{
			name:   "other",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			title:  "An error occurred while fetching the node.",
			detail: "boom",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeWorkflowy{err: tc.err}
			rec, env := do(t, newTestHandler(fake), http.MethodGet, "/WFAPI/node/n1", "")

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.title, env.Title)
			assert.Equal(t, "about:blank", env.Type)
			assert.Equal(t, "null", string(env.Data))
			if tc.detail != "" {
				assert.Equal(t, tc.detail, env.Detail)
			}
		})
	}

	t.Run("remote error content", func(t *testing.T) {
		fake := &fakeWorkflowy{err: &workflowy.Error{
			Kind: workflowy.HttpFailure, StatusCode: 401,
			Detail: map[string]any{"error": "bad key", "code": float64(7)},
		}}
		_, env := do(t, newTestHandler(fake), http.MethodDelete, "/WFAPI/node/n1", "")

		assert.Equal(t, "bad key", env.Detail)
		assert.Equal(t, map[string]any{"error": "bad key", "code": float64(7)}, env.Errors)
	})

	t.Run("text body", func(t *testing.T) {
		fake := &fakeWorkflowy{err: &workflowy.Error{
			Kind: workflowy.HttpFailure, StatusCode: 503, Detail: "down for maintenance",
		}}
		rec, env := do(t, newTestHandler(fake), http.MethodGet, "/WFAPI/export", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, map[string]any{"detail": "down for maintenance"}, env.Errors)
	})

	t.Run("client side validation", func(t *testing.T) {
		fake := &fakeWorkflowy{err: workflowy.CreateNodeRequest{}.Validate()}
		rec, env := do(t, newTestHandler(fake), http.MethodPost, "/WFAPI/node", `{"name": "x"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, env.Errors, "name")
	})
}

type timeoutError struct{}

func (timeoutError) Error() string { return "i/o timeout" }
func (timeoutError) Timeout() bool { return true }

func TestStatusForTimeout(t *testing.T) {
	err := &workflowy.Error{
		Kind: workflowy.TransportFailure,
		Err:  fmt.Errorf("request failed: %w", timeoutError{}),
	}
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(err))
	assert.Equal(t, http.StatusInternalServerError, statusFor(timeoutError{}))
}

func TestTraceID(t *testing.T) {
	h := newTestHandler(&fakeWorkflowy{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(TraceHeader, "trace-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "trace-123", env.TraceID)
	assert.Equal(t, "trace-123", rec.Header().Get(TraceHeader))

	_, a := do(t, h, http.MethodGet, "/health", "")
	_, b := do(t, h, http.MethodGet, "/health", "")
	assert.NotEqual(t, a.TraceID, b.TraceID)
}

func TestRouting(t *testing.T) {
	t.Run("unknown route", func(t *testing.T) {
		rec, env := do(t, newTestHandler(&fakeWorkflowy{}), http.MethodGet, "/WFAPI/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Not Found", env.Title)
	})

	t.Run("custom base path", func(t *testing.T) {
		fake := &fakeWorkflowy{node: &workflowy.Node{ID: "a"}}
		srv := server.Server{Workflowy: fake, Logger: hclog.NewNullLogger()}
		h := NewHandler(srv, "")

		rec, _ := do(t, h, http.MethodGet, "/node/a", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"get a"}, fake.calls)
	})

	t.Run("health does not call the api", func(t *testing.T) {
		fake := &fakeWorkflowy{}
		rec, _ := do(t, newTestHandler(fake), http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, fake.calls)
	})
}
