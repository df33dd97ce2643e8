package tree

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/workflowy/internal/cmd/base"
	"github.com/hashicorp-forge/workflowy/internal/config"
	"github.com/hashicorp-forge/workflowy/pkg/workflowy"
)

const exportBody = `{"nodes":[
	{"id":"home","name":"Home","parent_id":null,"completed":false},
	{"id":"milk","name":"Milk","parent_id":"home","completed":true},
	{"id":"eggs","name":"Eggs","parent_id":"home","completed":false},
	{"id":"brown","name":"Brown eggs","parent_id":"eggs","completed":false},
	{"id":"work","name":"","completed":false},
	{"id":"lost","name":"Lost","parent_id":"deleted","completed":false}
]}`

func testForest(t *testing.T) *workflowy.Forest {
	t.Helper()
	nodes, err := workflowy.DecodeNodes("export nodes", exportBody, workflowy.ShapeNodesEnvelope)
	require.NoError(t, err)
	forest, err := workflowy.BuildTree(nodes)
	require.NoError(t, err)
	return forest
}

func TestRender(t *testing.T) {
	forest := testForest(t)

	t.Run("everything", func(t *testing.T) {
		out := Render(forest.Roots, RenderOptions{})
		for _, name := range []string{"Home", "Milk", "Eggs", "Brown eggs", "(untitled)", "Lost"} {
			assert.Contains(t, out, name)
		}
		assert.Contains(t, out, "✔ Milk")
		assert.NotContains(t, out, "[home]")
		assert.Less(t, strings.Index(out, "Home"), strings.Index(out, "Milk"))
		assert.Less(t, strings.Index(out, "Eggs"), strings.Index(out, "Brown eggs"))
	})

	t.Run("depth", func(t *testing.T) {
		out := Render(forest.Roots, RenderOptions{MaxDepth: 2})
		assert.Contains(t, out, "Eggs")
		assert.NotContains(t, out, "Brown eggs")

		out = Render(forest.Roots, RenderOptions{MaxDepth: 1})
		assert.Contains(t, out, "Home")
		assert.NotContains(t, out, "Eggs")
	})

	t.Run("hide completed", func(t *testing.T) {
		out := Render(forest.Roots, RenderOptions{HideCompleted: true})
		assert.NotContains(t, out, "Milk")
		assert.Contains(t, out, "Brown eggs")
	})

	t.Run("ids", func(t *testing.T) {
		out := Render(forest.Roots, RenderOptions{ShowIDs: true})
		assert.Contains(t, out, "Home [home]")
		assert.Contains(t, out, "[brown]")
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "No nodes found.", Render(nil, RenderOptions{}))
	})
}

func newCommand(t *testing.T) (*Command, *cli.MockUi, string) {
	t.Helper()

	for _, k := range []string{
		base.EnvConfig,
		config.EnvAPIKey,
		config.EnvBaseURL,
		config.EnvTimeout,
		config.EnvTLSVerify,
		config.EnvAddr,
		config.EnvLogLevel,
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/v1/nodes-export" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, exportBody)
	}))
	t.Cleanup(ts.Close)

	ui := cli.NewMockUi()
	b := base.NewCommand(hclog.NewNullLogger(), ui)
	b.Fs = afero.NewMemMapFs()
	return &Command{Command: b}, ui, ts.URL + "/api/v1"
}

func TestRun(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		c, ui, url := newCommand(t)

		require.Equal(t, 0, c.Run([]string{"-api-key=k", "-base-url=" + url}), ui.ErrorWriter.String())
		assert.Contains(t, ui.OutputWriter.String(), "Brown eggs")
		assert.Contains(t, ui.ErrorWriter.String(), "1 node(s) reference a parent missing from the export: lost")
	})

	t.Run("json", func(t *testing.T) {
		c, ui, url := newCommand(t)

		require.Equal(t, 0, c.Run([]string{"-api-key=k", "-base-url=" + url, "-format=json"}))

		var got struct {
			Roots []struct {
				ID       string `json:"id"`
				Children []json.RawMessage
			} `json:"roots"`
			Orphans []string `json:"orphans"`
		}
		require.NoError(t, json.Unmarshal([]byte(ui.OutputWriter.String()), &got))
		require.Len(t, got.Roots, 3)
		assert.Equal(t, "home", got.Roots[0].ID)
		assert.Len(t, got.Roots[0].Children, 2)
		assert.Equal(t, []string{"lost"}, got.Orphans)
	})

	t.Run("root", func(t *testing.T) {
		c, ui, url := newCommand(t)

		require.Equal(t, 0, c.Run([]string{"-api-key=k", "-base-url=" + url, "-root=eggs", "-ids"}))
		out := ui.OutputWriter.String()
		assert.Contains(t, out, "Eggs [eggs]")
		assert.Contains(t, out, "Brown eggs [brown]")
		assert.NotContains(t, out, "Home")
	})

	t.Run("unknown root", func(t *testing.T) {
		c, ui, url := newCommand(t)

		assert.Equal(t, 1, c.Run([]string{"-api-key=k", "-base-url=" + url, "-root=nope"}))
		assert.Contains(t, ui.ErrorWriter.String(), `node "nope" not found`)
	})

	t.Run("bad format", func(t *testing.T) {
		c, ui, _ := newCommand(t)

		assert.Equal(t, 1, c.Run([]string{"-format=csv"}))
		assert.NotEmpty(t, ui.ErrorWriter.String())
	})
}
