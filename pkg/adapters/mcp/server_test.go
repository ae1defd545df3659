package mcp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aretw0/carepath/internal/runtime"
	"github.com/aretw0/carepath/internal/testutils"
	"github.com/aretw0/carepath/pkg/adapters/mcp"
	"github.com/aretw0/carepath/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcClient struct {
	t   *testing.T
	srv *mcp.Server
	id  int
}

func newClient(t *testing.T) (*rpcClient, *view.Controller) {
	t.Helper()
	ctrl := view.NewController(runtime.NewMachine(testutils.HypertensionGraph()))
	c := &rpcClient{t: t, srv: mcp.NewServer(ctrl, "test")}
	c.call("initialize", map[string]any{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test", "version": "0"},
	})
	return c, ctrl
}

// call sends one JSON-RPC request and returns the decoded result object.
func (c *rpcClient) call(method string, params any) map[string]any {
	c.t.Helper()
	c.id++
	raw, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": c.id, "method": method, "params": params})
	require.NoError(c.t, err)

	resp := c.srv.MCPServer().HandleMessage(context.Background(), raw)
	data, err := json.Marshal(resp)
	require.NoError(c.t, err)

	var msg struct {
		Result map[string]any `json:"result"`
		Error  any            `json:"error"`
	}
	require.NoError(c.t, json.Unmarshal(data, &msg))
	require.Nil(c.t, msg.Error, string(data))
	return msg.Result
}

type toolResult struct {
	IsError           bool           `json:"isError"`
	StructuredContent map[string]any `json:"structuredContent"`
	Content           []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *rpcClient) tool(name string, args map[string]any) toolResult {
	c.t.Helper()
	res := c.call("tools/call", map[string]any{"name": name, "arguments": args})
	data, err := json.Marshal(res)
	require.NoError(c.t, err)
	var out toolResult
	require.NoError(c.t, json.Unmarshal(data, &out))
	return out
}

func (r toolResult) text() string {
	if len(r.Content) == 0 {
		return ""
	}
	return r.Content[0].Text
}

func current(r toolResult) string {
	snap, _ := r.StructuredContent["snapshot"].(map[string]any)
	return fmt.Sprint(snap["current_node_id"])
}

func TestTools_List(t *testing.T) {
	c, _ := newClient(t)
	res := c.call("tools/list", map[string]any{})

	var names []string
	for _, tool := range res["tools"].([]any) {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, []string{"get_graph", "get_layout", "snapshot", "advance", "back", "jump", "reset", "summary"}, names)
}

func TestTools_Traversal(t *testing.T) {
	c, ctrl := newClient(t)

	res := c.tool("snapshot", nil)
	require.False(t, res.IsError, res.text())
	assert.Equal(t, "measure", current(res))

	res = c.tool("advance", map[string]any{"edge_id": "e-measure"})
	require.False(t, res.IsError, res.text())
	assert.Equal(t, "classify", current(res))
	assert.Equal(t, "classify", ctrl.Snapshot().CurrentNodeID, "tools drive the shared controller")

	res = c.tool("advance", map[string]any{"edge_id": "e-ckd"})
	assert.True(t, res.IsError)
	assert.Equal(t, "classify", ctrl.Snapshot().CurrentNodeID)

	res = c.tool("summary", nil)
	assert.True(t, res.IsError, "no outcome yet")

	res = c.tool("jump", map[string]any{"node_id": "acei"})
	require.False(t, res.IsError)
	assert.NotEmpty(t, res.StructuredContent["ignored"])

	for _, e := range []string{"e-stage2", "e-ckd"} {
		require.False(t, c.tool("advance", map[string]any{"edge_id": e}).IsError)
	}
	res = c.tool("summary", map[string]any{"format": "md"})
	require.False(t, res.IsError, res.text())
	assert.Contains(t, res.text(), "Start ACE inhibitor or ARB")

	res = c.tool("back", nil)
	assert.Equal(t, "compelling", current(res))

	res = c.tool("reset", nil)
	assert.Equal(t, "measure", current(res))
}

func TestTools_GraphAndLayout(t *testing.T) {
	c, _ := newClient(t)

	res := c.tool("get_graph", nil)
	require.False(t, res.IsError)
	assert.Contains(t, res.text(), `"start_node_id":"measure"`)

	res = c.tool("get_layout", nil)
	require.False(t, res.IsError)
	var geo struct {
		Nodes []map[string]any `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.text()), &geo))
	assert.Len(t, geo.Nodes, 10)
}

func TestResources(t *testing.T) {
	c, _ := newClient(t)
	c.tool("advance", map[string]any{"edge_id": "e-measure"})

	res := c.call("resources/read", map[string]any{"uri": "carepath://diagram"})
	contents := res["contents"].([]any)
	require.Len(t, contents, 1)
	text := contents[0].(map[string]any)["text"].(string)
	assert.Contains(t, text, "graph TD")
	assert.Contains(t, text, "class classify current;")
}
