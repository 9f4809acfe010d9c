package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/idlunify/internal/config"
)

var testClientImpl = &mcp.Implementation{Name: "idlunify-test-client", Version: "1.0.0"}

func connect(t *testing.T, cfg *config.Config) *mcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	s, err := NewServer(cfg)
	require.NoError(t, err)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.Connect(ctx, serverTransport)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	session, err := mcp.NewClient(testClientImpl, nil).Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func call(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (map[string]any, bool) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out, result.IsError
}

func TestListTools(t *testing.T) {
	session := connect(t, nil)
	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"parse_idl", "parse_entries", "cache_stats", "info"}, names)
}

func TestParseIDLTool(t *testing.T) {
	session := connect(t, nil)
	out, isError := call(t, session, "parse_idl", map[string]any{
		"entry": "api.thrift",
		"files": map[string]any{
			"api.thrift":  "include \"base.thrift\"\nnamespace go api\nstruct Req {\n  1: base.ID id (api.query = 'id')\n}\n",
			"base.thrift": "namespace go base\ntypedef i64 ID\n",
		},
		"explain": true,
	})
	require.False(t, isError, "%v", out)
	assert.Equal(t, "api.thrift", out["entry"])
	assert.Contains(t, out["resolution"], "=== Resolution Debug Info ===")

	doc := out["document"].(map[string]any)
	assert.Equal(t, "api", doc["namespace"])
	st := doc["statements"].([]any)[0].(map[string]any)
	field := st["fields"].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{"type": "Identifier", "value": "base.ID", "namespaceValue": "base.ID"}, field["fieldType"])
	assert.Equal(t, map[string]any{"position": "query"}, field["extensionConfig"])
}

func TestParseIDLToolErrors(t *testing.T) {
	session := connect(t, nil)

	tests := []struct {
		name  string
		args  map[string]any
		error string
		kind  string
	}{
		{"missing entry", map[string]any{}, "entry is required", ""},
		{"unknown extension", map[string]any{"entry": "a.idl", "files": map[string]any{}}, `invalid filePath: "a.idl"`, "invalid_input"},
		{"not in map", map[string]any{"entry": "a.proto", "files": map[string]any{}}, `file "a.proto" does not exist in fileContentMap`, "file_not_found_in_map"},
		{"path param", map[string]any{
			"entry": "a.proto",
			"files": map[string]any{"a.proto": "syntax = \"proto3\";\nmessage Foo {\n  bool k1 = 1 [(api.path) = \"k1\"];\n}\n"},
		}, "the type of path parameter 'k1' in 'Foo' should be string or integer", "invalid_path_param"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, isError := call(t, session, "parse_idl", tt.args)
			assert.True(t, isError)
			assert.Equal(t, false, out["success"])
			assert.Equal(t, tt.error, out["error"])
			if tt.kind != "" {
				assert.Equal(t, tt.kind, out["kind"])
			}
		})
	}
}

func TestParseEntriesTool(t *testing.T) {
	files := map[string]any{
		"api/a.thrift": "struct A {}\n",
		"api/b.proto":  "syntax = \"proto3\";\nmessage B {}\n",
		"other.thrift": "struct O {}\n",
	}

	t.Run("virtual files", func(t *testing.T) {
		session := connect(t, nil)
		out, isError := call(t, session, "parse_entries", map[string]any{
			"patterns": []any{"api/**"},
			"files":    files,
		})
		require.False(t, isError, "%v", out)
		assert.Equal(t, []any{"api/a.thrift", "api/b.proto"}, out["entries"])
		assert.Len(t, out["documents"], 2)
	})

	t.Run("configured entries on disk", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "x.thrift"), []byte("struct X {}\n"), 0o644))
		cfg := config.Default()
		cfg.Parse.Root = root
		cfg.Entries = []string{"*.thrift"}

		out, isError := call(t, connect(t, cfg), "parse_entries", map[string]any{})
		require.False(t, isError, "%v", out)
		assert.Equal(t, []any{"x.thrift"}, out["entries"])
	})

	t.Run("failures", func(t *testing.T) {
		session := connect(t, nil)
		out, isError := call(t, session, "parse_entries", map[string]any{
			"patterns": []any{"*.thrift"},
			"files":    map[string]any{"bad.thrift": "struct {\n"},
		})
		assert.True(t, isError)
		assert.Len(t, out["failures"], 1)
	})
}

func TestCacheStatsTool(t *testing.T) {
	session := connect(t, nil)
	args := map[string]any{
		"entry": "a.thrift",
		"files": map[string]any{"a.thrift": "struct A {}\n"},
		"cache": true,
	}
	for i := 0; i < 2; i++ {
		_, isError := call(t, session, "parse_idl", args)
		require.False(t, isError)
	}

	out, isError := call(t, session, "cache_stats", map[string]any{"purge": true})
	require.False(t, isError)
	assert.Equal(t, float64(1), out["len"])
	assert.Equal(t, float64(1), out["hits"])
	assert.Equal(t, float64(1), out["misses"])
	assert.Equal(t, true, out["purged"])

	out, _ = call(t, session, "cache_stats", nil)
	assert.Equal(t, float64(0), out["len"])
}

func TestInfoTool(t *testing.T) {
	out, isError := call(t, connect(t, nil), "info", nil)
	require.False(t, isError)
	assert.Equal(t, "idlunify", out["server_name"])
	assert.NotEmpty(t, out["build_id"])
}
