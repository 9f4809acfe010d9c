package debug

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// saveAndRestoreState saves the debug package state and returns a cleanup function
func saveAndRestoreState() func() {
	originalDebug := EnableDebug
	originalMode := MCPMode
	originalOutput := debugOutput
	originalFile := debugFile
	return func() {
		EnableDebug = originalDebug
		MCPMode = originalMode
		debugOutput = originalOutput
		debugFile = originalFile
	}
}

func enabled(t *testing.T) *bytes.Buffer {
	t.Cleanup(saveAndRestoreState())
	t.Setenv("DEBUG_COMPONENTS", "")
	EnableDebug = "true"
	MCPMode = false
	var buf bytes.Buffer
	SetDebugOutput(&buf)
	return &buf
}

func TestIsDebugEnabled(t *testing.T) {
	defer saveAndRestoreState()()
	t.Setenv("DEBUG", "")

	tests := []struct {
		name   string
		flag   string
		env    string
		mcp    bool
		expect bool
	}{
		{"off", "false", "", false, false},
		{"build flag", "true", "", false, true},
		{"env 1", "false", "1", false, true},
		{"env true", "false", "true", false, true},
		{"env other", "false", "yes", false, false},
		{"mcp mode wins", "true", "1", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			EnableDebug = tt.flag
			t.Setenv("DEBUG", tt.env)
			SetMCPMode(tt.mcp)
			assert.Equal(t, tt.expect, IsDebugEnabled())
		})
	}
}

func TestLogHelpers(t *testing.T) {
	buf := enabled(t)

	tests := []struct {
		logFunc func(string, ...interface{})
		prefix  string
	}{
		{LogLoader, "[DEBUG:LOADER]"},
		{LogResolve, "[DEBUG:RESOLVE]"},
		{LogExtension, "[DEBUG:EXTENSION]"},
		{LogUnify, "[DEBUG:UNIFY]"},
		{LogWatch, "[DEBUG:WATCH]"},
		{LogMCP, "[DEBUG:MCP]"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			buf.Reset()
			tt.logFunc("resolved %s\n", "base.ID")
			assert.Equal(t, tt.prefix+" resolved base.ID\n", buf.String())
		})
	}
}

func TestLogTerminatesLines(t *testing.T) {
	buf := enabled(t)

	LogLoader("cache hit %s", "a.thrift")
	LogResolve("Foo -> a.Foo\n")
	Log("UNIFY", "parsed %d", 2)

	assert.Equal(t, "[DEBUG:LOADER] cache hit a.thrift\n[DEBUG:RESOLVE] Foo -> a.Foo\n[DEBUG:UNIFY] parsed 2\n", buf.String())
}

func TestLogComponentFilter(t *testing.T) {
	buf := enabled(t)
	t.Setenv("DEBUG_COMPONENTS", "resolve, watch")

	LogLoader("cache miss a.thrift\n")
	LogResolve("Foo -> a.Foo\n")
	LogWatch("changed a.thrift\n")

	out := buf.String()
	assert.NotContains(t, out, "LOADER")
	assert.Contains(t, out, "[DEBUG:RESOLVE] Foo -> a.Foo")
	assert.Contains(t, out, "[DEBUG:WATCH] changed a.thrift")
}

func TestLogSilent(t *testing.T) {
	t.Run("mcp mode", func(t *testing.T) {
		buf := enabled(t)
		SetMCPMode(true)
		LogMCP("tool call\n")
		assert.Empty(t, buf.String())
	})

	t.Run("nil writer", func(t *testing.T) {
		enabled(t)
		SetDebugOutput(nil)
		assert.NotPanics(t, func() {
			Log("TEST", "message\n")
			_ = Fatal("message\n")
		})
	})
}

func TestFatal(t *testing.T) {
	buf := enabled(t)

	err := Fatal("failed to load config: %v\n", "bad")
	require.Error(t, err)
	assert.Equal(t, "fatal error: failed to load config: bad\n", err.Error())
	assert.Equal(t, "[FATAL] failed to load config: bad\n", buf.String())

	buf.Reset()
	SetMCPMode(true)
	err = Fatal("MCP server error\n")
	assert.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestConcurrentLogging(t *testing.T) {
	buf := enabled(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			LogLoader("load %d\n", id)
			LogUnify("unify %d\n", id)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 20)
	for _, line := range lines {
		assert.Regexp(t, `^\[DEBUG:(LOADER|UNIFY)\] (load|unify) \d$`, line)
	}
}

func TestInitDebugLogFile(t *testing.T) {
	defer saveAndRestoreState()()
	t.Setenv("TMPDIR", t.TempDir())
	t.Setenv("DEBUG_COMPONENTS", "")

	logPath, err := InitDebugLogFile()
	require.NoError(t, err)
	assert.Contains(t, logPath, "idlunify-debug-logs")

	EnableDebug = "true"
	MCPMode = false
	LogLoader("loaded %s\n", "api.thrift")
	require.NoError(t, CloseDebugLog())
	require.NoError(t, CloseDebugLog())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "[DEBUG:LOADER] loaded api.thrift\n", string(content))
}
