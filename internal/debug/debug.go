// Package debug writes component-tagged diagnostics for the loader, resolvers
// and servers. Nothing is written unless debug mode is on and a writer is set.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/idlunify/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode tracks if we're running in MCP mode (set by main)
var MCPMode = false

var (
	debugOutput io.Writer
	debugFile   *os.File
	debugMutex  sync.Mutex
)

// SetMCPMode enables MCP mode which suppresses all debug output to stdio
func SetMCPMode(enabled bool) {
	MCPMode = enabled
}

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// InitDebugLogFile directs debug output to a timestamped file under the temp
// directory and returns its path. Call CloseDebugLog when done.
func InitDebugLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "idlunify-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02T150405")
	logPath := filepath.Join(logDir, fmt.Sprintf("debug-%s-%d.log", timestamp, os.Getpid()))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugFile = file
	debugOutput = file
	return logPath, nil
}

// CloseDebugLog closes the debug log file if one is open.
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile == nil {
		return nil
	}
	err := debugFile.Close()
	debugFile = nil
	debugOutput = nil
	return err
}

// IsDebugEnabled returns true if debug mode is enabled and we're not in MCP mode
func IsDebugEnabled() bool {
	if MCPMode {
		return false
	}
	if EnableDebug == "true" {
		return true
	}
	switch os.Getenv("DEBUG") {
	case "1", "true":
		return true
	}
	return false
}

// componentEnabled honours DEBUG_COMPONENTS, a comma separated list of
// component tags. Unset means every component.
func componentEnabled(component string) bool {
	list := os.Getenv("DEBUG_COMPONENTS")
	if list == "" {
		return true
	}
	for _, c := range strings.Split(list, ",") {
		if strings.EqualFold(strings.TrimSpace(c), component) {
			return true
		}
	}
	return false
}

// Log writes one tagged message per line, adding the newline when format
// lacks one. The writer is held under the lock so messages from concurrent
// parses do not interleave.
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() || !componentEnabled(component) {
		return
	}
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	debugMutex.Lock()
	defer debugMutex.Unlock()
	if debugOutput == nil {
		return
	}
	fmt.Fprintf(debugOutput, "[DEBUG:%s] "+format, append([]interface{}{component}, args...)...)
}

// LogLoader logs file resolution and document cache activity
func LogLoader(format string, args ...interface{}) {
	Log("LOADER", format, args...)
}

// LogResolve logs reference resolution decisions
func LogResolve(format string, args ...interface{}) {
	Log("RESOLVE", format, args...)
}

// LogExtension logs annotation keys the extractor does not recognize
func LogExtension(format string, args ...interface{}) {
	Log("EXTENSION", format, args...)
}

// LogUnify logs document assembly
func LogUnify(format string, args ...interface{}) {
	Log("UNIFY", format, args...)
}

// LogWatch logs watch mode events
func LogWatch(format string, args ...interface{}) {
	Log("WATCH", format, args...)
}

// LogMCP provides debug logging specifically for MCP operations
func LogMCP(format string, args ...interface{}) {
	Log("MCP", format, args...)
}

// Fatal records msg in the debug log and returns it as an error. In MCP
// mode nothing is written.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if !MCPMode {
		debugMutex.Lock()
		if debugOutput != nil {
			fmt.Fprintf(debugOutput, "[FATAL] %s", msg)
		}
		debugMutex.Unlock()
	}
	return fmt.Errorf("fatal error: %s", msg)
}
