package version

import (
	"strings"
	"testing"
)

func TestFullInfo(t *testing.T) {
	info := FullInfo()
	if !strings.HasPrefix(info, "idlunify "+Version) {
		t.Errorf("FullInfo() = %q, want prefix %q", info, "idlunify "+Version)
	}
	if !strings.Contains(info, "commit: "+GitCommit) {
		t.Errorf("FullInfo() = %q, missing commit", info)
	}
}

func TestBuildIDStable(t *testing.T) {
	first := BuildID()
	if first == "" {
		t.Fatal("BuildID() is empty")
	}
	if second := BuildID(); second != first {
		t.Errorf("BuildID() changed between calls: %q then %q", first, second)
	}
}
