package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseKDL_BlockLists(t *testing.T) {
	cfg, err := parseKDL(`
entries {
    "a/*.thrift"
    "b/*.proto"
}
watch {
    debounce_ms 25
    exclude "gen/**" "tmp/**"
}
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/*.thrift", "b/*.proto"}, cfg.Entries)
	assert.Equal(t, 25, cfg.Watch.DebounceMs)
	assert.Equal(t, []string{"gen/**", "tmp/**"}, cfg.Watch.Exclude)
}

func TestParseKDL_WrongValueTypes(t *testing.T) {
	cfg, err := parseKDL(`
parse {
    concurrency "many"
    cache "yes"
}
`)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Parse.Concurrency)
	assert.False(t, cfg.Parse.Cache)
}

func TestParseKDL_Malformed(t *testing.T) {
	_, err := parseKDL(`parse {`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse KDL config")
}
