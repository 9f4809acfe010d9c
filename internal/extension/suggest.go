package extension

import (
	"sort"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/idlunify/internal/debug"
)

// maxSuggestDistance bounds how far a typo may be from a known key
const maxSuggestDistance = 2

var knownKeys = func() []string {
	keys := []string{goTagKey, "source", "target", "method", "req.headers", "js_conv"}
	for k := range positions {
		keys = append(keys, k)
	}
	for k := range lowerMethods {
		keys = append(keys, k)
	}
	for k := range plainKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// SuggestKey returns the known extraction key closest to key, or "" when nothing is close
func SuggestKey(key string) string {
	bestMatch := ""
	bestDistance := maxSuggestDistance + 1

	for _, known := range knownKeys {
		distance := edlib.LevenshteinDistance(key, known)
		if distance < bestDistance {
			bestDistance = distance
			bestMatch = known
		}
	}
	return bestMatch
}

func logUnknownKey(key string) {
	if !debug.IsDebugEnabled() {
		return
	}
	if s := SuggestKey(key); s != "" {
		debug.LogExtension("ignoring unknown key %q, did you mean %q?\n", key, s)
		return
	}
	debug.LogExtension("ignoring unknown key %q\n", key)
}
