package server

import (
	"strconv"
	"strings"
)

// longestAnimationFrameDimension scans animationData — the line-based
// ".animation" text format, one "frame" directive per line carrying
// quoted w="..." h="..." attributes — and returns the largest single
// width or height found across every frame, grounded on
// original_source/src/net/client.rs's find_longest_frame_length.
func longestAnimationFrameDimension(animationData []byte) uint32 {
	var longest uint32
	for _, line := range strings.Split(string(animationData), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "frame") {
			continue
		}
		if w, ok := animationAttrUint(line, "w"); ok && w > longest {
			longest = w
		}
		if h, ok := animationAttrUint(line, "h"); ok && h > longest {
			longest = h
		}
	}
	return longest
}

// animationAttrUint extracts the quoted value following key="..." on
// line, mirroring original_source's value_of helper: find the key,
// skip its `="` delimiter, then read up to the closing quote.
func animationAttrUint(line, key string) (uint32, bool) {
	keyIndex := strings.Index(line, key)
	if keyIndex < 0 {
		return 0, false
	}
	valueStart := keyIndex + len(key) + 2
	if valueStart >= len(line) {
		return 0, false
	}
	rest := line[valueStart:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(rest[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	if n < 0 {
		n = -n
	}
	return uint32(n), true
}
