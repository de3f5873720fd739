// Package archive reads the raw JSON collections of an exported
// Twitter/X account archive into typed records, tolerating the known
// layout differences between export format versions.
package archive

import (
	"bytes"
	"fmt"
	"os"
)

// stripWrapper converts the contents of a Twitter-produced .js data file
// into plain JSON. Each file assigns a JSON array to a global, e.g.
//
//	window.YTD.tweets.part0 = [ ... ]
//
// so everything up to and including the first '=' is dropped. Files that
// carry no real content are sometimes a single line; those become an
// empty array. Bare JSON files pass through unchanged.
func stripWrapper(data []byte) []byte {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []byte("[]")
	}
	if trimmed[0] == '[' || trimmed[0] == '{' {
		return trimmed
	}

	idx := bytes.IndexByte(trimmed, '=')
	if idx < 0 {
		return []byte("[]")
	}

	rest := bytes.TrimSpace(trimmed[idx+1:])
	if len(rest) == 0 {
		return []byte("[]")
	}
	return rest
}

// readJSFile reads a .js data file and returns its JSON payload.
func readJSFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return stripWrapper(data), nil
}
