package main

import (
	"slices"
	"strings"

	"github.com/tidwall/gjson"
)

// maxSearchDepth bounds recursion over untrusted response JSON
const maxSearchDepth = 64

var (
	base64PreferredKeys = []string{"image", "data", "bytes", "base64", "payload", "content"}
	pathPreferredKeys   = []string{"path", "file", "filename", "name", "output", "image"}
	imageExtensions     = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".webp"}
)

// findBase64Image returns the first string in node that looks like a base64
// image payload (data URI prefixes stripped).
func findBase64Image(node gjson.Result) (string, bool) {
	return searchJSON(node, base64PreferredKeys, matchBase64, 0)
}

// findImagePath returns the first string in node that looks like a path to an image file
func findImagePath(node gjson.Result) (string, bool) {
	return searchJSON(node, pathPreferredKeys, matchImagePath, 0)
}

// searchJSON walks node depth-first. Objects try preferredKeys in order,
// then the remaining entries in document order; arrays try elements in
// order. Every value is visited at most once.
func searchJSON(node gjson.Result, preferredKeys []string, match func(string) (string, bool), depth int) (string, bool) {
	if depth > maxSearchDepth || !node.Exists() {
		return "", false
	}

	switch {
	case node.Type == gjson.String:
		return match(node.Str)

	case node.IsArray():
		var found string
		var ok bool
		node.ForEach(func(_, element gjson.Result) bool {
			found, ok = searchJSON(element, preferredKeys, match, depth+1)
			return !ok
		})
		return found, ok

	case node.IsObject():
		for _, key := range preferredKeys {
			child := objectField(node, key)
			if found, ok := searchJSON(child, preferredKeys, match, depth+1); ok {
				return found, true
			}
		}

		var found string
		var ok bool
		node.ForEach(func(key, value gjson.Result) bool {
			if slices.Contains(preferredKeys, key.Str) {
				return true
			}
			found, ok = searchJSON(value, preferredKeys, match, depth+1)
			return !ok
		})
		return found, ok
	}

	return "", false
}

// objectField looks a key up directly so names are never read as gjson path syntax
func objectField(node gjson.Result, key string) gjson.Result {
	var field gjson.Result
	node.ForEach(func(k, value gjson.Result) bool {
		if k.Str == key {
			field = value
			return false
		}
		return true
	})
	return field
}

func matchBase64(value string) (string, bool) {
	stripped := stripDataURIPrefix(value)
	if looksLikeBase64(stripped) {
		return stripped, true
	}
	return "", false
}

func matchImagePath(value string) (string, bool) {
	if looksLikeImagePath(value) {
		return value, true
	}
	return "", false
}

// stripDataURIPrefix drops everything up to the first comma ("data:image/png;base64,")
func stripDataURIPrefix(value string) string {
	if idx := strings.IndexByte(value, ','); idx >= 0 {
		return value[idx+1:]
	}
	return value
}

// looksLikeBase64 requires at least 16 characters and nothing outside the
// standard or URL-safe alphabets once CR, LF, space and tab are ignored.
func looksLikeBase64(value string) bool {
	if len(value) < 16 {
		return false
	}

	useful := 0
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c == '\r' || c == '\n' || c == ' ' || c == '\t':
			continue
		case isAlnum(c) || c == '+' || c == '/' || c == '=' || c == '-' || c == '_':
			useful++
		default:
			return false
		}
	}
	return useful >= 16
}

// looksLikeImagePath accepts known image extensions or anything containing a path separator
func looksLikeImagePath(value string) bool {
	if value == "" {
		return false
	}

	lower := strings.ToLower(value)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return strings.ContainsAny(value, `/\`)
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
