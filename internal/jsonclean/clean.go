// Package jsonclean strips the wrappers language models put around JSON
// output: markdown code fences, a bare "json" line, or explanatory prose
// before the first brace.
package jsonclean

import "strings"

const fence = "```"

// Clean returns a best-effort JSON substring of raw. It never fails; the
// caller's parse step decides whether the result is usable.
//
// Rules are tried in order on the trimmed input:
//  1. a leading ```json fence returns the fenced body
//  2. a leading ``` fence returns the fenced body
//  3. a leading bare "json" line is dropped
//  4. text before the first '{' is dropped
//  5. a trailing ``` and everything after it is dropped
//
// The first two rules end the scan.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}

	if body, ok := fencedBody(s, fence+"json"); ok {
		return body
	}
	if body, ok := fencedBody(s, fence); ok {
		return body
	}

	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		if nl := strings.IndexByte(s, '\n'); nl > 0 {
			s = strings.TrimSpace(s[nl+1:])
		}
	}

	if i := strings.IndexByte(s, '{'); i > 0 {
		s = strings.TrimSpace(s[i:])
	}

	if i := strings.LastIndex(s, fence); i > 0 {
		s = s[:i]
	}

	return strings.TrimSpace(s)
}

// fencedBody returns the text between an opening marker at the start of s
// and the next fence, or the rest of s when the fence is never closed.
func fencedBody(s, open string) (string, bool) {
	if !strings.HasPrefix(s, open) {
		return "", false
	}
	rest := s[len(open):]
	if end := strings.Index(rest, fence); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest), true
}
