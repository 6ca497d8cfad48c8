package main

import (
	"net/url"
	"strings"
)

const canonicalWatchURL = "https://www.youtube.com/watch?v="

// NormalizeURL rewrites any youtube.com or youtu.be link into the canonical watch URL.
//
// It never fails: unparseable input, other hosts and youtube.com links without a v
// parameter are returned unchanged. The youtu.be ID is taken verbatim from the path,
// percent-escapes included.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "youtube.com"):
		v := u.Query().Get("v")
		if v == "" {
			return raw
		}
		return canonicalWatchURL + v
	case strings.Contains(host, "youtu.be"):
		return canonicalWatchURL + strings.TrimPrefix(u.EscapedPath(), "/")
	default:
		return raw
	}
}
