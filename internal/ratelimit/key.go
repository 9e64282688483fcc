package ratelimit

import "strings"

// EndpointKey derives the quota-tracking key for a request URL: the query
// string and any trailing slash are stripped and the last two path
// segments are kept. Two distinct resources that share their final two
// segments therefore share one quota bucket; this coarse graining matches
// the granularity the Mimecast API applies its limits at and is kept
// intentionally.
func EndpointKey(rawURL string) string {
	base := rawURL
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimRight(base, "/")

	parts := strings.Split(base, "/")
	if len(parts) <= 2 {
		return base
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
