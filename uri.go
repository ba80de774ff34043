package playcore

import (
	"net/url"
	"strings"
)

// NormalizedURI is the result of [NormalizeURI]: either a plain local
// path (for file/UNC inputs), or a media URL plus an optional forced
// input format extracted from a device:// or format:// scheme.
type NormalizedURI struct {
	// Path is set when the input was a file or UNC URI: callers should
	// open this local path directly rather than the original URI
	// string.
	Path string

	// MediaURL is the (possibly rewritten) URL to hand to the
	// container when Path is empty.
	MediaURL string

	// ForcedInputFormat is the container-format override extracted
	// from a device://host?query or format://host?query URI, if any.
	ForcedInputFormat string
}

// NormalizeURI applies the two URI normalizations from spec §6:
//
//   - "file" or UNC URIs resolve to a local path rather than the URI
//     string itself.
//   - "device://host?query" and "format://host?query" rewrite the
//     host into ForcedInputFormat and the unescaped query (leading
//     '?' trimmed) into MediaURL.
//
// Anything else passes through unchanged as MediaURL.
func NormalizeURI(raw string) NormalizedURI {
	if isUNCPath(raw) {
		return NormalizedURI{Path: raw}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return NormalizedURI{MediaURL: raw}
	}

	switch u.Scheme {
	case "file":
		return NormalizedURI{Path: u.Path}
	case "device", "format":
		query := u.RawQuery
		query = strings.TrimPrefix(query, "?")
		if decoded, err := url.QueryUnescape(query); err == nil {
			query = decoded
		}
		return NormalizedURI{
			ForcedInputFormat: u.Host,
			MediaURL:          query,
		}
	default:
		return NormalizedURI{MediaURL: raw}
	}
}

func isUNCPath(s string) bool {
	return strings.HasPrefix(s, `\\`)
}
