package objectstore

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnparsableLocation is returned when no storage key can be derived from a stored path
var ErrUnparsableLocation = errors.New("cannot derive storage key")

// Locator converts between storage keys and the URL spellings stored in the registry.
//
// Supported spellings:
//
//	2021-2025/BCA/Third Semester/top_five.xlsx                                  bare key
//	s3://bucket/2021-2025/BCA/Third Semester/top_five.xlsx                      s3 URI
//	https://bucket.s3.region.amazonaws.com/2021-2025/BCA/Third Semester/...     virtual hosted
//	https://s3.region.amazonaws.com/bucket/2021-2025/...                        path style
//	{endpoint}/bucket/2021-2025/...                                             custom endpoint
type Locator struct {
	Bucket   string
	Region   string
	Endpoint string
}

// NormalizeKey trims surrounding slashes and whitespace from a key
func NormalizeKey(key string) string {
	return strings.Trim(strings.TrimSpace(key), "/")
}

// KeyFromURL derives the storage key from any supported spelling
func (l Locator) KeyFromURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty path", ErrUnparsableLocation)
	}

	scheme, rest, hasScheme := strings.Cut(raw, "://")
	if !hasScheme {
		return nonEmpty(NormalizeKey(raw), raw)
	}

	switch strings.ToLower(scheme) {
	case "s3":
		_, key, ok := strings.Cut(rest, "/")
		if !ok {
			return "", fmt.Errorf("%w: %q has no key", ErrUnparsableLocation, raw)
		}
		return nonEmpty(NormalizeKey(key), raw)

	case "http", "https":
		if l.Endpoint != "" {
			prefix := strings.TrimRight(l.Endpoint, "/") + "/" + l.Bucket + "/"
			if strings.HasPrefix(raw, prefix) {
				return nonEmpty(unescape(strings.TrimPrefix(raw, prefix)), raw)
			}
		}

		host, path, ok := strings.Cut(rest, "/")
		if !ok {
			return "", fmt.Errorf("%w: %q has no path", ErrUnparsableLocation, raw)
		}
		path, _, _ = strings.Cut(path, "?")
		host = strings.ToLower(host)

		if l.Bucket != "" && strings.HasPrefix(host, strings.ToLower(l.Bucket)+".") {
			return nonEmpty(unescape(path), raw)
		}
		if strings.HasPrefix(host, "s3.") || strings.HasPrefix(host, "s3-") {
			if _, key, ok := strings.Cut(path, "/"); ok {
				return nonEmpty(unescape(key), raw)
			}
		}
		if strings.HasSuffix(host, ".amazonaws.com") {
			return nonEmpty(unescape(path), raw)
		}
		return "", fmt.Errorf("%w: unknown host %q", ErrUnparsableLocation, host)
	}

	return "", fmt.Errorf("%w: unsupported scheme %q", ErrUnparsableLocation, scheme)
}

// URLForKey returns the canonical URL for a key, the form new records are displayed with
func (l Locator) URLForKey(key string) string {
	key = NormalizeKey(key)
	if l.Endpoint != "" {
		return strings.TrimRight(l.Endpoint, "/") + "/" + l.Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", l.Bucket, l.Region, key)
}

// Variants lists every spelling under which key may have been recorded
func (l Locator) Variants(key string) []string {
	key = NormalizeKey(key)
	escaped := escapeKey(key)

	candidates := []string{
		key,
		"s3://" + l.Bucket + "/" + key,
		fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", l.Bucket, l.Region, key),
		fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", l.Bucket, l.Region, escaped),
		fmt.Sprintf("https://s3.%s.amazonaws.com/%s/%s", l.Region, l.Bucket, key),
	}
	if l.Endpoint != "" {
		base := strings.TrimRight(l.Endpoint, "/") + "/" + l.Bucket + "/"
		candidates = append(candidates, base+key, base+escaped)
	}

	seen := make(map[string]struct{}, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// FileName returns the trailing segment of a stored path
func FileName(path string) string {
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return NormalizeKey(u)
	}
	return NormalizeKey(s)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func nonEmpty(key, raw string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: %q", ErrUnparsableLocation, raw)
	}
	return key, nil
}
