// Package fileuri converts between filesystem paths and absolute file: URIs
// and provides prefix arithmetic over file: URIs.
package fileuri

import (
	"net/url"
	"path/filepath"
	"strings"
)

// Scheme is the URI scheme for local files.
const Scheme = "file"

// IsFileURI reports whether s is a file: URI.
func IsFileURI(s string) bool {
	return strings.HasPrefix(s, Scheme+":")
}

// HasScheme reports whether s begins with any URI scheme, e.g. "http:" or
// "file:". Windows drive letters ("C:\...") are not schemes.
func HasScheme(s string) bool {
	i := strings.IndexByte(s, ':')
	if i < 2 {
		// A single leading letter is a drive letter, not a scheme.
		return false
	}

	if c := s[0]; (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
		// A scheme starts with a letter.
		return false
	}

	for _, r := range s[:i] {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isOther := (r >= '0' && r <= '9') || r == '+' || r == '-' || r == '.'

		if !isAlpha && !isOther {
			return false
		}
	}

	return true
}

// FromPath canonicalizes a filesystem path or file: URI to an absolute
// file: URI with forward-slash separators.
func FromPath(path string) (string, error) {
	if IsFileURI(path) {
		u, err := url.Parse(path)
		if err != nil {
			return "", err
		}

		path = u.Path
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	u := &url.URL{Scheme: Scheme, Path: filepath.ToSlash(abs)}

	return u.String(), nil
}

// ToPath converts a file: URI back to a filesystem path. Non-file URIs are
// returned unchanged.
func ToPath(uri string) string {
	if !IsFileURI(uri) {
		return uri
	}

	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}

	return filepath.FromSlash(u.Path)
}

// Resolve resolves a possibly-relative reference against a base file: URI.
func Resolve(base, ref string) string {
	if HasScheme(ref) {
		return ref
	}

	b, err := url.Parse(base)
	if err != nil {
		return ref
	}

	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	return b.ResolveReference(r).String()
}

// CommonPrefix returns the longest common directory prefix of the given
// URIs, ending in "/". It returns "" when the input is empty or the URIs
// share no directory.
func CommonPrefix(uris []string) string {
	if len(uris) == 0 {
		return ""
	}

	prefix := uris[0]

	for _, u := range uris[1:] {
		for !strings.HasPrefix(u, prefix) {
			i := strings.LastIndexByte(strings.TrimSuffix(prefix, "/"), '/')
			if i < 0 {
				return ""
			}

			prefix = prefix[:i+1]
		}
	}

	// Trim back to the containing directory when the survivor is a file.
	if !strings.HasSuffix(prefix, "/") {
		i := strings.LastIndexByte(prefix, '/')
		if i < 0 {
			return ""
		}

		prefix = prefix[:i+1]
	}

	return prefix
}

// Relative rewrites uri relative to root when uri is under root; otherwise
// uri is returned unchanged.
func Relative(root, uri string) string {
	if root != "" && strings.HasPrefix(uri, root) {
		return strings.TrimPrefix(uri, root)
	}

	return uri
}
