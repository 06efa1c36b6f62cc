package network

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// IsDataURL returns true if the location is a data URL.
func IsDataURL(location string) bool {
	return hasScheme(location, "data")
}

// hasScheme reports whether location starts with one of the schemes,
// ignoring case.
func hasScheme(location string, schemes ...string) bool {
	scheme, _, ok := strings.Cut(location, ":")
	if !ok {
		return false
	}
	for _, s := range schemes {
		if strings.EqualFold(scheme, s) {
			return true
		}
	}
	return false
}

// DataURL represents a parsed data URL. Charset is empty unless declared.
type DataURL struct {
	MediaType string
	Charset   string
	Base64    bool
	Data      []byte
}

// ParseDataURL parses a URL of the form data:[<mediatype>][;base64],<data>.
func ParseDataURL(location string) (*DataURL, error) {
	if !IsDataURL(location) {
		return nil, errors.New("not a data URL")
	}

	metadata, data, ok := strings.Cut(location[len("data:"):], ",")
	if !ok {
		return nil, errors.New("invalid data URL: missing comma")
	}

	result := &DataURL{MediaType: "text/plain"}

	for i, part := range strings.Split(metadata, ";") {
		part = strings.TrimSpace(part)
		switch {
		case i == 0 && part != "" && !strings.Contains(part, "=") && part != "base64":
			result.MediaType = strings.ToLower(part)
		case strings.EqualFold(part, "base64"):
			result.Base64 = true
		case strings.HasPrefix(strings.ToLower(part), "charset="):
			result.Charset = strings.ToLower(part[len("charset="):])
		}
	}

	if result.Base64 {
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 data: %w", err)
		}
		result.Data = decoded
	} else {
		decoded, err := url.PathUnescape(data)
		if err != nil {
			return nil, fmt.Errorf("failed to URL-decode data: %w", err)
		}
		result.Data = []byte(decoded)
	}

	return result, nil
}

// ExtractExtension returns the lower-cased file extension of a path or URL,
// without the dot.
func ExtractExtension(location string) string {
	p := location
	if u, err := url.Parse(location); err == nil && u.Scheme != "" {
		p = u.Path
	}
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}

// GuessContentType guesses a media type from a path or URL extension.
func GuessContentType(location string) string {
	switch ExtractExtension(location) {
	case "html", "htm":
		return "text/html"
	case "xhtml", "xht":
		return "application/xhtml+xml"
	case "svg":
		return "image/svg+xml"
	case "xml":
		return "application/xml"
	case "txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
