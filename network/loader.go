package network

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/chrisuehlinger/domarena/internal/logger"
)

// ErrNoClient is returned when an HTTP location is loaded without a client.
var ErrNoClient = errors.New("no HTTP client configured")

// StatusError reports an HTTP response outside the success range.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// Resource is a loaded document.
type Resource struct {
	URL        string // final location after redirects
	Content    []byte
	MediaType  string
	Charset    string // declared charset label, if any
	StatusCode int
}

// IsHTML reports whether the resource was served or named as HTML.
func (r *Resource) IsHTML() bool {
	return IsHTMLContentType(r.MediaType)
}

// Reader returns the content decoded to UTF-8 along with the canonical
// name of the encoding used. A byte order mark always wins and is stripped.
// Otherwise a non-empty label overrides the declared charset, and without
// one the encoding comes from the declared charset, then any <meta>
// declaration.
func (r *Resource) Reader(label string) (io.Reader, string, error) {
	raw := bytes.NewReader(r.Content)
	if label != "" && !hasBOM(r.Content) {
		enc, err := htmlindex.Get(label)
		if err != nil {
			return nil, "", fmt.Errorf("encoding %q: %w", label, err)
		}
		name, err := htmlindex.Name(enc)
		if err != nil {
			return nil, "", fmt.Errorf("encoding %q: %w", label, err)
		}
		return transform.NewReader(raw, unicode.BOMOverride(enc.NewDecoder())), name, nil
	}

	contentType := r.MediaType
	if r.Charset != "" {
		contentType += "; charset=" + r.Charset
	}
	enc, name, _ := charset.DetermineEncoding(r.Content, contentType)
	return transform.NewReader(raw, unicode.BOMOverride(enc.NewDecoder())), name, nil
}

func hasBOM(b []byte) bool {
	return bytes.HasPrefix(b, []byte("\xef\xbb\xbf")) ||
		bytes.HasPrefix(b, []byte("\xfe\xff")) ||
		bytes.HasPrefix(b, []byte("\xff\xfe"))
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithBaseDir resolves relative file paths against dir.
func WithBaseDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.baseDir = dir
	}
}

// WithLoaderLogger sets the logger used for load tracing.
func WithLoaderLogger(log *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.log = log
	}
}

// Loader loads documents from HTTP, the local filesystem or data URLs.
type Loader struct {
	client  *Client
	baseDir string
	log     *slog.Logger
}

// NewLoader creates a new document loader. client may be nil when only
// local files and data URLs are loaded.
func NewLoader(client *Client, opts ...LoaderOption) *Loader {
	l := &Loader{
		client: client,
		log:    logger.L,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load loads the document at location, which may be a file path, a file://,
// http:// or https:// URL, or a data URL.
func (l *Loader) Load(ctx context.Context, location string) (*Resource, error) {
	var (
		res *Resource
		err error
	)
	switch {
	case IsDataURL(location):
		res, err = l.loadDataURL(location)
	case hasScheme(location, "http", "https"):
		res, err = l.loadFromHTTP(ctx, location)
	case hasScheme(location, "file"):
		u, perr := url.Parse(location)
		if perr != nil {
			return nil, fmt.Errorf("load %s: %w", location, perr)
		}
		res, err = l.loadFromFile(location, u.Path)
	default:
		res, err = l.loadFromFile(location, location)
	}
	if err != nil {
		return nil, err
	}
	l.log.Debug("loaded",
		"location", location,
		"media_type", res.MediaType,
		"charset", res.Charset,
		"bytes", len(res.Content))
	return res, nil
}

func (l *Loader) loadDataURL(location string) (*Resource, error) {
	dataURL, err := ParseDataURL(location)
	if err != nil {
		return nil, fmt.Errorf("load data URL: %w", err)
	}

	return &Resource{
		URL:        location,
		Content:    dataURL.Data,
		MediaType:  dataURL.MediaType,
		Charset:    dataURL.Charset,
		StatusCode: 200,
	}, nil
}

func (l *Loader) loadFromFile(location, path string) (*Resource, error) {
	if !filepath.IsAbs(path) && l.baseDir != "" {
		path = filepath.Join(l.baseDir, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", location, err)
	}

	return &Resource{
		URL:        location,
		Content:    content,
		MediaType:  GuessContentType(path),
		StatusCode: 200,
	}, nil
}

func (l *Loader) loadFromHTTP(ctx context.Context, location string) (*Resource, error) {
	if l.client == nil {
		return nil, fmt.Errorf("load %s: %w", location, ErrNoClient)
	}

	resp, err := l.client.Get(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", location, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, &StatusError{URL: location, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	mediaType, cs := ParseContentType(resp.ContentType)
	if resp.ContentType == "" {
		mediaType = GuessContentType(location)
	}

	return &Resource{
		URL:        resp.URL.String(),
		Content:    resp.Body,
		MediaType:  mediaType,
		Charset:    cs,
		StatusCode: resp.StatusCode,
	}, nil
}
