package network

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if client.timeout != 30*time.Second {
		t.Errorf("default timeout = %v, want %v", client.timeout, 30*time.Second)
	}

	if client.maxRedirects != 10 {
		t.Errorf("default maxRedirects = %v, want %v", client.maxRedirects, 10)
	}

	if client.maxBodySize != 32<<20 {
		t.Errorf("default maxBodySize = %v, want %v", client.maxBodySize, 32<<20)
	}
}

func TestClientOptions(t *testing.T) {
	client, err := NewClient(
		WithTimeout(60*time.Second),
		WithMaxRedirects(5),
		WithMaxBodySize(1024),
		WithUserAgent("TestAgent/1.0"),
		WithFollowRedirect(false),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if client.timeout != 60*time.Second {
		t.Errorf("timeout = %v, want %v", client.timeout, 60*time.Second)
	}

	if client.maxRedirects != 5 {
		t.Errorf("maxRedirects = %v, want %v", client.maxRedirects, 5)
	}

	if client.maxBodySize != 1024 {
		t.Errorf("maxBodySize = %v, want %v", client.maxBodySize, 1024)
	}

	if client.userAgent != "TestAgent/1.0" {
		t.Errorf("userAgent = %v, want %v", client.userAgent, "TestAgent/1.0")
	}
}

func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("User-Agent"); got != "arenactl/1.0" {
			t.Errorf("User-Agent = %q", got)
		}
		if got := r.Header.Get("Accept"); !strings.HasPrefix(got, "text/html") {
			t.Errorf("Accept = %q, want text/html first", got)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<p>Hello, World!"))
	}))
	defer server.Close()

	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %v, want 200", resp.StatusCode)
	}

	if string(resp.Body) != "<p>Hello, World!" {
		t.Errorf("Body = %q, want %q", string(resp.Body), "<p>Hello, World!")
	}

	if resp.ContentType != "text/html; charset=utf-8" {
		t.Errorf("ContentType = %q", resp.ContentType)
	}
}

func TestClientGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte("<p>compressed"))
	zw.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer server.Close()

	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if string(resp.Body) != "<p>compressed" {
		t.Errorf("Body = %q, want %q", string(resp.Body), "<p>compressed")
	}
}

func TestClientBodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), 100))
	}))
	defer server.Close()

	client, err := NewClient(WithMaxBodySize(10))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.Get(context.Background(), server.URL)
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Errorf("Get() error = %v, want ErrBodyTooLarge", err)
	}
}

func TestClientRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/final" {
			w.Write([]byte("Final destination"))
			return
		}
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	client, err := NewClient(WithMaxRedirects(5))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL+"/start")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if string(resp.Body) != "Final destination" {
		t.Errorf("Body = %q, want %q", string(resp.Body), "Final destination")
	}

	if resp.URL.Path != "/final" {
		t.Errorf("URL.Path = %q, want /final", resp.URL.Path)
	}
}

func TestClientTooManyRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer server.Close()

	client, err := NewClient(WithMaxRedirects(3))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.Get(context.Background(), server.URL+"/loop")
	if err == nil {
		t.Error("expected error for too many redirects")
	}
}

func TestClientNoFollowRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/other", http.StatusFound)
	}))
	defer server.Close()

	client, err := NewClient(WithFollowRedirect(false))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if resp.StatusCode != http.StatusFound {
		t.Errorf("StatusCode = %v, want %v", resp.StatusCode, http.StatusFound)
	}
}

func TestClientCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/set":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123"})
			w.Write([]byte("Cookie set"))
		case "/get":
			cookie, err := r.Cookie("session")
			if err != nil {
				w.Write([]byte("No cookie"))
				return
			}
			w.Write([]byte("Cookie: " + cookie.Value))
		}
	}))
	defer server.Close()

	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.Get(context.Background(), server.URL+"/set"); err != nil {
		t.Fatalf("Get(/set) error = %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL+"/get")
	if err != nil {
		t.Fatalf("Get(/get) error = %v", err)
	}

	if string(resp.Body) != "Cookie: abc123" {
		t.Errorf("Body = %q, want %q", string(resp.Body), "Cookie: abc123")
	}
}

func TestClientCookieAccessors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123", Path: "/"})
			http.Redirect(w, r, "/home", http.StatusFound)
		case "/home":
			var names []string
			for _, c := range r.Cookies() {
				names = append(names, c.Name+"="+c.Value)
			}
			w.Write([]byte(strings.Join(names, ";")))
		}
	}))
	defer server.Close()

	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL+"/login")
	if err != nil {
		t.Fatalf("Get(/login) error = %v", err)
	}
	if string(resp.Body) != "session=abc123" {
		t.Errorf("Body = %q, want the cookie set before the redirect", string(resp.Body))
	}

	u, err := url.Parse(server.URL + "/home")
	if err != nil {
		t.Fatal(err)
	}
	cookies := client.Cookies(u)
	if len(cookies) != 1 || cookies[0].Name != "session" || cookies[0].Value != "abc123" {
		t.Errorf("Cookies() = %v, want session=abc123", cookies)
	}

	client.SetCookies(u, []*http.Cookie{{Name: "lang", Value: "en", Path: "/"}})
	resp, err = client.Get(context.Background(), server.URL+"/home")
	if err != nil {
		t.Fatalf("Get(/home) error = %v", err)
	}
	if !strings.Contains(string(resp.Body), "lang=en") || !strings.Contains(string(resp.Body), "session=abc123") {
		t.Errorf("Body = %q, want both cookies sent", string(resp.Body))
	}
}

func TestParseContentType(t *testing.T) {
	tests := []struct {
		contentType string
		wantMedia   string
		wantCharset string
	}{
		{"text/html", "text/html", ""},
		{"text/html; charset=utf-8", "text/html", "utf-8"},
		{"TEXT/HTML; charset=UTF-8", "text/html", "utf-8"},
		{"text/html; charset=\"windows-1252\"", "text/html", "windows-1252"},
		{"application/xhtml+xml;charset=iso-8859-2", "application/xhtml+xml", "iso-8859-2"},
		{"", "application/octet-stream", ""},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			media, charset := ParseContentType(tt.contentType)
			if media != tt.wantMedia {
				t.Errorf("media = %q, want %q", media, tt.wantMedia)
			}
			if charset != tt.wantCharset {
				t.Errorf("charset = %q, want %q", charset, tt.wantCharset)
			}
		})
	}
}

func TestIsHTMLContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"application/xhtml+xml", true},
		{"text/css", false},
		{"image/svg+xml", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			if got := IsHTMLContentType(tt.contentType); got != tt.want {
				t.Errorf("IsHTMLContentType() = %v, want %v", got, tt.want)
			}
		})
	}
}
