package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"fairytale/internal/apperr"
)

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestExtensionFor(t *testing.T) {
	cases := []struct {
		kind        Kind
		contentType string
		want        string
	}{
		{KindImage, "image/png", ".png"},
		{KindImage, "image/jpeg", ".jpg"},
		{KindImage, "image/webp", ".webp"},
		{KindImage, "", ".jpg"},
		{KindImage, "application/octet-stream", ".jpg"},
		{KindAudio, "audio/mpeg", ".mp3"},
		{KindAudio, "text/html; charset=utf-8", ".mp3"},
		{KindVideo, "video/mp4", ".mp4"},
		{KindVideo, "image/png", ".mp4"},
	}
	for _, tc := range cases {
		if got := ExtensionFor(tc.kind, tc.contentType); got != tc.want {
			t.Errorf("ExtensionFor(%s, %q) = %q, want %q", tc.kind, tc.contentType, got, tc.want)
		}
	}
}

func TestIsRemote(t *testing.T) {
	for in, want := range map[string]bool{
		"http://example.com/a.png":  true,
		"https://example.com/a.png": true,
		"ftp://example.com/a.png":   false,
		"/tmp/a.png":                false,
		"a.png":                     false,
		"https://":                  false,
	} {
		if got := IsRemote(in); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFetchWritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing user agent")
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		io.WriteString(w, "ID3 fake mp3")
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(5*time.Second, testLogger())
	path, err := f.Fetch(context.Background(), srv.URL+"/voice", KindAudio, dir)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("path %q is not absolute", path)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "audio_") || filepath.Ext(base) != ".mp3" {
		t.Errorf("unexpected file name %q", base)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "ID3 fake mp3" {
		t.Errorf("content = %q", b)
	}
}

func TestFetchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(5*time.Second, testLogger())
	_, err := f.Fetch(context.Background(), srv.URL+"/missing.png", KindImage, dir)
	if !errors.Is(err, apperr.ErrRemoteFetch) {
		t.Fatalf("err = %v, want ErrRemoteFetch", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("dir has %d leftover files", len(entries))
	}
}

func TestFetchTimeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()
	defer close(done)

	f := NewFetcher(50*time.Millisecond, testLogger())
	_, err := f.Fetch(context.Background(), srv.URL, KindVideo, t.TempDir())
	if !errors.Is(err, apperr.ErrRemoteFetch) {
		t.Fatalf("err = %v, want ErrRemoteFetch", err)
	}
}

func TestFetchRejectsRelativeURL(t *testing.T) {
	f := NewFetcher(time.Second, testLogger())
	_, err := f.Fetch(context.Background(), "images/a.png", KindImage, t.TempDir())
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestScopeRelease(t *testing.T) {
	root := t.TempDir()
	dir, release, err := NewScope(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "x.tmp"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	release()
	release()
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("scope dir still exists: %v", err)
	}
}

func TestShortID(t *testing.T) {
	a, b := ShortID(), ShortID()
	if len(a) != 8 || a == b {
		t.Errorf("ShortID() = %q, %q", a, b)
	}
}
