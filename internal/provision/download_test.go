package provision

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func serveBytes(t *testing.T, body []byte, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchPlainFile(t *testing.T) {
	srv := serveBytes(t, []byte("word list\n"), http.StatusOK)
	dest := filepath.Join(t.TempDir(), "corpora", "words.txt")

	if err := NewFetcher().Fetch(context.Background(), srv.URL, dest, ""); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "word list\n" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestFetchRejectsNonOKStatus(t *testing.T) {
	srv := serveBytes(t, nil, http.StatusNotFound)
	err := NewFetcher().Fetch(context.Background(), srv.URL, filepath.Join(t.TempDir(), "x"), "")
	if err == nil || !strings.Contains(err.Error(), "unexpected status") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestFetchUnpacksZip(t *testing.T) {
	body := buildZip(t, map[string]string{
		"corenlp/server.jar":    "jarbytes",
		"corenlp/models/en.bin": "modelbytes",
	})
	srv := serveBytes(t, body, http.StatusOK)
	dest := filepath.Join(t.TempDir(), "corenlp")

	if err := NewFetcher().Fetch(context.Background(), srv.URL, dest, "zip"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	for path, want := range map[string]string{
		"corenlp/server.jar":    "jarbytes",
		"corenlp/models/en.bin": "modelbytes",
	} {
		data, err := os.ReadFile(filepath.Join(dest, path))
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if string(data) != want {
			t.Errorf("%s: unexpected content %q", path, data)
		}
	}
}

func TestFetchRejectsEscapingZipEntries(t *testing.T) {
	body := buildZip(t, map[string]string{"../evil.txt": "nope"})
	srv := serveBytes(t, body, http.StatusOK)

	err := NewFetcher().Fetch(context.Background(), srv.URL, filepath.Join(t.TempDir(), "d"), "zip")
	if err == nil || !strings.Contains(err.Error(), "escapes destination") {
		t.Fatalf("expected escape error, got %v", err)
	}
}

func TestFetchUnpacksTarGz(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	content := []byte("tokenizer data")
	if err := tw.WriteHeader(&tar.Header{Name: "punkt/english.pickle", Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg}); err != nil {
		t.Fatalf("tar header: %v", err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatalf("tar write: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	srv := serveBytes(t, buf.Bytes(), http.StatusOK)
	dest := filepath.Join(t.TempDir(), "nltk")

	if err := NewFetcher().Fetch(context.Background(), srv.URL, dest, "tar.gz"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dest, "punkt", "english.pickle"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "tokenizer data" {
		t.Errorf("unexpected content: %q", data)
	}
}
