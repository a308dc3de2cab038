package provision

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "git.home.luguber.info/inful/mlenv/internal/errors"
)

// Fetcher downloads resource bundles (linguistic corpora, third-party NLP
// service archives) and optionally unpacks them into the workspace.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher with a generous timeout; resource archives
// can be hundreds of megabytes.
func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: 30 * time.Minute}}
}

// Fetch downloads url to dest. With unpack set ("zip" or "tar.gz") the
// archive is expanded into dest as a directory; otherwise dest is the
// downloaded file itself.
func (f *Fetcher) Fetch(ctx context.Context, url, dest, unpack string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return apperrors.WrapError(err, apperrors.CategoryNetwork, "build download request").WithContext("url", url)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return apperrors.WrapError(err, apperrors.CategoryNetwork, "download resource").WithContext("url", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apperrors.New(apperrors.CategoryNetwork, apperrors.SeverityError,
			fmt.Sprintf("download resource: unexpected status %s", resp.Status)).WithContext("url", url)
	}

	if unpack == "" {
		return writeStream(resp.Body, dest)
	}

	// Spool the archive to a temp file first; both unpack paths need random
	// access or a second pass over the bytes.
	tmp, err := os.CreateTemp("", "mlenv-resource-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return apperrors.WrapError(err, apperrors.CategoryNetwork, "download resource body").WithContext("url", url)
	}

	switch unpack {
	case "zip":
		return unpackZip(tmp.Name(), dest)
	case "tar.gz":
		return unpackTarGz(tmp.Name(), dest)
	default:
		return fmt.Errorf("unsupported unpack format %q", unpack)
	}
}

func writeStream(r io.Reader, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("write destination file: %w", err)
	}
	return nil
}

// securePath joins name under dest, rejecting entries that would escape it.
func securePath(dest, name string) (string, error) {
	path := filepath.Join(dest, name)
	if !strings.HasPrefix(path, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}
	return path, nil
}

func unpackZip(archivePath, dest string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open zip archive: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		path, err := securePath(dest, file.Name)
		if err != nil {
			return err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0o750); err != nil {
				return fmt.Errorf("create directory %s: %w", path, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("create directory for %s: %w", path, err)
		}
		src, err := file.Open()
		if err != nil {
			return fmt.Errorf("open zip entry %s: %w", file.Name, err)
		}
		err = writeStream(src, path)
		src.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func unpackTarGz(archivePath, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open tar archive: %w", err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar entry: %w", err)
		}
		path, err := securePath(dest, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, 0o750); err != nil {
				return fmt.Errorf("create directory %s: %w", path, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
				return fmt.Errorf("create directory for %s: %w", path, err)
			}
			if err := writeStream(tr, path); err != nil {
				return err
			}
		}
	}
}
