package system

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"
)

// HTTPDownloader retrieves files over HTTP(S).
type HTTPDownloader struct {
	Client *http.Client
}

// NewHTTPDownloader returns a downloader using client (http.DefaultClient when nil).
func NewHTTPDownloader(client *http.Client) *HTTPDownloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPDownloader{Client: client}
}

func (d *HTTPDownloader) Download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// Never leave a truncated file behind
		os.Remove(dest)
		return err
	}

	logrus.WithFields(logrus.Fields{"url": url, "dest": dest}).Debugf("Downloaded %s", humanReadable(n))
	return nil
}

// ErrNotGzip is returned when decompressing a file without the .gz extension.
var ErrNotGzip = errors.New("missing .gz extension")

// GzipDecompressor decompresses gzip files in-process.
type GzipDecompressor struct{}

func (d *GzipDecompressor) GunzipInPlace(ctx context.Context, path string) error {
	if !strings.HasSuffix(path, ".gz") {
		return fmt.Errorf("%s: %w", path, ErrNotGzip)
	}
	target := strings.TrimSuffix(path, ".gz")

	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	gr, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer gr.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, gr)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(target)
		return fmt.Errorf("%s: %w", path, err)
	}

	in.Close()
	return os.Remove(path)
}

func humanReadable(b int64) string {
	// From https://yourbasic.org/golang/formatting-byte-size-to-human-readable-format/
	const unit = 1000
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(b)/float64(div), "kMGTPE"[exp])
}
