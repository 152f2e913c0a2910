package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/julien-sobczak/rootpkg/internal/system"
	"github.com/klauspost/compress/gzip"
)

// FakeDownloader serves files from memory.
type FakeDownloader struct {
	// Files indexed by URL. A missing URL fails like a 404.
	Files map[string][]byte

	mu       sync.Mutex
	requests []string
}

func (d *FakeDownloader) Download(ctx context.Context, url, dest string) error {
	d.mu.Lock()
	d.requests = append(d.requests, url)
	d.mu.Unlock()

	content, ok := d.Files[url]
	if !ok {
		return fmt.Errorf("GET %s: unexpected status 404 Not Found", url)
	}
	return os.WriteFile(dest, content, 0644)
}

// Requests returns the requested URLs, in order.
func (d *FakeDownloader) Requests() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.requests...)
}

// FixedHost reports a constant machine name.
type FixedHost string

func (h FixedHost) Machine(ctx context.Context) (string, error) {
	return string(h), nil
}

// ErrInjected is returned by the failing capabilities.
var ErrInjected = errors.New("injected failure")

// FailingFS copies files like the wrapped filesystem, then fails.
type FailingFS struct {
	system.FileSystem
}

func (f *FailingFS) CopyRecursive(ctx context.Context, src, dst string) error {
	if err := f.FileSystem.CopyRecursive(ctx, src, dst); err != nil {
		return err
	}
	return ErrInjected
}

// FailingWriteFS fails every WriteFile call without writing.
type FailingWriteFS struct {
	system.FileSystem
}

func (f *FailingWriteFS) WriteFile(ctx context.Context, path string, content []byte) error {
	return ErrInjected
}

// NewToolkit returns native capabilities downloading from memory on a x86_64 host.
func NewToolkit(downloader system.Downloader) system.Toolkit {
	toolkit := system.NewNativeToolkit()
	toolkit.Downloader = downloader
	toolkit.Host = FixedHost("x86_64")
	return toolkit
}

// Gzip compresses content.
func Gzip(t *testing.T, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
