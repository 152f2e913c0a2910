package system

import (
	"context"
	"fmt"
)

// Executor runs a single command line.
type Executor interface {
	// Run executes the command line and reports whether it succeeded.
	Run(ctx context.Context, cmdline string) error
	// Output executes the command line and returns its standard output.
	Output(ctx context.Context, cmdline string) (string, error)
}

// Extractor unpacks a .deb archive into a plain directory tree.
type Extractor interface {
	// ExtractFull unpacks the payload into dest and the control files into dest/DEBIAN.
	ExtractFull(ctx context.Context, archive, dest string) error
	// ExtractPayload unpacks only the payload into dest.
	ExtractPayload(ctx context.Context, archive, dest string) error
}

// Downloader retrieves a single remote file.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// Decompressor decompresses index files.
type Decompressor interface {
	// GunzipInPlace replaces path (ending in .gz) by its decompressed content
	// stored at the same path without the .gz extension.
	GunzipInPlace(ctx context.Context, path string) error
}

// FileSystem groups the directory operations used by transactions.
type FileSystem interface {
	MkdirAll(ctx context.Context, path string) error
	RemoveAll(ctx context.Context, path string) error
	// CopyRecursive copies the content of src into dst, creating dst if needed.
	CopyRecursive(ctx context.Context, src, dst string) error
	// WriteFile creates or truncates path with content.
	WriteFile(ctx context.Context, path string, content []byte) error
}

// Host describes the machine running the process.
type Host interface {
	// Machine returns the machine hardware name as printed by uname -m.
	// Ex: x86_64
	Machine(ctx context.Context) (string, error)
}

// Toolkit bundles the capabilities used by the catalog and install operations.
type Toolkit struct {
	Extractor    Extractor
	Downloader   Downloader
	Decompressor Decompressor
	FS           FileSystem
	Host         Host
}

// NewNativeToolkit returns capabilities implemented in-process.
func NewNativeToolkit() Toolkit {
	return Toolkit{
		Extractor:    &ArchiveExtractor{},
		Downloader:   NewHTTPDownloader(nil),
		Decompressor: &GzipDecompressor{},
		FS:           &LocalFS{},
		Host:         &RuntimeHost{},
	}
}

// NewShellToolkit returns capabilities delegating to external commands
// (dpkg-deb, wget, gzip, mkdir, rm, cp, uname) run by executor.
func NewShellToolkit(executor Executor) Toolkit {
	return Toolkit{
		Extractor:    &ShellExtractor{Executor: executor},
		Downloader:   &ShellDownloader{Executor: executor},
		Decompressor: &ShellDecompressor{Executor: executor},
		FS:           &ShellFS{Executor: executor},
		Host:         &ShellHost{Executor: executor},
	}
}

// NewToolkit returns the toolkit for a backend name ("native" or "shell").
func NewToolkit(backend string) (Toolkit, error) {
	switch backend {
	case "", BackendNative:
		return NewNativeToolkit(), nil
	case BackendShell:
		return NewShellToolkit(NewShellExecutor()), nil
	default:
		return Toolkit{}, fmt.Errorf("unknown backend %q (expected %q or %q)", backend, BackendNative, BackendShell)
	}
}

// Supported backends
const (
	BackendNative = "native"
	BackendShell  = "shell"
)
