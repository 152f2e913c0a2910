package system

import (
	"context"
	"fmt"
	"strings"
)

// ShellExtractor unpacks archives with dpkg-deb.
type ShellExtractor struct {
	Executor Executor
}

func (s *ShellExtractor) ExtractFull(ctx context.Context, archive, dest string) error {
	// dpkg-deb -R places the control files under dest/DEBIAN
	return s.Executor.Run(ctx, Command("dpkg-deb", "-R", archive, dest))
}

func (s *ShellExtractor) ExtractPayload(ctx context.Context, archive, dest string) error {
	return s.Executor.Run(ctx, Command("dpkg-deb", "-x", archive, dest))
}

// ShellDownloader retrieves files with wget.
type ShellDownloader struct {
	Executor Executor
}

func (s *ShellDownloader) Download(ctx context.Context, url, dest string) error {
	return s.Executor.Run(ctx, Command("wget", "-q", "-O", dest, url))
}

// ShellDecompressor decompresses files with gzip.
type ShellDecompressor struct {
	Executor Executor
}

func (s *ShellDecompressor) GunzipInPlace(ctx context.Context, path string) error {
	if !strings.HasSuffix(path, ".gz") {
		return fmt.Errorf("%s: %w", path, ErrNotGzip)
	}
	return s.Executor.Run(ctx, Command("gzip", "-d", "-f", path))
}

// ShellFS manipulates directories with coreutils.
type ShellFS struct {
	Executor Executor
}

func (s *ShellFS) MkdirAll(ctx context.Context, path string) error {
	return s.Executor.Run(ctx, Command("mkdir", "-p", path))
}

func (s *ShellFS) RemoveAll(ctx context.Context, path string) error {
	return s.Executor.Run(ctx, Command("rm", "-rf", path))
}

func (s *ShellFS) CopyRecursive(ctx context.Context, src, dst string) error {
	// Ex: mkdir -p /R/System/Packages/hello---1.0 && cp -a /tmp/payload/. /R/System/Packages/hello---1.0
	return s.Executor.Run(ctx, Command("mkdir", "-p", dst)+" && "+Command("cp", "-a", strings.TrimSuffix(src, "/")+"/.", dst))
}

func (s *ShellFS) WriteFile(ctx context.Context, path string, content []byte) error {
	// Ex: printf %s '0 http://deb.debian.org/debian stable main
	// ' > /R/System/Cache/Packages/index
	return s.Executor.Run(ctx, Command("printf", "%s", string(content))+" > "+Quote(path))
}

// ShellHost queries the machine with uname.
type ShellHost struct {
	Executor Executor
}

func (s *ShellHost) Machine(ctx context.Context) (string, error) {
	out, err := s.Executor.Output(ctx, "uname -m")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
