package system

import (
	"archive/tar"
	"compress/bzip2"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"
)

// ArchiveExtractor reads .deb archives in-process.
//
// A .deb file is an ar archive containing debian-binary, then
// control.tar[.gz|.xz|.zst] and data.tar[.gz|.xz|.zst|.bz2].
type ArchiveExtractor struct{}

func (e *ArchiveExtractor) ExtractFull(ctx context.Context, archive, dest string) error {
	return e.extract(ctx, archive, dest, true)
}

func (e *ArchiveExtractor) ExtractPayload(ctx context.Context, archive, dest string) error {
	return e.extract(ctx, archive, dest, false)
}

func (e *ArchiveExtractor) extract(ctx context.Context, archive, dest string, withControl bool) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}

	foundData := false
	reader := ar.NewReader(f)
	for {
		header, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%s: malformed archive: %w", archive, err)
		}

		// GNU ar terminates names with a slash
		name := strings.TrimSuffix(strings.TrimSpace(header.Name), "/")
		switch {
		case strings.HasPrefix(name, "control.tar"):
			if !withControl {
				continue
			}
			if err := untar(ctx, name, reader, filepath.Join(dest, "DEBIAN")); err != nil {
				return fmt.Errorf("%s: %s: %w", archive, name, err)
			}
		case strings.HasPrefix(name, "data.tar"):
			if err := untar(ctx, name, reader, dest); err != nil {
				return fmt.Errorf("%s: %s: %w", archive, name, err)
			}
			foundData = true
		default:
			// Ex: debian-binary, _gpgbuilder
			logrus.WithField("archive", archive).Debugf("Skipping member %s", name)
		}
	}

	if !foundData {
		return fmt.Errorf("%s: data.tar not found in archive", archive)
	}
	return nil
}

// decompressReader wraps r according to the extension of the member name.
func decompressReader(name string, r io.Reader) (io.ReadCloser, error) {
	switch filepath.Ext(name) {
	case ".tar":
		return io.NopCloser(r), nil
	case ".gz":
		return gzip.NewReader(r)
	case ".xz":
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	case ".bz2":
		return io.NopCloser(bzip2.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported compression for %s", name)
	}
}

func untar(ctx context.Context, name string, r io.Reader, dest string) error {
	dr, err := decompressReader(name, r)
	if err != nil {
		return err
	}
	defer dr.Close()

	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}

	tr := tar.NewReader(dr)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := securePath(dest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, hdr.FileInfo().Mode().Perm()|0700); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := refuseSymlink(target); err != nil {
				return err
			}
			if err := writeFile(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		case tar.TypeLink:
			source, err := securePath(dest, hdr.Linkname)
			if err != nil {
				return err
			}
			if err := refuseSymlink(target); err != nil {
				return err
			}
			os.Remove(target)
			if err := os.Link(source, target); err != nil {
				return err
			}
		default:
			// Devices and FIFOs cannot be created without privileges
			logrus.Debugf("Ignoring special file %s", hdr.Name)
		}
	}
}

// securePath resolves name under dest and rejects entries escaping it,
// either textually or through a symlink extracted by a previous entry.
// Ex: ./usr/bin/hello => dest/usr/bin/hello
func securePath(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	rel, err := filepath.Rel(dest, target)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("illegal path %q outside of %s", name, dest)
	}

	// Ex: ./etc -> /etc followed by ./etc/passwd
	dir := dest
	for _, part := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
		if part == "." {
			continue
		}
		dir = filepath.Join(dir, part)
		info, err := os.Lstat(dir)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return "", err
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return "", fmt.Errorf("illegal path %q through symlink %s", name, dir)
		}
	}
	return target, nil
}

// refuseSymlink fails when path is an existing symlink, which writing would follow.
func refuseSymlink(path string) error {
	info, err := os.Lstat(path)
	if err == nil && info.Mode()&fs.ModeSymlink != 0 {
		return fmt.Errorf("refusing to overwrite symlink %s", path)
	}
	return nil
}

func writeFile(path string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
