package dpkg

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/blakesmith/ar"
	"github.com/julien-sobczak/deb822"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression of the control.tar and data.tar members.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gz"
	CompressionXz   Compression = "xz"
	CompressionZstd Compression = "zst"
)

// ParseCompression validates a compression name.
func ParseCompression(name string) (Compression, error) {
	switch c := Compression(name); c {
	case CompressionNone, CompressionGzip, CompressionXz, CompressionZstd:
		return c, nil
	case "":
		return CompressionNone, nil
	default:
		return "", fmt.Errorf("unsupported compression %q", name)
	}
}

// Extension returns the suffix appended to member names.
// Ex: gz => .gz (data.tar.gz)
func (c Compression) Extension() string {
	if c == CompressionNone || c == "" {
		return ""
	}
	return "." + string(c)
}

// Build packs directory into the Debian archive dest.
// directory/DEBIAN holds the control files, everything else is the payload.
func Build(directory string, dest string, compression Compression) error {
	controlDir := filepath.Join(directory, "DEBIAN")
	if err := checkControlFile(filepath.Join(controlDir, "control")); err != nil {
		return err
	}

	controlTarball, err := tarballPack(controlDir, nil)
	if err != nil {
		return fmt.Errorf("unable to pack %s: %w", controlDir, err)
	}
	dataTarball, err := tarballPack(directory, func(path string) bool {
		return path == controlDir || strings.HasPrefix(path, controlDir+string(filepath.Separator))
	})
	if err != nil {
		return fmt.Errorf("unable to pack %s: %w", directory, err)
	}

	controlMember, err := compress(controlTarball, compression)
	if err != nil {
		return err
	}
	dataMember, err := compress(dataTarball, compression)
	if err != nil {
		return err
	}

	// Create the debian archive file
	fdeb, err := os.Create(dest)
	if err != nil {
		return err
	}
	err = writeArchive(fdeb, []arMember{
		{"debian-binary", []byte("2.0\n")},
		{"control.tar" + compression.Extension(), controlMember},
		{"data.tar" + compression.Extension(), dataMember},
	})
	if cerr := fdeb.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return fmt.Errorf("unable to write %s: %w", dest, err)
	}
	return nil
}

// checkControlFile ensures the control file is a single paragraph declaring the package identity.
func checkControlFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	parser, err := deb822.NewParser(f)
	if err != nil {
		return fmt.Errorf("malformed control file %s: %w", path, err)
	}
	doc, err := parser.Parse()
	if err != nil {
		return fmt.Errorf("malformed control file %s: %w", path, err)
	}
	if len(doc.Paragraphs) != 1 {
		return fmt.Errorf("control file %s must contain a single paragraph, found %d", path, len(doc.Paragraphs))
	}
	for _, field := range []string{"Package", "Version", "Architecture"} {
		if doc.Paragraphs[0].Value(field) == "" {
			return fmt.Errorf("control file %s: missing field %s", path, field)
		}
	}
	return nil
}

type arMember struct {
	name string
	body []byte
}

func writeArchive(w io.Writer, members []arMember) error {
	writer := ar.NewWriter(w)
	if err := writer.WriteGlobalHeader(); err != nil {
		return err
	}
	for _, m := range members {
		if err := arPutFile(writer, m.name, m.body); err != nil {
			return err
		}
	}
	return nil
}

// arPutFile appends a new file in an ar archive.
func arPutFile(w *ar.Writer, name string, body []byte) error {
	hdr := &ar.Header{
		Name: name,
		Uid:  0,
		Gid:  0,
		Mode: 0644,
		Size: int64(len(body)),
	}
	if err := w.WriteHeader(hdr); err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	return nil
}

func compress(data []byte, compression Compression) ([]byte, error) {
	var buf bytes.Buffer
	var w io.WriteCloser
	var err error
	switch compression {
	case CompressionNone, "":
		return data, nil
	case CompressionGzip:
		w = gzip.NewWriter(&buf)
	case CompressionXz:
		w, err = xz.NewWriter(&buf)
	case CompressionZstd:
		w, err = zstd.NewWriter(&buf)
	default:
		return nil, fmt.Errorf("unsupported compression %q", compression)
	}
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// tarballPack appends every entry under directory that passes the filter in the tar archive.
func tarballPack(directory string, exclude func(string) bool) ([]byte, error) {
	var bufdata bytes.Buffer
	twdata := tar.NewWriter(&bufdata)
	err := filepath.WalkDir(directory, func(path string, d fs.DirEntry, errParent error) error {
		if errParent != nil {
			return errParent
		}
		if path == directory {
			return nil
		}
		if exclude != nil && exclude(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(directory, path)
		if err != nil {
			return err
		}
		link := ""
		if info.Mode()&fs.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}
		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = "./" + filepath.ToSlash(rel) // Ex: hello/DEBIAN/control => ./control
		if d.IsDir() {
			hdr.Name += "/"
		}
		hdr.Uid, hdr.Gid = 0, 0 // root
		hdr.Uname, hdr.Gname = "root", "root"

		if err := twdata.WriteHeader(hdr); err != nil {
			return fmt.Errorf("error while adding a new header in tarball: %w", err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("error while reading file %s: %w", path, err)
		}
		if _, err := twdata.Write(content); err != nil {
			return fmt.Errorf("error while adding a new file in tarball: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	if err := twdata.Close(); err != nil {
		return nil, err
	}

	return bufdata.Bytes(), nil
}
