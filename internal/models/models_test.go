package models_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/julien-sobczak/rootpkg/internal/models"
	"github.com/julien-sobczak/rootpkg/internal/version"
)

func TestErrorFormat(t *testing.T) {
	err := models.NewError(models.ErrTransport, "http://example.test/debian", errors.New("connection refused"))
	want := "[Transport] http://example.test/debian: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIsType(t *testing.T) {
	inner := models.NewError(models.ErrIO, "/tmp/x", os.ErrPermission)
	outer := models.NewError(models.ErrCatalogCorrupt, "index", inner)
	wrapped := fmt.Errorf("update failed: %w", outer)

	if !models.IsType(wrapped, models.ErrCatalogCorrupt) {
		t.Errorf("outer type not found")
	}
	if !models.IsType(wrapped, models.ErrIO) {
		t.Errorf("inner type not found")
	}
	if models.IsType(wrapped, models.ErrTransport) {
		t.Errorf("unexpected type found")
	}
	if !errors.Is(wrapped, os.ErrPermission) {
		t.Errorf("cause must be reachable with errors.Is")
	}
	if models.IsType(nil, models.ErrIO) {
		t.Errorf("nil error has no type")
	}
}

func TestSourceIndexURL(t *testing.T) {
	s := models.Source{Type: "deb", URL: "http://example.test/debian", Distribution: "stable", Component: "main"}
	want := "http://example.test/debian/dists/stable/main/binary-amd64/Packages.gz"
	if got := s.IndexURL("amd64"); got != want {
		t.Errorf("IndexURL() = %q, want %q", got, want)
	}
	if !s.Supported() {
		t.Errorf("deb sources must be supported")
	}
	if (models.Source{Type: "deb-src"}).Supported() {
		t.Errorf("deb-src sources must not be supported")
	}
}

func TestRecordDirName(t *testing.T) {
	a := models.Record{Name: "hello", Version: version.MustParse("0:2.010-2"), Architecture: "amd64"}
	b := models.Record{Name: "hello", Version: version.MustParse("2.10-2"), Architecture: "amd64"}
	if a.DirName() != "hello---2.10-2" {
		t.Errorf("DirName() = %q", a.DirName())
	}
	if a.DirName() != b.DirName() {
		t.Errorf("equal versions must produce the same directory name")
	}
	if !a.Same(b) {
		t.Errorf("records must be the same package")
	}
	if a.Relation(models.Depends).String() != "" {
		t.Errorf("missing relation must be empty")
	}
}
