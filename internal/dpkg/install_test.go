package dpkg_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julien-sobczak/rootpkg/internal/dpkg"
	"github.com/julien-sobczak/rootpkg/internal/models"
	"github.com/julien-sobczak/rootpkg/internal/system"
	"github.com/julien-sobczak/rootpkg/testutil"
)

const testControl = `Package: test
Version: 1.1-1
Section: base
Priority: optional
Architecture: all
Maintainer: Julien Sobczak
Depends: cowsay (>= 3.0) | fortune
Description: Test
 A test package.
 .
 With two paragraphs.
`

const testInfo = `InfoType = 1
DepsIncluded = false

[Package]
Name = 'test'
Version = '1.1-1'
Architecture = 'all'
Depends = 'cowsay (>= 3.0) | fortune'
Recommends = ''
Suggests = ''
Pre-Depends = ''
Enhances = ''
Maintainer = 'Julien Sobczak'
Description = '''Test
A test package.
.
With two paragraphs.'''

[Other]
source = 'deb'
`

// buildArchive creates a Debian archive from a control file and a single payload file.
func buildArchive(t *testing.T, testdir string, control string) string {
	t.Helper()
	testutil.PopulateTestDir(t, testdir, map[string][]byte{
		"src/DEBIAN/control": []byte(control),
		"src/usr/bin/test": []byte(`#!/bin/bash
echo "Test";
`),
	})
	archive := filepath.Join(testdir, "test.deb")
	if err := dpkg.Build(filepath.Join(testdir, "src"), archive, dpkg.CompressionGzip); err != nil {
		t.Fatal(err)
	}
	return archive
}

func TestInstall(t *testing.T) {
	testdir := t.TempDir()
	root := filepath.Join(testdir, "root")
	archive := buildArchive(t, testdir, testControl)

	// Scratch directories must not survive the transaction
	scratch := t.TempDir()
	t.Setenv("TMPDIR", scratch)

	pkg, err := dpkg.Install(context.Background(), system.NewNativeToolkit(), archive, root)
	if err != nil {
		t.Fatal(err)
	}
	if pkg.Name != "test" || pkg.Version.String() != "1.1-1" || pkg.Location != archive {
		t.Errorf("Unexpected record %+v", pkg)
	}

	dest := filepath.Join(root, "System/Packages/test---1.1-1")
	testutil.CheckFileContains(t, filepath.Join(dest, "pkg-info"), testInfo)
	testutil.CheckFileContains(t, filepath.Join(dest, "usr/bin/test"), "#!/bin/bash\necho \"Test\";\n")
	testutil.CheckFileMissing(t, filepath.Join(dest, "DEBIAN"))
	testutil.CheckFileMissing(t, filepath.Join(scratch, "*"))
}

func TestInstallCanonicalDirectory(t *testing.T) {
	testdir := t.TempDir()
	root := filepath.Join(testdir, "root")
	archive := buildArchive(t, testdir, "Package: test\nVersion: 0:1.01-1\nArchitecture: all\n")

	if _, err := dpkg.Install(context.Background(), system.NewNativeToolkit(), archive, root); err != nil {
		t.Fatal(err)
	}
	// The directory uses the canonical version, pkg-info the control text
	info := filepath.Join(root, "System/Packages/test---1.1-1/pkg-info")
	testutil.CheckFileExists(t, info)
	content, err := os.ReadFile(info)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "\nVersion = '0:1.01-1'\n") {
		t.Errorf("Version must match the control file:\n%s", content)
	}
}

func TestInstallAlreadyInstalled(t *testing.T) {
	testdir := t.TempDir()
	root := filepath.Join(testdir, "root")
	archive := buildArchive(t, testdir, testControl)

	if _, err := dpkg.Install(context.Background(), system.NewNativeToolkit(), archive, root); err != nil {
		t.Fatal(err)
	}
	before := testutil.SnapshotDir(t, dpkg.PackagesDir(root))

	_, err := dpkg.Install(context.Background(), system.NewNativeToolkit(), archive, root)
	if !models.IsType(err, models.ErrAlreadyInstalled) {
		t.Fatalf("Expected an already installed error, got %v", err)
	}
	testutil.CheckSameSnapshot(t, testutil.SnapshotDir(t, dpkg.PackagesDir(root)), before)
}

func TestInstallCopyFailure(t *testing.T) {
	testdir := t.TempDir()
	root := filepath.Join(testdir, "root")
	archive := buildArchive(t, testdir, testControl)
	scratch := t.TempDir()
	t.Setenv("TMPDIR", scratch)

	toolkit := system.NewNativeToolkit()
	toolkit.FS = &testutil.FailingFS{FileSystem: toolkit.FS}

	_, err := dpkg.Install(context.Background(), toolkit, archive, root)
	if !models.IsType(err, models.ErrIO) {
		t.Fatalf("Expected an IO error, got %v", err)
	}
	testutil.CheckFileMissing(t, filepath.Join(root, "System/Packages/*/pkg-info"))
	testutil.CheckFileMissing(t, filepath.Join(root, "System/Packages/test---1.1-1"))
	testutil.CheckFileMissing(t, filepath.Join(scratch, "*"))
}

func TestInstallInvalidArchive(t *testing.T) {
	testdir := t.TempDir()
	root := filepath.Join(testdir, "root")
	archive := filepath.Join(testdir, "broken.deb")
	if err := os.WriteFile(archive, []byte("not an archive"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := dpkg.Install(context.Background(), system.NewNativeToolkit(), archive, root)
	if !models.IsType(err, models.ErrExtraction) {
		t.Fatalf("Expected an extraction error, got %v", err)
	}
	testutil.CheckFileMissing(t, dpkg.PackagesDir(root))

	_, err = dpkg.Install(context.Background(), system.NewNativeToolkit(), filepath.Join(testdir, "missing.deb"), root)
	if !models.IsType(err, models.ErrExtraction) {
		t.Fatalf("Expected an extraction error, got %v", err)
	}
}

func TestInstallInvalidControl(t *testing.T) {
	testdir := t.TempDir()
	root := filepath.Join(testdir, "root")
	archive := buildArchive(t, testdir, "Package: test\nVersion: 1.0\nArchitecture: all\nDepends: libc6 (>= \n")

	_, err := dpkg.Install(context.Background(), system.NewNativeToolkit(), archive, root)
	if !models.IsType(err, models.ErrParse) {
		t.Fatalf("Expected a parse error, got %v", err)
	}
	testutil.CheckFileMissing(t, dpkg.PackagesDir(root))
}
