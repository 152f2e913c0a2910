package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/julien-sobczak/rootpkg/internal/database"
	"github.com/julien-sobczak/rootpkg/internal/dpkg"
	"github.com/julien-sobczak/rootpkg/internal/models"
	"github.com/julien-sobczak/rootpkg/internal/system"
	"github.com/julien-sobczak/rootpkg/testutil"
)

func info(name, version, depends string) []byte {
	return []byte(`InfoType = 1
DepsIncluded = false

[Package]
Name = '` + name + `'
Version = '` + version + `'
Architecture = 'amd64'
Depends = '` + depends + `'
Recommends = ''
Suggests = ''
Pre-Depends = ''
Enhances = ''
Maintainer = 'Someone'
Description = '''summary
body'''

[Other]
source = 'deb'
`)
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	testutil.PopulateTestDir(t, root, map[string][]byte{
		"System/Packages/hello---2.10-2/pkg-info":    info("hello", "2.10-2", "libc6 (>= 2.14)"),
		"System/Packages/hello---2.10-2/usr/bin/hi":  []byte("hi"),
		"System/Packages/hello---3.0-1/pkg-info":     info("hello", "3.0-1", ""),
		"System/Packages/hello-doc---1.0/pkg-info":   info("hello-doc", "1.0", ""),
		"System/Packages/partial---1.0/usr/bin/test": []byte("test"),
	})

	d, err := database.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Packages) != 3 {
		t.Fatalf("Expected 3 packages, found %d", len(d.Packages))
	}

	pkg := d.Packages[0]
	if pkg.Name != "hello" || pkg.Version.String() != "2.10-2" || pkg.Architecture != "amd64" || pkg.Source != "deb" {
		t.Errorf("Unexpected package %+v", pkg)
	}
	if pkg.Description != "summary\nbody" {
		t.Errorf("Description = %q", pkg.Description)
	}
	if pkg.Dir != filepath.Join(root, "System/Packages/hello---2.10-2") {
		t.Errorf("Dir = %q", pkg.Dir)
	}
	expr, err := pkg.Relation(models.Depends)
	if err != nil {
		t.Fatal(err)
	}
	if names := expr.Names(); len(names) != 1 || names[0] != "libc6" {
		t.Errorf("Unexpected dependencies %v", names)
	}

	if results := d.Search("hello", true); len(results) != 2 {
		t.Errorf("Expected 2 strict results, found %d", len(results))
	}
	if results := d.Search("hello", false); len(results) != 3 {
		t.Errorf("Expected 3 results, found %d", len(results))
	}
	newest, err := d.Newest("hello")
	if err != nil {
		t.Fatal(err)
	}
	if newest.Version.String() != "3.0-1" {
		t.Errorf("Newest = %s", newest.Version)
	}
	if _, err := d.Newest("vim"); !models.IsType(err, models.ErrPackageNotFound) {
		t.Errorf("Expected a missing package, got %v", err)
	}
}

func TestLoadEmptyRoot(t *testing.T) {
	d, err := database.Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Packages) != 0 {
		t.Errorf("Expected no package")
	}
}

func TestLoadCorruptInfo(t *testing.T) {
	root := t.TempDir()
	testutil.PopulateTestDir(t, root, map[string][]byte{
		"System/Packages/bad---1.0/pkg-info": []byte("Name = 'unterminated\n"),
	})
	if _, err := database.Load(root); !models.IsType(err, models.ErrParse) {
		t.Errorf("Expected a parse error, got %v", err)
	}
}

func TestOrphans(t *testing.T) {
	root := t.TempDir()
	testutil.PopulateTestDir(t, root, map[string][]byte{
		"System/Packages/hello---2.10-2/pkg-info":    info("hello", "2.10-2", ""),
		"System/Packages/partial---1.0/usr/bin/test": []byte("test"),
		"System/Packages/garbage/pkg-info":           info("garbage", "1.0", ""),
		"System/Packages/README":                     []byte("not a directory"),
	})

	orphans, err := database.Orphans(root)
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{
		filepath.Join(root, "System/Packages/garbage"),
		filepath.Join(root, "System/Packages/partial---1.0"),
	}
	if len(orphans) != len(expected) {
		t.Fatalf("Expected %v, found %v", expected, orphans)
	}
	for i := range expected {
		if orphans[i] != expected[i] {
			t.Errorf("Orphan %d = %s, want %s", i, orphans[i], expected[i])
		}
	}
}

func TestInstalledRecordRoundTrip(t *testing.T) {
	testdir := t.TempDir()
	root := filepath.Join(testdir, "root")
	control := `Package: hello
Version: 2.10-2
Architecture: amd64
Maintainer: Santiago Vila <sanvila@debian.org>
Depends: libc6 (>= 2.14)
Suggests: hello-doc | info
Description: example package based on GNU hello
 The GNU hello program produces a familiar, friendly greeting.
`
	testutil.PopulateTestDir(t, testdir, map[string][]byte{
		"src/DEBIAN/control":       []byte(control),
		"src/usr/bin/hello":        []byte("hello"),
		"src/usr/share/doc/README": []byte("readme"),
	})
	archive := filepath.Join(testdir, "hello.deb")
	if err := dpkg.Build(filepath.Join(testdir, "src"), archive, dpkg.CompressionXz); err != nil {
		t.Fatal(err)
	}
	installed, err := dpkg.Install(context.Background(), system.NewNativeToolkit(), archive, root)
	if err != nil {
		t.Fatal(err)
	}

	d, err := database.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Packages) != 1 {
		t.Fatalf("Expected 1 package, found %d", len(d.Packages))
	}
	record, err := d.Packages[0].Record()
	if err != nil {
		t.Fatal(err)
	}
	if !record.Same(installed) || record.Maintainer != installed.Maintainer || record.Description != installed.Description {
		t.Errorf("Installed package differs:\n%+v\n%+v", record, installed)
	}
	for _, kind := range models.RelationKinds {
		if record.Relation(kind).String() != installed.Relation(kind).String() {
			t.Errorf("%s = %q, want %q", kind, record.Relation(kind), installed.Relation(kind))
		}
	}

	orphans, err := database.Orphans(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(orphans) != 0 {
		t.Errorf("Unexpected orphans %v", orphans)
	}
}
