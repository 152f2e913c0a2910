package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/andreyvit/diff"
)

// PopulateTestDir creates the test files in the existing test directory.
func PopulateTestDir(t *testing.T, testdir string, testfiles map[string][]byte) {
	t.Helper()
	for file, content := range testfiles {
		dir := filepath.Dir(file)
		if err := os.MkdirAll(filepath.Join(testdir, dir), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(testdir, file), content, 0644); err != nil {
			t.Fatal(err)
		}
	}
}

// CheckFileContains checks the content of a single file.
func CheckFileContains(t *testing.T, path string, content string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Errorf("Found differences in file %s:\n%s", path, diff.CharacterDiff(string(data), content))
	}
}

// CheckFileExists checks the presence of a single file.
// The path argument can contains glob patterns.
func CheckFileExists(t *testing.T, path string) {
	t.Helper()
	matches, err := filepath.Glob(path)
	if err != nil {
		t.Errorf("Globbing error in path expression %s", path)
		return
	}
	if len(matches) == 0 {
		t.Errorf("Missing file matching %s", path)
	}
}

// CheckFileMissing checks that no file matches the path.
// The path argument can contains glob patterns.
func CheckFileMissing(t *testing.T, path string) {
	t.Helper()
	matches, err := filepath.Glob(path)
	if err != nil {
		t.Errorf("Globbing error in path expression %s", path)
		return
	}
	if len(matches) > 0 {
		t.Errorf("Unexpected file(s) %v", matches)
	}
}

// SnapshotDir returns the content of every file under dir, indexed by relative path.
// Directories are included with an empty content. A missing dir returns nil.
func SnapshotDir(t *testing.T, dir string) map[string]string {
	t.Helper()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	snapshot := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			snapshot[rel+"/"] = ""
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		snapshot[rel] = string(content)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return snapshot
}

// CheckSameSnapshot compares two directory snapshots.
func CheckSameSnapshot(t *testing.T, got, want map[string]string) {
	t.Helper()
	for path, content := range want {
		actual, ok := got[path]
		if !ok {
			t.Errorf("Missing %s", path)
			continue
		}
		if actual != content {
			t.Errorf("Found differences in file %s:\n%s", path, diff.CharacterDiff(actual, content))
		}
	}
	for path := range got {
		if _, ok := want[path]; !ok {
			t.Errorf("Unexpected %s", path)
		}
	}
}
