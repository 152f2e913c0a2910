package apt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/julien-sobczak/rootpkg/internal/control"
	"github.com/julien-sobczak/rootpkg/internal/models"
	"github.com/sirupsen/logrus"
)

// Catalog is the content of the local catalog.
type Catalog struct {
	Entries  []models.IndexEntry
	Packages []models.Record
}

// Load reads every package list declared in the index manifest,
// preserving the manifest order and the stanza order of each list.
func Load(root string) (*Catalog, error) {
	catalogDir := CatalogDir(root)
	indexPath := filepath.Join(catalogDir, IndexFile)

	content, err := os.ReadFile(indexPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, models.NewError(models.ErrCatalogNotFound, indexPath, errors.New("no catalog found, run an update first"))
	}
	if err != nil {
		return nil, models.NewError(models.ErrCatalogCorrupt, indexPath, err)
	}
	entries, err := ParseIndex(string(content))
	if err != nil {
		return nil, models.NewError(models.ErrCatalogCorrupt, indexPath, err)
	}

	catalog := &Catalog{Entries: entries}
	for _, entry := range entries {
		path := filepath.Join(catalogDir, strconv.Itoa(entry.ID))
		f, err := os.Open(path)
		if err != nil {
			return nil, models.NewError(models.ErrCatalogCorrupt, path, err)
		}
		pkgs, err := control.ParseReader(f)
		f.Close()
		if err != nil {
			return nil, models.NewError(models.ErrCatalogCorrupt, path, err)
		}

		origin := entry
		for i := range pkgs {
			pkgs[i].Origin = &origin
		}
		logrus.WithField("source", entry.String()).Debugf("Loaded %d package(s)", len(pkgs))
		catalog.Packages = append(catalog.Packages, pkgs...)
	}
	return catalog, nil
}

// Search returns the records whose name or description contains text (case-insensitive).
func Search(pkgs []models.Record, text string) []models.Record {
	text = strings.ToLower(text)
	var results []models.Record
	for _, pkg := range pkgs {
		if strings.Contains(strings.ToLower(pkg.Name), text) || strings.Contains(strings.ToLower(pkg.Description), text) {
			results = append(results, pkg)
		}
	}
	return results
}

// Find returns every record named name, newest version first.
func Find(pkgs []models.Record, name string) []models.Record {
	var results []models.Record
	for _, pkg := range pkgs {
		if pkg.Name == name {
			results = append(results, pkg)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[j].Version.Less(results[i].Version)
	})
	return results
}

// Candidate returns the newest version of name installable on arch.
// Architecture-independent packages ("all") are accepted too.
func Candidate(pkgs []models.Record, name string, arch string) (models.Record, error) {
	for _, pkg := range Find(pkgs, name) {
		if pkg.Architecture == arch || pkg.Architecture == "all" {
			return pkg, nil
		}
	}
	return models.Record{}, models.NewError(models.ErrPackageNotFound, name, fmt.Errorf("no candidate for architecture %s", arch))
}
