package database

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/julien-sobczak/rootpkg/internal/dpkg"
	"github.com/julien-sobczak/rootpkg/internal/models"
	"github.com/julien-sobczak/rootpkg/internal/version"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// Directory is the registry of packages installed under a root.
type Directory struct {
	Root     string
	Packages []PackageInfo
}

// Load reads the pkg-info file of every installed package.
// Directories without pkg-info are not installed and are ignored (see Orphans).
func Load(root string) (*Directory, error) {
	d := &Directory{Root: root}

	entries, err := readPackagesDir(root)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		dir := filepath.Join(dpkg.PackagesDir(root), entry.Name())
		path := filepath.Join(dir, dpkg.InfoFile)
		content, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			logrus.WithField("dest", dir).Debug("Ignoring directory without pkg-info")
			continue
		}
		if err != nil {
			return nil, models.NewError(models.ErrIO, path, err)
		}
		pkg, err := ParseInfo(string(content))
		if err != nil {
			return nil, models.NewError(models.ErrParse, path, err)
		}
		pkg.Dir = dir
		d.Packages = append(d.Packages, pkg)
	}
	return d, nil
}

// ParseInfo decodes a pkg-info document.
func ParseInfo(content string) (PackageInfo, error) {
	var doc infoDocument
	if err := toml.Unmarshal([]byte(content), &doc); err != nil {
		return PackageInfo{}, err
	}
	if doc.InfoType != 1 {
		return PackageInfo{}, fmt.Errorf("unsupported InfoType %d", doc.InfoType)
	}
	if doc.Package.Name == "" {
		return PackageInfo{}, errors.New("missing package name")
	}
	v, err := version.Parse(doc.Package.Version)
	if err != nil {
		return PackageInfo{}, err
	}

	return PackageInfo{
		Name:         doc.Package.Name,
		Version:      v,
		Architecture: doc.Package.Architecture,
		Maintainer:   doc.Package.Maintainer,
		Homepage:     doc.Package.Homepage,
		Description:  doc.Package.Description,
		Source:       doc.Other.Source,
		Relations: map[models.RelationKind]string{
			models.Depends:    doc.Package.Depends,
			models.Recommends: doc.Package.Recommends,
			models.Suggests:   doc.Package.Suggests,
			models.PreDepends: doc.Package.PreDepends,
			models.Enhances:   doc.Package.Enhances,
		},
	}, nil
}

// Search returns the installed packages named name (strict)
// or whose name contains name.
func (d *Directory) Search(name string, strict bool) []PackageInfo {
	var results []PackageInfo
	for _, pkg := range d.Packages {
		if pkg.Name == name || (!strict && strings.Contains(pkg.Name, name)) {
			results = append(results, pkg)
		}
	}
	return results
}

// Newest returns the highest installed version of a package.
func (d *Directory) Newest(name string) (PackageInfo, error) {
	var newest *PackageInfo
	for i, pkg := range d.Packages {
		if pkg.Name != name {
			continue
		}
		if newest == nil || newest.Version.Less(pkg.Version) {
			newest = &d.Packages[i]
		}
	}
	if newest == nil {
		return PackageInfo{}, models.NewError(models.ErrPackageNotFound, name, errors.New("package is not installed"))
	}
	return *newest, nil
}

// Orphans returns the directories under System/Packages that are not
// installed packages: no pkg-info file or a name without the
// {name}---{version} form. They are left by interrupted installations.
func Orphans(root string) ([]string, error) {
	entries, err := readPackagesDir(root)
	if err != nil {
		return nil, err
	}

	var orphans []string
	for _, entry := range entries {
		dir := filepath.Join(dpkg.PackagesDir(root), entry.Name())
		name, ver, ok := strings.Cut(entry.Name(), "---")
		if !ok || name == "" || ver == "" {
			orphans = append(orphans, dir)
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, dpkg.InfoFile)); errors.Is(err, fs.ErrNotExist) {
			orphans = append(orphans, dir)
		} else if err != nil {
			return nil, models.NewError(models.ErrIO, dir, err)
		}
	}
	return orphans, nil
}

// readPackagesDir lists the subdirectories of System/Packages (none when missing).
func readPackagesDir(root string) ([]fs.DirEntry, error) {
	packagesDir := dpkg.PackagesDir(root)
	entries, err := os.ReadDir(packagesDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewError(models.ErrIO, packagesDir, err)
	}

	var dirs []fs.DirEntry
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry)
		}
	}
	return dirs, nil
}
