package database

import (
	"github.com/julien-sobczak/rootpkg/internal/dependency"
	"github.com/julien-sobczak/rootpkg/internal/models"
	"github.com/julien-sobczak/rootpkg/internal/version"
)

// PackageInfo is an installed package as recorded by its pkg-info file.
type PackageInfo struct {
	Name         string
	Version      version.Version
	Architecture string
	Maintainer   string
	Homepage     string
	Description  string
	Source       string // Ex: deb

	// Relations keeps the relationship fields as flattened text.
	Relations map[models.RelationKind]string

	Dir string // Ex: /R/System/Packages/hello---2.10-2
}

// infoDocument is the layout of a pkg-info file.
type infoDocument struct {
	InfoType     int  `toml:"InfoType"`
	DepsIncluded bool `toml:"DepsIncluded"`
	Package      struct {
		Name         string `toml:"Name"`
		Version      string `toml:"Version"`
		Architecture string `toml:"Architecture"`
		Depends      string `toml:"Depends"`
		Recommends   string `toml:"Recommends"`
		Suggests     string `toml:"Suggests"`
		PreDepends   string `toml:"Pre-Depends"`
		Enhances     string `toml:"Enhances"`
		Maintainer   string `toml:"Maintainer"`
		Homepage     string `toml:"Homepage"`
		Description  string `toml:"Description"`
	} `toml:"Package"`
	Other struct {
		Source string `toml:"source"`
	} `toml:"Other"`
}

// Relation parses a relationship field.
func (p PackageInfo) Relation(kind models.RelationKind) (dependency.Expression, error) {
	return dependency.Parse(p.Relations[kind])
}

// Record converts the installed package back to a package record.
func (p PackageInfo) Record() (models.Record, error) {
	record := models.Record{
		Name:         p.Name,
		Version:      p.Version,
		Architecture: p.Architecture,
		Maintainer:   p.Maintainer,
		Homepage:     p.Homepage,
		Description:  p.Description,
		Location:     p.Dir,
	}
	for _, kind := range models.RelationKinds {
		if p.Relations[kind] == "" {
			continue
		}
		expr, err := p.Relation(kind)
		if err != nil {
			return models.Record{}, models.NewError(models.ErrParse, p.Dir, err)
		}
		record.SetRelation(kind, expr)
	}
	return record, nil
}

func (p PackageInfo) String() string {
	// Ex: hello---2.10-2 amd64
	return p.Name + "---" + p.Version.String() + " " + p.Architecture
}
