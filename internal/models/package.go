package models

import (
	"fmt"

	"github.com/julien-sobczak/rootpkg/internal/dependency"
	"github.com/julien-sobczak/rootpkg/internal/version"
)

// RelationKind names a relationship field of a control stanza.
type RelationKind string

const (
	Depends    RelationKind = "Depends"
	PreDepends RelationKind = "Pre-Depends"
	Recommends RelationKind = "Recommends"
	Suggests   RelationKind = "Suggests"
	Enhances   RelationKind = "Enhances"
)

// RelationKinds lists the supported relationship fields in pkg-info order.
var RelationKinds = []RelationKind{Depends, Recommends, Suggests, PreDepends, Enhances}

// Record is a package as described by a control stanza,
// either from a local archive or from a catalog.
type Record struct {
	Name         string
	Version      version.Version
	Architecture string
	Relations    map[RelationKind]dependency.Expression
	Description  string // Multi-line, without the leading space of continuation lines
	Maintainer   string
	Homepage     string

	// Location is where the archive can be obtained.
	// Ex: /tmp/hello_1.0-1_amd64.deb (local archive)
	// Ex: pool/main/h/hello/hello_2.10-2_amd64.deb (catalog entry)
	Location string

	// Origin is the catalog entry the record was read from (nil for local archives).
	Origin *IndexEntry
}

// Relation returns the expression of a relationship field (empty when absent).
func (r Record) Relation(kind RelationKind) dependency.Expression {
	if r.Relations == nil {
		return dependency.Expression{}
	}
	return r.Relations[kind]
}

// SetRelation defines a relationship field.
func (r *Record) SetRelation(kind RelationKind, expr dependency.Expression) {
	if r.Relations == nil {
		r.Relations = make(map[RelationKind]dependency.Expression)
	}
	r.Relations[kind] = expr
}

// DirName returns the name of the installation directory.
// Ex: hello---2.10-2
func (r Record) DirName() string {
	return fmt.Sprintf("%s---%s", r.Name, r.Version)
}

// Same reports whether both records describe the same (name, version, architecture).
func (r Record) Same(o Record) bool {
	return r.Name == o.Name && r.Architecture == o.Architecture && r.Version.Equal(o.Version)
}

func (r Record) String() string {
	// Ex: hello---2.10-2 amd64
	return fmt.Sprintf("%s %s", r.DirName(), r.Architecture)
}
