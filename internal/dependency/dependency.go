package dependency

import (
	"fmt"
	"strings"

	"github.com/julien-sobczak/rootpkg/internal/version"
)

// Relation is the operator of a version constraint.
type Relation string

const (
	StrictlyEarlier Relation = "<<"
	EarlierOrEqual  Relation = "<="
	ExactlyEqual    Relation = "="
	LaterOrEqual    Relation = ">="
	StrictlyLater   Relation = ">>"
)

// Constraint restricts the acceptable versions of a package.
// Ex: (>= 2.7)
type Constraint struct {
	Relation Relation
	Version  version.Version
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s %s", c.Relation, c.Version)
}

// Term is a single package requirement.
// Ex: libc6:amd64 (>= 2.7) [amd64 i386]
type Term struct {
	Name          string
	Arch          string   // Architecture qualifier after ':' (ex: any)
	Constraint    *Constraint
	Architectures []string // Restriction list between brackets (ex: !i386)
	Profiles      []string // Build profile formulas between angle brackets
}

func (t Term) String() string {
	var sb strings.Builder
	sb.WriteString(t.Name)
	if t.Arch != "" {
		sb.WriteString(":" + t.Arch)
	}
	if t.Constraint != nil {
		sb.WriteString(" (" + t.Constraint.String() + ")")
	}
	if len(t.Architectures) > 0 {
		sb.WriteString(" [" + strings.Join(t.Architectures, " ") + "]")
	}
	for _, profile := range t.Profiles {
		sb.WriteString(" <" + profile + ">")
	}
	return sb.String()
}

// Group is a list of alternatives. Any one of them satisfies the group.
type Group []Term

func (g Group) String() string {
	var terms []string
	for _, term := range g {
		terms = append(terms, term.String())
	}
	return strings.Join(terms, " | ")
}

// Expression is a relationship field (Depends, Recommends, ...)
// in conjunctive form: every group is required, one term per group is enough.
type Expression struct {
	Groups []Group
	Text   string // Text as found in the control file
}

// Empty reports whether the expression imposes nothing.
func (e Expression) Empty() bool {
	return len(e.Groups) == 0
}

// Names returns every package name mentioned, in order of appearance.
func (e Expression) Names() []string {
	var names []string
	for _, group := range e.Groups {
		for _, term := range group {
			names = append(names, term.Name)
		}
	}
	return names
}

// String returns the expression as written in the control file when known,
// or a normalized rendering of the structure otherwise.
func (e Expression) String() string {
	if e.Text != "" || e.Empty() {
		return e.Text
	}
	return e.Canonical()
}

// Canonical renders the structure using the standard spacing.
func (e Expression) Canonical() string {
	var groups []string
	for _, group := range e.Groups {
		groups = append(groups, group.String())
	}
	return strings.Join(groups, ", ")
}
