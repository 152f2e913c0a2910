package control

import (
	"github.com/julien-sobczak/deb822"
	"github.com/julien-sobczak/rootpkg/internal/models"
)

// Paragraph converts a record to a control paragraph, omitting empty fields.
func Paragraph(pkg models.Record) deb822.Paragraph {
	p := deb822.Paragraph{
		Values: make(map[string]string),
	}
	add := func(field, value string) {
		if value == "" {
			return
		}
		p.Order = append(p.Order, field)
		p.Values[field] = value
	}

	add("Package", pkg.Name)
	if !pkg.Version.IsZero() {
		add("Version", pkg.Version.Raw())
	}
	add("Architecture", pkg.Architecture)
	add("Maintainer", pkg.Maintainer)
	add("Homepage", pkg.Homepage)
	for _, kind := range []models.RelationKind{models.PreDepends, models.Depends, models.Recommends, models.Suggests, models.Enhances} {
		add(string(kind), pkg.Relation(kind).String())
	}
	add("Filename", pkg.Location)
	add("Description", pkg.Description)
	return p
}

// Format renders records as a control document, one paragraph per record.
func Format(pkgs ...models.Record) string {
	doc := deb822.Document{}
	for _, pkg := range pkgs {
		doc.Paragraphs = append(doc.Paragraphs, Paragraph(pkg))
	}
	formatter := deb822.NewFormatter()
	formatter.SetFoldedFields("Description")
	return formatter.Format(doc)
}
