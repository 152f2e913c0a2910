package control

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/julien-sobczak/rootpkg/internal/dependency"
	"github.com/julien-sobczak/rootpkg/internal/models"
	"github.com/julien-sobczak/rootpkg/internal/version"
)

// Known field prefixes. Other fields are ignored.
const (
	fieldPackage      = "Package: "
	fieldVersion      = "Version: "
	fieldArchitecture = "Architecture: "
	fieldMaintainer   = "Maintainer: "
	fieldHomepage     = "Homepage: "
	fieldDescription  = "Description: "
	fieldFilename     = "Filename: "
)

var relationFields = map[models.RelationKind]string{
	models.Depends:    "Depends: ",
	models.PreDepends: "Pre-Depends: ",
	models.Recommends: "Recommends: ",
	models.Suggests:   "Suggests: ",
	models.Enhances:   "Enhances: ",
}

// Parse reads one or more control stanzas and returns a record per stanza, in order.
//
// Stanzas are separated by blank lines. A "Package: " line found while the
// current stanza already has a name starts a new stanza. Missing fields keep their
// empty value. Continuation lines only extend the Description field.
// A malformed version or relationship field fails the whole batch.
func Parse(text string) ([]models.Record, error) {
	return ParseReader(strings.NewReader(text))
}

// ParseReader is like Parse but reads from r.
func ParseReader(r io.Reader) ([]models.Record, error) {
	var records []models.Record

	var current models.Record
	started := false       // At least one known field was found for current
	inDescription := false // The previous line belongs to the Description field
	lineNumber := 0

	scanner := bufio.NewScanner(r)
	// Some descriptions have very long lines
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		lineNumber++

		if strings.HasPrefix(line, " ") {
			// Ex: " This module permits perl software to get the display widths"
			if inDescription {
				current.Description += "\n" + line[1:]
			}
			continue
		}
		inDescription = false

		if strings.TrimSpace(line) == "" {
			// A blank line ends the stanza
			if started {
				records = append(records, current)
			}
			current = models.Record{}
			started = false
			continue
		}

		switch {
		case strings.HasPrefix(line, fieldPackage):
			// A second Package field without blank separator starts a new stanza
			if started && current.Name != "" {
				records = append(records, current)
				current = models.Record{}
			}
			current.Name = strings.TrimPrefix(line, fieldPackage)
			started = true
		case strings.HasPrefix(line, fieldVersion):
			value := strings.TrimPrefix(line, fieldVersion)
			v, err := version.Parse(value)
			if err != nil {
				return nil, models.NewError(models.ErrParse, fmt.Sprintf("line %d", lineNumber), err)
			}
			current.Version = v
			started = true
		case strings.HasPrefix(line, fieldArchitecture):
			current.Architecture = strings.TrimPrefix(line, fieldArchitecture)
			started = true
		case strings.HasPrefix(line, fieldMaintainer):
			current.Maintainer = strings.TrimPrefix(line, fieldMaintainer)
			started = true
		case strings.HasPrefix(line, fieldHomepage):
			current.Homepage = strings.TrimPrefix(line, fieldHomepage)
			started = true
		case strings.HasPrefix(line, fieldFilename):
			current.Location = strings.TrimPrefix(line, fieldFilename)
			started = true
		case strings.HasPrefix(line, fieldDescription):
			current.Description = strings.TrimPrefix(line, fieldDescription)
			inDescription = true
			started = true
		default:
			kind, value, ok := relationField(line)
			if !ok {
				// Unknown field
				continue
			}
			expr, err := dependency.Parse(value)
			if err != nil {
				return nil, models.NewError(models.ErrParse, fmt.Sprintf("line %d", lineNumber), err)
			}
			current.SetRelation(kind, expr)
			started = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, models.NewError(models.ErrParse, "control text", err)
	}

	if started {
		records = append(records, current)
	}

	return records, nil
}

// ParseSingle parses a control file that must describe exactly one package.
func ParseSingle(text string) (models.Record, error) {
	records, err := Parse(text)
	if err != nil {
		return models.Record{}, err
	}
	if len(records) != 1 {
		return models.Record{}, models.NewError(models.ErrParse, "control file", fmt.Errorf("expected a single stanza, found %d", len(records)))
	}
	return records[0], nil
}

func relationField(line string) (models.RelationKind, string, bool) {
	for kind, prefix := range relationFields {
		if strings.HasPrefix(line, prefix) {
			return kind, strings.TrimPrefix(line, prefix), true
		}
	}
	return "", "", false
}
