package dpkg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julien-sobczak/rootpkg/internal/models"
)

// InfoFile is the name of the metadata file marking a package as installed.
const InfoFile = "pkg-info"

// FormatInfo renders the pkg-info document of a package.
//
// Version and relationship fields keep the text found in the control file.
// Ex:
//
//	InfoType = 1
//	DepsIncluded = false
//
//	[Package]
//	Name = 'hello'
//	Version = '2.10-2'
//	...
//
//	[Other]
//	source = 'deb'
func FormatInfo(pkg models.Record) string {
	var b strings.Builder
	b.WriteString("InfoType = 1\n")
	b.WriteString("DepsIncluded = false\n")
	b.WriteString("\n")
	b.WriteString("[Package]\n")
	writeKey(&b, "Name", quoteLiteral(pkg.Name))
	writeKey(&b, "Version", quoteLiteral(pkg.Version.Raw()))
	writeKey(&b, "Architecture", quoteLiteral(pkg.Architecture))
	for _, kind := range models.RelationKinds {
		writeKey(&b, string(kind), quoteLiteral(pkg.Relation(kind).String()))
	}
	writeKey(&b, "Maintainer", quoteLiteral(pkg.Maintainer))
	if pkg.Homepage != "" {
		writeKey(&b, "Homepage", quoteLiteral(pkg.Homepage))
	}
	writeKey(&b, "Description", quoteMultiline(pkg.Description))
	b.WriteString("\n")
	b.WriteString("[Other]\n")
	writeKey(&b, "source", quoteLiteral("deb"))
	return b.String()
}

// WriteInfo writes the pkg-info file into the installation directory.
func WriteInfo(dir string, pkg models.Record) error {
	path := filepath.Join(dir, InfoFile)
	if err := os.WriteFile(path, []byte(FormatInfo(pkg)), 0644); err != nil {
		return models.NewError(models.ErrIO, path, err)
	}
	return nil
}

func writeKey(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "%s = %s\n", key, value)
}

// quoteLiteral returns a TOML literal string ('...') when possible,
// a basic string ("...") otherwise.
func quoteLiteral(s string) string {
	if !strings.ContainsAny(s, "'\n\r") && !hasControl(s, "\t") {
		return "'" + s + "'"
	}
	return `"` + escape(s, false) + `"`
}

// quoteMultiline returns a TOML multi-line literal string ('''...''') when possible,
// a multi-line basic string ("""...""") otherwise.
func quoteMultiline(s string) string {
	if !strings.Contains(s, "'''") && !strings.HasSuffix(s, "'") && !strings.HasPrefix(s, "\n") && !hasControl(s, "\t\n") {
		return "'''" + s + "'''"
	}
	return `"""` + escape(s, true) + `"""`
}

func hasControl(s string, allowed string) bool {
	for _, r := range s {
		if (r < 0x20 || r == 0x7f) && !strings.ContainsRune(allowed, r) {
			return true
		}
	}
	return false
}

func escape(s string, multiline bool) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '"':
			b.WriteString(`\"`)
		case r == '\n' && multiline && b.Len() > 0:
			// A newline right after the opening delimiter would be trimmed
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\r':
			b.WriteString(`\r`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\u%04X`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
