package models

import "fmt"

// SourceTypeDeb is the only source type the catalog knows how to fetch.
const SourceTypeDeb = "deb"

// Source is a repository declared in sources.list.
// Ex: deb http://deb.debian.org/debian stable main
type Source struct {
	Type         string
	URL          string
	Distribution string
	Component    string
}

// Supported reports whether the catalog can fetch this source.
func (s Source) Supported() bool {
	return s.Type == SourceTypeDeb
}

// IndexURL returns the location of the compressed package list.
// Ex: http://deb.debian.org/debian/dists/stable/main/binary-amd64/Packages.gz
func (s Source) IndexURL(architecture string) string {
	return fmt.Sprintf("%s/dists/%s/%s/binary-%s/Packages.gz", s.URL, s.Distribution, s.Component, architecture)
}

func (s Source) String() string {
	return fmt.Sprintf("%s %s %s %s", s.Type, s.URL, s.Distribution, s.Component)
}

// IndexEntry is a line of the catalog manifest.
// Ex: 0 http://deb.debian.org/debian stable main
type IndexEntry struct {
	ID           int
	URL          string
	Distribution string
	Component    string
}

func (e IndexEntry) String() string {
	return fmt.Sprintf("%d %s %s %s", e.ID, e.URL, e.Distribution, e.Component)
}

// ArchiveURL returns the download location of a file listed in this entry's package list.
// Ex: pool/main/h/hello/hello_2.10-2_amd64.deb => http://deb.debian.org/debian/pool/main/h/hello/hello_2.10-2_amd64.deb
func (e IndexEntry) ArchiveURL(filename string) string {
	return e.URL + "/" + filename
}
