package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	debversion "pault.ag/go/debian/version"
)

// ErrInvalidVersion is returned (wrapped) when a version string cannot be parsed.
var ErrInvalidVersion = errors.New("invalid version")

// Version is a Debian package version: [epoch:]upstream[-revision].
//
// Versions must be compared with Compare or Equal, never with ==,
// because different texts can denote the same version (ex: 1.01 and 1.1).
type Version struct {
	Epoch    uint
	Upstream string
	Revision string

	// Text is the version as written in the control file.
	// Ex: 0:1.01-1
	Text string
}

// Parse reads a version using the same rules as dpkg.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("%w: empty string", ErrInvalidVersion)
	}

	parsed, err := debversion.Parse(s)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrInvalidVersion, s, err)
	}
	// Ex: 1.0- and -1 are accepted by the library but not by dpkg
	if parsed.Version == "" {
		return Version{}, fmt.Errorf("%w: %q has an empty upstream version", ErrInvalidVersion, s)
	}
	if strings.HasSuffix(s, "-") {
		return Version{}, fmt.Errorf("%w: %q has an empty revision", ErrInvalidVersion, s)
	}

	return Version{
		Epoch:    parsed.Epoch,
		Upstream: parsed.Version,
		Revision: parsed.Revision,
		Text:     s,
	}, nil
}

// MustParse is like Parse but panics on error. Useful for tests and constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether v was never set (a control stanza without Version).
func (v Version) IsZero() bool {
	return v.Epoch == 0 && v.Upstream == "" && v.Revision == ""
}

// Raw returns the version as written in the control file,
// or the canonical form when v was not parsed from text.
func (v Version) Raw() string {
	if v.Text != "" {
		return v.Text
	}
	return v.String()
}

// Compare returns -1, 0 or +1 when v is older, equal or newer than o.
func (v Version) Compare(o Version) int {
	return Compare(v, o)
}

func (v Version) Equal(o Version) bool {
	return Compare(v, o) == 0
}

func (v Version) Less(o Version) bool {
	return Compare(v, o) < 0
}

// Compare orders versions by epoch, then upstream, then revision.
func Compare(a, b Version) int {
	return sign(debversion.Compare(a.debian(), b.debian()))
}

func (v Version) debian() debversion.Version {
	return debversion.Version{Epoch: v.Epoch, Version: v.Upstream, Revision: v.Revision}
}

// String returns the canonical form of the version.
//
// Two equal versions always have the same canonical form:
// a zero epoch is omitted, leading zeros of numeric runs are stripped,
// and a zero revision is dropped. Parse(v.String()) is equal to v.
func (v Version) String() string {
	if v.IsZero() {
		return ""
	}

	upstream := canonicalSegment(v.Upstream)
	revision := canonicalSegment(v.Revision)

	var sb strings.Builder
	// The epoch must stay when the upstream part contains a colon
	if v.Epoch > 0 || strings.ContainsRune(upstream, ':') {
		sb.WriteString(strconv.FormatUint(uint64(v.Epoch), 10))
		sb.WriteByte(':')
	}
	sb.WriteString(upstream)
	// A revision "0" equals no revision unless the upstream part needs a hyphen separator
	if revision == "0" && !strings.ContainsRune(upstream, '-') {
		revision = ""
	}
	if revision != "" {
		sb.WriteByte('-')
		sb.WriteString(revision)
	}
	return sb.String()
}

// segmentPart is a run of non-digits followed by a run of digits.
type segmentPart struct {
	letters string
	digits  string // without leading zeros, "" when the run is absent or zero
}

func splitSegment(s string) []segmentPart {
	var parts []segmentPart
	for len(s) > 0 {
		i := 0
		for i < len(s) && !isDigit(s[i]) {
			i++
		}
		j := i
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		parts = append(parts, segmentPart{
			letters: s[:i],
			digits:  strings.TrimLeft(s[i:j], "0"),
		})
		s = s[j:]
	}
	return parts
}

// canonicalSegment renders an upstream or revision part in canonical form.
// A missing trailing number and a trailing zero compare equal,
// so the last number is written "0" after a separator (1.0.0) and omitted after a letter (1.0a).
func canonicalSegment(s string) string {
	parts := splitSegment(s)
	var sb strings.Builder
	for i, p := range parts {
		sb.WriteString(p.letters)
		if p.digits != "" {
			sb.WriteString(p.digits)
			continue
		}
		last := i == len(parts)-1
		if !last || p.letters == "" || !isAlpha(p.letters[len(p.letters)-1]) {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
