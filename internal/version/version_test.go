package version_test

import (
	"errors"
	"testing"

	"github.com/julien-sobczak/rootpkg/internal/version"
)

func TestParse(t *testing.T) {
	var tests = []struct {
		input    string
		epoch    uint
		upstream string
		revision string
	}{
		{"1.0", 0, "1.0", ""},
		{"1.0-1", 0, "1.0", "1"},
		{"1:2.30-1+deb10u1", 1, "2.30", "1+deb10u1"},
		{"2:8.2.2434-3", 2, "8.2.2434", "3"},
		{"1.2-beta-3", 0, "1.2-beta", "3"},
		{"5.28.1-6+deb10u1", 0, "5.28.1", "6+deb10u1"},
		{"  3.1 ", 0, "3.1", ""},
	}

	for _, tt := range tests {
		v, err := version.Parse(tt.input)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", tt.input, err)
			continue
		}
		if v.Epoch != tt.epoch || v.Upstream != tt.upstream || v.Revision != tt.revision {
			t.Errorf("Parse(%q) = %+v, want epoch=%d upstream=%q revision=%q", tt.input, v, tt.epoch, tt.upstream, tt.revision)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, input := range []string{"", "   ", "a1.0", "1.0-", ":1.0", "x:1.0", "1:", "1.0 2", "1.0_1", "1.0-1_2"} {
		_, err := version.Parse(input)
		if err == nil {
			t.Errorf("Parse(%q) succeeded, want an error", input)
			continue
		}
		if !errors.Is(err, version.ErrInvalidVersion) {
			t.Errorf("Parse(%q) error %v is not ErrInvalidVersion", input, err)
		}
	}
}

func TestCompare(t *testing.T) {
	var tests = []struct {
		a, b string
		want int
	}{
		{"1.0-1", "1.0-2", -1},
		{"1.0-2", "2.0-1", -1},
		{"1.0-1", "2.0-1", -1},
		{"1:1.0", "2.0", 1},
		{"2.0", "1:1.0", -1},
		{"1.0", "1.0", 0},
		{"1.01", "1.1", 0},
		{"0:1.0", "1.0", 0},
		{"1.0", "1.0-0", 0},
		{"1.0a", "1.0a0", 0},
		{"1.0~rc1", "1.0", -1},
		{"1.0~~", "1.0~", -1},
		{"1.0~", "1.0", -1},
		{"1.0", "1.0a", -1},
		{"1.0a", "1.0+", -1},
		{"1.0", "1.0.1", -1},
		{"1.9", "1.10", -1},
		{"2.30-1", "2.30-1+deb10u1", -1},
		{"8.2.2434-3", "8.2.2434-10", -1},
		{"1.2-beta-3", "1.2-3", 1},
	}

	for _, tt := range tests {
		a := version.MustParse(tt.a)
		b := version.MustParse(tt.b)
		if got := version.Compare(a, b); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := version.Compare(b, a); got != -tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
		}
	}
}

func TestCompareIsTotal(t *testing.T) {
	// Sorted from oldest to newest
	ordered := []string{"0.9", "1.0~rc1", "1.0", "1.0-1", "1.0-2", "1.0a", "1.0.1", "1.10", "2.0-1", "1:0.1", "1:1.0", "2:0.1"}
	for i := range ordered {
		for j := range ordered {
			a := version.MustParse(ordered[i])
			b := version.MustParse(ordered[j])
			got := a.Compare(b)
			want := 0
			if i < j {
				want = -1
			} else if i > j {
				want = 1
			}
			if got != want {
				t.Errorf("Compare(%q, %q) = %d, want %d", ordered[i], ordered[j], got, want)
			}
		}
	}
}

func TestString(t *testing.T) {
	var tests = []struct {
		input string
		want  string
	}{
		{"1.0-1", "1.0-1"},
		{"0:1.0-1", "1.0-1"},
		{"1:2.30-1+deb10u1", "1:2.30-1+deb10u1"},
		{"1.01", "1.1"},
		{"001.000.000", "1.0.0"},
		{"1.0.", "1.0.0"},
		{"1.0a0", "1.0a"},
		{"1.0-0", "1.0"},
		{"1.0-00", "1.0"},
		{"1.0-beta-0", "1.0-beta-0"},
		{"2.31-0ubuntu9", "2.31-0ubuntu9"},
		{"1.2.3+dfsg-1", "1.2.3+dfsg-1"},
		{"0:1:2", "0:1:2"},
	}

	for _, tt := range tests {
		if got := version.MustParse(tt.input).String(); got != tt.want {
			t.Errorf("MustParse(%q).String() = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	inputs := []string{
		"1.0", "1.0-1", "1:1.0", "0:1.0-0", "1.01", "1.0a0", "1.0.00", "1.0~rc01-0ubuntu1",
		"2:8.2.2434-3", "1.2-beta-3", "1.0-beta-0", "0:1:2-3", "7.40-2", "1.0+", "3.0~",
	}
	for _, input := range inputs {
		v := version.MustParse(input)
		canonical := v.String()
		back, err := version.Parse(canonical)
		if err != nil {
			t.Errorf("Parse(%q) (canonical of %q) failed: %v", canonical, input, err)
			continue
		}
		if !back.Equal(v) {
			t.Errorf("Parse(%q) is not equal to %q", canonical, input)
		}
		if back.String() != canonical {
			t.Errorf("canonical form of %q is not stable: %q then %q", input, canonical, back.String())
		}
	}
}

func TestEqualVersionsShareCanonicalForm(t *testing.T) {
	pairs := [][2]string{
		{"1.01", "1.1"},
		{"0:2.0", "2.0"},
		{"1.0", "1.0-0"},
		{"1.0a", "1.0a0"},
		{"1.0.", "1.0.0"},
	}
	for _, p := range pairs {
		a := version.MustParse(p[0])
		b := version.MustParse(p[1])
		if !a.Equal(b) {
			t.Fatalf("%q and %q must be equal", p[0], p[1])
		}
		if a.String() != b.String() {
			t.Errorf("%q and %q have different canonical forms: %q and %q", p[0], p[1], a.String(), b.String())
		}
	}
}

func TestIsZero(t *testing.T) {
	var v version.Version
	if !v.IsZero() {
		t.Errorf("zero value must be zero")
	}
	if v.String() != "" {
		t.Errorf("zero value renders as %q", v.String())
	}
	if version.MustParse("0").IsZero() {
		t.Errorf("version 0 must not be zero")
	}
}

func TestRaw(t *testing.T) {
	v := version.MustParse(" 0:1.01-1 ")
	if v.Raw() != "0:1.01-1" {
		t.Errorf("Raw() = %q", v.Raw())
	}
	if v.String() != "1.1-1" {
		t.Errorf("String() = %q", v.String())
	}
	built := version.Version{Epoch: 1, Upstream: "2.010", Revision: "1"}
	if built.Raw() != "1:2.10-1" {
		t.Errorf("Raw() without text = %q", built.Raw())
	}
}
