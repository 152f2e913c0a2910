package dependency

import (
	"fmt"
	"strings"

	"github.com/julien-sobczak/rootpkg/internal/version"
)

// SyntaxError reports a relationship field that does not follow the grammar.
type SyntaxError struct {
	Text   string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid relationship %q at offset %d: %s", e.Text, e.Offset, e.Msg)
}

// Parse reads a relationship field.
//
// Grammar:
//
//	expression := [group {"," group}]
//	group      := term {"|" term}
//	term       := name [":" arch] ["(" relation version ")"] ["[" arch {arch} "]"] {"<" profile ">"}
//
// Ex: "libc6 (>= 2.7) | libc6-alt, perl:any"
// An empty or blank text returns an empty expression.
func Parse(text string) (Expression, error) {
	p := &parser{input: text}
	expr := Expression{Text: text}

	p.skipSpaces()
	if p.eof() {
		return expr, nil
	}

	for {
		p.skipSpaces()
		// Tolerate empty entries like trailing commas
		if p.peek() == ',' {
			p.pos++
			continue
		}
		if p.eof() {
			break
		}
		group, err := p.group()
		if err != nil {
			return Expression{}, err
		}
		expr.Groups = append(expr.Groups, group)

		p.skipSpaces()
		if p.eof() {
			break
		}
		if p.peek() != ',' {
			return Expression{}, p.errorf("expected ',' but found %q", p.peek())
		}
		p.pos++
	}

	return expr, nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) Expression {
	expr, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return expr
}

type parser struct {
	input string
	pos   int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) skipSpaces() {
	for !p.eof() && isSpace(p.input[p.pos]) {
		p.pos++
	}
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &SyntaxError{
		Text:   p.input,
		Offset: p.pos,
		Msg:    fmt.Sprintf(format, args...),
	}
}

func (p *parser) group() (Group, error) {
	var group Group
	for {
		term, err := p.term()
		if err != nil {
			return nil, err
		}
		group = append(group, term)

		p.skipSpaces()
		if p.peek() != '|' {
			return group, nil
		}
		p.pos++
	}
}

func (p *parser) term() (Term, error) {
	var term Term

	p.skipSpaces()
	term.Name = p.word(isNameChar)
	if term.Name == "" {
		return term, p.errorf("expected a package name")
	}

	if p.peek() == ':' {
		p.pos++
		term.Arch = p.word(isNameChar)
		if term.Arch == "" {
			return term, p.errorf("expected an architecture qualifier after ':'")
		}
	}

	p.skipSpaces()
	if p.peek() == '(' {
		p.pos++
		constraint, err := p.constraint()
		if err != nil {
			return term, err
		}
		term.Constraint = constraint
	}

	p.skipSpaces()
	if p.peek() == '[' {
		p.pos++
		content, err := p.until(']')
		if err != nil {
			return term, err
		}
		term.Architectures = strings.Fields(content)
		if len(term.Architectures) == 0 {
			return term, p.errorf("empty architecture restriction")
		}
	}

	for {
		p.skipSpaces()
		if p.peek() != '<' {
			break
		}
		p.pos++
		content, err := p.until('>')
		if err != nil {
			return term, err
		}
		term.Profiles = append(term.Profiles, strings.Join(strings.Fields(content), " "))
	}

	return term, nil
}

func (p *parser) constraint() (*Constraint, error) {
	p.skipSpaces()

	var relation Relation
	switch {
	case strings.HasPrefix(p.input[p.pos:], "<<"):
		relation, p.pos = StrictlyEarlier, p.pos+2
	case strings.HasPrefix(p.input[p.pos:], "<="):
		relation, p.pos = EarlierOrEqual, p.pos+2
	case strings.HasPrefix(p.input[p.pos:], ">>"):
		relation, p.pos = StrictlyLater, p.pos+2
	case strings.HasPrefix(p.input[p.pos:], ">="):
		relation, p.pos = LaterOrEqual, p.pos+2
	case strings.HasPrefix(p.input[p.pos:], "="):
		relation, p.pos = ExactlyEqual, p.pos+1
	case strings.HasPrefix(p.input[p.pos:], "<"):
		// Deprecated form of <=
		relation, p.pos = EarlierOrEqual, p.pos+1
	case strings.HasPrefix(p.input[p.pos:], ">"):
		// Deprecated form of >=
		relation, p.pos = LaterOrEqual, p.pos+1
	default:
		return nil, p.errorf("expected a relation operator")
	}

	start := p.pos
	content, err := p.until(')')
	if err != nil {
		return nil, err
	}
	v, err := version.Parse(content)
	if err != nil {
		return nil, &SyntaxError{Text: p.input, Offset: start, Msg: err.Error()}
	}

	return &Constraint{
		Relation: relation,
		Version:  v,
	}, nil
}

// until returns the text up to the closing character and moves after it.
func (p *parser) until(closing byte) (string, error) {
	i := strings.IndexByte(p.input[p.pos:], closing)
	if i < 0 {
		return "", p.errorf("missing closing %q", closing)
	}
	content := p.input[p.pos : p.pos+i]
	p.pos += i + 1
	return content, nil
}

func (p *parser) word(accept func(byte) bool) string {
	start := p.pos
	for !p.eof() && accept(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// isNameChar accepts the characters allowed in package and architecture names.
func isNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c == '.' || c == '+' || c == '-' || c == '_'
}
