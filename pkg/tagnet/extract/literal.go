package extract

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseLiteralList parses a list literal as written by Python's repr of a
// list of strings, e.g. ['#NATO', "Putin's", 'Ukraine'].
//
// Quoted elements may use single or double quotes and backslash escapes.
// Bare scalars (None, True, 12) are accepted and skipped. Anything else,
// including nested containers or unterminated strings, makes the whole
// value unparseable and ok is false.
func ParseLiteralList(s string) (elems []string, ok bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, false
	}

	p := literalParser{src: s, pos: 1}
	elems = []string{}

	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return elems, p.atEnd()
	}

	for {
		p.skipSpace()
		switch c := p.peek(); {
		case c == '\'' || c == '"':
			str, ok := p.quoted()
			if !ok {
				return nil, false
			}
			elems = append(elems, str)
		case (c == 'u' || c == 'U') && p.quoteAt(p.pos+1):
			p.pos++
			str, ok := p.quoted()
			if !ok {
				return nil, false
			}
			elems = append(elems, str)
		case isScalarStart(c):
			if !p.scalar() {
				return nil, false
			}
		default:
			return nil, false
		}

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
			p.skipSpace()
			if p.peek() == ']' {
				p.pos++
				return elems, p.atEnd()
			}
		case ']':
			p.pos++
			return elems, p.atEnd()
		default:
			return nil, false
		}
	}
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) quoteAt(i int) bool {
	return i < len(p.src) && (p.src[i] == '\'' || p.src[i] == '"')
}

func (p *literalParser) atEnd() bool {
	p.skipSpace()
	return p.pos == len(p.src)
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		p.pos += size
	}
}

// quoted consumes a quoted string starting at the current position.
func (p *literalParser) quoted() (string, bool) {
	quote := p.src[p.pos]
	p.pos++

	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), true
		case c == '\\':
			if p.pos+1 >= len(p.src) {
				return "", false
			}
			n, ok := p.escape(&b)
			if !ok {
				return "", false
			}
			p.pos += n
		case c == '\n':
			return "", false
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", false
}

// escape decodes the escape sequence at p.pos into b and returns its width.
// Unknown escapes are kept verbatim, backslash included.
func (p *literalParser) escape(b *strings.Builder) (int, bool) {
	c := p.src[p.pos+1]
	switch c {
	case '\\', '\'', '"':
		b.WriteByte(c)
		return 2, true
	case 'n':
		b.WriteByte('\n')
		return 2, true
	case 't':
		b.WriteByte('\t')
		return 2, true
	case 'r':
		b.WriteByte('\r')
		return 2, true
	case '0':
		b.WriteByte(0)
		return 2, true
	case 'x':
		return p.hexEscape(b, 2)
	case 'u':
		return p.hexEscape(b, 4)
	case 'U':
		return p.hexEscape(b, 8)
	default:
		b.WriteByte('\\')
		b.WriteByte(c)
		return 2, true
	}
}

func (p *literalParser) hexEscape(b *strings.Builder, digits int) (int, bool) {
	start := p.pos + 2
	end := start + digits
	if end > len(p.src) {
		return 0, false
	}
	v, err := strconv.ParseUint(p.src[start:end], 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, false
	}
	b.WriteRune(rune(v))
	return 2 + digits, true
}

// scalar consumes a bare literal such as None, True, False, 3 or -1.5.
func (p *literalParser) scalar() bool {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ',' || c == ']' || c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			break
		}
		p.pos++
	}
	word := p.src[start:p.pos]
	switch word {
	case "None", "True", "False":
		return true
	}
	_, err := strconv.ParseFloat(word, 64)
	return err == nil
}

func isScalarStart(c byte) bool {
	return c == 'N' || c == 'T' || c == 'F' || c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}
