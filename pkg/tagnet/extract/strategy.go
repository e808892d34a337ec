package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Result is the outcome of one parsing strategy. OK is false when the
// strategy does not apply to the input; the extractor then tries the next
// strategy in order.
type Result struct {
	Entities []string
	OK       bool
}

// Strategy turns a raw field into candidate entities.
type Strategy interface {
	Name() string
	Apply(raw string) Result
}

// literalList handles values stored as a list literal.
type literalList struct {
	marker rune
}

func (literalList) Name() string { return "literal-list" }

func (s literalList) Apply(raw string) Result {
	elems, ok := ParseLiteralList(raw)
	if !ok {
		return Result{}
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		e = strings.ToLower(strings.TrimSpace(stripMarker(e, s.marker)))
		if e != "" {
			out = append(out, e)
		}
	}
	return Result{Entities: out, OK: true}
}

// separatorSplit splits on commas, semicolons and whitespace.
type separatorSplit struct {
	marker    rune
	minLength int
}

func (separatorSplit) Name() string { return "separator-split" }

func (s separatorSplit) Apply(raw string) Result {
	fields := strings.FieldsFunc(raw, isSeparator)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(stripMarker(f, s.marker))
		f = strings.TrimFunc(f, notAlphanumeric)
		if utf8.RuneCountInString(f) < s.minLength {
			continue
		}
		out = append(out, f)
	}
	return Result{Entities: out, OK: true}
}

// markerScan collects marker-prefixed tokens from free text.
type markerScan struct {
	pattern *regexp.Regexp
}

func newMarkerScan(marker rune) markerScan {
	expr := regexp.QuoteMeta(string(marker)) + `([\p{L}\p{N}_]{2,})`
	return markerScan{pattern: regexp.MustCompile(expr)}
}

func (markerScan) Name() string { return "marker-scan" }

func (s markerScan) Apply(raw string) Result {
	matches := s.pattern.FindAllStringSubmatch(raw, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.ToLower(m[1]))
	}
	return Result{Entities: out, OK: true}
}

func stripMarker(s string, marker rune) string {
	if r, size := utf8.DecodeRuneInString(s); r == marker {
		return s[size:]
	}
	return s
}

func isSeparator(r rune) bool {
	return r == ',' || r == ';' || unicode.IsSpace(r)
}

func notAlphanumeric(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}
