// Package export writes graphs, ranked pairs and layouts in formats read by
// spreadsheet and graph-visualisation tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/cognicore/tagnet/pkg/tagnet/cooc"
	"github.com/cognicore/tagnet/pkg/tagnet/graph"
)

// WriteEdgeList writes one "source,target,weight" row per edge, heaviest
// first.
func WriteEdgeList(w io.Writer, g *graph.Graph) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"source", "target", "weight"}); err != nil {
		return err
	}
	for _, e := range g.Edges() {
		row := []string{e.Source, e.Target, strconv.FormatInt(e.Weight, 10)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteGML writes g in GML. Node ids follow entity order; a nil assignment
// omits the community attribute.
func WriteGML(w io.Writer, g *graph.Graph, a graph.Assignment) error {
	ew := &errWriter{w: w}
	ew.printf("graph [\n")
	ew.printf("  directed 0\n")

	ids := make(map[string]int, g.NumNodes())
	for i, n := range g.Nodes() {
		ids[n.Entity] = i
		ew.printf("  node [\n")
		ew.printf("    id %d\n", i)
		ew.printf("    label \"%s\"\n", escapeGML(n.Entity))
		ew.printf("    frequency %d\n", n.Frequency)
		if c, ok := a[n.Entity]; ok {
			ew.printf("    community %d\n", c)
		}
		ew.printf("  ]\n")
	}
	for _, e := range g.Edges() {
		ew.printf("  edge [\n")
		ew.printf("    source %d\n", ids[e.Source])
		ew.printf("    target %d\n", ids[e.Target])
		ew.printf("    weight %d\n", e.Weight)
		ew.printf("  ]\n")
	}
	ew.printf("]\n")
	return ew.err
}

// escapeGML keeps printable ASCII and writes everything else, plus the
// quote and ampersand, as numeric character references.
func escapeGML(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x20 || r > 0x7e || r == '"' || r == '&' {
			fmt.Fprintf(&b, "&#%d;", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type jsonNode struct {
	ID        string `json:"id"`
	Frequency int64  `json:"frequency"`
	Degree    int    `json:"degree"`
	Community *int   `json:"community,omitempty"`
}

type jsonLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int64  `json:"weight"`
}

type jsonGraph struct {
	Directed   bool       `json:"directed"`
	Multigraph bool       `json:"multigraph"`
	Nodes      []jsonNode `json:"nodes"`
	Links      []jsonLink `json:"links"`
}

// WriteJSON writes g as node-link JSON.
func WriteJSON(w io.Writer, g *graph.Graph, a graph.Assignment) error {
	doc := jsonGraph{
		Nodes: make([]jsonNode, 0, g.NumNodes()),
		Links: make([]jsonLink, 0, g.NumEdges()),
	}
	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, jsonNode{
			ID:        n.Entity,
			Frequency: n.Frequency,
			Degree:    g.Degree(n.Entity),
			Community: community(a, n.Entity),
		})
	}
	for _, e := range g.Edges() {
		doc.Links = append(doc.Links, jsonLink{Source: e.Source, Target: e.Target, Weight: e.Weight})
	}
	return encodeJSON(w, doc)
}

type layoutEntry struct {
	Entity    string  `json:"entity"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Frequency int64   `json:"frequency"`
	Degree    int     `json:"degree"`
	Community *int    `json:"community,omitempty"`
}

// WriteLayout writes one positioned entry per node of g. Nodes missing from
// positions are placed at the origin.
func WriteLayout(w io.Writer, g *graph.Graph, positions map[string]r2.Vec, a graph.Assignment) error {
	entries := make([]layoutEntry, 0, g.NumNodes())
	for _, n := range g.Nodes() {
		p := positions[n.Entity]
		entries = append(entries, layoutEntry{
			Entity:    n.Entity,
			X:         p.X,
			Y:         p.Y,
			Frequency: n.Frequency,
			Degree:    g.Degree(n.Entity),
			Community: community(a, n.Entity),
		})
	}
	return encodeJSON(w, entries)
}

// WritePairsCSV writes ranked pairs as "source,target,count,npmi".
func WritePairsCSV(w io.Writer, pairs []cooc.RankedPair) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"source", "target", "count", "npmi"}); err != nil {
		return err
	}
	for _, p := range pairs {
		row := []string{
			p.A,
			p.B,
			strconv.FormatInt(p.Count, 10),
			strconv.FormatFloat(p.NPMI, 'f', 4, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePairsText writes a numbered, human-readable pair report.
func WritePairsText(w io.Writer, pairs []cooc.RankedPair) error {
	ew := &errWriter{w: w}
	for i, p := range pairs {
		ew.printf("%2d. #%s + #%s: %s (npmi %.3f)\n", i+1, p.A, p.B, humanize.Comma(p.Count), p.NPMI)
	}
	return ew.err
}

func community(a graph.Assignment, entity string) *int {
	c, ok := a[entity]
	if !ok {
		return nil
	}
	return &c
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
