package common

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/nanoncore/cmw-southbound/types"
)

var (
	tokenRegex     = regexp.MustCompile(`\S+`)
	separatorRegex = regexp.MustCompile(`^[\s\-=_+*]+$`)
	footerRegex    = regexp.MustCompile(`(?i)^\s*(total\b|-*\s*\d+\s+\S+.*\bfound\b)`)

	// DefaultNoEntries matches the device's "nothing to show" messages
	DefaultNoEntries = regexp.MustCompile(`(?im)^\s*no\s.*\b(entries|entry|information|neighbors?|records?)\b.*$|^\s*total\b.*[:=]\s*0\s*$`)
)

// Column describes one header field. Headers lists alternative header texts
// across firmware versions; matching is case-insensitive. Only MultiWord
// columns may hold more than one token, e.g. "Config static".
type Column struct {
	Key       string
	Headers   []string
	Required  bool
	MultiWord bool
}

// Table parses fixed-width CLI tables. Column boundaries come from the
// header line, so width changes between firmware releases are tolerated.
type Table struct {
	Query     string
	Columns   []Column
	NoEntries *regexp.Regexp
	Skip      []*regexp.Regexp
}

// Row is one parsed data line
type Row struct {
	Line  int // 1-based line number within the parsed output
	Text  string
	Cells map[string]string
}

// Get returns a cell value, empty when absent
func (r Row) Get(key string) string {
	return r.Cells[key]
}

// Warn builds a parse warning bound to this row
func (r Row) Warn(query, reason string) types.ParseWarning {
	return types.ParseWarning{Query: query, Line: r.Line, Text: strings.TrimSpace(r.Text), Reason: reason}
}

type headerSpan struct {
	key   string
	start int
	end   int
}

type layout struct {
	spans    []headerSpan // sorted by start
	required int
}

// Parse returns the well-formed rows of output plus a warning per malformed row
func (t *Table) Parse(output string) ([]Row, []types.ParseWarning) {
	lines := Lines(StripANSI(output))

	headerIdx := -1
	var lay layout
	for i, line := range lines {
		if l, ok := t.matchHeader(line); ok {
			headerIdx, lay = i, l
			break
		}
	}

	if headerIdx < 0 {
		if strings.TrimSpace(strings.Join(lines, "")) == "" || t.isNoEntries(output) {
			return nil, nil
		}
		return nil, []types.ParseWarning{{Query: t.Query, Reason: "table header not found"}}
	}

	var rows []Row
	var warnings []types.ParseWarning

	for i := headerIdx + 1; i < len(lines); i++ {
		line := lines[i]
		if t.skipLine(line) {
			continue
		}
		if l, ok := t.matchHeader(line); ok {
			// repeated header, e.g. one table per stack member or per
			// interface mode; later rows follow the new column layout
			lay = l
			continue
		}

		row := Row{Line: i + 1, Text: line, Cells: make(map[string]string)}
		tokens := tokenRegex.FindAllStringIndex(line, -1)
		if len(tokens) < lay.required {
			warnings = append(warnings, row.Warn(t.Query,
				fmt.Sprintf("expected at least %d fields, got %d", lay.required, len(tokens))))
			continue
		}

		extra := ""
		for _, tok := range tokens {
			key := lay.columnFor(tok[0], tok[1])
			text := line[tok[0]:tok[1]]
			prev := row.Cells[key]
			switch {
			case prev == "":
				row.Cells[key] = text
			case t.multiWord(key):
				row.Cells[key] = prev + " " + text
			case extra == "":
				extra = text
			}
		}
		if extra != "" {
			warnings = append(warnings, row.Warn(t.Query,
				fmt.Sprintf("more fields than columns, unexpected %q", extra)))
			continue
		}

		if missing := t.missingRequired(row); missing != "" {
			warnings = append(warnings, row.Warn(t.Query, "missing "+missing))
			continue
		}
		rows = append(rows, row)
	}

	return rows, warnings
}

func (t *Table) isNoEntries(output string) bool {
	re := t.NoEntries
	if re == nil {
		re = DefaultNoEntries
	}
	return re.MatchString(output)
}

func (t *Table) skipLine(line string) bool {
	if strings.TrimSpace(line) == "" || separatorRegex.MatchString(line) || footerRegex.MatchString(line) {
		return true
	}
	if t.NoEntries != nil && t.NoEntries.MatchString(line) {
		return true
	}
	for _, re := range t.Skip {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func (t *Table) multiWord(key string) bool {
	for _, c := range t.Columns {
		if c.Key == key {
			return c.MultiWord
		}
	}
	return false
}

func (t *Table) missingRequired(row Row) string {
	for _, c := range t.Columns {
		if c.Required && row.Cells[c.Key] == "" {
			return c.Key
		}
	}
	return ""
}

// matchHeader locates every column header in line. It fails when a required
// column is absent.
func (t *Table) matchHeader(line string) (layout, bool) {
	lower := strings.ToLower(line)

	type candidate struct {
		col Column
		alt string
	}
	var cands []candidate
	for _, c := range t.Columns {
		for _, h := range c.Headers {
			cands = append(cands, candidate{col: c, alt: strings.ToLower(h)})
		}
	}
	// longest alternatives claim their text first so "VLAN ID" does not
	// shadow "VLAN/VSI name"
	sort.SliceStable(cands, func(i, j int) bool { return len(cands[i].alt) > len(cands[j].alt) })

	found := make(map[string]headerSpan)
	for _, cand := range cands {
		if _, ok := found[cand.col.Key]; ok {
			continue
		}
		if start := findWord(lower, cand.alt, found); start >= 0 {
			found[cand.col.Key] = headerSpan{key: cand.col.Key, start: start, end: start + len(cand.alt)}
		}
	}

	lay := layout{}
	for _, c := range t.Columns {
		if _, ok := found[c.Key]; !ok && c.Required {
			return layout{}, false
		}
		if c.Required {
			lay.required++
		}
	}
	if len(found) == 0 {
		return layout{}, false
	}

	for _, s := range found {
		lay.spans = append(lay.spans, s)
	}
	sort.Slice(lay.spans, func(i, j int) bool { return lay.spans[i].start < lay.spans[j].start })
	return lay, true
}

// findWord returns the first word-bounded occurrence of word in line that
// does not overlap an already claimed span.
func findWord(line, word string, claimed map[string]headerSpan) int {
	from := 0
	for {
		i := strings.Index(line[from:], word)
		if i < 0 {
			return -1
		}
		start := from + i
		end := start + len(word)
		before := start == 0 || line[start-1] == ' ' || line[start-1] == '\t'
		after := end == len(line) || line[end] == ' ' || line[end] == '\t'
		if before && after && !overlapsClaimed(start, end, claimed) {
			return start
		}
		from = start + 1
	}
}

func overlapsClaimed(start, end int, claimed map[string]headerSpan) bool {
	for _, s := range claimed {
		if start < s.end && s.start < end {
			return true
		}
	}
	return false
}

// columnFor assigns a token to the column region it overlaps most. Regions
// run from one header start to the next; the first begins at column zero.
func (l layout) columnFor(start, end int) string {
	best, bestOverlap := l.spans[0].key, -1
	for i, s := range l.spans {
		regionStart := s.start
		if i == 0 {
			regionStart = 0
		}
		regionEnd := int(^uint(0) >> 1)
		if i+1 < len(l.spans) {
			regionEnd = l.spans[i+1].start
		}
		ov := min(end, regionEnd) - max(start, regionStart)
		if ov > bestOverlap {
			best, bestOverlap = s.key, ov
		}
	}
	return best
}
