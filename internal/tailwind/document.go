package tailwind

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnrecognized reports a config whose layout the patcher cannot follow.
var ErrUnrecognized = errors.New("unrecognized tailwind config")

// maxIndirection bounds how many identifiers and calls are followed from
// the export to the root object.
const maxIndirection = 4

// Document is a parsed Tailwind config. Only the root object and its
// content array are understood; everything else is kept as raw bytes.
type Document struct {
	src  []byte
	json bool
	unit string

	rootOpen  int
	rootClose int
	rootEmpty bool

	hasContent bool
	open       int
	close      int
	elements   []element

	changed bool
}

type element struct {
	raw   string
	value string
	str   bool
}

// Parse reads a Tailwind config without executing it.
func Parse(src []byte) (*Document, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognized, err)
	}

	root, isJSON, ok := p.findRoot()
	if !ok {
		return nil, fmt.Errorf("%w: no exported config object", ErrUnrecognized)
	}

	d := &Document{
		src:       src,
		json:      isJSON,
		unit:      detectIndent(src),
		rootOpen:  p.toks[root].start,
		rootClose: p.toks[p.match[root]].start,
	}

	props := p.properties(root)
	d.rootEmpty = len(props) == 0

	// A spread after the content key, or with no content key at all, may
	// override whatever entry is written here.
	spread := false
	for _, prop := range props {
		if prop.spread {
			if d.hasContent {
				return nil, fmt.Errorf("%w: spread property after content", ErrUnrecognized)
			}
			spread = true
			continue
		}
		if prop.key != "content" || d.hasContent {
			continue
		}
		arr, err := p.contentArray(prop)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognized, err)
		}
		d.hasContent = true
		d.open = p.toks[arr].start
		d.close = p.toks[p.match[arr]].start
		d.elements = p.elements(arr)
	}
	if spread && !d.hasContent {
		return nil, fmt.Errorf("%w: content may come from a spread property", ErrUnrecognized)
	}

	return d, nil
}

// Content returns the string entries of the content list in order.
func (d *Document) Content() []string {
	var out []string
	for _, e := range d.elements {
		if e.str {
			out = append(out, e.value)
		}
	}
	return out
}

// Has reports whether entry is already in the content list.
func (d *Document) Has(entry string) bool {
	for _, e := range d.elements {
		if e.str && e.value == entry {
			return true
		}
	}
	return false
}

// AddContent appends entry to the content list. It returns false if the
// entry was already present.
func (d *Document) AddContent(entry string) bool {
	if d.Has(entry) {
		return false
	}
	d.elements = append(d.elements, element{raw: quote(entry), value: entry, str: true})
	d.changed = true
	return true
}

// Bytes renders the document. An unchanged document returns its source.
func (d *Document) Bytes() []byte {
	if !d.changed {
		return d.src
	}

	var b bytes.Buffer
	if d.hasContent {
		b.Write(d.src[:d.open])
		b.WriteString(d.renderArray(lineIndent(d.src, d.open)))
		b.Write(d.src[d.close+1:])
		return b.Bytes()
	}

	base := lineIndent(d.src, d.rootOpen)
	prop := base + d.unit
	key := "content"
	if d.json {
		key = `"content"`
	}

	b.Write(d.src[:d.rootOpen+1])
	b.WriteString("\n" + prop + key + ": " + d.renderArray(prop))
	if d.rootEmpty {
		b.WriteString("\n" + base)
		b.Write(d.src[d.rootClose:])
	} else {
		b.WriteString(",")
		b.Write(d.src[d.rootOpen+1:])
	}
	return b.Bytes()
}

func (d *Document) renderArray(indent string) string {
	seen := make(map[string]bool)
	var items []string
	for _, e := range d.elements {
		if !e.str {
			items = append(items, e.raw)
			continue
		}
		if seen[e.value] {
			continue
		}
		seen[e.value] = true
		items = append(items, quote(e.value))
	}

	var b strings.Builder
	b.WriteString("[\n")
	for i, item := range items {
		b.WriteString(indent + d.unit + item)
		if i < len(items)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(indent + "]")
	return b.String()
}

type parser struct {
	src   []byte
	toks  []token
	match []int
	level []int
}

type property struct {
	key   string
	value int
	last  int

	// shorthand is set for `{ key }`, where the value is a variable.
	shorthand bool

	// spread is set for `{ ...base }`.
	spread bool
}

func newParser(src []byte) (*parser, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{
		src:   src,
		toks:  toks,
		match: make([]int, len(toks)),
		level: make([]int, len(toks)),
	}

	var stack []int
	for i, tok := range toks {
		p.match[i] = -1
		p.level[i] = len(stack)
		if tok.kind != tokPunct {
			continue
		}
		switch c := src[tok.start]; c {
		case '{', '[', '(':
			stack = append(stack, i)
		case '}', ']', ')':
			if len(stack) == 0 {
				return nil, fmt.Errorf("unbalanced %q at offset %d", c, tok.start)
			}
			open := stack[len(stack)-1]
			if closer(src[toks[open].start]) != c {
				return nil, fmt.Errorf("mismatched %q at offset %d", c, tok.start)
			}
			stack = stack[:len(stack)-1]
			p.match[open] = i
			p.level[i] = len(stack)
		}
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("unclosed %q at offset %d", src[toks[stack[0]].start], toks[stack[0]].start)
	}
	return p, nil
}

func closer(open byte) byte {
	switch open {
	case '{':
		return '}'
	case '[':
		return ']'
	default:
		return ')'
	}
}

func (p *parser) text(i int) string {
	return string(p.src[p.toks[i].start:p.toks[i].end])
}

func (p *parser) isPunct(i int, c byte) bool {
	return i >= 0 && i < len(p.toks) && p.toks[i].kind == tokPunct && p.src[p.toks[i].start] == c
}

func (p *parser) isIdent(i int, name string) bool {
	return i >= 0 && i < len(p.toks) && p.toks[i].kind == tokIdent && p.text(i) == name
}

// isAssign reports whether token i is a lone '=' (not part of =>, == or =).
func (p *parser) isAssign(i int) bool {
	if !p.isPunct(i, '=') {
		return false
	}
	end := p.toks[i].end
	if end < len(p.src) && (p.src[end] == '>' || p.src[end] == '=') {
		return false
	}
	return true
}

// findRoot returns the token index of the exported config object.
func (p *parser) findRoot() (int, bool, bool) {
	for i := range p.toks {
		if p.level[i] != 0 || p.toks[i].kind != tokIdent {
			continue
		}
		if i > 0 && p.isPunct(i-1, '.') {
			continue
		}
		switch p.text(i) {
		case "export":
			if p.isIdent(i+1, "default") {
				idx, ok := p.objectAt(i+2, 0)
				return idx, false, ok
			}
		case "module":
			if p.isPunct(i+1, '.') && p.isIdent(i+2, "exports") && p.isAssign(i+3) {
				idx, ok := p.objectAt(i+4, 0)
				return idx, false, ok
			}
		}
	}

	if len(p.toks) > 0 && p.isPunct(0, '{') && p.match[0] == len(p.toks)-1 {
		return 0, true, true
	}
	return -1, false, false
}

// objectAt follows an expression to an object literal: the literal itself,
// a call wrapping one, a parenthesised one, or an identifier declared at the
// top level.
func (p *parser) objectAt(i, depth int) (int, bool) {
	if depth > maxIndirection || i >= len(p.toks) {
		return -1, false
	}
	switch {
	case p.isPunct(i, '{'):
		return i, true
	case p.isPunct(i, '('):
		return p.objectAt(i+1, depth+1)
	case p.toks[i].kind == tokIdent:
		if p.isPunct(i+1, '(') {
			return p.objectAt(i+2, depth+1)
		}
		if v, ok := p.declaration(p.text(i)); ok {
			return p.objectAt(v, depth+1)
		}
	}
	return -1, false
}

// declaration returns the first value token of a top-level
// `const|let|var name [: Type] = value`.
func (p *parser) declaration(name string) (int, bool) {
	for i := range p.toks {
		if p.level[i] != 0 || p.toks[i].kind != tokIdent {
			continue
		}
		switch p.text(i) {
		case "const", "let", "var":
		default:
			continue
		}
		if !p.isIdent(i+1, name) {
			continue
		}

		j := i + 2
		if p.isPunct(j, ':') {
			for j < len(p.toks) && !(p.level[j] == 0 && p.isAssign(j)) {
				if m := p.match[j]; m >= 0 {
					j = m
				}
				j++
			}
		}
		if p.isAssign(j) {
			return j + 1, true
		}
	}
	return -1, false
}

// segments splits the tokens inside the group opened at open on commas at
// that group's level. Empty segments are dropped.
func (p *parser) segments(open int) [][2]int {
	end := p.match[open]
	var segs [][2]int
	i := open + 1
	for i < end {
		j := i
		for j < end && !p.isPunct(j, ',') {
			if m := p.match[j]; m >= 0 {
				j = m
			}
			j++
		}
		if j > i {
			segs = append(segs, [2]int{i, j})
		}
		i = j + 1
	}
	return segs
}

func (p *parser) properties(obj int) []property {
	var props []property
	for _, seg := range p.segments(obj) {
		prop := property{last: seg[1], value: -1}
		k := seg[0]
		if seg[1]-k >= 3 && p.isPunct(k+1, ':') {
			switch p.toks[k].kind {
			case tokIdent:
				prop.key = p.text(k)
			case tokString:
				prop.key = unquote(p.text(k))
			}
			prop.value = k + 2
		} else if seg[1]-k == 1 && p.toks[k].kind == tokIdent {
			prop.key = p.text(k)
			prop.shorthand = true
		} else if p.isPunct(k, '.') && p.isPunct(k+1, '.') && p.isPunct(k+2, '.') {
			prop.spread = true
		}
		props = append(props, prop)
	}
	return props
}

// contentArray returns the array holding the content globs for a content
// property: the value itself, or the files key of an object value.
func (p *parser) contentArray(prop property) (int, error) {
	if prop.shorthand {
		return -1, errors.New("content is a shorthand property")
	}
	v := prop.value
	if p.isPunct(v, '[') && p.match[v] == prop.last-1 {
		return v, nil
	}
	if p.isPunct(v, '{') && p.match[v] == prop.last-1 {
		for _, fp := range p.properties(v) {
			if fp.key == "files" && p.isPunct(fp.value, '[') && p.match[fp.value] == fp.last-1 {
				return fp.value, nil
			}
		}
		return -1, errors.New("content object has no files array")
	}
	return -1, errors.New("content is not an array literal")
}

func (p *parser) elements(arr int) []element {
	var elems []element
	for _, seg := range p.segments(arr) {
		raw := string(p.src[p.toks[seg[0]].start:p.toks[seg[1]-1].end])
		e := element{raw: raw}
		if seg[1]-seg[0] == 1 && p.toks[seg[0]].kind == tokString &&
			!(raw[0] == '`' && strings.Contains(raw, "${")) {
			e.str = true
			e.value = unquote(raw)
		}
		elems = append(elems, e)
	}
	return elems
}

// quote renders s as a double-quoted string valid in both JSON and JavaScript.
func quote(s string) string {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(b.String(), "\n")
}

// unquote decodes a JavaScript string literal including its quotes.
func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, `\`) {
		return body
	}

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'u':
			if i+4 < len(body) {
				if r, err := strconv.ParseUint(body[i+1:i+5], 16, 32); err == nil {
					b.WriteRune(rune(r))
					i += 4
					continue
				}
			}
			b.WriteByte('u')
		case '\n':
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String()
}

// lineIndent returns the leading whitespace of the line containing offset.
func lineIndent(src []byte, offset int) string {
	start := bytes.LastIndexByte(src[:offset], '\n') + 1
	end := start
	for end < offset && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[start:end])
}

// detectIndent returns the file's indentation unit: a tab if the first
// indented line uses one, otherwise the narrowest space indent. Block
// comment continuation lines are ignored.
func detectIndent(src []byte) string {
	narrowest := 0
	for _, line := range bytes.Split(src, []byte("\n")) {
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 || trimmed[0] == '*' {
			continue
		}
		if line[0] == '\t' {
			if narrowest == 0 {
				return "\t"
			}
			continue
		}
		n := 0
		for n < len(line) && line[n] == ' ' {
			n++
		}
		if n > 0 && (narrowest == 0 || n < narrowest) {
			narrowest = n
		}
	}
	if narrowest == 0 {
		return "  "
	}
	return strings.Repeat(" ", narrowest)
}
