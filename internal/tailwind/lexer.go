package tailwind

import (
	"bytes"
	"fmt"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokRegex
	tokPunct
)

type token struct {
	kind       tokenKind
	start, end int
}

// lexer splits JavaScript/JSON source into identifiers, string and regex
// literals and single-byte punctuation. Whitespace and comments are dropped.
// It knows just enough of the grammar to find object and array boundaries.
type lexer struct {
	src []byte
	pos int

	prev    token
	hasPrev bool

	// heads has one entry per open '(', set when it opens the head of an
	// if, while, for or with statement.
	heads []bool
	// headClosed is set when prev is the ')' closing such a head.
	headClosed bool
}

// regexPrefix lists the punctuation after which '/' starts a regex literal
// rather than a division. A ')' is a prefix only when it closes a statement
// head, as in `if (x) /re/.test(s)`.
const regexPrefix = "(,:=[!&|?{};<>+-*%~^"

func tokenize(src []byte) ([]token, error) {
	l := &lexer{src: src}
	if bytes.HasPrefix(src, []byte("\xef\xbb\xbf")) {
		l.pos = 3
	}

	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokEOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func (l *lexer) next() (token, error) {
	tok, err := l.scan()
	if err != nil {
		return tok, err
	}
	l.headClosed = false
	if tok.kind == tokPunct {
		switch l.src[tok.start] {
		case '(':
			l.heads = append(l.heads, l.prevIdentIn("if", "while", "for", "with"))
		case ')':
			if n := len(l.heads); n > 0 {
				l.headClosed = l.heads[n-1]
				l.heads = l.heads[:n-1]
			}
		}
	}
	l.prev, l.hasPrev = tok, true
	return tok, nil
}

// prevIdentIn reports whether the previous token is one of the identifiers.
func (l *lexer) prevIdentIn(names ...string) bool {
	if !l.hasPrev || l.prev.kind != tokIdent {
		return false
	}
	word := string(l.src[l.prev.start:l.prev.end])
	for _, name := range names {
		if word == name {
			return true
		}
	}
	return false
}

func (l *lexer) scan() (token, error) {
	if err := l.skipTrivia(); err != nil {
		return token{}, err
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, start: l.pos, end: l.pos}, nil
	}

	start := l.pos
	c := l.src[start]
	switch {
	case c == '"' || c == '\'' || c == '`':
		end, err := l.scanString(start)
		if err != nil {
			return token{}, err
		}
		l.pos = end
		return token{kind: tokString, start: start, end: end}, nil
	case c == '/' && l.regexAllowed():
		end, err := l.scanRegex(start)
		if err != nil {
			return token{}, err
		}
		l.pos = end
		return token{kind: tokRegex, start: start, end: end}, nil
	case isIdentByte(c):
		for l.pos < len(l.src) && isIdentByte(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, start: start, end: l.pos}, nil
	default:
		l.pos++
		return token{kind: tokPunct, start: start, end: l.pos}, nil
	}
}

func (l *lexer) peek(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

func (l *lexer) skipTrivia() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			l.pos++
		case c == '/' && l.peek(1) == '/':
			nl := bytes.IndexByte(l.src[l.pos:], '\n')
			if nl < 0 {
				l.pos = len(l.src)
			} else {
				l.pos += nl + 1
			}
		case c == '/' && l.peek(1) == '*':
			end := bytes.Index(l.src[l.pos+2:], []byte("*/"))
			if end < 0 {
				return fmt.Errorf("unterminated comment at offset %d", l.pos)
			}
			l.pos += 2 + end + 2
		default:
			return nil
		}
	}
	return nil
}

// scanString returns the offset just past the literal starting at start.
// Template literal substitutions are skipped as balanced brace groups.
func (l *lexer) scanString(start int) (int, error) {
	q := l.src[start]
	i := start + 1
	for i < len(l.src) {
		c := l.src[i]
		switch {
		case c == '\\':
			i += 2
		case c == q:
			return i + 1, nil
		case c == '\n' && q != '`':
			return 0, fmt.Errorf("unterminated string at offset %d", start)
		case q == '`' && c == '$' && i+1 < len(l.src) && l.src[i+1] == '{':
			end, err := l.skipBraces(i + 1)
			if err != nil {
				return 0, err
			}
			i = end
		default:
			i++
		}
	}
	return 0, fmt.Errorf("unterminated string at offset %d", start)
}

// regexAllowed reports whether a '/' at the current position begins a regex
// literal, judged by the token before it.
func (l *lexer) regexAllowed() bool {
	if !l.hasPrev {
		return true
	}
	switch l.prev.kind {
	case tokPunct:
		if l.src[l.prev.start] == ')' {
			return l.headClosed
		}
		return bytes.IndexByte([]byte(regexPrefix), l.src[l.prev.start]) >= 0
	case tokIdent:
		return l.prevIdentIn("return", "typeof", "case", "in", "of", "void", "delete", "else", "throw")
	}
	return false
}

// scanRegex returns the offset just past the regex literal starting at start,
// flags included. A '/' inside a character class does not end the literal.
func (l *lexer) scanRegex(start int) (int, error) {
	inClass := false
	i := start + 1
	for i < len(l.src) {
		switch c := l.src[i]; {
		case c == '\\':
			i += 2
			continue
		case c == '\n':
			return 0, fmt.Errorf("unterminated regex at offset %d", start)
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			i++
			for i < len(l.src) && isIdentByte(l.src[i]) {
				i++
			}
			return i, nil
		}
		i++
	}
	return 0, fmt.Errorf("unterminated regex at offset %d", start)
}

// skipBraces returns the offset just past the '}' matching the '{' at open.
func (l *lexer) skipBraces(open int) (int, error) {
	sub := &lexer{src: l.src, pos: open + 1}
	depth := 1
	for {
		tok, err := sub.next()
		if err != nil {
			return 0, err
		}
		if tok.kind == tokEOF {
			return 0, fmt.Errorf("unterminated template substitution at offset %d", open)
		}
		if tok.kind != tokPunct {
			continue
		}
		switch l.src[tok.start] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return tok.end, nil
			}
		}
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}
