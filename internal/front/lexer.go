// Package front is the external-facing glue the CLI needs to turn MiniC
// source text into the AST that internal/lower consumes. spec.md §1
// scopes the lexer/parser out of core ("Core only requires the AST
// shape enumerated in §3"); this package is the minimal implementation
// of that external contract, grounded on the teacher's own hand-rolled,
// byte-offset lexer (compiler/front/parser.go).
package front

import (
	"tlog.app/go/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokPunct
	tokKeyword
)

type token struct {
	kind tokenKind
	text string
	ival int
	pos  int
}

var keywords = map[string]bool{
	"int": true, "void": true, "if": true, "else": true,
	"while": true, "return": true,
}

type lexer struct {
	src  []byte
	pos  int
	toks []token
}

func lex(src []byte) ([]token, error) {
	l := &lexer{src: src}

	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}

		l.toks = append(l.toks, t)

		if t.kind == tokEOF {
			break
		}
	}

	return l.toks, nil
}

func (l *lexer) next() (token, error) {
	l.skipSpacesAndComments()

	start := l.pos

	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: start}, nil
	}

	c := l.src[l.pos]

	switch {
	case isDigit(c):
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}

		v := 0
		for _, d := range l.src[start:l.pos] {
			v = v*10 + int(d-'0')
		}

		return token{kind: tokInt, text: string(l.src[start:l.pos]), ival: v, pos: start}, nil

	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
			l.pos++
		}

		text := string(l.src[start:l.pos])
		if keywords[text] {
			return token{kind: tokKeyword, text: text, pos: start}, nil
		}

		return token{kind: tokIdent, text: text, pos: start}, nil

	default:
		for _, op := range []string{"&&", "||", "<=", ">=", "==", "!="} {
			if l.hasPrefix(op) {
				l.pos += len(op)
				return token{kind: tokPunct, text: op, pos: start}, nil
			}
		}

		l.pos++

		return token{kind: tokPunct, text: string(c), pos: start}, nil
	}
}

func (l *lexer) hasPrefix(s string) bool {
	if l.pos+len(s) > len(l.src) {
		return false
	}

	return string(l.src[l.pos:l.pos+len(s)]) == s
}

func (l *lexer) skipSpacesAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case c == '/' && l.hasPrefix("//"):
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.hasPrefix("/*"):
			l.pos += 2
			for l.pos < len(l.src) && !l.hasPrefix("*/") {
				l.pos++
			}
			l.pos += 2
		default:
			return
		}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func errAt(pos int, format string, args ...any) error {
	return errors.Wrap(errors.New(format, args...), "at byte %d", pos)
}
