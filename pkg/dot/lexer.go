package dot

import (
	"fmt"
	"strings"
	"unicode"
)

// tokenType identifies a lexed DOT token.
type tokenType int

const (
	tokenIdent tokenType = iota
	tokenLBrace
	tokenRBrace
	tokenLBracket
	tokenRBracket
	tokenEquals
	tokenArrow
	tokenSemi
	tokenComma
	tokenEOF
)

type token struct {
	typ tokenType
	val string
}

// lexer turns DOT text into tokens. Quoted strings are unquoted, DOT escape
// sequences for quotes and newlines are resolved, and // and /* */ comments
// are skipped.
type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer { return &lexer{input: input} }

func (l *lexer) next() (token, error) {
	l.skipSpaceAndComments()
	if l.pos >= len(l.input) {
		return token{typ: tokenEOF}, nil
	}

	c := l.input[l.pos]
	switch c {
	case '{':
		l.pos++
		return token{typ: tokenLBrace}, nil
	case '}':
		l.pos++
		return token{typ: tokenRBrace}, nil
	case '[':
		l.pos++
		return token{typ: tokenLBracket}, nil
	case ']':
		l.pos++
		return token{typ: tokenRBracket}, nil
	case '=':
		l.pos++
		return token{typ: tokenEquals}, nil
	case ';':
		l.pos++
		return token{typ: tokenSemi}, nil
	case ',':
		l.pos++
		return token{typ: tokenComma}, nil
	case '-':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '>' {
			l.pos += 2
			return token{typ: tokenArrow}, nil
		}
		return l.lexIdent()
	case '"':
		return l.lexQuoted()
	default:
		return l.lexIdent()
	}
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.pos++
		case c == '/' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '/':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '*':
			end := strings.Index(l.input[l.pos+2:], "*/")
			if end < 0 {
				l.pos = len(l.input)
				return
			}
			l.pos += 2 + end + 2
		default:
			return
		}
	}
}

func (l *lexer) lexQuoted() (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '\\' && l.pos+1 < len(l.input) {
			esc := l.input[l.pos+1]
			switch esc {
			case '"', '\\':
				sb.WriteByte(esc)
			case 'n', 'l', 'r':
				// DOT line-break escapes inside labels; keep a space so
				// multi-line labels stay one expression.
				sb.WriteByte(' ')
			default:
				sb.WriteByte('\\')
				sb.WriteByte(esc)
			}
			l.pos += 2
			continue
		}
		if c == '"' {
			l.pos++
			return token{typ: tokenIdent, val: sb.String()}, nil
		}
		sb.WriteByte(c)
		l.pos++
	}
	return token{}, fmt.Errorf("unterminated quoted string at offset %d", start)
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '-'
}

func (l *lexer) lexIdent() (token, error) {
	start := l.pos
	for l.pos < len(l.input) && isIdentRune(rune(l.input[l.pos])) {
		// "a->b" without spaces: the '-' belongs to the arrow, not the id.
		if l.input[l.pos] == '-' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '>' {
			break
		}
		l.pos++
	}
	if l.pos == start {
		return token{}, fmt.Errorf("unexpected character %q at offset %d", l.input[l.pos], l.pos)
	}
	return token{typ: tokenIdent, val: l.input[start:l.pos]}, nil
}
