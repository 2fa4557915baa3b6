package opal

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type lexer struct {
	input string

	offset int
	width  int

	line   int
	column int

	ch rune
}

func newLexer(input string) *lexer {
	l := &lexer{input: input, line: 1, column: 0}
	l.readRune()
	return l
}

// Tokenize converts source text into the full token stream, terminated by an
// EOF token. It fails with a position-carrying lexical error on the first
// malformed token.
func Tokenize(source string) ([]Token, error) {
	l := newLexer(source)

	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == tokenEOF {
			return tokens, nil
		}
	}
}

func (l *lexer) readRune() {
	if l.offset >= len(l.input) {
		l.width = 0
		l.ch = 0
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.offset:])
	l.width = w
	l.offset += w

	if r == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}

	l.ch = r
}

func (l *lexer) peekRune() rune {
	if l.offset >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
	return r
}

func (l *lexer) NextToken() (Token, error) {
	l.skipWhitespaceAndComments()

	pos := Position{Line: l.line, Column: l.column}

	switch l.ch {
	case 0:
		return Token{Type: tokenEOF, Pos: Position{Line: l.line, Column: l.column}}, nil
	case '+':
		tok := l.makeToken(tokenPlus, "+")
		l.readRune()
		return tok, nil
	case '-':
		tok := l.makeToken(tokenMinus, "-")
		l.readRune()
		return tok, nil
	case '*':
		tok := l.makeToken(tokenAsterisk, "*")
		l.readRune()
		return tok, nil
	case '/':
		tok := l.makeToken(tokenSlash, "/")
		l.readRune()
		return tok, nil
	case '(':
		tok := l.makeToken(tokenLParen, "(")
		l.readRune()
		return tok, nil
	case ')':
		tok := l.makeToken(tokenRParen, ")")
		l.readRune()
		return tok, nil
	case '{':
		tok := l.makeToken(tokenLBrace, "{")
		l.readRune()
		return tok, nil
	case '}':
		tok := l.makeToken(tokenRBrace, "}")
		l.readRune()
		return tok, nil
	case ';':
		tok := l.makeToken(tokenSemicolon, ";")
		l.readRune()
		return tok, nil
	case ',':
		tok := l.makeToken(tokenComma, ",")
		l.readRune()
		return tok, nil
	case '.':
		tok := l.makeToken(tokenDot, ".")
		l.readRune()
		return tok, nil
	case '<':
		tok := l.makeToken(tokenLT, "<")
		l.readRune()
		return tok, nil
	case '>':
		tok := l.makeToken(tokenGT, ">")
		l.readRune()
		return tok, nil
	case '=':
		if l.peekRune() == '=' {
			l.readRune()
			l.readRune()
			return Token{Type: tokenEQ, Literal: "==", Pos: pos}, nil
		}
		tok := l.makeToken(tokenAssign, "=")
		l.readRune()
		return tok, nil
	case '!':
		if l.peekRune() == '=' {
			l.readRune()
			l.readRune()
			return Token{Type: tokenNotEQ, Literal: "!=", Pos: pos}, nil
		}
		return Token{}, &LexError{Pos: pos, Msg: "unexpected character '!'", source: l.input}
	case '"':
		literal, err := l.readString(pos)
		if err != nil {
			return Token{}, err
		}
		return Token{Type: tokenString, Literal: literal, Pos: pos}, nil
	default:
		switch {
		case isIdentifierStart(l.ch):
			literal := l.readIdentifier()
			return Token{Type: lookupIdent(literal), Literal: literal, Pos: pos}, nil
		case unicode.IsDigit(l.ch):
			literal, isFloat := l.readNumber()
			tt := tokenInt
			if isFloat {
				tt = tokenFloat
			}
			return Token{Type: tt, Literal: literal, Pos: pos}, nil
		default:
			return Token{}, &LexError{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", l.ch), source: l.input}
		}
	}
}

func (l *lexer) currentOffset() int {
	return l.offset - l.width
}

func (l *lexer) makeToken(tt TokenType, literal string) Token {
	return Token{Type: tt, Literal: literal, Pos: Position{Line: l.line, Column: l.column}}
}

func (l *lexer) skipWhitespaceAndComments() {
	for {
		switch l.ch {
		case ' ', '\t', '\r', '\n':
			l.readRune()
			continue
		case '#':
			l.skipComment()
			continue
		default:
			return
		}
	}
}

func (l *lexer) skipComment() {
	for l.ch != 0 && l.ch != '\n' {
		l.readRune()
	}
}

func (l *lexer) readIdentifier() string {
	start := l.currentOffset()
	for isIdentifierRune(l.peekRune()) {
		l.readRune()
	}
	literal := l.input[start:l.offset]
	l.readRune()
	return literal
}

// readNumber consumes a run of digits containing at most one decimal point.
// A second decimal point ends the literal; the remaining dot lexes as its
// own token.
func (l *lexer) readNumber() (string, bool) {
	var sb strings.Builder
	hasDot := false

	sb.WriteRune(l.ch)

	for {
		r := l.peekRune()
		switch {
		case r == '.' && !hasDot:
			hasDot = true
			l.readRune()
			sb.WriteRune('.')
		case unicode.IsDigit(r):
			l.readRune()
			sb.WriteRune(r)
		default:
			literal := sb.String()
			l.readRune()
			return literal, hasDot
		}
	}
}

func (l *lexer) readString(start Position) (string, error) {
	var sb strings.Builder

	for {
		l.readRune()
		switch l.ch {
		case 0:
			return "", &LexError{Pos: start, Msg: "unterminated string", source: l.input}
		case '"':
			l.readRune()
			return sb.String(), nil
		case '\\':
			next := l.peekRune()
			if next == 0 {
				continue
			}
			switch next {
			case '"', '\\':
				l.readRune()
				sb.WriteRune(next)
			case 'n':
				l.readRune()
				sb.WriteByte('\n')
			case 't':
				l.readRune()
				sb.WriteByte('\t')
			case 'r':
				l.readRune()
				sb.WriteByte('\r')
			default:
				// Unknown escapes pass the following character through.
				l.readRune()
				sb.WriteRune(next)
			}
		default:
			sb.WriteRune(l.ch)
		}
	}
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
