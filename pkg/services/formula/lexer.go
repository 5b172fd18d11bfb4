package formula

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	pos  int
	text string
	num  float64
}

// SyntaxError reports a malformed formula with the byte offset where parsing stopped.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}

func tokenize(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, pos: i, text: "("})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, pos: i, text: ")"})
			i++
		case c == '*' && i+1 < len(src) && src[i+1] == '*':
			tokens = append(tokens, token{kind: tokOp, pos: i, text: "^"})
			i += 2
		case strings.IndexByte("+-*/^%", c) >= 0:
			tokens = append(tokens, token{kind: tokOp, pos: i, text: string(c)})
			i++
		case c == '`':
			end := strings.IndexByte(src[i+1:], '`')
			if end < 0 {
				return nil, &SyntaxError{Pos: i, Msg: "unterminated quoted name"}
			}
			name := src[i+1 : i+1+end]
			if name == "" {
				return nil, &SyntaxError{Pos: i, Msg: "empty quoted name"}
			}
			tokens = append(tokens, token{kind: tokIdent, pos: i, text: name})
			i += end + 2
		case isDigit(c) || c == '.':
			tok, n, err := scanNumber(src, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i += n
		default:
			start := i
			for i < len(src) {
				r, size := utf8.DecodeRuneInString(src[i:])
				if !isIdentRune(r, i == start) {
					break
				}
				i += size
			}
			if i == start {
				return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", src[i])}
			}
			tokens = append(tokens, token{kind: tokIdent, pos: start, text: src[start:i]})
		}
	}
	tokens = append(tokens, token{kind: tokEOF, pos: len(src)})
	return tokens, nil
}

func scanNumber(src string, start int) (token, int, error) {
	i := start
	for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
		i++
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			i = j
		}
	}
	text := src[start:i]
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || text == "." {
		return token{}, 0, &SyntaxError{Pos: start, Msg: fmt.Sprintf("invalid number %q", text)}
	}
	return token{kind: tokNumber, pos: start, text: text, num: f}, i - start, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentRune(r rune, first bool) bool {
	if r == '_' || r == '$' || unicode.IsLetter(r) {
		return true
	}
	return !first && unicode.IsDigit(r)
}
