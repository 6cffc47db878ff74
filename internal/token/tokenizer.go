package token

import (
	"strings"
	"unicode/utf8"

	"github.com/DanielSharp01/eprotoc/internal/diag"
	"github.com/DanielSharp01/eprotoc/internal/sourcemap"
)

// tokenizer scans a single file's text into a flat []Token. The field names
// and scanning primitives (pos/width, next/peek/backup) follow
// the same vocabulary as a Rob-Pike-style state-function lexer, but results
// are collected directly into a slice rather than streamed over a channel:
// the parser needs random-access lookahead over the whole token list.
type tokenizer struct {
	file  string
	input string
	diags *diag.Bag

	pos   int // byte offset of the next rune to read
	width int // width in bytes of the last rune read by next()

	line    int
	col     int
	prevCol int // col before the last rune read by next(), for backup()

	out []Token
}

const eof = -1

// Tokenize scans text into a token stream that always ends with an EOF
// token at the final position. Comments are retained with Type == Comment;
// the parser drops them at entry.
func Tokenize(file, text string, diags *diag.Bag) []Token {
	t := &tokenizer{file: file, input: text, diags: diags}
	t.run()
	return t.out
}

func (t *tokenizer) here() sourcemap.Position {
	return sourcemap.Position{Line: t.line, Col: t.col}
}

func (t *tokenizer) span(start sourcemap.Position) sourcemap.Span {
	return sourcemap.Span{File: t.file, Start: start, End: t.here()}
}

func (t *tokenizer) next() rune {
	if t.pos >= len(t.input) {
		t.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(t.input[t.pos:])
	t.width = w
	t.pos += w
	t.prevCol = t.col
	if r == '\n' {
		t.line++
		t.col = 0
	} else if r > 0xFFFF {
		t.col += 2
	} else {
		t.col++
	}
	return r
}

func (t *tokenizer) backup() {
	t.pos -= t.width
	// backup() is only ever called immediately after next() within the same
	// token, before any newline could have been crossed by further reads,
	// so it is safe to simply undo the column/line advance we just made.
	if t.width > 0 {
		r, _ := utf8.DecodeRuneInString(t.input[t.pos:])
		if r == '\n' {
			t.line--
			t.col = t.prevCol
		} else if r > 0xFFFF {
			t.col -= 2
		} else {
			t.col--
		}
	}
}

func (t *tokenizer) peek() rune {
	r := t.next()
	t.backup()
	return r
}

func (t *tokenizer) emit(typ Type, start sourcemap.Position, startPos int) {
	t.out = append(t.out, Token{Type: typ, Span: t.span(start), Text: t.input[startPos:t.pos]})
}

func isIdentStart(r rune) bool {
	return r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || ('0' <= r && r <= '9')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}

func (t *tokenizer) run() {
	for {
		r := t.peek()
		if r == eof {
			break
		}
		if isSpace(r) {
			t.next()
			continue
		}
		start := t.here()
		startPos := t.pos

		switch {
		case r == '/' && t.startsLineComment():
			t.scanLineComment(start, startPos)
		case r == '/' && t.startsBlockComment():
			t.scanBlockComment(start, startPos)
		case isIdentStart(r):
			t.scanIdentifier(start, startPos)
		case isDigit(r):
			t.scanNumber(start, startPos)
		case r == '"':
			t.scanString(start, startPos)
		case strings.ContainsRune(Symbols, r):
			t.next()
			t.emit(Symbol, start, startPos)
		default:
			t.next()
			t.emit(Unknown, start, startPos)
			t.diags.Errorf(diag.LexUnknownSymbol, diag.Local, t.span(start), "Unknown symbol %q", r)
		}
	}

	eofPos := t.here()
	t.out = append(t.out, Token{Type: EOF, Span: sourcemap.Span{File: t.file, Start: eofPos, End: eofPos}})
}

func (t *tokenizer) startsLineComment() bool {
	return strings.HasPrefix(t.input[t.pos:], "//")
}

func (t *tokenizer) startsBlockComment() bool {
	return strings.HasPrefix(t.input[t.pos:], "/*")
}

func (t *tokenizer) scanLineComment(start sourcemap.Position, startPos int) {
	for {
		r := t.peek()
		if r == eof || r == '\n' {
			break
		}
		t.next()
	}
	t.emit(Comment, start, startPos)
}

func (t *tokenizer) scanBlockComment(start sourcemap.Position, startPos int) {
	t.next()
	t.next() // consume "/*"
	for {
		r := t.peek()
		if r == eof {
			break
		}
		if r == '*' && strings.HasPrefix(t.input[t.pos:], "*/") {
			t.next()
			t.next()
			break
		}
		t.next()
	}
	t.emit(Comment, start, startPos)
}

func (t *tokenizer) scanIdentifier(start sourcemap.Position, startPos int) {
	for isIdentCont(t.peek()) {
		t.next()
	}
	text := t.input[startPos:t.pos]
	typ := Identifier
	if Keywords[text] {
		typ = Keyword
	}
	t.out = append(t.out, Token{Type: typ, Span: t.span(start), Text: text})
}

func (t *tokenizer) scanNumber(start sourcemap.Position, startPos int) {
	for isDigit(t.peek()) {
		t.next()
	}
	text := t.input[startPos:t.pos]
	tok := Token{Type: NumericLiteral, Span: t.span(start), Text: text}
	tok.Int = parseInt64(text)
	t.out = append(t.out, tok)
}

func parseInt64(s string) int64 {
	var v int64
	for _, r := range s {
		v = v*10 + int64(r-'0')
	}
	return v
}

func (t *tokenizer) scanString(start sourcemap.Position, startPos int) {
	t.next() // opening quote
	var sb strings.Builder
	for {
		r := t.peek()
		if r == eof || r == '\n' {
			break
		}
		if r == '"' {
			t.next()
			break
		}
		if r == '\\' {
			t.next()
			nr := t.peek()
			if nr == eof {
				break
			}
			t.next()
			sb.WriteRune(nr)
			continue
		}
		t.next()
		sb.WriteRune(r)
	}
	tok := Token{Type: StringLiteral, Span: t.span(start), Text: t.input[startPos:t.pos], Str: sb.String()}
	t.out = append(t.out, tok)
}
