// Copyright © 2016 Abcum Ltd
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lang

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

var fold = cases.Fold()

// eof is the marker rune returned once the underlying reader is
// exhausted.
var eof = rune(0)

// Lexer converts a character stream into Tokens. It exposes one token
// of lookahead via Peek, which is all the parser ever needs.
type Lexer struct {
	r    *bufio.Reader
	line int
	col  int

	peeked    *Token
	peekedErr *LexError
	havePeek  bool
}

// NewLexer wraps r for scanning.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReader(r), line: 1, col: 0}
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, *LexError) {
	if !l.havePeek {
		l.peeked, l.peekedErr = l.scan()
		if l.peeked == nil {
			l.peeked = &Token{}
		}
		l.havePeek = true
	}
	return *l.peeked, l.peekedErr
}

// Next returns and consumes the next token.
func (l *Lexer) Next() (Token, *LexError) {
	if l.havePeek {
		l.havePeek = false
		tok, err := *l.peeked, l.peekedErr
		l.peeked, l.peekedErr = nil, nil
		return tok, err
	}
	tok, err := l.scan()
	if tok == nil {
		tok = &Token{}
	}
	return *tok, err
}

func (l *Lexer) next() rune {
	ch, _, err := l.r.ReadRune()
	if err != nil {
		return eof
	}
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch
}

// undo pushes the last rune read back onto the reader. It must only be
// called at most once per call to next() without an intervening read.
func (l *Lexer) undo() {
	_ = l.r.UnreadRune()
	if l.col > 0 {
		l.col--
	}
}

func (l *Lexer) errf(msg string) *LexError {
	return &LexError{Line: l.line, Column: l.col, Message: msg}
}

// scan reads and returns the next token, skipping whitespace and
// comments along the way.
func (l *Lexer) scan() (tok *Token, err *LexError) {

	var line, col int
	defer func() {
		if tok != nil {
			tok.Line, tok.Column = line, col
		}
	}()

	for {
		ch := l.next()

		if isSpace(ch) {
			continue
		}

		line, col = l.line, l.col

		if ch == eof {
			return &Token{Kind: EOF}, nil
		}

		// // comment to end of line
		if ch == '/' {
			next := l.next()
			if next == '/' {
				for {
					c := l.next()
					if c == '\n' || c == eof {
						break
					}
				}
				continue
			}
			if next != eof {
				l.undo()
			}
			return &Token{Kind: OPERATOR, Operator: OpDiv, Lit: "/"}, nil
		}

		switch ch {
		case ';':
			return &Token{Kind: END, Lit: ";"}, nil
		case ',':
			return &Token{Kind: SEPARATOR, Lit: ","}, nil
		case '(':
			return &Token{Kind: GRPSTART, Lit: "("}, nil
		case ')':
			return &Token{Kind: GRPEND, Lit: ")"}, nil
		case '"':
			return l.scanString()
		case '.':
			return &Token{Kind: ACCESSOR, Lit: "."}, nil
		case '+':
			return &Token{Kind: OPERATOR, Operator: OpAdd, Lit: "+"}, nil
		case '*':
			return &Token{Kind: OPERATOR, Operator: OpMul, Lit: "*"}, nil
		case '%':
			return &Token{Kind: OPERATOR, Operator: OpMod, Lit: "%"}, nil
		case '-':
			return &Token{Kind: OPERATOR, Operator: OpSub, Lit: "-"}, nil
		case '=':
			next := l.next()
			if next == '=' {
				return &Token{Kind: OPERATOR, Operator: OpEq, Lit: "=="}, nil
			}
			if next != eof {
				l.undo()
			}
			return &Token{Kind: ASSIGN, Lit: "="}, nil
		case '!':
			next := l.next()
			if next == '=' {
				return &Token{Kind: OPERATOR, Operator: OpNeq, Lit: "!="}, nil
			}
			return nil, l.errf("expected '=' after '!'")
		case '<':
			next := l.next()
			if next == '=' {
				return &Token{Kind: OPERATOR, Operator: OpLte, Lit: "<="}, nil
			}
			if next != eof {
				l.undo()
			}
			return &Token{Kind: OPERATOR, Operator: OpLt, Lit: "<"}, nil
		case '>':
			next := l.next()
			if next == '=' {
				return &Token{Kind: OPERATOR, Operator: OpGte, Lit: ">="}, nil
			}
			if next != eof {
				l.undo()
			}
			return &Token{Kind: OPERATOR, Operator: OpGt, Lit: ">"}, nil
		}

		if isDigit(ch) {
			return l.scanNumber(ch)
		}

		if isIdentStart(ch) {
			return l.scanWord(ch)
		}

		return nil, l.errf("unsupported character " + strconv.QuoteRune(ch))
	}

}

func (l *Lexer) scanString() (*Token, *LexError) {
	var b strings.Builder
	for {
		ch := l.next()
		if ch == eof {
			return nil, l.errf("unterminated string literal")
		}
		if ch == '"' {
			return &Token{Kind: STRING, Str: b.String(), Lit: b.String()}, nil
		}
		b.WriteRune(ch)
	}
}

// scanNumber consumes an int or float literal. first is the leading
// digit already read. A '.' continues the literal as a float only when
// immediately followed by another digit; otherwise the '.' is left for
// the next scan to yield as an Accessor.
func (l *Lexer) scanNumber(first rune) (*Token, *LexError) {
	var b strings.Builder
	b.WriteRune(first)

	isFloat := false

	for {
		if !isFloat {
			if ahead, err := l.r.Peek(2); err == nil && ahead[0] == '.' && isDigit(rune(ahead[1])) {
				l.next()
				isFloat = true
				b.WriteRune('.')
				continue
			}
		}

		ch := l.next()

		if isDigit(ch) {
			b.WriteRune(ch)
			continue
		}

		if ch != eof {
			l.undo()
		}
		break
	}

	lit := b.String()

	if isFloat {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, l.errf("malformed float literal " + strconv.Quote(lit))
		}
		return &Token{Kind: FLOAT, Float: f, Lit: lit}, nil
	}

	i, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return nil, l.errf("malformed int literal " + strconv.Quote(lit))
	}
	return &Token{Kind: INT, Int: i, Lit: lit}, nil
}

// scanWord consumes a bare word and classifies it as a keyword,
// function, "on"/"to", boolean literal, or plain identifier.
func (l *Lexer) scanWord(first rune) (*Token, *LexError) {
	var b strings.Builder
	b.WriteRune(first)

	for {
		ch := l.next()
		if isIdentChar(ch) {
			b.WriteRune(ch)
			continue
		}
		if ch != eof {
			l.undo()
		}
		break
	}

	word := b.String()
	folded := fold.String(word)

	if kw, ok := keywords[folded]; ok {
		return &Token{Kind: KEYWORD, Keyword: kw, Lit: word}, nil
	}
	if fn, ok := functions[folded]; ok {
		return &Token{Kind: FUNCTION, Function: fn, Lit: word}, nil
	}
	if folded == "on" {
		return &Token{Kind: AUXON, Lit: word}, nil
	}
	if folded == "to" {
		return &Token{Kind: AUXTO, Lit: word}, nil
	}
	if folded == "true" {
		return &Token{Kind: BOOL, Bool: true, Lit: word}, nil
	}
	if folded == "false" {
		return &Token{Kind: BOOL, Bool: false, Lit: word}, nil
	}

	return &Token{Kind: IDENT, Str: word, Lit: word}, nil
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentChar(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}
