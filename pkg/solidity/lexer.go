package solidity

import (
	"unicode"

	"github.com/forgelint/forgelint/pkg/token"
)

// Lexer tokenizes Solidity input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	// Comments collected during lexing (for directives and text checks)
	Comments []*token.Comment

	// Err holds the first lexical error (unterminated string or comment).
	Err error
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()

	var tok token.Token
	tok.Pos = pos

	switch l.ch {
	case 0:
		tok.Type = token.EOF
		tok.Literal = ""
		return tok
	case '{':
		tok = l.newToken(token.LBRACE, "{")
	case '}':
		tok = l.newToken(token.RBRACE, "}")
	case '(':
		tok = l.newToken(token.LPAREN, "(")
	case ')':
		tok = l.newToken(token.RPAREN, ")")
	case '[':
		tok = l.newToken(token.LBRACKET, "[")
	case ']':
		tok = l.newToken(token.RBRACKET, "]")
	case ';':
		tok = l.newToken(token.SEMICOLON, ";")
	case ',':
		tok = l.newToken(token.COMMA, ",")
	case '.':
		tok = l.newToken(token.DOT, ".")
	case '*':
		if l.peekChar() == '*' {
			l.readChar()
			tok = token.Token{Type: token.OP, Literal: "**", Pos: pos}
		} else {
			tok = l.newToken(token.STAR, "*")
		}
	case '=':
		switch l.peekChar() {
		case '>':
			l.readChar()
			tok = token.Token{Type: token.ARROW, Literal: "=>", Pos: pos}
		case '=':
			l.readChar()
			tok = token.Token{Type: token.OP, Literal: "==", Pos: pos}
		default:
			tok = l.newToken(token.ASSIGN, "=")
		}
	case ':':
		// Yul walrus must stay one token so assembly blocks never look
		// like variable declarations.
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.OP, Literal: ":=", Pos: pos}
		} else {
			tok = l.newToken(token.OP, ":")
		}
	case '"', '\'':
		tok.Type = token.STRING
		tok.Literal = l.readString(l.ch)
		tok.Pos = pos
		return tok
	default:
		switch {
		case isLetter(l.ch) || l.ch == '_' || l.ch == '$':
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			tok.Pos = pos
			return tok
		case isDigit(l.ch):
			tok.Type = token.NUMBER
			tok.Literal = l.readNumber()
			tok.Pos = pos
			return tok
		case isOperatorChar(l.ch):
			tok = l.newToken(token.OP, string(l.ch))
		default:
			tok = l.newToken(token.ILLEGAL, string(l.ch))
		}
	}

	l.readChar()
	return tok
}

// newToken creates a new token at the current position.
func (l *Lexer) newToken(tokenType token.TokenType, literal string) token.Token {
	return token.Token{Type: tokenType, Literal: literal, Pos: l.currentPos()}
}

// skipWhitespaceAndComments skips whitespace and collects comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		if l.ch == '/' && l.peekChar() == '/' {
			l.collectLineComment()
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			l.collectBlockComment()
			continue
		}

		break
	}
}

// collectLineComment collects a // comment up to end of line.
func (l *Lexer) collectLineComment() {
	startPos := l.currentPos()
	startOffset := l.pos

	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}

	l.Comments = append(l.Comments, &token.Comment{
		Kind: token.LineComment,
		Text: l.input[startOffset:l.pos],
		Span: token.Span{Start: startPos, End: l.currentPos()},
	})
}

// collectBlockComment collects a /* ... */ comment, which may span lines.
func (l *Lexer) collectBlockComment() {
	startPos := l.currentPos()
	startOffset := l.pos

	l.readChar() // skip '/'
	l.readChar() // skip '*'

	closed := false
	for l.ch != 0 {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // skip '*'
			l.readChar() // skip '/'
			closed = true
			break
		}
		l.readChar()
	}

	if !closed && l.Err == nil {
		l.Err = &ParseError{Pos: startPos, Message: ErrUnterminatedComment}
	}

	l.Comments = append(l.Comments, &token.Comment{
		Kind: token.BlockComment,
		Text: l.input[startOffset:l.pos],
		Span: token.Span{Start: startPos, End: l.currentPos()},
	})
}

// readString reads a string literal delimited by the given quote.
// Backslash escapes the following character. Solidity string literals
// cannot span lines, so a bare newline terminates with an error.
func (l *Lexer) readString(quote byte) string {
	startPos := l.currentPos()
	start := l.pos
	l.readChar() // skip opening quote

	for l.ch != 0 {
		if l.ch == quote {
			l.readChar() // skip closing quote
			return unquote(l.input[start:l.pos])
		}
		if l.ch == '\n' {
			break
		}
		if l.ch == '\\' && l.peekChar() != 0 {
			l.readChar() // skip escape
		}
		l.readChar()
	}

	if l.Err == nil {
		l.Err = &ParseError{Pos: startPos, Message: ErrUnterminatedString}
	}
	return unquote(l.input[start:l.pos])
}

// unquote strips surrounding quotes without interpreting escapes.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && last == first {
			return s[1 : len(s)-1]
		}
	}
	if len(s) >= 1 && (s[0] == '"' || s[0] == '\'') {
		return s[1:]
	}
	return s
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '$' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal: decimal, hex, underscore separated,
// or scientific (1e18).
func (l *Lexer) readNumber() string {
	start := l.pos

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar() // skip '0'
		l.readChar() // skip 'x'
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		return l.input[start:l.pos]
	}

	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		l.readChar() // skip 'e' or 'E'
		if l.ch == '+' || l.ch == '-' {
			l.readChar() // skip sign
		}
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}

	return l.input[start:l.pos]
}

// isLetter returns true if ch is a letter.
func isLetter(ch byte) bool {
	return unicode.IsLetter(rune(ch))
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// isHexDigit returns true if ch is a hexadecimal digit.
func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// isOperatorChar returns true for operator characters the scanner folds
// into OP tokens.
func isOperatorChar(ch byte) bool {
	switch ch {
	case '+', '-', '/', '%', '!', '&', '|', '^', '~', '<', '>', '?':
		return true
	}
	return false
}

// Tokenize returns all tokens from the input.
func Tokenize(input string) []token.Token {
	l := NewLexer(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens
}
