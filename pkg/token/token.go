// Package token defines the token types for Solidity source scanning.
//
// The set is intentionally small: the scanner only needs to recognize the
// declaration keywords, visibility and location modifiers, and the
// punctuation required to balance nesting and split parameter lists.
// Everything else lexes as IDENT or OP.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT  // identifier
	NUMBER // 123, 0x1f, 1e18
	STRING // "hello" or 'hello'

	// Punctuation
	LBRACE    // {
	RBRACE    // }
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	SEMICOLON // ;
	COMMA     // ,
	DOT       // .
	STAR      // *
	ASSIGN    // =
	ARROW     // =>
	OP        // any other operator run (+, -, <<, &&, ...)

	// File structure keywords
	PRAGMA
	IMPORT
	FROM
	AS
	USING

	// Declaration keywords
	CONTRACT
	INTERFACE
	LIBRARY
	ABSTRACT
	IS
	FUNCTION
	CONSTRUCTOR
	RECEIVE
	FALLBACK
	MODIFIER
	EVENT
	ERROR
	STRUCT
	ENUM
	TYPE
	MAPPING

	// Variable qualifiers
	CONSTANT
	IMMUTABLE
	TRANSIENT

	// Visibility
	PUBLIC
	PRIVATE
	INTERNAL
	EXTERNAL

	// Mutability and inheritance markers
	PURE
	VIEW
	PAYABLE
	VIRTUAL
	OVERRIDE

	// Data locations
	MEMORY
	STORAGE
	CALLDATA

	// Statement keywords the local-variable walk cares about
	RETURNS
	RETURN
	IF
	ELSE
	FOR
	WHILE
	DO
	EMIT
	REVERT
	UNCHECKED
	ASSEMBLY
	TRY
	CATCH
	NEW
	DELETE

	// Event parameter markers
	INDEXED
	ANONYMOUS
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	LBRACE:    "{",
	RBRACE:    "}",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACKET:  "[",
	RBRACKET:  "]",
	SEMICOLON: ";",
	COMMA:     ",",
	DOT:       ".",
	STAR:      "*",
	ASSIGN:    "=",
	ARROW:     "=>",
	OP:        "OP",

	PRAGMA: "pragma",
	IMPORT: "import",
	FROM:   "from",
	AS:     "as",
	USING:  "using",

	CONTRACT:    "contract",
	INTERFACE:   "interface",
	LIBRARY:     "library",
	ABSTRACT:    "abstract",
	IS:          "is",
	FUNCTION:    "function",
	CONSTRUCTOR: "constructor",
	RECEIVE:     "receive",
	FALLBACK:    "fallback",
	MODIFIER:    "modifier",
	EVENT:       "event",
	ERROR:       "error",
	STRUCT:      "struct",
	ENUM:        "enum",
	TYPE:        "type",
	MAPPING:     "mapping",

	CONSTANT:  "constant",
	IMMUTABLE: "immutable",
	TRANSIENT: "transient",

	PUBLIC:   "public",
	PRIVATE:  "private",
	INTERNAL: "internal",
	EXTERNAL: "external",

	PURE:     "pure",
	VIEW:     "view",
	PAYABLE:  "payable",
	VIRTUAL:  "virtual",
	OVERRIDE: "override",

	MEMORY:   "memory",
	STORAGE:  "storage",
	CALLDATA: "calldata",

	RETURNS:   "returns",
	RETURN:    "return",
	IF:        "if",
	ELSE:      "else",
	FOR:       "for",
	WHILE:     "while",
	DO:        "do",
	EMIT:      "emit",
	REVERT:    "revert",
	UNCHECKED: "unchecked",
	ASSEMBLY:  "assembly",
	TRY:       "try",
	CATCH:     "catch",
	NEW:       "new",
	DELETE:    "delete",

	INDEXED:   "indexed",
	ANONYMOUS: "anonymous",
}

// keywords maps keyword strings to their token types. Solidity keywords are
// case sensitive, so lookup is exact.
var keywords = map[string]TokenType{
	"pragma": PRAGMA,
	"import": IMPORT,
	"from":   FROM,
	"as":     AS,
	"using":  USING,

	"contract":    CONTRACT,
	"interface":   INTERFACE,
	"library":     LIBRARY,
	"abstract":    ABSTRACT,
	"is":          IS,
	"function":    FUNCTION,
	"constructor": CONSTRUCTOR,
	"receive":     RECEIVE,
	"fallback":    FALLBACK,
	"modifier":    MODIFIER,
	"event":       EVENT,
	"error":       ERROR,
	"struct":      STRUCT,
	"enum":        ENUM,
	"type":        TYPE,
	"mapping":     MAPPING,

	"constant":  CONSTANT,
	"immutable": IMMUTABLE,
	"transient": TRANSIENT,

	"public":   PUBLIC,
	"private":  PRIVATE,
	"internal": INTERNAL,
	"external": EXTERNAL,

	"pure":     PURE,
	"view":     VIEW,
	"payable":  PAYABLE,
	"virtual":  VIRTUAL,
	"override": OVERRIDE,

	"memory":   MEMORY,
	"storage":  STORAGE,
	"calldata": CALLDATA,

	"returns":   RETURNS,
	"return":    RETURN,
	"if":        IF,
	"else":      ELSE,
	"for":       FOR,
	"while":     WHILE,
	"do":        DO,
	"emit":      EMIT,
	"revert":    REVERT,
	"unchecked": UNCHECKED,
	"assembly":  ASSEMBLY,
	"try":       TRY,
	"catch":     CATCH,
	"new":       NEW,
	"delete":    DELETE,

	"indexed":   INDEXED,
	"anonymous": ANONYMOUS,
}

// LookupIdent returns the token type for the given identifier.
// If the identifier is a keyword, the keyword token type is returned.
// Otherwise, IDENT is returned.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= PRAGMA && t <= ANONYMOUS
}

// IsVisibility returns true for public, private, internal and external.
func IsVisibility(t TokenType) bool {
	return t >= PUBLIC && t <= EXTERNAL
}

// IsLocation returns true for the data location keywords.
func IsLocation(t TokenType) bool {
	return t >= MEMORY && t <= CALLDATA
}

// IsContractKind returns true for contract, interface and library.
func IsContractKind(t TokenType) bool {
	return t == CONTRACT || t == INTERFACE || t == LIBRARY
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}
