package solidity

import (
	"fmt"

	"github.com/forgelint/forgelint/pkg/token"
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages
const (
	ErrUnterminatedString  = "unterminated string literal"
	ErrUnterminatedComment = "unterminated block comment"
	ErrUnbalancedBraces    = "unbalanced braces at end of file"
	ErrUnbalancedParens    = "unbalanced parentheses at end of file"
)
