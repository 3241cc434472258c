package sql

import "fmt"

// ParseError represents a syntax error with its source position.
type ParseError struct {
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Error message templates.
const (
	ErrUnexpectedToken = "unexpected token %s, expected %s"
)
