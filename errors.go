package fsharpstyle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTag is matched by every *InvalidTagError.
	ErrInvalidTag = errors.New("invalid tag")
	// ErrEmptyTagSet is returned when composition is requested without tags.
	ErrEmptyTagSet = errors.New("empty tag set")
	// ErrEmptyRuleText is returned when a rule has no text.
	ErrEmptyRuleText = errors.New("empty rule text")
	// ErrEmptyRequest is returned by Prompt when the user request is blank.
	ErrEmptyRequest = errors.New("empty request")
	// ErrUnknownFormat is returned when no renderer is registered under a name.
	ErrUnknownFormat = errors.New("unknown format")
)

// Position represents a position in a catalog source document.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
}

// String returns a string representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// IsZero reports whether the position is unknown.
func (p Position) IsZero() bool { return p.Line == 0 }

// InvalidTagError reports a tag outside the closed enumeration, either as an
// out-of-range value or as text that names no tag.
type InvalidTagError struct {
	Value string   // offending text, empty when Tag is set
	Tag   Tag      // offending value when no text was involved
	Pos   Position // set when the tag came from a source document
}

// Error implements the error interface.
func (e *InvalidTagError) Error() string {
	var msg string
	if e.Value != "" {
		msg = fmt.Sprintf("invalid tag %q", e.Value)
	} else {
		msg = fmt.Sprintf("invalid tag %s", e.Tag)
	}
	if !e.Pos.IsZero() {
		msg += " at " + e.Pos.String()
	}
	return msg
}

// Unwrap lets errors.Is match ErrInvalidTag.
func (e *InvalidTagError) Unwrap() error { return ErrInvalidTag }

// ParseError is the base error type for catalog source errors.
type ParseError struct {
	Source  string   // file name, empty for readers
	Pos     Position // Position where the error occurred
	Message string   // Error message
	Context string   // Surrounding content for context
	Err     error    // underlying cause, if any
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	loc := e.Pos.String()
	if e.Source != "" {
		loc = e.Source + ": " + loc
	}
	if e.Context != "" {
		return fmt.Sprintf("%s at %s\nContext: %s", e.Message, loc, e.Context)
	}
	return fmt.Sprintf("%s at %s", e.Message, loc)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnknownHeadingError is returned by a strict Importer when a heading names no tag.
type UnknownHeadingError struct {
	ParseError
	Heading string
}

// Error implements the error interface.
func (e *UnknownHeadingError) Error() string {
	return fmt.Sprintf("heading %q names no tag at %s\nContext: %s",
		e.Heading, e.Pos, e.Context)
}

// ValidationError represents a rule whose text failed validation.
type ValidationError struct {
	ParseError
	Tag Tag // tag of the rule that failed validation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Pos.IsZero() {
		return fmt.Sprintf("validation failed for %s rule: %s", e.Tag, e.Message)
	}
	return fmt.Sprintf("validation failed for %s rule at %s: %s\nContext: %s",
		e.Tag, e.Pos, e.Message, e.Context)
}

// NewParseError creates a new ParseError with context.
func NewParseError(pos Position, message, content string) *ParseError {
	return &ParseError{
		Pos:     pos,
		Message: message,
		Context: extractContext(content, pos),
	}
}

// NewUnknownHeadingError creates a new UnknownHeadingError.
func NewUnknownHeadingError(pos Position, heading, content string) *UnknownHeadingError {
	return &UnknownHeadingError{
		ParseError: ParseError{
			Pos:     pos,
			Message: "heading names no tag",
			Context: extractContext(content, pos),
		},
		Heading: heading,
	}
}

// NewValidationError creates a new ValidationError.
func NewValidationError(pos Position, tag Tag, message, content string) *ValidationError {
	return &ValidationError{
		ParseError: ParseError{
			Pos:     pos,
			Message: message,
			Context: extractContext(content, pos),
		},
		Tag: tag,
	}
}

// extractContext extracts a snippet of text around the error position for context.
// It tries to include a few lines before and after the error.
func extractContext(content string, pos Position) string {
	if content == "" || pos.IsZero() {
		return ""
	}

	lines := strings.Split(content, "\n")
	if pos.Line > len(lines) {
		return content
	}

	startLine := max(0, pos.Line-3)
	endLine := min(len(lines)-1, pos.Line+1)

	var contextBuilder strings.Builder
	for i := startLine; i <= endLine; i++ {
		lineNum := i + 1
		if lineNum == pos.Line {
			contextBuilder.WriteString(fmt.Sprintf("-> %d: %s\n", lineNum, lines[i]))

			if pos.Column > 0 && pos.Column <= len(lines[i])+1 {
				contextBuilder.WriteString(strings.Repeat(" ", pos.Column+5) + "^\n")
			}
		} else {
			contextBuilder.WriteString(fmt.Sprintf("   %d: %s\n", lineNum, lines[i]))
		}
	}

	return contextBuilder.String()
}
