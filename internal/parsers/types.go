package parsers

import (
	"context"
	"fmt"
)

// FieldRecord is one declared field variable.
//
// Default and Comment are nil when the source has no initializer or no
// Javadoc. A Javadoc with an empty description yields a non-nil pointer to "".
type FieldRecord struct {
	Name    string
	Type    string
	Default *string
	Comment *string
	Line    int // 1-based line of the variable declarator
}

// DefaultText returns the initializer text, or "" when absent.
func (f FieldRecord) DefaultText() string {
	if f.Default == nil {
		return ""
	}
	return *f.Default
}

// CommentText returns the description text, or "" when absent.
func (f FieldRecord) CommentText() string {
	if f.Comment == nil {
		return ""
	}
	return *f.Comment
}

// FieldExtractor turns one source file into its field records.
type FieldExtractor interface {
	// ParseFile reads filePath and extracts its fields.
	ParseFile(ctx context.Context, filePath string) ([]FieldRecord, error)

	// ExtractFields extracts fields from already loaded source bytes.
	ExtractFields(ctx context.Context, filePath string, source []byte) ([]FieldRecord, error)

	// Extension is the source file extension handled, with leading dot.
	Extension() string
}

// ParseError reports a source file the grammar rejected.
type ParseError struct {
	FilePath string
	Line     int // 1-based, 0 when unknown
	Column   int // 1-based, 0 when unknown
	Err      error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s at %d:%d: %v", e.FilePath, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.FilePath, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func strPtr(s string) *string {
	return &s
}
