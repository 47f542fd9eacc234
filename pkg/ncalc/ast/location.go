package ast

import "fmt"

// Location is a position in the expression text. Row and Column are
// 1-based; Offset is the 0-based byte offset.
type Location struct {
	Offset int
	Row    int
	Column int
}

// EmptyLocation marks a node with no known source position.
var EmptyLocation = Location{Offset: 0, Row: -1, Column: -1}

// NewLocation creates a location.
func NewLocation(offset, row, column int) Location {
	return Location{Offset: offset, Row: row, Column: column}
}

// IsEmpty reports whether l carries no position.
func (l Location) IsEmpty() bool {
	return l.Row < 0 || l.Column < 0
}

// String formats l as "row:col".
func (l Location) String() string {
	if l.IsEmpty() {
		return "?"
	}
	return fmt.Sprintf("%d:%d", l.Row, l.Column)
}
