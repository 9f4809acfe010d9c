// Package comments reassigns comments between sibling declarations based on
// source line numbers.
//
// Grammar front ends attach a comment to the syntactically nearest
// declaration. A trailing comment written on the same line as a declaration
// therefore often lands on the next sibling, and a comment written above a
// declaration may land on the previous one. Revise moves them back.
package comments

import "github.com/standardbeagle/idlunify/internal/types"

// Sibling is a declaration in an ordered list of struct fields, enum members
// or service functions
type Sibling interface {
	EndLine() int
	CommentList() *[]types.Comment
}

// Revise runs the backward pass (when backward is true) and then the forward
// pass over siblings, mutating their comment lists in place.
func Revise(siblings []Sibling, backward bool) {
	if backward {
		reviseBackward(siblings)
	}
	reviseForward(siblings)
}

// reviseBackward moves comments that sit below a sibling's own end line onto the next sibling
func reviseBackward(siblings []Sibling) {
	for i := len(siblings) - 1; i > 0; i-- {
		prev := siblings[i-1]
		prevComments := prev.CommentList()

		split := -1
		for j, c := range *prevComments {
			if c.Loc.End.Line > prev.EndLine() {
				split = j
				break
			}
		}
		if split < 0 {
			continue
		}

		moved := append([]types.Comment(nil), (*prevComments)[split:]...)
		*prevComments = (*prevComments)[:split]

		cur := siblings[i].CommentList()
		*cur = append(moved, *cur...)
	}
}

// reviseForward moves a sibling's first comment to its predecessor when it ends on the predecessor's end line
func reviseForward(siblings []Sibling) {
	for i := 0; i < len(siblings)-1; i++ {
		cur := siblings[i]
		next := siblings[i+1].CommentList()
		if len(*next) == 0 {
			continue
		}

		first := (*next)[0]
		if first.Loc.End.Line != cur.EndLine() {
			continue
		}

		*next = (*next)[1:]
		comments := cur.CommentList()
		*comments = append(*comments, first)
	}
}

// Fields adapts a field list to siblings
func Fields(fields []*types.FieldDefinition) []Sibling {
	out := make([]Sibling, len(fields))
	for i, f := range fields {
		out[i] = f
	}
	return out
}

// Members adapts an enum member list to siblings
func Members(members []*types.EnumMember) []Sibling {
	out := make([]Sibling, len(members))
	for i, m := range members {
		out[i] = m
	}
	return out
}

// Functions adapts a service function list to siblings
func Functions(functions []*types.FunctionDefinition) []Sibling {
	out := make([]Sibling, len(functions))
	for i, f := range functions {
		out[i] = f
	}
	return out
}
