package types

import "encoding/json"

// CommentKind distinguishes line comments from block comments
type CommentKind string

const (
	CommentLine  CommentKind = "CommentLine"
	CommentBlock CommentKind = "CommentBlock"
)

// Comment is a source comment with its delimiters removed.
// A line comment has exactly one entry in Lines.
type Comment struct {
	Kind  CommentKind `json:"type" yaml:"type"`
	Lines []string    `json:"value" yaml:"value"`
	Loc   Location    `json:"loc" yaml:"loc"`
}

// LineComment creates a line comment
func LineComment(text string, loc Location) Comment {
	return Comment{Kind: CommentLine, Lines: []string{text}, Loc: loc}
}

// BlockComment creates a block comment
func BlockComment(lines []string, loc Location) Comment {
	return Comment{Kind: CommentBlock, Lines: lines, Loc: loc}
}

// Text returns the comment body with lines joined by newlines
func (c Comment) Text() string {
	switch len(c.Lines) {
	case 0:
		return ""
	case 1:
		return c.Lines[0]
	}
	out := c.Lines[0]
	for _, l := range c.Lines[1:] {
		out += "\n" + l
	}
	return out
}

// MarshalJSON renders a line comment's value as a string and a block comment's as a list
func (c Comment) MarshalJSON() ([]byte, error) {
	var value interface{} = c.Lines
	if c.Kind == CommentLine {
		value = c.Text()
	}
	return json.Marshal(struct {
		Type  CommentKind `json:"type"`
		Value interface{} `json:"value"`
		Loc   Location    `json:"loc"`
	}{c.Kind, value, c.Loc})
}
