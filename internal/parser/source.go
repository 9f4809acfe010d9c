package parser

import (
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/standardbeagle/idlunify/internal/types"
)

// Span is the extent of a grammar node. Offsets are byte offsets, End is exclusive.
type Span struct {
	Start int
	End   int
	Loc   types.Location
}

// RawComment is a comment token with its extent
type RawComment struct {
	Token lexer.Token
	Span  Span
}

// Text returns the comment token as written, delimiters included
func (c RawComment) Text() string {
	return c.Token.Value
}

// Block reports whether the comment is a /* */ comment
func (c RawComment) Block() bool {
	return strings.HasPrefix(c.Token.Value, "/*")
}

// Lexicon knows which token types of a lexer carry no syntax
type Lexicon struct {
	def     lexer.Definition
	comment lexer.TokenType
	elided  map[lexer.TokenType]bool
}

// NewLexicon creates a lexicon for def. commentToken names the comment rule,
// elided the rules participle drops (comments included).
func NewLexicon(def lexer.Definition, commentToken string, elided ...string) *Lexicon {
	symbols := def.Symbols()
	l := &Lexicon{
		def:     def,
		comment: symbols[commentToken],
		elided:  make(map[lexer.TokenType]bool, len(elided)),
	}
	for _, name := range elided {
		l.elided[symbols[name]] = true
	}
	return l
}

// Span returns the extent of the significant tokens of a node
func (l *Lexicon) Span(tokens []lexer.Token) Span {
	first, last := -1, -1
	for i, t := range tokens {
		if l.elided[t.Type] || t.EOF() {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return Span{}
	}
	return Span{
		Start: tokens[first].Pos.Offset,
		End:   tokens[last].Pos.Offset + len(tokens[last].Value),
		Loc: types.Location{
			Start: position(tokens[first].Pos),
			End:   endPosition(tokens[last]),
		},
	}
}

// Scan is the token stream of a file split into comments and significant tokens
type Scan struct {
	Comments []RawComment
	Tokens   []lexer.Token
}

// Scan lexes src once more to recover the comments participle elides
func (l *Lexicon) Scan(filename, src string) (*Scan, error) {
	lex, err := l.def.Lex(filename, strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, err
	}

	s := &Scan{}
	for _, t := range tokens {
		switch {
		case t.EOF():
		case t.Type == l.comment:
			s.Comments = append(s.Comments, RawComment{Token: t, Span: spanOf(t)})
		case !l.elided[t.Type]:
			s.Tokens = append(s.Tokens, t)
		}
	}
	return s, nil
}

// Within returns the comments that start in [start, end)
func (s *Scan) Within(start, end int) []RawComment {
	lo := sort.Search(len(s.Comments), func(i int) bool { return s.Comments[i].Span.Start >= start })
	hi := sort.Search(len(s.Comments), func(i int) bool { return s.Comments[i].Span.Start >= end })
	return s.Comments[lo:hi]
}

// PrevTokenLine returns the end line of the last significant token before offset, or 0
func (s *Scan) PrevTokenLine(offset int) int {
	i := sort.Search(len(s.Tokens), func(i int) bool { return s.Tokens[i].Pos.Offset >= offset })
	if i == 0 {
		return 0
	}
	return endPosition(s.Tokens[i-1]).Line
}

// TokenAt returns the first significant token at or after offset whose value is v, or -1
func (s *Scan) TokenAt(offset int, v string) int {
	i := sort.Search(len(s.Tokens), func(i int) bool { return s.Tokens[i].Pos.Offset >= offset })
	for ; i < len(s.Tokens); i++ {
		if s.Tokens[i].Value == v {
			return s.Tokens[i].Pos.Offset
		}
	}
	return -1
}

// Body returns the offsets just inside the first "{" and the last "}" of a node
func (s *Scan) Body(node Span) (open, close int) {
	open, close = node.Start, node.End
	if o := s.TokenAt(node.Start, "{"); o >= 0 && o < node.End {
		open = o + 1
	}
	i := sort.Search(len(s.Tokens), func(i int) bool { return s.Tokens[i].Pos.Offset >= node.End })
	for i--; i >= 0 && s.Tokens[i].Pos.Offset >= open; i-- {
		if s.Tokens[i].Value == "}" {
			return open, s.Tokens[i].Pos.Offset
		}
	}
	return open, close
}

// AttachFollowing gives every comment to the first child that starts after it.
// Comments inside a child are skipped. Comments past the last child go to it
// when keepTrailing is set.
func AttachFollowing(comments []RawComment, children []Span, keepTrailing bool, convert func(RawComment) types.Comment) [][]types.Comment {
	out := make([][]types.Comment, len(children))
	for i := range out {
		out[i] = []types.Comment{}
	}
	if len(children) == 0 {
		return out
	}

	i := 0
	for _, c := range comments {
		for i < len(children) && children[i].End <= c.Span.Start {
			i++
		}
		switch {
		case i < len(children) && c.Span.Start >= children[i].Start:
			// belongs to a nested declaration
		case i < len(children):
			out[i] = append(out[i], convert(c))
		case keepTrailing:
			last := len(children) - 1
			out[last] = append(out[last], convert(c))
		}
	}
	return out
}

func spanOf(t lexer.Token) Span {
	return Span{
		Start: t.Pos.Offset,
		End:   t.Pos.Offset + len(t.Value),
		Loc:   types.Location{Start: position(t.Pos), End: endPosition(t)},
	}
}

func position(p lexer.Position) types.Position {
	return types.Position{Line: p.Line, Column: p.Column}
}

func endPosition(t lexer.Token) types.Position {
	lines := strings.Count(t.Value, "\n")
	if lines == 0 {
		return types.Position{Line: t.Pos.Line, Column: t.Pos.Column + len(t.Value)}
	}
	tail := t.Value[strings.LastIndexByte(t.Value, '\n')+1:]
	return types.Position{Line: t.Pos.Line + lines, Column: len(tail) + 1}
}

// NextToken returns the first significant token at or after offset
func (s *Scan) NextToken(offset int) (lexer.Token, bool) {
	i := sort.Search(len(s.Tokens), func(i int) bool { return s.Tokens[i].Pos.Offset >= offset })
	if i == len(s.Tokens) {
		return lexer.Token{}, false
	}
	return s.Tokens[i], true
}
