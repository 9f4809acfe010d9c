package thrift

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/standardbeagle/idlunify/internal/parser"
	"github.com/standardbeagle/idlunify/internal/types"
)

var lexicon = parser.NewLexicon(thriftLexer, "Comment", "Comment", "Whitespace")

// Parse parses one .thrift file. Grammar errors are returned as *parser.Error.
func Parse(filename, src string) (*Document, error) {
	file, err := thriftParser.ParseString(filename, src)
	if err != nil {
		return nil, parser.WrapError(err)
	}
	scan, err := lexicon.Scan(filename, src)
	if err != nil {
		return nil, parser.WrapError(err)
	}

	b := &builder{scan: scan}
	return b.document(file), nil
}

// ParseDocument adapts Parse to parser.Func
func ParseDocument(filename, src string) (parser.Document, error) {
	doc, err := Parse(filename, src)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

type builder struct {
	scan *parser.Scan
}

func (b *builder) document(file *thriftFile) *Document {
	doc := &Document{}

	spans := make([]parser.Span, len(file.Entries))
	for i, e := range file.Entries {
		spans[i] = lexicon.Span(e.Tokens)
	}
	comments := parser.AttachFollowing(b.scan.Comments, spans, false, convertComment)

	for i, e := range file.Entries {
		span, cs := spans[i], comments[i]
		switch {
		case e.Include != nil:
			doc.Includes = append(doc.Includes, parser.Unquote(*e.Include))
		case e.CppInclude != nil:
			doc.CppIncludes = append(doc.CppIncludes, parser.Unquote(*e.CppInclude))
		case e.Namespace != nil:
			doc.Namespaces = append(doc.Namespaces, Namespace{
				Scope: e.Namespace.Scope,
				Name:  parser.Unquote(e.Namespace.Name),
			})
		case e.Typedef != nil:
			doc.Typedefs = append(doc.Typedefs, &Typedef{
				Name:        e.Typedef.Name,
				Type:        convertType(e.Typedef.Type),
				Annotations: convertAnnotations(e.Typedef.Annotations),
				Comments:    cs,
				Loc:         span.Loc,
			})
		case e.Const != nil:
			doc.Consts = append(doc.Consts, &Const{
				Name:     e.Const.Name,
				Type:     convertType(e.Const.Type),
				Value:    convertConst(e.Const.Value),
				Comments: cs,
				Loc:      span.Loc,
			})
		case e.Enum != nil:
			doc.Enums = append(doc.Enums, b.enum(e.Enum, span, cs))
		case e.Struct != nil:
			doc.Structs = append(doc.Structs, b.structLike(e.Struct, span, cs))
		case e.Service != nil:
			doc.Services = append(doc.Services, b.service(e.Service, span, cs))
		}
	}
	return doc
}

// children attaches the comments of a declaration body to its members
func (b *builder) children(parent parser.Span, tokens [][]lexer.Token) ([]parser.Span, [][]types.Comment) {
	spans := make([]parser.Span, len(tokens))
	for i, t := range tokens {
		spans[i] = lexicon.Span(t)
	}
	open, close := b.scan.Body(parent)
	comments := parser.AttachFollowing(b.scan.Within(open, close), spans, true, convertComment)
	return spans, comments
}

func (b *builder) enum(e *thriftEnum, span parser.Span, cs []types.Comment) *Enum {
	tokens := make([][]lexer.Token, len(e.Members))
	for i, m := range e.Members {
		tokens[i] = m.Tokens
	}
	spans, comments := b.children(span, tokens)

	out := &Enum{
		Name:        e.Name,
		Annotations: convertAnnotations(e.Annotations),
		Comments:    cs,
		Loc:         span.Loc,
	}
	for i, m := range e.Members {
		member := &EnumMember{
			Name:        m.Name,
			Annotations: convertAnnotations(m.Annotations),
			Comments:    comments[i],
			Loc:         spans[i].Loc,
		}
		if m.Value != nil {
			if v, err := strconv.ParseInt(*m.Value, 0, 64); err == nil {
				member.Value = &v
			}
		}
		out.Members = append(out.Members, member)
	}
	return out
}

func (b *builder) structLike(s *thriftStruct, span parser.Span, cs []types.Comment) *Struct {
	tokens := make([][]lexer.Token, len(s.Fields))
	for i, f := range s.Fields {
		tokens[i] = f.Tokens
	}
	spans, comments := b.children(span, tokens)

	out := &Struct{
		Kind:        StructKind(s.Kind),
		Name:        s.Name,
		Annotations: convertAnnotations(s.Annotations),
		Comments:    cs,
		Loc:         span.Loc,
	}
	for i, f := range s.Fields {
		out.Fields = append(out.Fields, convertField(f, spans[i], comments[i]))
	}
	return out
}

func (b *builder) service(s *thriftService, span parser.Span, cs []types.Comment) *Service {
	tokens := make([][]lexer.Token, len(s.Functions))
	for i, f := range s.Functions {
		tokens[i] = f.Tokens
	}
	spans, comments := b.children(span, tokens)

	out := &Service{
		Name:        s.Name,
		Extends:     s.Extends,
		Annotations: convertAnnotations(s.Annotations),
		Comments:    cs,
		Loc:         span.Loc,
	}
	for i, f := range s.Functions {
		fn := &Function{
			Name:        f.Name,
			Oneway:      f.Oneway,
			ReturnType:  convertType(f.ReturnType),
			Annotations: convertAnnotations(f.Annotations),
			Comments:    comments[i],
			Loc:         spans[i].Loc,
		}
		for _, a := range f.Args {
			fn.Args = append(fn.Args, convertField(a, lexicon.Span(a.Tokens), []types.Comment{}))
		}
		for _, t := range f.Throws {
			fn.Throws = append(fn.Throws, convertField(t, lexicon.Span(t.Tokens), []types.Comment{}))
		}
		out.Functions = append(out.Functions, fn)
	}
	return out
}

func convertField(f *thriftField, span parser.Span, cs []types.Comment) *Field {
	out := &Field{
		Requiredness: types.Requiredness(f.Requiredness),
		Name:         f.Name,
		Type:         convertType(f.Type),
		Annotations:  convertAnnotations(f.Annotations),
		Comments:     cs,
		Loc:          span.Loc,
	}
	if f.ID != nil {
		if id, err := strconv.ParseInt(*f.ID, 0, 64); err == nil {
			out.ID = int(id)
		}
	}
	if f.Default != nil {
		out.Default = convertConst(f.Default)
	}
	return out
}

func convertType(t *thriftType) types.FieldType {
	switch {
	case t == nil:
		return &types.BaseType{Keyword: types.KeywordVoid}
	case t.Map != nil:
		return &types.MapType{KeyType: convertType(t.Map.Key), ValueType: convertType(t.Map.Value)}
	case t.List != nil:
		return &types.ListType{ValueType: convertType(t.List)}
	case t.Set != nil:
		return &types.SetType{ValueType: convertType(t.Set)}
	case types.IsBaseKeyword(t.Name):
		return &types.BaseType{Keyword: t.Name}
	}
	return &types.Identifier{Value: t.Name}
}

func convertConst(v *thriftConstValue) types.ConstValue {
	switch {
	case v.Float != nil:
		return &types.ConstLiteral{Literal: types.ConstKindDouble, Value: *v.Float}
	case v.Int != nil:
		return &types.ConstLiteral{Literal: types.ConstKindInt, Value: *v.Int}
	case v.String != nil:
		return &types.ConstLiteral{Literal: types.ConstKindString, Value: parser.Unquote(*v.String)}
	case v.Ident != nil && (*v.Ident == "true" || *v.Ident == "false"):
		return &types.ConstLiteral{Literal: types.ConstKindBool, Value: *v.Ident}
	case v.Ident != nil:
		return &types.Identifier{Value: *v.Ident}
	case v.List != nil:
		list := &types.ConstList{Elements: []types.ConstValue{}}
		for _, e := range v.List.Elements {
			list.Elements = append(list.Elements, convertConst(e))
		}
		return list
	case v.Map != nil:
		m := &types.ConstMap{Entries: []types.ConstMapEntry{}}
		for _, e := range v.Map.Entries {
			m.Entries = append(m.Entries, types.ConstMapEntry{Key: convertConst(e.Key), Value: convertConst(e.Value)})
		}
		return m
	}
	return &types.ConstLiteral{Literal: types.ConstKindString}
}

func convertAnnotations(a *thriftAnnotations) []types.Annotation {
	if a == nil || len(a.Items) == 0 {
		return nil
	}
	out := make([]types.Annotation, 0, len(a.Items))
	for _, item := range a.Items {
		ann := types.Annotation{Key: item.Key}
		if item.Value != nil {
			ann.Value = parser.Unquote(*item.Value)
		}
		out = append(out, ann)
	}
	return out
}

// convertComment strips comment delimiters. A block comment keeps one entry per
// line; continuation lines lose a leading "* " or keep a single space of indent.
func convertComment(c parser.RawComment) types.Comment {
	text := c.Text()
	if !c.Block() {
		text = strings.TrimPrefix(text, "//")
		text = strings.TrimPrefix(text, "#")
		return types.LineComment(strings.TrimSpace(text), c.Span.Loc)
	}

	body := strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	raw := strings.Split(body, "\n")
	lines := make([]string, 0, len(raw))
	for i, l := range raw {
		if i == 0 {
			lines = append(lines, strings.TrimSpace(strings.TrimLeft(l, "*")))
			continue
		}
		rest := strings.TrimLeft(l, " \t\r")
		if strings.HasPrefix(rest, "*") {
			rest = strings.TrimLeft(rest[1:], " \t")
		} else if len(rest) < len(l) {
			rest = " " + rest
		}
		lines = append(lines, strings.TrimRight(rest, " \t\r"))
	}

	// drop the empty first and last lines of /**\n * doc\n */ style comments
	for len(lines) > 1 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return types.BlockComment(lines, c.Span.Loc)
}
