package proto

import (
	"math"
	"strconv"
	"strings"

	"github.com/standardbeagle/idlunify/internal/parser"
	"github.com/standardbeagle/idlunify/internal/types"
)

var lexicon = parser.NewLexicon(protoLexer, "Comment", "Comment", "Whitespace")

// Parse parses one .proto file. Grammar errors are returned as *parser.Error.
func Parse(filename, src string) (*Document, error) {
	file, err := protoParser.ParseString(filename, src)
	if err != nil {
		return nil, parser.WrapError(err)
	}
	scan, err := lexicon.Scan(filename, src)
	if err != nil {
		return nil, parser.WrapError(err)
	}

	b := &builder{scan: scan, doc: &Document{}}
	b.document(file)
	b.resolve()
	return b.doc, nil
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
	doc  *Document
}

func (b *builder) document(file *protoFile) {
	doc := b.doc
	for _, e := range file.Entries {
		if e.Package != nil {
			doc.Package = *e.Package
		}
	}

	for _, e := range file.Entries {
		span := lexicon.Span(e.Tokens)
		switch {
		case e.Syntax != nil:
			doc.Version = parser.Unquote(*e.Syntax)
		case e.Edition != nil:
			doc.Edition = parser.Unquote(*e.Edition)
		case e.Import != nil:
			doc.Imports = append(doc.Imports, Import{
				Path:     parser.Unquote(e.Import.Path),
				Modifier: e.Import.Modifier,
			})
		case e.Option != nil:
			doc.Options = append(doc.Options, flattenOption(e.Option)...)
		case e.Message != nil:
			doc.Messages = append(doc.Messages, b.message(e.Message, doc.Package, span))
		case e.Enum != nil:
			doc.Enums = append(doc.Enums, b.enum(e.Enum, doc.Package, span))
		case e.Service != nil:
			doc.Services = append(doc.Services, b.service(e.Service, doc.Package, span))
		case e.Extend != nil:
			doc.Extends = append(doc.Extends, b.extend(e.Extend, doc.Package))
		}
	}
}

func (b *builder) message(m *protoMessage, scope string, span parser.Span) *Message {
	out := &Message{
		Name:     m.Name,
		FullName: join(scope, m.Name),
		Comments: b.comments(span),
		Loc:      span.Loc,
	}
	for _, e := range m.Entries {
		es := lexicon.Span(e.Tokens)
		switch {
		case e.Enum != nil:
			out.Nested = append(out.Nested, b.enum(e.Enum, out.FullName, es))
		case e.Message != nil:
			out.Nested = append(out.Nested, b.message(e.Message, out.FullName, es))
		case e.Option != nil:
			out.Options = append(out.Options, flattenOption(e.Option)...)
		case e.Oneof != nil:
			out.Oneofs = append(out.Oneofs, e.Oneof.Name)
			for _, oe := range e.Oneof.Entries {
				if oe.Field == nil {
					continue
				}
				f := b.field(oe.Field, out.FullName, lexicon.Span(oe.Tokens))
				f.Oneof = e.Oneof.Name
				out.Fields = append(out.Fields, f)
			}
		case e.Extend != nil:
			b.doc.Extends = append(b.doc.Extends, b.extend(e.Extend, out.FullName))
		case e.MapField != nil:
			mf := e.MapField
			out.Fields = append(out.Fields, &Field{
				Name:     mf.Name,
				FullName: join(out.FullName, mf.Name),
				Number:   atoi(mf.Number),
				KeyType:  mf.KeyType,
				Type:     mf.ValueType,
				Map:      true,
				Options:  flattenOptions(mf.Options),
				Comments: b.comments(es),
				Loc:      es.Loc,
			})
		case e.Field != nil:
			out.Fields = append(out.Fields, b.field(e.Field, out.FullName, es))
		}
	}
	return out
}

func (b *builder) field(f *protoField, scope string, span parser.Span) *Field {
	return &Field{
		Name:     f.Name,
		FullName: join(scope, f.Name),
		Number:   atoi(f.Number),
		Label:    f.Label,
		Type:     f.Type,
		Options:  flattenOptions(f.Options),
		Comments: b.comments(span),
		Loc:      span.Loc,
	}
}

func (b *builder) extend(e *protoExtend, scope string) *Extend {
	out := &Extend{Extendee: e.Extendee}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, b.field(f, scope, lexicon.Span(f.Tokens)))
	}
	return out
}

func (b *builder) enum(e *protoEnum, scope string, span parser.Span) *Enum {
	out := &Enum{
		Name:     e.Name,
		FullName: join(scope, e.Name),
		Comments: b.comments(span),
		Loc:      span.Loc,
	}
	for _, entry := range e.Entries {
		switch {
		case entry.Option != nil:
			out.Options = append(out.Options, flattenOption(entry.Option)...)
		case entry.Value != nil:
			es := lexicon.Span(entry.Tokens)
			n, _ := strconv.ParseInt(entry.Value.Number, 0, 64)
			out.Values = append(out.Values, &EnumValue{
				Name:     entry.Value.Name,
				Number:   n,
				Options:  flattenOptions(entry.Value.Options),
				Comments: b.comments(es),
				Loc:      es.Loc,
			})
		}
	}
	return out
}

func (b *builder) service(s *protoService, scope string, span parser.Span) *Service {
	out := &Service{
		Name:     s.Name,
		FullName: join(scope, s.Name),
		Comments: b.comments(span),
		Loc:      span.Loc,
	}
	for _, entry := range s.Entries {
		switch {
		case entry.Option != nil:
			out.Options = append(out.Options, flattenOption(entry.Option)...)
		case entry.Method != nil:
			m := entry.Method
			ms := lexicon.Span(entry.Tokens)
			out.Methods = append(out.Methods, &Method{
				Name:           m.Name,
				FullName:       join(out.FullName, m.Name),
				RequestType:    m.RequestType,
				ResponseType:   m.ResponseType,
				StreamRequest:  m.StreamRequest,
				StreamResponse: m.StreamResponse,
				Options:        flattenOptions(m.Options),
				Comments:       b.comments(ms),
				Loc:            ms.Loc,
			})
		}
	}
	return out
}

// resolve rewrites type references that name a declaration of this file
func (b *builder) resolve() {
	declared := make(map[string]bool)
	for _, name := range b.doc.FullTypeNames() {
		declared[name] = true
	}

	var walk func(m *Message)
	walk = func(m *Message) {
		for _, f := range m.Fields {
			f.ResolvedType = weakResolve(f.Type, m.FullName, declared)
		}
		for _, n := range m.Nested {
			if nested, ok := n.(*Message); ok {
				walk(nested)
			}
		}
	}
	for _, m := range b.doc.Messages {
		walk(m)
	}
	for _, e := range b.doc.Extends {
		for _, f := range e.Fields {
			f.ResolvedType = weakResolve(f.Type, f.Scope(), declared)
		}
	}
	for _, s := range b.doc.Services {
		for _, m := range s.Methods {
			m.ResolvedRequestType = weakResolve(m.RequestType, s.FullName, declared)
			m.ResolvedResponseType = weakResolve(m.ResponseType, s.FullName, declared)
		}
	}
}

// weakResolve looks name up in scope and its ancestors, innermost first
func weakResolve(name, scope string, declared map[string]bool) string {
	if _, ok := BaseKeyword(name); ok || strings.HasPrefix(name, ".") {
		return name
	}
	for s := scope; ; s = parent(s) {
		if candidate := join(s, name); declared[candidate] {
			return "." + candidate
		}
		if s == "" {
			break
		}
	}
	if strings.Contains(name, ".") {
		return "." + name
	}
	return name
}

// comments returns the comment block directly above a declaration, or else
// the comment trailing it on the same line, merged into one block comment
func (b *builder) comments(span parser.Span) []types.Comment {
	run := b.leading(span)
	if len(run) == 0 {
		if c, ok := b.trailing(span); ok {
			run = append(run, c)
		}
	}

	texts := make([]string, 0, len(run))
	for _, c := range run {
		if text := commentText(c); text != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return []types.Comment{}
	}
	loc := types.Location{Start: run[0].Span.Loc.Start, End: run[len(run)-1].Span.Loc.End}
	return []types.Comment{types.BlockComment([]string{strings.Join(texts, "\n")}, loc)}
}

func (b *builder) leading(span parser.Span) []parser.RawComment {
	before := b.scan.Within(0, span.Start)
	prevLine := b.scan.PrevTokenLine(span.Start)

	want := span.Loc.Start.Line - 1
	first := len(before)
	for i := len(before) - 1; i >= 0; i-- {
		c := before[i]
		if c.Span.Loc.Start.Line <= prevLine {
			break
		}
		end := c.Span.Loc.End.Line
		if end != want && !(first < len(before) && end == before[first].Span.Loc.Start.Line) {
			break
		}
		first = i
		want = c.Span.Loc.Start.Line - 1
	}
	return before[first:]
}

func (b *builder) trailing(span parser.Span) (parser.RawComment, bool) {
	line := span.Loc.Start.Line
	next, hasNext := b.scan.NextToken(span.End)
	for _, c := range b.scan.Within(span.Start, math.MaxInt) {
		if c.Span.Loc.Start.Line != line {
			break
		}
		if c.Span.Start >= span.End && hasNext && next.Pos.Offset < c.Span.Start {
			break
		}
		after, ok := b.scan.NextToken(c.Span.End)
		if !ok || after.Pos.Line > c.Span.Loc.End.Line {
			return c, true
		}
	}
	return parser.RawComment{}, false
}

// commentText strips delimiters and per-line "*" gutters, dropping blank lines
func commentText(c parser.RawComment) string {
	text := c.Text()
	if !c.Block() {
		return strings.TrimSpace(strings.TrimLeft(text, "/"))
	}
	body := strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	var lines []string
	for _, l := range strings.Split(body, "\n") {
		l = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(l), "*"))
		if l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

func flattenOptions(opts []*protoOption) []types.Annotation {
	var out []types.Annotation
	for _, o := range opts {
		out = append(out, flattenOption(o)...)
	}
	return out
}

// flattenOption turns aggregate values into one annotation per leaf:
// (google.api.http) = { get: "/x" } becomes (google.api.http).get = /x
func flattenOption(o *protoOption) []types.Annotation {
	return flatten(o.Name, o.Value, nil)
}

func flatten(key string, v *protoOptionValue, out []types.Annotation) []types.Annotation {
	switch {
	case v == nil:
		return out
	case v.Aggregate != nil:
		for _, f := range v.Aggregate.Fields {
			out = flatten(key+"."+f.Name, f.Value, out)
		}
		return out
	case v.List != nil:
		for _, e := range v.List.Values {
			out = flatten(key, e, out)
		}
		return out
	}
	return append(out, types.Annotation{Key: key, Value: scalar(v)})
}

func scalar(v *protoOptionValue) string {
	switch {
	case len(v.String) > 0:
		var sb strings.Builder
		for _, s := range v.String {
			sb.WriteString(parser.Unquote(s))
		}
		return sb.String()
	case v.Number != nil:
		return *v.Number
	case v.Ident != nil:
		return *v.Ident
	}
	return ""
}

func join(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

func parent(scope string) string {
	if i := strings.LastIndexByte(scope, '.'); i >= 0 {
		return scope[:i]
	}
	return ""
}

func atoi(s string) int {
	n, _ := strconv.ParseInt(s, 0, 64)
	return int(n)
}
